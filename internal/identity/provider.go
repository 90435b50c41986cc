// Package identity is the account-backed authentication provider behind the session.
package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okestore/storefront-sync/pkg/auth"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/db"
	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/security"
)

const minSecretLength = 6

var errInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

type accountStore interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdateRole(ctx context.Context, email string, role enums.AccountRole) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

type Params struct {
	Accounts accountStore
	Password config.PasswordConfig
	JWT      config.JWTConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

// Provider authenticates against the accounts table and broadcasts identity changes.
type Provider struct {
	accounts accountStore
	password config.PasswordConfig
	jwt      config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	current *models.SessionIdentity
	subs    map[int]chan *models.SessionIdentity
	nextSub int
}

func NewProvider(p Params) *Provider {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{
		accounts: p.Accounts,
		password: p.Password,
		jwt:      p.JWT,
		logg:     p.Logger,
		now:      now,
		subs:     map[int]chan *models.SessionIdentity{},
	}
}

// Subscribe delivers the current identity immediately and every later change. Slow
// subscribers only ever see the latest value.
func (p *Provider) Subscribe() (<-chan *models.SessionIdentity, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan *models.SessionIdentity, 1)
	ch <- p.current
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
		})
	}
}

// Current returns the signed-in identity, nil when anonymous.
func (p *Provider) Current() *models.SessionIdentity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Provider) Login(ctx context.Context, email, secret string) (*models.SessionIdentity, error) {
	email = normalizeEmail(email)
	if email == "" || secret == "" {
		return nil, errInvalidCredentials
	}

	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, db.Wrap(err, "load account")
	}

	ok, err := security.VerifyPassword(secret, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, errInvalidCredentials
	}
	p.upgradeHash(ctx, account, secret)

	id, err := p.identityFor(account)
	if err != nil {
		return nil, err
	}
	p.publish(id)
	return id, nil
}

func (p *Provider) Register(ctx context.Context, email, secret, displayName string) (*models.SessionIdentity, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(secret) < minSecretLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}

	hash, err := security.HashPassword(secret, p.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := p.now().UTC()
	account := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		Role:         enums.AccountRoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an account with this email already exists")
		}
		return nil, db.Wrap(err, "create account")
	}

	id, err := p.identityFor(account)
	if err != nil {
		return nil, err
	}
	p.publish(id)
	return id, nil
}

func (p *Provider) Logout(ctx context.Context) error {
	p.publish(nil)
	return nil
}

// Delete removes the account. The caller signs out afterwards.
func (p *Provider) Delete(ctx context.Context, accountID string) error {
	if strings.TrimSpace(accountID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if err := p.accounts.Delete(ctx, accountID); err != nil {
		return db.Wrap(err, "delete account")
	}
	return nil
}

// Promote grants a role to an existing account.
func (p *Provider) Promote(ctx context.Context, email string, role enums.AccountRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	found, err := p.accounts.UpdateRole(ctx, normalizeEmail(email), role)
	if err != nil {
		return db.Wrap(err, "update role")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return nil
}

// upgradeHash rewrites hashes made with older Argon2 costs. Failures only cost another
// upgrade attempt on the next login.
func (p *Provider) upgradeHash(ctx context.Context, account *Account, secret string) {
	if !security.NeedsRehash(account.PasswordHash, p.password) {
		return
	}
	hash, err := security.HashPassword(secret, p.password)
	if err == nil {
		err = p.accounts.UpdatePasswordHash(ctx, account.ID, hash)
	}
	if err != nil {
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "password hash upgrade failed")
		}
		return
	}
	account.PasswordHash = hash
}

func (p *Provider) identityFor(account *Account) (*models.SessionIdentity, error) {
	accountID, err := uuid.Parse(account.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "account id is not a uuid")
	}
	role := account.Role
	if !role.IsValid() {
		role = enums.AccountRoleCustomer
	}
	token, err := auth.MintAccessToken(p.jwt, p.now(), auth.AccessTokenPayload{
		AccountID: accountID,
		Email:     account.Email,
		Role:      role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &models.SessionIdentity{
		AccountID:   account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Token:       token,
	}, nil
}

func (p *Provider) publish(id *models.SessionIdentity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = id
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- id
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
