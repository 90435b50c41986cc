package identity

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/okestore/storefront-sync/pkg/auth"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "okestore", ExpirationMinutes: 30}

func newTestProvider(t *testing.T) (*Provider, *Repository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&Account{}))

	repo := NewRepository(conn)
	provider := NewProvider(Params{
		Accounts: repo,
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		JWT:    testJWT,
		Logger: logger.Nop(),
		Now:    time.Now,
	})
	return provider, repo
}

func receive(t *testing.T, ch <-chan *models.SessionIdentity) *models.SessionIdentity {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		t.Fatal("expected an identity notification")
		return nil
	}
}

func TestRegisterThenLogin(t *testing.T) {
	provider, repo := newTestProvider(t)
	ctx := context.Background()

	id, err := provider.Register(ctx, "  Seeker@Example.com ", "secret-pass", "Seeker")
	require.NoError(t, err)
	assert.Equal(t, "seeker@example.com", id.Email)
	assert.Equal(t, "Seeker", id.DisplayName)
	assert.NotEmpty(t, id.AccountID)

	claims, err := auth.ParseAccessToken(testJWT, id.Token)
	require.NoError(t, err)
	assert.Equal(t, id.AccountID, claims.AccountID.String())
	assert.Equal(t, enums.AccountRoleCustomer, claims.Role)

	stored, err := repo.FindByEmail(ctx, "seeker@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pass", stored.PasswordHash)

	again, err := provider.Login(ctx, "seeker@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, id.AccountID, again.AccountID)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Register(ctx, "dup@example.com", "secret-pass", "")
	require.NoError(t, err)

	_, err = provider.Register(ctx, "DUP@example.com", "another-pass", "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterValidation(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Register(ctx, "not-an-email", "secret-pass", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = provider.Register(ctx, "short@example.com", "abc", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoginFailures(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Register(ctx, "seeker@example.com", "secret-pass", "")
	require.NoError(t, err)

	_, err = provider.Login(ctx, "seeker@example.com", "wrong-pass")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = provider.Login(ctx, "nobody@example.com", "secret-pass")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestSubscribeSeesCurrentAndChanges(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	ch, unsubscribe := provider.Subscribe()
	defer unsubscribe()
	assert.Nil(t, receive(t, ch), "anonymous at start")

	id, err := provider.Register(ctx, "seeker@example.com", "secret-pass", "")
	require.NoError(t, err)
	got := receive(t, ch)
	require.NotNil(t, got)
	assert.Equal(t, id.AccountID, got.AccountID)
	assert.Equal(t, id.AccountID, provider.Current().AccountID)

	require.NoError(t, provider.Logout(ctx))
	assert.Nil(t, receive(t, ch))
	assert.Nil(t, provider.Current())
}

func TestSubscribeKeepsOnlyLatest(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Register(ctx, "a@example.com", "secret-pass", "")
	require.NoError(t, err)
	ch, unsubscribe := provider.Subscribe()
	defer unsubscribe()

	require.NoError(t, provider.Logout(ctx))
	second, err := provider.Login(ctx, "a@example.com", "secret-pass")
	require.NoError(t, err)

	got := receive(t, ch)
	require.NotNil(t, got)
	assert.Equal(t, second.AccountID, got.AccountID)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra notification %+v", extra)
	default:
	}
}

func TestDeleteAndPromote(t *testing.T) {
	provider, repo := newTestProvider(t)
	ctx := context.Background()

	id, err := provider.Register(ctx, "ops@example.com", "secret-pass", "")
	require.NoError(t, err)

	require.NoError(t, provider.Promote(ctx, "OPS@example.com", enums.AccountRoleAdmin))
	again, err := provider.Login(ctx, "ops@example.com", "secret-pass")
	require.NoError(t, err)
	claims, err := auth.ParseAccessToken(testJWT, again.Token)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountRoleAdmin, claims.Role)

	err = provider.Promote(ctx, "ghost@example.com", enums.AccountRoleAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, provider.Delete(ctx, id.AccountID))
	_, err = repo.FindByID(ctx, id.AccountID)
	require.Error(t, err)
	_, err = provider.Login(ctx, "ops@example.com", "secret-pass")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	provider, repo := newTestProvider(t)
	ctx := context.Background()

	id, err := provider.Register(ctx, "seeker@example.com", "secret-pass", "")
	require.NoError(t, err)
	before, err := repo.FindByID(ctx, id.AccountID)
	require.NoError(t, err)

	stronger := provider.password
	stronger.ArgonTime = 2
	upgraded := NewProvider(Params{Accounts: repo, Password: stronger, JWT: testJWT, Logger: logger.Nop(), Now: time.Now})

	_, err = upgraded.Login(ctx, "seeker@example.com", "secret-pass")
	require.NoError(t, err)

	after, err := repo.FindByID(ctx, id.AccountID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
	assert.False(t, security.NeedsRehash(after.PasswordHash, stronger))

	_, err = upgraded.Login(ctx, "seeker@example.com", "secret-pass")
	require.NoError(t, err)
}
