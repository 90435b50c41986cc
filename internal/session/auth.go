package session

import (
	"context"

	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/models"
)

// Login authenticates and switches the session before returning. Failure leaves the
// session untouched.
func (m *Manager) Login(ctx context.Context, email, secret string) (*models.SessionIdentity, error) {
	id, err := m.identity.Login(ctx, email, secret)
	if err != nil {
		return nil, authFailure(err, pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	m.applyIdentity(ctx, id)
	return id, nil
}

// Register creates the account and signs it in.
func (m *Manager) Register(ctx context.Context, email, secret, displayName string) (*models.SessionIdentity, error) {
	id, err := m.identity.Register(ctx, email, secret, displayName)
	if err != nil {
		return nil, authFailure(err, pkgerrors.CodeConflict, "account could not be created")
	}
	m.applyIdentity(ctx, id)
	return id, nil
}

// Logout tears the session down synchronously, then tells the provider.
func (m *Manager) Logout(ctx context.Context) error {
	m.applyIdentity(ctx, nil)
	if err := m.identity.Logout(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "logout")
	}
	return nil
}

// DeleteCurrentUser drops the local extended profile, deletes the account and signs out.
func (m *Manager) DeleteCurrentUser(ctx context.Context) error {
	id := m.Identity()
	if !id.Authenticated() {
		return errNotSignedIn
	}

	extended := localstore.LoadJSON[map[string]models.ExtendedProfile](ctx, m.store, m.logg, localstore.KeyExtendedProfiles)
	if _, ok := extended[id.AccountID]; ok {
		delete(extended, id.AccountID)
		if err := localstore.SaveJSON(ctx, m.store, localstore.KeyExtendedProfiles, extended); err != nil {
			m.logg.Warn(ctx, "failed to drop extended profile")
		}
	}

	if err := m.identity.Delete(ctx, id.AccountID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account")
	}
	return m.Logout(ctx)
}

// authFailure keeps typed provider errors and wraps anything else with a public message.
func authFailure(err error, code pkgerrors.Code, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(code, err, message)
}
