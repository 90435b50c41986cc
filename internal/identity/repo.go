package identity

import (
	"context"

	"github.com/okestore/storefront-sync/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes account persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, account *Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByEmail retrieves the account matching the provided (normalized) email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID loads an account by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*Account, error) {
	var account Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateRole overwrites the role of the account with the given email and reports whether a
// row matched.
func (r *Repository) UpdateRole(ctx context.Context, email string, role enums.AccountRole) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("email = ?", email).
		UpdateColumn("role", role)
	return res.RowsAffected > 0, res.Error
}

// UpdatePasswordHash replaces the stored hash after a cost upgrade.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")}).Error
}

// Delete removes the account row. Deleting a missing account is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Account{}).Error
}
