package identity

import (
	"time"

	"github.com/okestore/storefront-sync/pkg/enums"
)

// Account mirrors the accounts table.
type Account struct {
	ID           string            `gorm:"primaryKey;type:varchar(64)"`
	Email        string            `gorm:"not null;uniqueIndex:accounts_email_key"`
	Phone        string            `gorm:"not null;default:''"`
	DisplayName  string            `gorm:"column:display_name;not null;default:''"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Role         enums.AccountRole `gorm:"type:varchar(32);not null;default:'customer'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Account) TableName() string { return "accounts" }
