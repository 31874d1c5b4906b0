// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents an account a creator may optionally attach wishlists to.
// Password is nil for OAuth-provisioned accounts.
type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Email                string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password             *string    `gorm:"size:255" json:"-"`
	AvatarURL            *string    `gorm:"size:2048" json:"avatar_url"`
	PasswordResetToken   *string    `gorm:"index;size:255" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	u.Email = strings.ToLower(u.Email)
	return nil
}
