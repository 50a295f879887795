package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered player. TotalPoints is the lifetime aggregate
// kept equal to the sum of TotalScore across the user's progress records via
// incremental atomic updates.
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Email        string      `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password     string      `gorm:"size:100;not null" json:"-"`
	Role         string      `gorm:"size:20;not null;default:'user'" json:"role"`
	TotalPoints  int64       `gorm:"not null;default:0" json:"totalPoints"`
	Achievements StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"achievements"`
	LastLogin    *time.Time  `gorm:"type:timestamp" json:"lastLogin,omitempty"`
	Active       bool        `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// TableName sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

// BeforeSave hashes the password unless it already is a bcrypt hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] password hashing failed for email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword reports whether the candidate password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
