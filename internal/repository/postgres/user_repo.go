package postgres

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new user repository.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. A duplicate email maps to ErrConflict.
func (r *UserRepo) Create(user *entity.User) error {
	err := r.db.Create(user).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID returns a user by ID.
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns a user by email.
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update saves the full user record.
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// IncrementTotalPoints atomically adds points to the user's lifetime total.
// A SQL-level increment keeps concurrent completions commutative.
func (r *UserRepo) IncrementTotalPoints(userID uint, points int) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", points)).
		Error
}

// SetRole updates the user's role.
func (r *UserRepo) SetRole(userID uint, role string) error {
	return r.db.Model(&entity.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now()}).Error
}

// SetActive enables or disables the account.
func (r *UserRepo) SetActive(userID uint, active bool) error {
	return r.db.Model(&entity.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"active": active, "updated_at": time.Now()}).Error
}

// Delete removes the user record.
func (r *UserRepo) Delete(userID uint) error {
	return r.db.Delete(&entity.User{}, userID).Error
}

// List returns users with pagination, newest first.
func (r *UserRepo) List(limit, offset int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&users).Error
	return users, err
}

// Count returns the total number of users.
func (r *UserRepo) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entity.User{}).Count(&total).Error
	return total, err
}
