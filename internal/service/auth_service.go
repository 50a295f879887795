package service

import (
	"crypto/subtle"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	"github.com/yourusername/recaatinga-api/internal/domain/repository"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
	"github.com/yourusername/recaatinga-api/pkg/auth"
)

const (
	minNameLength     = 3
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// mxLookupFunc resolves MX records for a domain. Swapped out in tests.
type mxLookupFunc func(domain string) ([]*net.MX, error)

// AuthService implements registration, login and admin elevation.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	adminToken string
	lookupMX   mxLookupFunc
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, adminToken string) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		adminToken: adminToken,
		lookupMX:   net.LookupMX,
	}, nil
}

// Register validates the input, verifies the email domain accepts mail, and
// creates the account. Returns the user and a signed token.
func (s *AuthService) Register(name, email, password string) (*entity.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if utf8.RuneCountInString(name) < minNameLength {
		return nil, "", fmt.Errorf("%w: name must have at least %d characters", apperrors.ErrValidation, minNameLength)
	}
	if !emailPattern.MatchString(email) {
		return nil, "", fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must have at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	if records, err := s.lookupMX(domain); err != nil || len(records) == 0 {
		return nil, "", fmt.Errorf("%w: email domain does not accept mail", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, "", fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		Password:     password, // hashed by the BeforeSave hook
		Role:         entity.RoleUser,
		Achievements: entity.StringArray{},
		Active:       true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns the user and a signed token.
// Unknown emails, wrong passwords and deactivated accounts all surface the
// same ErrUnauthorized so the response does not leak which one it was.
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil || !user.Active {
		return nil, "", apperrors.ErrUnauthorized
	}
	if !user.CheckPassword(password) {
		return nil, "", apperrors.ErrUnauthorized
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ElevateToAdmin promotes the user to the admin role when the out-of-band
// token matches the configured one.
func (s *AuthService) ElevateToAdmin(userID uint, token string) error {
	if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		return apperrors.ErrForbidden
	}
	return s.userRepo.SetRole(userID, entity.RoleAdmin)
}

// TokenLifetime exposes the token lifetime for cookie max-age.
func (s *AuthService) TokenLifetime() time.Duration {
	return s.jwtService.TokenLifetime()
}
