package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/logging"
	"portal-united/directory/internal/metrics"
	models "portal-united/directory/internal/models/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is inactive")
)

// AccountService registers and authenticates users.
type AccountService struct {
	users      *repositories.UserRepositoryGORM
	metrics    *metrics.MetricsRegistry
	bcryptCost int

	dummyOnce sync.Once
	dummy     []byte
}

func NewAccountService(users *repositories.UserRepositoryGORM, metricsReg *metrics.MetricsRegistry) *AccountService {
	return &AccountService{
		users:      users,
		metrics:    metricsReg,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// HashPassword hashes a raw password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register validates the form, including uniqueness, and creates the user with
// its person profile. Field problems come back as form errors, not as err.
func (s *AccountService) Register(ctx context.Context, form forms.RegisterForm) (*models.User, forms.Errors, error) {
	errs := form.Validate()

	if errs.Get("username") == "" {
		taken, err := s.users.UsernameTaken(ctx, form.Username)
		if err != nil {
			return nil, nil, err
		}
		if taken {
			errs.Add("username", "A user with that username already exists.")
		}
	}
	if errs.Get("email") == "" {
		taken, err := s.users.EmailTaken(ctx, form.Email)
		if err != nil {
			return nil, nil, err
		}
		if taken {
			errs.Add("email", "A user with that email already exists.")
		}
	}
	if !errs.Valid() {
		return nil, errs, nil
	}

	hash, err := HashPassword(form.Password1, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Username:     form.Username,
		Email:        strings.ToLower(form.Email),
		PasswordHash: hash,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		UserType:     constants.UserTypePerson,
		IsActive:     true,
	}
	profile := &models.PersonProfile{
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, nil, err
	}

	s.metrics.UserRegistered()
	logging.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, errs, nil
}

// Authenticate checks a username/password pair and stamps last_login.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// same cost as a real check
			_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
			s.metrics.LoginAttempt("unknown_user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.LoginAttempt("bad_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.metrics.LoginAttempt("inactive")
		return nil, ErrAccountInactive
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		logging.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}

	s.metrics.LoginAttempt("success")
	logging.Info("User logged in", "user_id", user.ID)
	return user, nil
}

func (s *AccountService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-password"), s.bcryptCost)
	})
	return s.dummy
}

// User loads an account by id with its person profile.
func (s *AccountService) User(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
