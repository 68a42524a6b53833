package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Dan9191/blog-service/internal/apperror"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository"
	"github.com/Dan9191/blog-service/internal/utils"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxEmailLen    = 100
)

const invalidCredentials = "Invalid username or password"

var checkPassword = utils.CheckPassword

var (
	unknownUserOnce   sync.Once
	unknownUserDigest string
)

// unknownUserHash is the digest compared against when no user matches
func unknownUserHash() string {
	unknownUserOnce.Do(func() {
		unknownUserDigest, _ = utils.HashPassword("no such user")
	})
	return unknownUserDigest
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, apperror.Validation("Username, email, and password are required")
	}
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if n := utf8.RuneCountInString(username); n < minUsernameLen {
		return nil, apperror.Validation("Username must be at least 3 characters long")
	} else if n > maxUsernameLen {
		return nil, apperror.Validation("Username must be at most 50 characters long")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.FindUserByUsername(ctx, username); err == nil {
			return apperror.Conflict("Username already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if _, err := tx.FindUserByEmail(ctx, email); err == nil {
			return apperror.Conflict("Email already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Conflict("Username or email already exists")
	}
	if err != nil {
		return nil, internal(err)
	}

	s.log.Infof("User registered: %s", user.Username)
	s.notify("welcome", func(m Mailer) error {
		return m.SendWelcome(user.Email, user.Username)
	})
	return user, nil
}

// Login verifies credentials. Every failure produces the same message so
// callers cannot tell which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperror.Validation("Username and password are required")
	}

	user, err := s.repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		// Same bcrypt cost as a real check so timing does not reveal the miss
		checkPassword(unknownUserHash(), password)
		return nil, apperror.Authentication(invalidCredentials)
	}
	if err != nil {
		return nil, internal(err)
	}
	if !checkPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, apperror.Authentication(invalidCredentials)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return user, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return apperror.Validation("Password must be at least 6 characters long")
	}
	return nil
}

func validateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return apperror.Validation("Invalid email format")
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return apperror.Validation("Email must be at most 100 characters long")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", apperror.Validation("Password must be at most 72 bytes long")
	}
	if err != nil {
		return "", internal(err)
	}
	return hash, nil
}
