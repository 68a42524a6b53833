package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Dan9191/blog-service/internal/apperror"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository"
)

// ProfileUpdate carries the fields a user may change. Nil means unchanged.
type ProfileUpdate struct {
	Email    *string
	Password *string
}

// GetProfile returns the user together with their post count
func (s *Service) GetProfile(ctx context.Context, userID uint) (*models.User, int64, error) {
	return s.GetUser(ctx, userID)
}

// UpdateProfile applies a partial update atomically
func (s *Service) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.User, error) {
	var email, hash string
	if upd.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*upd.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		var err error
		if hash, err = hashPassword(*upd.Password); err != nil {
			return nil, err
		}
	}

	var user *models.User
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		user, err = tx.FindUserByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		if err != nil {
			return err
		}

		if upd.Email != nil {
			existing, err := tx.FindUserByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return apperror.Conflict("Email already exists")
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			user.Email = email
		}
		if upd.Password != nil {
			user.PasswordHash = hash
		}
		return tx.SaveUser(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Conflict("Email already exists")
	}
	if err != nil {
		return nil, internal(err)
	}

	s.log.Infof("Profile updated: %s", user.Username)
	if upd.Password != nil {
		s.notify("password change", func(m Mailer) error {
			return m.SendPasswordChanged(user.Email, user.Username)
		})
	}
	return user, nil
}

// DeleteAccount removes the user and every post they wrote
func (s *Service) DeleteAccount(ctx context.Context, userID uint) error {
	err := s.repo.DeleteUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("User not found")
	}
	if err != nil {
		return internal(err)
	}
	s.log.Infof("User deleted: %d", userID)
	return nil
}

// GetUser returns a user and their post count
func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, int64, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, 0, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, 0, internal(err)
	}
	count, err := s.repo.CountPostsByUser(ctx, id)
	if err != nil {
		return nil, 0, internal(err)
	}
	return user, count, nil
}

// ListUsers returns a page of users in registration order
func (s *Service) ListUsers(ctx context.Context, page, perPage int) ([]models.User, models.Pagination, error) {
	req := s.pageRequest(page, perPage)
	users, total, err := s.repo.ListUsers(ctx, req)
	if err != nil {
		return nil, models.Pagination{}, internal(err)
	}
	return users, models.NewPagination(req, total), nil
}

// ListUserPosts returns a page of one user's posts, newest first
func (s *Service) ListUserPosts(ctx context.Context, userID uint, page, perPage int) (*models.User, []models.Post, models.Pagination, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, models.Pagination{}, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, nil, models.Pagination{}, internal(err)
	}

	req := s.pageRequest(page, perPage)
	posts, total, err := s.repo.ListPosts(ctx, repository.PostFilter{UserID: userID}, req)
	if err != nil {
		return nil, nil, models.Pagination{}, internal(err)
	}
	return user, posts, models.NewPagination(req, total), nil
}
