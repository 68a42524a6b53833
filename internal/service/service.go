package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/blog-service/internal/apperror"
	"github.com/Dan9191/blog-service/internal/config"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository"
)

// Mailer delivers account notifications. Delivery happens off the request
// path, so failures are only logged.
type Mailer interface {
	SendWelcome(to, username string) error
	SendPasswordChanged(to, username string) error
}

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	mailer Mailer
}

// NewService initializes a new service. mailer may be nil.
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, mailer Mailer) *Service {
	return &Service{repo: repo, log: log, config: cfg, mailer: mailer}
}

func (s *Service) pageRequest(page, perPage int) models.PageRequest {
	return models.NewPageRequest(page, perPage, s.config.DefaultPerPage, s.config.MaxPerPage)
}

// internal passes classified errors through and wraps everything else
func internal(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}

func (s *Service) notify(kind string, send func(Mailer) error) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := send(s.mailer); err != nil {
			s.log.WithError(err).Warnf("Failed to send %s email", kind)
		}
	}()
}
