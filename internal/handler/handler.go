package handler

import (
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/blog-service/internal/config"
	"github.com/Dan9191/blog-service/internal/service"
	"github.com/Dan9191/blog-service/internal/session"
)

// Version is reported by the index and health endpoints
const Version = "2.0.0"

type Handler struct {
	svc      *service.Service
	sessions *session.Manager
	cfg      *config.Config
	log      *logrus.Logger
}

func NewHandler(svc *service.Service, sessions *session.Manager, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, cfg: cfg, log: log}
}
