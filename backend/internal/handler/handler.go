package handler

import (
	"context"

	"github.com/Serubin/AJD-Site/backend/internal/service"
	"github.com/Serubin/AJD-Site/shared/config"
)

// HealthChecker reports whether the record store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	users    service.UserService
	links    service.LinkService
	content  service.ContentService
	district service.DistrictService
	health   HealthChecker
	cfg      *config.Config
}

func New(
	users service.UserService,
	links service.LinkService,
	content service.ContentService,
	district service.DistrictService,
	health HealthChecker,
	cfg *config.Config,
) *Handler {
	return &Handler{
		users:    users,
		links:    links,
		content:  content,
		district: district,
		health:   health,
		cfg:      cfg,
	}
}
