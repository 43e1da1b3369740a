package service

import (
	"realty_messaging/internal/config"
	"realty_messaging/internal/realtime"
	"realty_messaging/internal/repository"
	"realty_messaging/pkg/logger"
)

type Services struct {
	Auth         AuthService
	User         UserService
	Property     PropertyService
	Chat         ChatService
	Lead         LeadService
	Notification NotificationService
	RateLimit    RateLimitService
	Audit        AuditService
}

// NewServices wires the services. publisher is the realtime fan-out every
// service that emits live events shares.
func NewServices(repos *repository.Repositories, publisher realtime.Publisher, cfg *config.Config, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)

	return &Services{
		Auth:         NewAuthService(repos.User, audit, cfg.JWT, log),
		User:         NewUserService(repos.User, log),
		Property:     NewPropertyService(repos.Property, audit, log),
		Chat:         NewChatService(repos.Message, repos.Property, audit, publisher, log),
		Lead:         NewLeadService(repos.Message, repos.User, repos.Property, log),
		Notification: NewNotificationService(repos.Notification, repos.Property, audit, publisher, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
		Audit:        audit,
	}
}
