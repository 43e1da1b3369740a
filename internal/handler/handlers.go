package handler

import (
	"realty_messaging/internal/config"
	"realty_messaging/internal/realtime"
	"realty_messaging/internal/service"
	"realty_messaging/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Property     *PropertyHandler
	Chat         *ChatHandler
	Lead         *LeadHandler
	Notification *NotificationHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *realtime.Hub, checks map[string]HealthCheck, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(checks),
		Auth:         NewAuthHandler(services.Auth, log),
		User:         NewUserHandler(services.User, log),
		Property:     NewPropertyHandler(services.Property, log),
		Chat:         NewChatHandler(services.Chat, log),
		Lead:         NewLeadHandler(services.Lead, services.Chat, log),
		Notification: NewNotificationHandler(services.Notification, log),
		WebSocket:    NewWebSocketHandler(hub, cfg.Realtime.ClientBuffer, log),
	}
}
