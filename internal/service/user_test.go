package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"realty_messaging/internal/domain"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

func TestGetMe(t *testing.T) {
	u := &domain.User{ID: uuid.New(), FirstName: "Bea", PasswordHash: "$2a$hash", IsActive: true}
	svc := NewUserService(newFakeUsers(u), logger.Nop())

	got, err := svc.GetMe(context.Background(), u.ID)
	require.NoError(t, err)
	require.Empty(t, got.PasswordHash)
	require.Equal(t, "Bea", got.FirstName)

	_, err = svc.GetMe(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
