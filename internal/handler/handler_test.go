package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/middleware"
	"realty_messaging/internal/realtime"
	"realty_messaging/internal/service"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChat struct {
	sent    service.SendMessageInput
	query   service.MessageQuery
	sendErr error
	deleted int64
	delArgs [3]uuid.UUID
}

func (s *stubChat) SendMessage(_ context.Context, input service.SendMessageInput) (*domain.Message, error) {
	s.sent = input
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &domain.Message{ID: uuid.New(), SenderID: input.SenderID, PropertyID: input.PropertyID, Text: input.Text}, nil
}

func (s *stubChat) GetMessages(_ context.Context, query service.MessageQuery) ([]*domain.Message, error) {
	s.query = query
	return []*domain.Message{{ID: uuid.New(), Text: "Is this available?"}}, nil
}

func (s *stubChat) DeleteLead(_ context.Context, propertyID, counterpartID, callerID uuid.UUID) (int64, error) {
	s.delArgs = [3]uuid.UUID{propertyID, counterpartID, callerID}
	return s.deleted, nil
}

type stubLeads struct {
	leads []*domain.Lead
	err   error
}

func (s *stubLeads) GetLeadsFor(context.Context, uuid.UUID) ([]*domain.Lead, error) {
	return s.leads, s.err
}

type stubNotifications struct {
	service.NotificationService
	markErr error
}

func (s *stubNotifications) NotifyInquiry(_ context.Context, propertyID, senderID uuid.UUID, message string) (*domain.Notification, error) {
	return &domain.Notification{ID: uuid.New(), PropertyID: propertyID, SenderID: senderID, Message: message}, nil
}

func (s *stubNotifications) GetNotificationsFor(context.Context, uuid.UUID) ([]*domain.Notification, error) {
	return []*domain.Notification{}, nil
}

func (s *stubNotifications) MarkRead(_ context.Context, id, caller uuid.UUID) (*domain.Notification, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	return &domain.Notification{ID: id, RecipientID: caller, Read: true}, nil
}

func newTestRouter(user *domain.User) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.Nop()))
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUser, user)
		}
		c.Next()
	})
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendMessageHandler(t *testing.T) {
	caller := &domain.User{ID: uuid.New(), Role: domain.RoleBuyer}
	chat := &stubChat{}
	h := NewChatHandler(chat, logger.Nop())
	r := newTestRouter(caller)
	r.POST("/chat/:propertyId", h.SendMessage)
	propertyID := uuid.New()

	w := do(r, http.MethodPost, "/chat/"+propertyID.String(), gin.H{"text": "Is this available?"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, caller.ID, chat.sent.SenderID)
	assert.Equal(t, propertyID, chat.sent.PropertyID)
	assert.Nil(t, chat.sent.ReceiverID)

	w = do(r, http.MethodPost, "/chat/"+propertyID.String(), gin.H{"sender_id": uuid.New(), "text": "spoofed"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/chat/"+propertyID.String(), gin.H{"sender_id": caller.ID, "text": "own id is fine"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/chat/not-a-uuid", gin.H{"text": "hello"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageHandlerServiceErrors(t *testing.T) {
	caller := &domain.User{ID: uuid.New()}
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{err: apperrors.ErrEmptyMessage, status: http.StatusBadRequest, body: `{"error":"message text is required"}`},
		{err: apperrors.ErrPropertyNotFound, status: http.StatusNotFound, body: `{"error":"property not found"}`},
		{err: apperrors.ErrReceiverRequired, status: http.StatusBadRequest},
		{err: errors.New("conn refused"), status: http.StatusInternalServerError, body: `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewChatHandler(&stubChat{sendErr: tt.err}, logger.Nop())
			r := newTestRouter(caller)
			r.POST("/chat/:propertyId", h.SendMessage)

			w := do(r, http.MethodPost, "/chat/"+uuid.New().String(), gin.H{"text": "x"})
			require.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				require.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestGetMessagesHandler(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	chat := &stubChat{}
	h := NewChatHandler(chat, logger.Nop())
	r := newTestRouter(admin)
	r.GET("/chat/:propertyId", h.GetMessages)
	with := uuid.New()

	w := do(r, http.MethodGet, "/chat/"+uuid.New().String()+"?with="+with.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, chat.query.CallerIsAdmin)
	require.NotNil(t, chat.query.With)
	require.Equal(t, with, *chat.query.With)

	var body struct {
		Messages []domain.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 1)

	w = do(r, http.MethodGet, "/chat/"+uuid.New().String()+"?with=bogus", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnauthenticated(t *testing.T) {
	h := NewChatHandler(&stubChat{}, logger.Nop())
	r := newTestRouter(nil)
	r.GET("/chat/:propertyId", h.GetMessages)

	w := do(r, http.MethodGet, "/chat/"+uuid.New().String(), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLeadHandlers(t *testing.T) {
	caller := &domain.User{ID: uuid.New(), Role: domain.RoleSeller}
	chat := &stubChat{deleted: 3}
	leads := &stubLeads{leads: []*domain.Lead{{CounterpartyUserID: uuid.New(), LastMessageText: "Still interested"}}}
	h := NewLeadHandler(leads, chat, logger.Nop())
	r := newTestRouter(caller)
	r.GET("/myleads/:userId", h.GetLeads)
	r.DELETE("/myleads/:propertyId/:userId", h.DeleteLead)

	w := do(r, http.MethodGet, "/myleads/"+caller.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []domain.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Still interested", got[0].LastMessageText)

	w = do(r, http.MethodGet, "/myleads/"+uuid.New().String(), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	propertyID, counterpart := uuid.New(), uuid.New()
	w = do(r, http.MethodDelete, "/myleads/"+propertyID.String()+"/"+counterpart.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Lead deleted","deleted":3}`, w.Body.String())
	require.Equal(t, [3]uuid.UUID{propertyID, counterpart, caller.ID}, chat.delArgs)
}

func TestLeadHandlerAdminReadsAnyUser(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	h := NewLeadHandler(&stubLeads{leads: []*domain.Lead{}}, &stubChat{}, logger.Nop())
	r := newTestRouter(admin)
	r.GET("/myleads/:userId", h.GetLeads)

	w := do(r, http.MethodGet, "/myleads/"+uuid.New().String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestNotificationHandlers(t *testing.T) {
	caller := &domain.User{ID: uuid.New()}
	stub := &stubNotifications{}
	h := NewNotificationHandler(stub, logger.Nop())
	r := newTestRouter(caller)
	r.GET("/notifications", h.List)
	r.POST("/notifications/inquiry/:propertyId", h.CreateInquiry)
	r.PATCH("/notifications/:id/read", h.MarkRead)

	w := do(r, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodPost, "/notifications/inquiry/"+uuid.New().String(), gin.H{"message": "Viewing on Saturday?"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "Viewing on Saturday?")

	w = do(r, http.MethodPatch, "/notifications/"+uuid.New().String()+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"read":true`)

	stub.markErr = apperrors.ErrForbidden
	w = do(r, http.MethodPatch, "/notifications/"+uuid.New().String()+"/read", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthHandler(t *testing.T) {
	healthy := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	r := gin.New()
	r.GET("/health", healthy.Check)
	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	degraded := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	r = gin.New()
	r.GET("/health", degraded.Check)
	w = do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"redis":"dial tcp: refused"`)
}

func TestWebSocketConnect(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	hub := realtime.NewHub(logger.Nop())
	t.Cleanup(hub.Shutdown)

	h := NewWebSocketHandler(hub, 8, logger.Nop())
	r := newTestRouter(user)
	r.GET("/ws", h.Connect)
	srv := httptest.NewServer(middleware.CORS([]string{"*"})(r))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.RoomSize(realtime.UserRoom(user.ID)) == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(realtime.UserRoom(user.ID), realtime.EventNewNotification, gin.H{"message": "New inquiry"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env realtime.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, realtime.EventNewNotification, env.Event)
}

func TestWebSocketOrigin(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	hub := realtime.NewHub(logger.Nop())
	t.Cleanup(hub.Shutdown)

	h := NewWebSocketHandler(hub, 8, logger.Nop())
	r := newTestRouter(user)
	r.GET("/ws", h.Connect)
	srv := httptest.NewServer(middleware.CORS([]string{"https://app.example"})(r))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	dial := func(origin string) (*websocket.Conn, *http.Response, error) {
		header := http.Header{}
		if origin != "" {
			header.Set("Origin", origin)
		}
		return websocket.DefaultDialer.Dial(wsURL, header)
	}

	for _, origin := range []string{"", "https://app.example", srv.URL} {
		conn, _, err := dial(origin)
		require.NoError(t, err, "origin %q", origin)
		_ = conn.Close()
	}

	_, resp, err := dial("https://evil.example")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
