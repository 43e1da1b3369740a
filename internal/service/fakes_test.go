package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"realty_messaging/internal/domain"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

type fakeMessages struct {
	mu        sync.Mutex
	items     []*domain.Message
	createErr error
	listErr   error
}

func (f *fakeMessages) Create(_ context.Context, m *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *m
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeMessages) filter(keep func(*domain.Message) bool) []*domain.Message {
	out := make([]*domain.Message, 0)
	for _, m := range f.items {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeMessages) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := f.filter(func(m *domain.Message) bool { return m.PropertyID == propertyID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMessages) ListThread(_ context.Context, propertyID, a, b uuid.UUID) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := f.filter(func(m *domain.Message) bool { return m.PropertyID == propertyID && inThread(m, a, b) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMessages) ListByParticipant(_ context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := f.filter(func(m *domain.Message) bool { return m.Involves(userID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMessages) DeleteThread(_ context.Context, propertyID, a, b uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	var deleted int64
	for _, m := range f.items {
		if m.PropertyID == propertyID && inThread(m, a, b) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.items = kept
	return deleted, nil
}

func inThread(m *domain.Message, a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

type fakeProperties struct {
	items  map[uuid.UUID]*domain.Property
	getErr error
	gets   int
}

func newFakeProperties(props ...*domain.Property) *fakeProperties {
	f := &fakeProperties{items: make(map[uuid.UUID]*domain.Property)}
	for _, p := range props {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProperties) Create(_ context.Context, p *domain.Property) error {
	f.items[p.ID] = p
	return nil
}

func (f *fakeProperties) GetByID(_ context.Context, id uuid.UUID) (*domain.Property, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrPropertyNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeUsers struct {
	items   map[uuid.UUID]*domain.User
	getErr  error
	gets    int
	created []*domain.User
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{items: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		f.items[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	for _, existing := range f.items {
		if existing.Email == u.Email {
			return apperrors.ErrUserAlreadyExists
		}
	}
	cp := *u
	f.items[u.ID] = &cp
	f.created = append(f.created, &cp)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

type fakeNotifications struct {
	items []*domain.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n *domain.Notification) error {
	cp := *n
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeNotifications) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	for _, n := range f.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotificationNotFound
}

func (f *fakeNotifications) ListByRecipient(_ context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range f.items {
		if n.RecipientID == recipientID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id uuid.UUID) error {
	for _, n := range f.items {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

type fakeAudit struct {
	events []string
	err    error
}

func (f *fakeAudit) LogEvent(_ context.Context, _ *uuid.UUID, _ *uuid.UUID, eventType string, _ map[string]interface{}) error {
	f.events = append(f.events, eventType)
	return f.err
}

type published struct {
	room    string
	event   string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(room, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{room: room, event: event, payload: payload})
}

// tickingClock returns strictly increasing times one second apart.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type chatFixture struct {
	messages   *fakeMessages
	properties *fakeProperties
	users      *fakeUsers
	audit      *fakeAudit
	publisher  *recordingPublisher
	chat       *chatService
	leads      LeadService

	buyer, owner, otherBuyer *domain.User
	property                 *domain.Property
}

func newChatFixture() *chatFixture {
	buyer := &domain.User{ID: uuid.New(), FirstName: "Bea", LastName: "Buyer", Role: domain.RoleBuyer}
	owner := &domain.User{ID: uuid.New(), FirstName: "Sam", LastName: "Seller", Role: domain.RoleSeller}
	otherBuyer := &domain.User{ID: uuid.New(), FirstName: "Omar", LastName: "Other", Role: domain.RoleBuyer}
	property := &domain.Property{ID: uuid.New(), OwnerID: owner.ID, Title: "Sunny loft"}

	f := &chatFixture{
		messages:   &fakeMessages{},
		properties: newFakeProperties(property),
		users:      newFakeUsers(buyer, owner, otherBuyer),
		audit:      &fakeAudit{},
		publisher:  &recordingPublisher{},
		buyer:      buyer,
		owner:      owner,
		otherBuyer: otherBuyer,
		property:   property,
	}
	f.chat = NewChatService(f.messages, f.properties, f.audit, f.publisher, logger.Nop()).(*chatService)
	f.chat.now = tickingClock()
	f.leads = NewLeadService(f.messages, f.users, f.properties, logger.Nop())
	return f
}

func (f *chatFixture) send(senderID uuid.UUID, receiverID *uuid.UUID, text string) (*domain.Message, error) {
	return f.chat.SendMessage(context.Background(), SendMessageInput{
		PropertyID: f.property.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	})
}
