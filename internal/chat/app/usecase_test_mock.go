package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockSessionRepository Mock SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

// IsParticipant moke check member
func (m *MockSessionRepository) IsParticipant(ctx context.Context, userID, roomID string) (bool, error) {
	args := m.Called(ctx, userID, roomID)
	return args.Bool(0), args.Error(1)
}

// ListParticipants moke list room members
func (m *MockSessionRepository) ListParticipants(ctx context.Context, roomID string) ([]string, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// TouchUpdatedAt moke touch room updated_at
func (m *MockSessionRepository) TouchUpdatedAt(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Create moke insert msg
func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID moke find msg by id
func (m *MockMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdatePreview moke update msg preview
func (m *MockMessageRepository) UpdatePreview(ctx context.Context, messageID string, preview *domain.LinkPreview) (*domain.Message, error) {
	args := m.Called(ctx, messageID, preview)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete moke delete msg
func (m *MockMessageRepository) Delete(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

// AddDeliveredTo moke add delivered_to
func (m *MockMessageRepository) AddDeliveredTo(ctx context.Context, messageIDs []string, userID string) ([]string, error) {
	args := m.Called(ctx, messageIDs, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddReadBy moke add read_by
func (m *MockMessageRepository) AddReadBy(ctx context.Context, messageIDs []string, userID string) ([]string, error) {
	args := m.Called(ctx, messageIDs, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockReactionRepository Mock ReactionRepository
type MockReactionRepository struct {
	mock.Mock
}

// Upsert moke reaction upsert
func (m *MockReactionRepository) Upsert(ctx context.Context, userID, messageID, emoji string) (*domain.ReactionChange, error) {
	args := m.Called(ctx, userID, messageID, emoji)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ReactionChange), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLinkPreviewRepository Mock LinkPreviewRepository
type MockLinkPreviewRepository struct {
	mock.Mock
}

// Fetch moke fetch link preview
func (m *MockLinkPreviewRepository) Fetch(ctx context.Context, rawURL string) (*domain.LinkPreview, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.LinkPreview), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRedisPubSub Mock RedisPubSub
type MockRedisPubSub struct {
	mock.Mock
}

// Publish moke publisher
func (m *MockRedisPubSub) Publish(channel string, evt domain.ServerEvent) error {
	args := m.Called(channel, evt)
	return args.Error(0)
}

// Subscribe moke subscriber
func (m *MockRedisPubSub) Subscribe(ctx context.Context, channel string, handler func(evt domain.ServerEvent)) error {
	args := m.Called(channel, handler)
	return args.Error(0)
}

// MockUserRepository Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

// FindByID moke find user by id
func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}
