package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/outbox"
)

type mockConversation struct {
	mock.Mock
}

func (m *mockConversation) Load(ctx context.Context) ([]availability.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]availability.Message), args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, messages []availability.Message) availability.Resolution {
	args := m.Called(ctx, messages)
	return args.Get(0).(availability.Resolution)
}

type mockMeetingStore struct {
	mock.Mock
}

func (m *mockMeetingStore) Save(ctx context.Context, meeting *domain.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Append(ctx context.Context, msgs ...*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type ctxKey string
