package mocks

import (
	"context"

	"eventify-backend/internal/model"

	"github.com/stretchr/testify/mock"
)

type RegistrationCacheMock struct {
	mock.Mock
}

func NewRegistrationCacheMock() *RegistrationCacheMock {
	return &RegistrationCacheMock{}
}

func (m *RegistrationCacheMock) Get(ctx context.Context, userID int) ([]string, bool, error) {
	args := m.Called(ctx, userID)
	var names []string
	if args.Get(0) != nil {
		names = args.Get(0).([]string)
	}
	return names, args.Bool(1), args.Error(2)
}

func (m *RegistrationCacheMock) Version(ctx context.Context, userID int) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RegistrationCacheMock) Set(ctx context.Context, userID int, version int64, names []string) (bool, error) {
	args := m.Called(ctx, userID, version, names)
	return args.Bool(0), args.Error(1)
}

func (m *RegistrationCacheMock) Invalidate(ctx context.Context, userIDs ...int) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

type IntentStoreMock struct {
	mock.Mock
}

func NewIntentStoreMock() *IntentStoreMock {
	return &IntentStoreMock{}
}

func (m *IntentStoreMock) Save(ctx context.Context, intent *model.PendingRegistration) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *IntentStoreMock) Consume(ctx context.Context, id string) (*model.PendingRegistration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingRegistration), args.Error(1)
}

type LeaseMock struct {
	mock.Mock
}

func NewLeaseMock() *LeaseMock {
	return &LeaseMock{}
}

func (m *LeaseMock) Acquire(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *LeaseMock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
