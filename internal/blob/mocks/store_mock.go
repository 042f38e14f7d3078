package mocks

import (
	"context"
	"mime/multipart"

	"github.com/stretchr/testify/mock"
)

type StoreMock struct {
	mock.Mock
}

func NewStoreMock() *StoreMock {
	return &StoreMock{}
}

func (m *StoreMock) Save(ctx context.Context, field string, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, field, file)
	return args.String(0), args.Error(1)
}

func (m *StoreMock) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}
