package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type TTLStore struct {
	mock.Mock
}

// NewTTLStore registers AssertExpectations on test cleanup.
func NewTTLStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *TTLStore {
	m := &TTLStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TTLStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *TTLStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *TTLStore) Take(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *TTLStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
