package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
	ProviderName Name
}

// NewMockClient returns a mock reporting the given name.
func NewMockClient(name Name) *MockClient {
	return &MockClient{ProviderName: name}
}

func (m *MockClient) Name() Name {
	return m.ProviderName
}

func (m *MockClient) Ask(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}
