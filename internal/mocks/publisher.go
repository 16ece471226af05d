package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// BroadcasterMock records fan-out calls from the messaging services.
type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) PublishToUser(userID int, event any) {
	m.Called(userID, event)
}

func (m *BroadcasterMock) PublishToGroup(groupID int, event any, excludeConnID string) {
	m.Called(groupID, event, excludeConnID)
}
