// Package mocks holds the test doubles shared by the handler and
// orchestration tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/push"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Conversation(ctx context.Context, id string) (*contract.Conversation, error) {
	args := m.Called(ctx, id)
	var conv *contract.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(*contract.Conversation)
	}
	return conv, args.Error(1)
}

func (m *StoreMock) SetLastMessage(ctx context.Context, conversationID string, lm contract.LastMessage) error {
	args := m.Called(ctx, conversationID, lm)
	return args.Error(0)
}

func (m *StoreMock) FlagMessage(ctx context.Context, conversationID, messageID string, categories []string) error {
	args := m.Called(ctx, conversationID, messageID, categories)
	return args.Error(0)
}

func (m *StoreMock) DeviceTokens(ctx context.Context, userID string) ([]contract.DeviceToken, error) {
	args := m.Called(ctx, userID)
	var tokens []contract.DeviceToken
	if val := args.Get(0); val != nil {
		tokens = val.([]contract.DeviceToken)
	}
	return tokens, args.Error(1)
}

func (m *StoreMock) SaveDeviceToken(ctx context.Context, userID, id string, tok contract.DeviceToken) error {
	args := m.Called(ctx, userID, id, tok)
	return args.Error(0)
}

func (m *StoreMock) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *StoreMock) CreateFriendship(ctx context.Context, a, b contract.Participant) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

func (m *StoreMock) FindAcceptedRequest(ctx context.Context, userA, userB string) (string, error) {
	args := m.Called(ctx, userA, userB)
	return args.String(0), args.Error(1)
}

func (m *StoreMock) CommitUnfriend(ctx context.Context, unfriendedID, unfrienderID, requestID string) error {
	args := m.Called(ctx, unfriendedID, unfrienderID, requestID)
	return args.Error(0)
}

func (m *StoreMock) SetContentHTML(ctx context.Context, contentID, html string) error {
	args := m.Called(ctx, contentID, html)
	return args.Error(0)
}

func (m *StoreMock) StalePresence(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *StoreMock) DeletePresence(ctx context.Context, userIDs []string) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

type MulticasterMock struct {
	mock.Mock
}

func (m *MulticasterMock) SendMulticast(ctx context.Context, tokens []string, n push.Notification, data map[string]string) ([]push.Result, error) {
	args := m.Called(ctx, tokens, n, data)
	var results []push.Result
	if val := args.Get(0); val != nil {
		results = val.([]push.Result)
	}
	return results, args.Error(1)
}
