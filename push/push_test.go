package push_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teenchurch/community/mocks"
	"github.com/teenchurch/community/push"
)

func TestDispatcherDeletesDeadTokensOnly(t *testing.T) {
	sender := new(mocks.MulticasterMock)
	store := new(mocks.StoreMock)
	d := push.NewDispatcher(sender, store)

	targets := []push.Target{
		{UserID: "u2", Token: "tA"},
		{UserID: "u2", Token: "tB"},
		{UserID: "u3", Token: "tC"},
		{UserID: "u3", Token: "tD"},
	}
	n := push.Notification{Title: "New message from Alice", Body: "hi"}

	sender.On("SendMulticast", mock.Anything, []string{"tA", "tB", "tC", "tD"}, n, mock.Anything).
		Return([]push.Result{
			{Class: push.ClassUnregistered, Err: assert.AnError},
			{Class: push.ClassOK},
			{Class: push.ClassOther, Err: assert.AnError}, // transient, token stays
			{Class: push.ClassInvalidToken, Err: assert.AnError},
		}, nil).Once()

	store.On("DeleteDeviceToken", mock.Anything, "u2", "tA").Return(nil).Once()
	store.On("DeleteDeviceToken", mock.Anything, "u3", "tD").Return(nil).Once()

	succeeded, failed, err := d.Send(context.Background(), targets, n, map[string]string{"url": "/chat"})
	require.NoError(t, err)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 3, failed)

	sender.AssertExpectations(t)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "DeleteDeviceToken", mock.Anything, "u2", "tB")
	store.AssertNotCalled(t, "DeleteDeviceToken", mock.Anything, "u3", "tC")
}

func TestDispatcherNoTargets(t *testing.T) {
	sender := new(mocks.MulticasterMock)
	store := new(mocks.StoreMock)
	d := push.NewDispatcher(sender, store)

	succeeded, failed, err := d.Send(context.Background(), nil, push.Notification{}, nil)
	require.NoError(t, err)
	assert.Zero(t, succeeded)
	assert.Zero(t, failed)
	sender.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcherSendError(t *testing.T) {
	sender := new(mocks.MulticasterMock)
	store := new(mocks.StoreMock)
	d := push.NewDispatcher(sender, store)

	sender.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	_, _, err := d.Send(context.Background(), []push.Target{{UserID: "u1", Token: "t1"}}, push.Notification{}, nil)
	assert.Error(t, err)
	store.AssertNotCalled(t, "DeleteDeviceToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcherTokenCleanupFailureIsNonFatal(t *testing.T) {
	sender := new(mocks.MulticasterMock)
	store := new(mocks.StoreMock)
	d := push.NewDispatcher(sender, store)

	sender.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]push.Result{{Class: push.ClassUnregistered, Err: assert.AnError}}, nil).Once()
	store.On("DeleteDeviceToken", mock.Anything, "u1", "t1").Return(assert.AnError).Once()

	_, failed, err := d.Send(context.Background(), []push.Target{{UserID: "u1", Token: "t1"}}, push.Notification{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	store.AssertExpectations(t)
}

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "short text untouched",
			input:    "hi",
			expected: "hi",
		},
		{
			name:     "exactly at limit untouched",
			input:    strings.Repeat("a", 100),
			expected: strings.Repeat("a", 100),
		},
		{
			name:     "over limit truncated with ellipsis",
			input:    strings.Repeat("a", 101),
			expected: strings.Repeat("a", 100) + "...",
		},
		{
			name:     "multibyte runes counted as characters",
			input:    strings.Repeat("ü", 150),
			expected: strings.Repeat("ü", 100) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, push.TruncateBody(tt.input))
		})
	}
}
