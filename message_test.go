package community

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/mocks"
	"github.com/teenchurch/community/moderate"
	"github.com/teenchurch/community/push"
	"github.com/teenchurch/community/trigger"
)

type moderatorStub struct {
	verdict moderate.Verdict
	err     error
}

func (m *moderatorStub) Check(_ context.Context, _ string) (moderate.Verdict, error) {
	return m.verdict, m.err
}

func newTestHandlers(s *mocks.StoreMock, sender *mocks.MulticasterMock, moderator ModerationChecker) *Handlers {
	return NewHandlers(s, push.NewDispatcher(sender, s), moderator)
}

func messageEvent(after trigger.Snapshot) trigger.Event {
	return trigger.Event{
		Kind:   trigger.KindCreate,
		Params: map[string]string{"conversationId": "u1_u2", "messageId": "m1"},
		After:  after,
	}
}

func TestMessageCreatedHappyPathWithTokenCleanup(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	h := newTestHandlers(s, sender, nil)

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := messageEvent(trigger.Snapshot{
		"text":        "hi",
		"userId":      "u1",
		"displayName": "Alice",
		"createdAt":   createdAt,
	})

	s.On("SetLastMessage", mock.Anything, "u1_u2", contract.LastMessage{
		Text:      "hi",
		SenderID:  "u1",
		CreatedAt: createdAt,
	}).Return(nil).Once()
	s.On("Conversation", mock.Anything, "u1_u2").
		Return(&contract.Conversation{Participants: []string{"u1", "u2"}}, nil).Once()
	s.On("DeviceTokens", mock.Anything, "u2").
		Return([]contract.DeviceToken{{Token: "tA"}, {Token: "tB"}}, nil).Once()

	expectedNotification := push.Notification{
		Title: "New message from Alice",
		Body:  "hi",
		Icon:  "/chat-icon.png",
	}
	expectedData := map[string]string{
		"url":            "/chat?conversationId=u1_u2",
		"conversationId": "u1_u2",
		"senderId":       "u1",
	}
	sender.On("SendMulticast", mock.Anything, []string{"tA", "tB"}, expectedNotification, expectedData).
		Return([]push.Result{
			{Class: push.ClassUnregistered, Err: assert.AnError},
			{Class: push.ClassOK},
		}, nil).Once()
	s.On("DeleteDeviceToken", mock.Anything, "u2", "tA").Return(nil).Once()

	rep := h.MessageCreated(context.Background(), ev)

	step, ok := rep.Step(stepSend)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusOK, step.Status)
	assert.False(t, rep.Fatal())

	s.AssertExpectations(t)
	sender.AssertExpectations(t)
	s.AssertNotCalled(t, "DeleteDeviceToken", mock.Anything, "u2", "tB")
}

func TestMessageCreatedInvalidDataIsNoOp(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		after trigger.Snapshot
	}{
		{
			name:  "missing text",
			after: trigger.Snapshot{"userId": "u1", "createdAt": createdAt},
		},
		{
			name:  "missing sender id",
			after: trigger.Snapshot{"text": "hi", "createdAt": createdAt},
		},
		{
			name:  "missing created at",
			after: trigger.Snapshot{"text": "hi", "userId": "u1"},
		},
		{
			name:  "text not a string",
			after: trigger.Snapshot{"text": 7, "userId": "u1", "createdAt": createdAt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(mocks.StoreMock)
			sender := new(mocks.MulticasterMock)
			h := newTestHandlers(s, sender, nil)

			rep := h.MessageCreated(context.Background(), messageEvent(tt.after))

			assert.True(t, rep.Fatal())
			s.AssertNotCalled(t, "SetLastMessage", mock.Anything, mock.Anything, mock.Anything)
			sender.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMessageCreatedConversationUpdateFailureDoesNotBlockSend(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	h := newTestHandlers(s, sender, nil)

	ev := messageEvent(trigger.Snapshot{
		"text":      "hi",
		"userId":    "u1",
		"createdAt": time.Now(),
	})

	s.On("SetLastMessage", mock.Anything, "u1_u2", mock.Anything).Return(assert.AnError).Once()
	s.On("Conversation", mock.Anything, "u1_u2").
		Return(&contract.Conversation{Participants: []string{"u1", "u2"}}, nil).Once()
	s.On("DeviceTokens", mock.Anything, "u2").
		Return([]contract.DeviceToken{{Token: "t1"}}, nil).Once()
	sender.On("SendMulticast", mock.Anything, []string{"t1"}, mock.Anything, mock.Anything).
		Return([]push.Result{{Class: push.ClassOK}}, nil).Once()

	rep := h.MessageCreated(context.Background(), ev)

	update, ok := rep.Step(stepUpdateConversation)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusFailed, update.Status)

	send, ok := rep.Step(stepSend)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusOK, send.Status)

	sender.AssertExpectations(t)
}

func TestMessageCreatedMissingConversationAborts(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	h := newTestHandlers(s, sender, nil)

	ev := messageEvent(trigger.Snapshot{"text": "hi", "userId": "u1", "createdAt": time.Now()})

	s.On("SetLastMessage", mock.Anything, "u1_u2", mock.Anything).Return(assert.AnError).Once()
	s.On("Conversation", mock.Anything, "u1_u2").Return(nil, assert.AnError).Once()

	rep := h.MessageCreated(context.Background(), ev)

	assert.True(t, rep.Fatal())
	sender.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageCreatedNoRecipients(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	h := newTestHandlers(s, sender, nil)

	ev := messageEvent(trigger.Snapshot{"text": "hi", "userId": "u1", "createdAt": time.Now()})

	s.On("SetLastMessage", mock.Anything, "u1_u2", mock.Anything).Return(nil).Once()
	s.On("Conversation", mock.Anything, "u1_u2").
		Return(&contract.Conversation{Participants: []string{"u1"}}, nil).Once()

	rep := h.MessageCreated(context.Background(), ev)

	send, ok := rep.Step(stepSend)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusSkipped, send.Status)
	s.AssertNotCalled(t, "DeviceTokens", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageCreatedNoTokens(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	h := newTestHandlers(s, sender, nil)

	ev := messageEvent(trigger.Snapshot{"text": "hi", "userId": "u1", "createdAt": time.Now()})

	s.On("SetLastMessage", mock.Anything, "u1_u2", mock.Anything).Return(nil).Once()
	s.On("Conversation", mock.Anything, "u1_u2").
		Return(&contract.Conversation{Participants: []string{"u1", "u2"}}, nil).Once()
	s.On("DeviceTokens", mock.Anything, "u2").Return(nil, nil).Once()

	rep := h.MessageCreated(context.Background(), ev)

	send, ok := rep.Step(stepSend)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusSkipped, send.Status)
	sender.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageCreatedFallbackSenderNameAndTruncation(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	h := newTestHandlers(s, sender, nil)

	longText := ""
	for i := 0; i < 120; i++ {
		longText += "x"
	}
	ev := messageEvent(trigger.Snapshot{"text": longText, "userId": "u1", "createdAt": time.Now()})

	s.On("SetLastMessage", mock.Anything, "u1_u2", mock.Anything).Return(nil).Once()
	s.On("Conversation", mock.Anything, "u1_u2").
		Return(&contract.Conversation{Participants: []string{"u1", "u2"}}, nil).Once()
	s.On("DeviceTokens", mock.Anything, "u2").
		Return([]contract.DeviceToken{{Token: "t1"}}, nil).Once()

	sender.On("SendMulticast", mock.Anything, mock.Anything, mock.MatchedBy(func(n push.Notification) bool {
		return n.Title == "New message from Someone" && n.Body == longText[:100]+"..."
	}), mock.Anything).Return([]push.Result{{Class: push.ClassOK}}, nil).Once()

	h.MessageCreated(context.Background(), ev)
	sender.AssertExpectations(t)
}

func TestMessageCreatedModerationFlagsMessage(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	moderator := &moderatorStub{verdict: moderate.Verdict{Flagged: true, Categories: []string{"harassment"}}}
	h := newTestHandlers(s, sender, moderator)

	ev := messageEvent(trigger.Snapshot{"text": "hi", "userId": "u1", "createdAt": time.Now()})

	s.On("FlagMessage", mock.Anything, "u1_u2", "m1", []string{"harassment"}).Return(nil).Once()
	s.On("SetLastMessage", mock.Anything, "u1_u2", mock.Anything).Return(nil).Once()
	s.On("Conversation", mock.Anything, "u1_u2").
		Return(&contract.Conversation{Participants: []string{"u1", "u2"}}, nil).Once()
	s.On("DeviceTokens", mock.Anything, "u2").
		Return([]contract.DeviceToken{{Token: "t1"}}, nil).Once()
	sender.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]push.Result{{Class: push.ClassOK}}, nil).Once()

	rep := h.MessageCreated(context.Background(), ev)

	// a flagged message is still delivered, flagging is review-only
	send, ok := rep.Step(stepSend)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusOK, send.Status)
	s.AssertExpectations(t)
}

func TestMessageCreatedModerationErrorIsNonFatal(t *testing.T) {
	s := new(mocks.StoreMock)
	sender := new(mocks.MulticasterMock)
	moderator := &moderatorStub{err: assert.AnError}
	h := newTestHandlers(s, sender, moderator)

	ev := messageEvent(trigger.Snapshot{"text": "hi", "userId": "u1", "createdAt": time.Now()})

	s.On("SetLastMessage", mock.Anything, "u1_u2", mock.Anything).Return(nil).Once()
	s.On("Conversation", mock.Anything, "u1_u2").
		Return(&contract.Conversation{Participants: []string{"u1", "u2"}}, nil).Once()
	s.On("DeviceTokens", mock.Anything, "u2").
		Return([]contract.DeviceToken{{Token: "t1"}}, nil).Once()
	sender.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]push.Result{{Class: push.ClassOK}}, nil).Once()

	rep := h.MessageCreated(context.Background(), ev)

	moderation, ok := rep.Step(stepModerate)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusFailed, moderation.Status)
	assert.False(t, rep.Fatal())
	s.AssertNotCalled(t, "FlagMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
