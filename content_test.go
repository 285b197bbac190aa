package community

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teenchurch/community/mocks"
	"github.com/teenchurch/community/trigger"
)

func TestContentCreatedRendersBody(t *testing.T) {
	s := new(mocks.StoreMock)
	h := newTestHandlers(s, new(mocks.MulticasterMock), nil)

	ev := trigger.Event{
		Kind:   trigger.KindCreate,
		Params: map[string]string{"contentId": "c1"},
		After: trigger.Snapshot{
			"title":       "Weekly Devotional",
			"description": "Be *kind* to one another.\n\n<script>alert(1)</script>",
		},
	}

	s.On("SetContentHTML", mock.Anything, "c1", mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, "<em>kind</em>") && !strings.Contains(html, "<script>")
	})).Return(nil).Once()

	rep := h.ContentCreated(context.Background(), ev)

	commit, ok := rep.Step(stepCommit)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusOK, commit.Status)
	s.AssertExpectations(t)
}

func TestContentCreatedIncompleteDocument(t *testing.T) {
	tests := []struct {
		name  string
		after trigger.Snapshot
	}{
		{name: "missing title", after: trigger.Snapshot{"description": "text"}},
		{name: "missing description", after: trigger.Snapshot{"title": "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(mocks.StoreMock)
			h := newTestHandlers(s, new(mocks.MulticasterMock), nil)

			rep := h.ContentCreated(context.Background(), trigger.Event{
				Kind:   trigger.KindCreate,
				Params: map[string]string{"contentId": "c1"},
				After:  tt.after,
			})

			assert.True(t, rep.Fatal())
			s.AssertNotCalled(t, "SetContentHTML", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestContentCreatedWriteFailureIsNonFatal(t *testing.T) {
	s := new(mocks.StoreMock)
	h := newTestHandlers(s, new(mocks.MulticasterMock), nil)

	s.On("SetContentHTML", mock.Anything, "c1", mock.Anything).Return(assert.AnError).Once()

	rep := h.ContentCreated(context.Background(), trigger.Event{
		Kind:   trigger.KindCreate,
		Params: map[string]string{"contentId": "c1"},
		After:  trigger.Snapshot{"title": "t", "description": "d"},
	})

	commit, ok := rep.Step(stepCommit)
	require.True(t, ok)
	assert.Equal(t, trigger.StatusFailed, commit.Status)
}
