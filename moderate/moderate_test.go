package moderate

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	resp openai.ModerationResponse
	err  error
}

func (s *stubAPI) Moderations(_ context.Context, _ openai.ModerationRequest) (openai.ModerationResponse, error) {
	return s.resp, s.err
}

func TestCheckFlaggedCategories(t *testing.T) {
	m := &Moderator{api: &stubAPI{
		resp: openai.ModerationResponse{
			Results: []openai.Result{
				{
					Flagged: true,
					Categories: openai.ResultCategories{
						Harassment: true,
						Violence:   true,
					},
				},
			},
		},
	}}

	v, err := m.Check(context.Background(), "some text")
	require.NoError(t, err)
	assert.True(t, v.Flagged)
	assert.Equal(t, []string{"harassment", "violence"}, v.Categories)
}

func TestCheckClean(t *testing.T) {
	m := &Moderator{api: &stubAPI{
		resp: openai.ModerationResponse{Results: []openai.Result{{Flagged: false}}},
	}}

	v, err := m.Check(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, v.Flagged)
	assert.Empty(t, v.Categories)
}

func TestCheckAPIError(t *testing.T) {
	m := &Moderator{api: &stubAPI{err: assert.AnError}}

	_, err := m.Check(context.Background(), "hello")
	assert.Error(t, err)
}

func TestCheckEmptyResults(t *testing.T) {
	m := &Moderator{api: &stubAPI{}}

	v, err := m.Check(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, v.Flagged)
}
