// Package moderate screens message text through the OpenAI moderation
// endpoint. Verdicts only flag messages for review; delivery is never
// blocked on moderation.
package moderate

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

type moderationAPI interface {
	Moderations(ctx context.Context, request openai.ModerationRequest) (openai.ModerationResponse, error)
}

// Verdict is the outcome of one moderation check.
type Verdict struct {
	Flagged    bool
	Categories []string
}

type Moderator struct {
	api moderationAPI
}

func New(apiKey string) *Moderator {
	return &Moderator{api: openai.NewClient(apiKey)}
}

func (m *Moderator) Check(ctx context.Context, text string) (Verdict, error) {
	resp, err := m.api.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: openai.ModerationTextStable,
	})
	if err != nil {
		return Verdict{}, err
	}
	if len(resp.Results) == 0 {
		return Verdict{}, nil
	}
	result := resp.Results[0]
	return Verdict{
		Flagged:    result.Flagged,
		Categories: categoryNames(result.Categories),
	}, nil
}

func categoryNames(c openai.ResultCategories) []string {
	var names []string
	for _, cat := range []struct {
		name string
		set  bool
	}{
		{"hate", c.Hate},
		{"hate/threatening", c.HateThreatening},
		{"harassment", c.Harassment},
		{"harassment/threatening", c.HarassmentThreatening},
		{"self-harm", c.SelfHarm},
		{"self-harm/intent", c.SelfHarmIntent},
		{"self-harm/instructions", c.SelfHarmInstructions},
		{"sexual", c.Sexual},
		{"sexual/minors", c.SexualMinors},
		{"violence", c.Violence},
		{"violence/graphic", c.ViolenceGraphic},
	} {
		if cat.set {
			names = append(names, cat.name)
		}
	}
	return names
}
