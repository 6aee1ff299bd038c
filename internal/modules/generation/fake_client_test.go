package generation

import (
	"context"
	"errors"

	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

// fakeClient scripts completion and embedding behavior per test.
type fakeClient struct {
	completeFn func(req openai.CompletionRequest) (openai.CompletionResult, error)
	embedFn    func(inputs []string) ([][]float32, error)
	calls      int
}

func (f *fakeClient) Complete(_ context.Context, req openai.CompletionRequest) (openai.CompletionResult, error) {
	f.calls++
	if f.completeFn == nil {
		return openai.CompletionResult{}, errors.New("no completion scripted")
	}
	return f.completeFn(req)
}

func (f *fakeClient) CompleteText(ctx context.Context, system, user string) (string, error) {
	res, err := f.Complete(ctx, openai.CompletionRequest{
		Messages: []openai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (f *fakeClient) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	if f.embedFn == nil {
		return nil, errors.New("no embeddings scripted")
	}
	return f.embedFn(inputs)
}
