package details

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Semior001/newsbook/app/store"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

const expectedPrompt = `Title: Go 1.20 is released
Source: Go Blog

Today the Go team is happy to release Go 1.20.
`

func answer(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: content},
		}},
	}
}

func TestChatGPT_BulletPoints(t *testing.T) {
	mock := &OpenAIClientMock{
		CreateChatCompletionFunc: func(
			ctx context.Context,
			req openai.ChatCompletionRequest,
		) (openai.ChatCompletionResponse, error) {
			assert.Equal(t, openai.ChatCompletionRequest{
				Model: openai.GPT3Dot5Turbo,
				Messages: []openai.ChatCompletionMessage{
					{Role: "system", Content: instructions},
					{Role: "user", Content: expectedPrompt},
				},
				MaxTokens: 1000,
			}, req)
			return answer("Here is the summary:\n- Go 1.20 is out\n• PGO preview\n"), nil
		},
	}
	cl := newChatGPT(slog.Default(), mock, ChatGPTOpts{MaxTokens: 1000})

	d := Details{
		Article: store.Article{
			URL:    "https://go.dev/blog/go1.20",
			Title:  "Go 1.20 is released",
			Source: store.Source{Name: "Go Blog"},
		},
		Text: "Today the Go team is happy to release Go 1.20.",
	}

	resp, err := cl.BulletPoints(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "- Go 1.20 is out\n- PGO preview", resp)

	// second call is served from cache
	resp, err = cl.BulletPoints(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "- Go 1.20 is out\n- PGO preview", resp)
	assert.Len(t, mock.CreateChatCompletionCalls(), 1)
	assert.EqualValues(t, 1, cl.CacheStat().Hits)
}

func TestChatGPT_BulletPoints_LongArticle(t *testing.T) {
	mock := &OpenAIClientMock{
		CreateChatCompletionFunc: func(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			assert.Equal(t, 10, strings.Count(req.Messages[1].Content, "word"))
			return answer("- words"), nil
		},
	}
	cl := newChatGPT(slog.Default(), mock, ChatGPTOpts{MaxWords: 10})

	resp, err := cl.BulletPoints(context.Background(), Details{Text: strings.Repeat("word ", 100)})
	require.NoError(t, err)
	assert.Equal(t, "- words", resp)
}

func TestChatGPT_BulletPoints_Errors(t *testing.T) {
	cl := newChatGPT(slog.Default(), &OpenAIClientMock{
		CreateChatCompletionFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{}, errors.New("quota exceeded")
		},
	}, ChatGPTOpts{})

	_, err := cl.BulletPoints(context.Background(), Details{Text: "text"})
	assert.ErrorContains(t, err, "quota exceeded")

	cl = newChatGPT(slog.Default(), &OpenAIClientMock{
		CreateChatCompletionFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{}, nil
		},
	}, ChatGPTOpts{})

	_, err = cl.BulletPoints(context.Background(), Details{Text: "text"})
	assert.EqualError(t, err, "no choices in response")

	cl = newChatGPT(slog.Default(), &OpenAIClientMock{
		CreateChatCompletionFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return answer("I can't summarize this article."), nil
		},
	}, ChatGPTOpts{})

	_, err = cl.BulletPoints(context.Background(), Details{Text: "text"})
	assert.EqualError(t, err, "empty summary")
}

func TestBullets(t *testing.T) {
	assert.Equal(t, "- one\n- two\n- three", bullets("Summary:\n- one\n  * two\n\n• three\nThat's all"))
	assert.Equal(t, "- 1\n- 2\n- 3\n- 4\n- 5", bullets("- 1\n- 2\n- 3\n- 4\n- 5\n- 6\n- 7"))
	assert.Empty(t, bullets("no bullets here"))
}
