package details

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
)

//go:embed data/prompt.tmpl
var prompt string

var promptTmpl = template.Must(template.New("prompt").Parse(prompt))

const instructions = `Summarize the news article sent by the user in 3 to 5 short bullet points.
Write the bullet points in the language of the article, start each of them with "- ".
Do not add anything that is not stated in the article.`

//go:generate moq -out mock_openai_client.go . OpenAIClient

// OpenAIClient is interface for OpenAI client with the possibility to mock it
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatGPTOpts defines parameters of the summarizer.
type ChatGPTOpts struct {
	Token     string
	Model     string
	MaxTokens int
	// MaxWords is the number of article words sent to the model,
	// longer articles are summarized by their beginning.
	MaxWords  int
	CacheSize int
	CacheTTL  time.Duration
}

// ChatGPT summarizes articles into bullet points with OpenAI chatgpt service.
type ChatGPT struct {
	log   *slog.Logger
	cl    OpenAIClient
	opts  ChatGPTOpts
	cache cache.Cache[string, string]
}

// NewChatGPT creates new ChatGPT client.
func NewChatGPT(lg *slog.Logger, cl *http.Client, opts ChatGPTOpts) *ChatGPT {
	config := openai.DefaultConfig(opts.Token)
	config.HTTPClient = cl

	return newChatGPT(lg, &loggingClient{log: lg, cl: openai.NewClientWithConfig(config)}, opts)
}

func newChatGPT(lg *slog.Logger, cl OpenAIClient, opts ChatGPTOpts) *ChatGPT {
	if opts.Model == "" {
		opts.Model = openai.GPT3Dot5Turbo
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 2000
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}

	c := cache.NewCache[string, string]().WithLRU().WithMaxKeys(opts.CacheSize)
	if opts.CacheTTL > 0 {
		c = c.WithTTL(opts.CacheTTL)
	}

	return &ChatGPT{log: lg, cl: cl, opts: opts, cache: c}
}

// maxBullets is the maximum number of bullet points in a summary.
const maxBullets = 5

// CacheStat returns stats of the summaries cache.
func (s *ChatGPT) CacheStat() cache.Stats { return s.cache.Stat() }

// BulletPoints summarizes the article text, summaries are cached by the article URL.
func (s *ChatGPT) BulletPoints(ctx context.Context, d Details) (string, error) {
	if d.URL != "" {
		if resp, ok := s.cache.Get(d.URL); ok {
			return resp, nil
		}
	}

	words := strings.Fields(d.Text)
	if len(words) > s.opts.MaxWords {
		s.log.DebugCtx(ctx, "article is too long, summarizing its beginning",
			slog.String("url", d.URL), slog.Int("words", len(words)))
		words = words[:s.opts.MaxWords]
	}
	d.Text = strings.Join(words, " ")

	buf := &strings.Builder{}
	if err := promptTmpl.Execute(buf, d); err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.cl.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: buf.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	summary := bullets(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary")
	}

	if d.URL != "" {
		s.cache.Set(d.URL, summary, 0)
	}

	return summary, nil
}

// bullets normalizes the model answer into at most maxBullets
// lines prefixed with "- ", dropping everything else.
func bullets(answer string) string {
	var res []string

	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"- ", "• ", "* "} {
			if strings.HasPrefix(line, marker) {
				res = append(res, "- "+strings.TrimSpace(strings.TrimPrefix(line, marker)))
				break
			}
		}
		if len(res) == maxBullets {
			break
		}
	}

	return strings.Join(res, "\n")
}

type loggingClient struct {
	log *slog.Logger
	cl  OpenAIClient
}

func (l *loggingClient) CreateChatCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	start := time.Now()
	resp, err := l.cl.CreateChatCompletion(ctx, req)
	l.log.DebugCtx(ctx, "chat completion",
		slog.String("model", req.Model),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("duration", time.Since(start)),
		slog.Any("err", err))
	return resp, err
}
