package botx

import (
	"context"
	"strings"
)

// Handler handles requests.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Request is a request for handler, either a text message or
// a pressed inline button.
type Request struct {
	MessageID string
	Chat      Chat
	Text      string
	// CallbackID is set when the request is made by pressing a button,
	// Text then contains the button data.
	CallbackID string
}

// Command returns the command of the request without the bot mention,
// e.g. "/news" for "/news@newsbook_bot golang".
func (r Request) Command() string {
	fields := strings.Fields(r.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}

// Args returns the text of the request after the command.
func (r Request) Args() string {
	text := strings.TrimSpace(r.Text)
	if r.Command() == "" {
		return text
	}
	_, args, _ := strings.Cut(text, " ")
	return strings.TrimSpace(args)
}

// Response is a response from handler.
type Response struct {
	ReplyToMessageID string
	// EditMessageID is set to replace the text of an already sent message.
	EditMessageID string
	ChatID        string
	Text          string
	Buttons       [][]Button
}

// Button is an inline button under a message. Pressing the button
// makes a request with Data as its text.
type Button struct {
	Text string
	Data string
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
}

// NotFound is a default handler for not found commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "command not found",
	}}, nil
}
