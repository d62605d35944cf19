package botmw

import (
	"context"
	"errors"
	"fmt"

	"github.com/Semior001/newsbook/pkg/botx"
	"github.com/Semior001/newsbook/pkg/logx"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// RequestID is a middleware that puts a new request id and the command
// of the request to the context, so the logs of the request can be found.
func RequestID() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			ctx = logx.ContextWithRequestID(ctx, uuid.NewString())
			if cmd := req.Command(); cmd != "" {
				ctx = logx.ContextWithAttrs(ctx, slog.String("command", cmd))
			}

			return next(ctx, req)
		}
	}
}

// ReportError is a middleware that tells the user that the request failed.
// Responses to the requester are replaced by a single notice with the
// request id, responses to other chats are sent as is.
func ReportError() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			resps, err := next(ctx, req)
			if err == nil {
				return resps, nil
			}

			reqID, _ := logx.RequestIDFromContext(ctx)

			msg := "Something went wrong, please try again later."
			if errors.Is(err, ErrTimeout) {
				msg = "The request took too long, please try again later."
			}

			res := []botx.Response{{
				ChatID: req.Chat.ID,
				Text:   fmt.Sprintf("%s\n\nRequest ID: `%s`", msg, reqID),
			}}
			for _, resp := range resps {
				if resp.ChatID != req.Chat.ID {
					res = append(res, resp)
				}
			}

			return res, err
		}
	}
}
