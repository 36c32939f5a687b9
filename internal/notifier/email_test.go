package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gfdmit/web-forum/posts-api/internal/mail"
)

type mailerFunc func(ctx context.Context, msg mail.Message) error

func (f mailerFunc) Send(ctx context.Context, msg mail.Message) error { return f(ctx, msg) }

func emailTask(t *testing.T, n Notification) Task {
	t.Helper()
	payload, err := json.Marshal(n)
	require.NoError(t, err)
	return Task{ID: "1", Kind: KindEmail, Payload: payload}
}

func TestEmailHandler(t *testing.T) {
	req := require.New(t)

	var sent []mail.Message
	handler := EmailHandler(mailerFunc(func(_ context.Context, msg mail.Message) error {
		sent = append(sent, msg)
		return nil
	}))

	err := handler(context.Background(), emailTask(t, Notification{
		Recipient: "author@example.com",
		Template:  mail.TemplateNewComment,
		Params:    map[string]string{"post_title": "Go tips", "comment": "Nice"},
	}))
	req.NoError(err)
	req.Len(sent, 1)
	req.Equal("author@example.com", sent[0].To)
	req.Contains(sent[0].HTML, "Go tips")
}

func TestEmailHandler_PropagatesFailures(t *testing.T) {
	req := require.New(t)
	sendErr := errors.New("connection refused")

	handler := EmailHandler(mailerFunc(func(context.Context, mail.Message) error { return sendErr }))
	err := handler(context.Background(), emailTask(t, Notification{
		Recipient: "author@example.com",
		Template:  mail.TemplateNewComment,
	}))
	req.ErrorIs(err, sendErr)

	err = handler(context.Background(), emailTask(t, Notification{Template: "unknown"}))
	req.Error(err)

	err = handler(context.Background(), Task{Payload: json.RawMessage(`{`)})
	req.Error(err)
}
