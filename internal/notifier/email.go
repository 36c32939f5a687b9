package notifier

import (
	"context"
	"fmt"

	"github.com/gfdmit/web-forum/posts-api/internal/mail"
)

// EmailHandler renders a Notification and hands it to the mailer.
func EmailHandler(mailer mail.Mailer) Handler {
	return func(ctx context.Context, task Task) error {
		var n Notification
		if err := task.Decode(&n); err != nil {
			return fmt.Errorf("notifier.EmailHandler: %w", err)
		}
		msg, err := mail.Render(n.Recipient, n.Template, n.Params)
		if err != nil {
			return err
		}
		return mailer.Send(ctx, msg)
	}
}
