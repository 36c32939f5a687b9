package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/mail"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/notifier"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

// KindAutoReply is the task kind that answers a comment on behalf of the
// post author.
const KindAutoReply = "auto_reply"

type CommentInput struct {
	PostID  int64
	Content string
}

type autoReply struct {
	CommentID int64 `json:"comment_id"`
}

func (svc *Service) ListComments(ctx context.Context) ([]model.Comment, error) {
	return svc.comments.List(ctx)
}

// ListCensoredComments returns the user's own censored comments.
func (svc *Service) ListCensoredComments(ctx context.Context, user model.User, limit, offset int) ([]model.Comment, error) {
	return svc.comments.ListCensored(ctx, user.ID, limit, offset)
}

func (svc *Service) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	comment, err := svc.comments.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "Comment")
	}
	return comment, nil
}

// CreateComment stores a comment on an existing post. The post is locked for
// the duration of the insert, so a concurrent delete either waits or makes
// the comment fail with a conflict. After commit the post author is notified
// and, if enabled on the post, an automatic reply is scheduled.
func (svc *Service) CreateComment(ctx context.Context, in CommentInput, user model.User) (*model.Comment, error) {
	censored := svc.flagged(ctx, in.Content)

	var (
		post    *model.Post
		author  *model.User
		comment *model.Comment
	)
	err := svc.tx.WithinTx(ctx, "create comment", func(ctx context.Context) error {
		var err error
		if post, err = svc.lockPost(ctx, in.PostID); err != nil {
			return err
		}
		if author, err = svc.users.GetByID(ctx, post.UserID); err != nil {
			return err
		}
		dup, err := svc.comments.ExistsOnPost(ctx, in.PostID, in.Content)
		if err != nil {
			return err
		}
		if dup {
			return apperr.Conflict("Comment is already exist")
		}
		comment, err = svc.comments.Create(ctx, model.Comment{
			PostID:   in.PostID,
			UserID:   user.ID,
			Content:  in.Content,
			Censored: censored,
		})
		return err
	})
	if errors.Is(err, repository.ErrReference) {
		return nil, apperr.Conflict("Post %d does not exist", in.PostID)
	}
	if err != nil {
		return nil, translate(err, "Comment")
	}
	if censored {
		return nil, apperr.Validation("Comment contains inappropriate language")
	}

	svc.notify(ctx, notifier.Notification{
		Recipient: author.Email,
		Template:  mail.TemplateNewComment,
		Params: map[string]string{
			"host":       svc.publicURL,
			"username":   author.Username,
			"commenter":  user.Username,
			"post_id":    strconv.FormatInt(post.ID, 10),
			"post_title": post.Title,
			"comment":    comment.Content,
		},
	})

	if post.AutomaticReplyEnabled {
		delay := time.Duration(post.ReplyDelay) * time.Minute
		err := svc.notifier.Schedule(ctx, KindAutoReply, autoReply{CommentID: comment.ID}, delay)
		if err != nil {
			log.Printf("[SERVICE] failed to schedule auto reply for comment %d: %v", comment.ID, err)
		}
	}
	return comment, nil
}

func (svc *Service) UpdateComment(ctx context.Context, id int64, content string, user model.User) (*model.Comment, error) {
	censored := svc.flagged(ctx, content)

	var comment *model.Comment
	err := svc.tx.WithinTx(ctx, "update comment", func(ctx context.Context) error {
		current, err := svc.comments.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := owns(user, current.UserID); err != nil {
			return err
		}
		comment, err = svc.comments.Update(ctx, id, content, censored)
		return err
	})
	if err != nil {
		return nil, translate(err, "Comment")
	}
	if censored {
		return nil, apperr.Validation("Comment contains inappropriate language")
	}
	return comment, nil
}

func (svc *Service) DeleteComment(ctx context.Context, id int64, user model.User) error {
	err := svc.tx.WithinTx(ctx, "delete comment", func(ctx context.Context) error {
		comment, err := svc.comments.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := owns(user, comment.UserID); err != nil {
			return err
		}
		return svc.comments.Delete(ctx, id)
	})
	return translate(err, "Comment")
}

// AutoReply is the notifier handler for KindAutoReply tasks. The reply is
// stored as a comment by the post author and does not notify anyone. A
// comment or post deleted in the meantime drops the task.
func (svc *Service) AutoReply(ctx context.Context, task notifier.Task) error {
	var payload autoReply
	if err := task.Decode(&payload); err != nil {
		return fmt.Errorf("service.AutoReply: %w", err)
	}

	comment, err := svc.comments.Get(ctx, payload.CommentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	post, err := svc.posts.Get(ctx, comment.PostID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !post.AutomaticReplyEnabled {
		return nil
	}

	reply := svc.replier.Reply(ctx, post.Content, comment.Content)
	_, err = svc.comments.Create(ctx, model.Comment{
		PostID:  post.ID,
		UserID:  post.UserID,
		Content: reply,
	})
	if errors.Is(err, repository.ErrReference) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.AutoReply: %w", err)
	}
	return nil
}
