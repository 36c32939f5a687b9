package service

import (
	"context"
	"errors"
	"log"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

type PostInput struct {
	Title                 string
	Content               string
	Status                model.PostStatus
	AutomaticReplyEnabled bool
	ReplyDelay            int
}

func (in PostInput) validate() error {
	if in.Status != "" && !in.Status.Valid() {
		return apperr.Validation("Unknown post status %q", in.Status)
	}
	if in.ReplyDelay < 0 {
		return apperr.Validation("Reply delay must not be negative")
	}
	return nil
}

func (svc *Service) ListPosts(ctx context.Context, limit, offset int) ([]model.Post, error) {
	return svc.posts.ListPublished(ctx, limit, offset)
}

func (svc *Service) ListCensoredPosts(ctx context.Context, limit, offset int) ([]model.Post, error) {
	return svc.posts.ListCensored(ctx, limit, offset)
}

func (svc *Service) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	post, err := svc.posts.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "Post")
	}
	return post, nil
}

// CreatePost stores a new post. Flagged posts are stored as censored and
// reported with a validation error.
func (svc *Service) CreatePost(ctx context.Context, in PostInput, user model.User) (*model.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	censored := svc.flagged(ctx, in.Title, in.Content)

	var post *model.Post
	err := svc.tx.WithinTx(ctx, "create post", func(ctx context.Context) error {
		exists, err := svc.posts.ExistsWithContent(ctx, in.Title, in.Content)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("Post is already exist")
		}
		post, err = svc.posts.Create(ctx, model.Post{
			UserID:                user.ID,
			Title:                 in.Title,
			Content:               in.Content,
			Status:                in.Status,
			Censored:              censored,
			AutomaticReplyEnabled: in.AutomaticReplyEnabled,
			ReplyDelay:            in.ReplyDelay,
		})
		return err
	})
	if err != nil {
		return nil, translate(err, "Post")
	}
	if censored {
		return nil, apperr.Validation("Post contains inappropriate language")
	}
	return post, nil
}

func (svc *Service) UpdatePost(ctx context.Context, id int64, in PostInput, user model.User) (*model.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	censored := svc.flagged(ctx, in.Title, in.Content)

	var post *model.Post
	err := svc.tx.WithinTx(ctx, "update post", func(ctx context.Context) error {
		current, err := svc.posts.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := owns(user, current.UserID); err != nil {
			return err
		}
		current.Title = in.Title
		current.Content = in.Content
		if in.Status != "" {
			current.Status = in.Status
		}
		current.Censored = censored
		current.AutomaticReplyEnabled = in.AutomaticReplyEnabled
		current.ReplyDelay = in.ReplyDelay
		post, err = svc.posts.Update(ctx, *current)
		return err
	})
	if err != nil {
		return nil, translate(err, "Post")
	}
	if censored {
		return nil, apperr.Validation("Post contains inappropriate language")
	}
	return post, nil
}

// DeletePost removes the post together with its comments and media. Stored
// media files are removed after the transaction commits.
func (svc *Service) DeletePost(ctx context.Context, id int64, user model.User) error {
	var media []model.PostMedia
	err := svc.tx.WithinTx(ctx, "delete post", func(ctx context.Context) error {
		post, err := svc.posts.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := owns(user, post.UserID); err != nil {
			return err
		}
		if svc.objects != nil {
			if media, err = svc.media.ListByPost(ctx, id); err != nil {
				return err
			}
		}
		return svc.posts.Delete(ctx, id)
	})
	if err != nil {
		return translate(err, "Post")
	}

	for _, m := range media {
		if err := svc.objects.Remove(ctx, m.ObjectKey); err != nil {
			log.Printf("[SERVICE] failed to remove media %s of post %d: %v", m.ObjectKey, id, err)
		}
	}
	return nil
}

// PostComments lists the visible comments of an existing post.
func (svc *Service) PostComments(ctx context.Context, id int64) ([]model.Comment, error) {
	if _, err := svc.posts.Get(ctx, id); err != nil {
		return nil, translate(err, "Post")
	}
	return svc.comments.ListByPost(ctx, id)
}

func (svc *Service) PostStatus(ctx context.Context, id int64) (model.PostStatus, error) {
	post, err := svc.posts.Get(ctx, id)
	if err != nil {
		return "", translate(err, "Post")
	}
	return post.Status, nil
}

func (svc *Service) UpdatePostStatus(ctx context.Context, id int64, status model.PostStatus, user model.User) (*model.Post, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Unknown post status %q", status)
	}

	var post *model.Post
	err := svc.tx.WithinTx(ctx, "update post status", func(ctx context.Context) error {
		current, err := svc.posts.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := owns(user, current.UserID); err != nil {
			return err
		}
		post, err = svc.posts.UpdateStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, translate(err, "Post")
	}
	return post, nil
}

// lockPost reads a post under a row lock for the rest of the transaction. A
// missing post is a conflict for the caller, which referenced it.
func (svc *Service) lockPost(ctx context.Context, id int64) (*model.Post, error) {
	post, err := svc.posts.Lock(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Conflict("Post %d does not exist", id)
	}
	return post, err
}
