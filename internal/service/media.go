package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Media struct {
	model.PostMedia
	URL string `json:"url"`
}

var errMediaDisabled = apperr.Upstream(nil, "Media storage is disabled")

// UploadMedia attaches an image to a post owned by user.
func (svc *Service) UploadMedia(ctx context.Context, postID int64, up Upload, user model.User) (*Media, error) {
	if svc.objects == nil {
		return nil, errMediaDisabled
	}
	ext, ok := imageTypes[up.ContentType]
	if !ok {
		return nil, apperr.Validation("Only jpeg and png images are allowed")
	}
	if e := strings.ToLower(filepath.Ext(up.Filename)); e == ".jpeg" || e == ".jpg" || e == ".png" {
		ext = e
	}

	post, err := svc.posts.Get(ctx, postID)
	if err != nil {
		return nil, translate(err, "Post")
	}
	if err := owns(user, post.UserID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("posts/%d/%s%s", postID, uuid.NewString(), ext)
	if err := svc.objects.Put(ctx, key, up.ContentType, up.Body, up.Size); err != nil {
		return nil, apperr.Upstream(err, "Failed to store media")
	}

	media, err := svc.media.Create(ctx, model.PostMedia{
		PostID:      postID,
		ObjectKey:   key,
		ContentType: up.ContentType,
		Size:        up.Size,
	})
	if err != nil {
		if rmErr := svc.objects.Remove(ctx, key); rmErr != nil {
			log.Printf("[SERVICE] failed to remove orphaned media %s: %v", key, rmErr)
		}
		return nil, translate(err, "Media")
	}

	url, err := svc.objects.URL(ctx, key)
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to sign media url")
	}
	return &Media{PostMedia: *media, URL: url}, nil
}

func (svc *Service) ListMedia(ctx context.Context, postID int64) ([]Media, error) {
	if svc.objects == nil {
		return nil, errMediaDisabled
	}
	if _, err := svc.posts.Get(ctx, postID); err != nil {
		return nil, translate(err, "Post")
	}
	rows, err := svc.media.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	media := make([]Media, 0, len(rows))
	for _, row := range rows {
		url, err := svc.objects.URL(ctx, row.ObjectKey)
		if err != nil {
			return nil, apperr.Upstream(err, "Failed to sign media url")
		}
		media = append(media, Media{PostMedia: row, URL: url})
	}
	return media, nil
}
