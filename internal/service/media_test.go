package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

func png() Upload {
	return Upload{Filename: "cat.PNG", ContentType: "image/png", Size: 4, Body: strings.NewReader("\x89PNG")}
}

func TestUploadMedia(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	var key string
	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, UserID: alice.ID}, nil)
	f.objects.EXPECT().Put(gomock.Any(), gomock.Any(), "image/png", gomock.Any(), int64(4)).
		DoAndReturn(func(_ context.Context, k, _ string, _ io.Reader, _ int64) error {
			key = k
			return nil
		})
	f.media.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m model.PostMedia) (*model.PostMedia, error) {
			m.ID = 1
			return &m, nil
		})
	f.objects.EXPECT().URL(gomock.Any(), gomock.Any()).Return("http://minio/signed", nil)

	media, err := f.svc.UploadMedia(context.Background(), 5, png(), alice)
	req.NoError(err)
	req.True(strings.HasPrefix(key, "posts/5/"))
	req.True(strings.HasSuffix(key, ".png"))
	req.Equal(key, media.ObjectKey)
	req.Equal("http://minio/signed", media.URL)
}

func TestUploadMedia_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("not an image", func(t *testing.T) {
		f := newFixture(t)
		up := png()
		up.ContentType = "application/pdf"
		_, err := f.svc.UploadMedia(ctx, 5, up, alice)
		require.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t)
		f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, UserID: alice.ID}, nil)
		_, err := f.svc.UploadMedia(ctx, 5, png(), bob)
		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("disabled", func(t *testing.T) {
		svc := New(Deps{})
		_, err := svc.UploadMedia(ctx, 5, png(), alice)
		require.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	})

	t.Run("row insert fails", func(t *testing.T) {
		f := newFixture(t)
		f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, UserID: alice.ID}, nil)
		f.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.media.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, repository.ErrReference)
		f.objects.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.UploadMedia(ctx, 5, png(), alice)
		require.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestListMedia(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5}, nil)
	f.media.EXPECT().ListByPost(gomock.Any(), int64(5)).Return([]model.PostMedia{
		{ID: 1, ObjectKey: "posts/5/a.png"},
	}, nil)
	f.objects.EXPECT().URL(gomock.Any(), "posts/5/a.png").Return("http://minio/a", nil)

	media, err := f.svc.ListMedia(context.Background(), 5)
	req.NoError(err)
	req.Len(media, 1)
	req.Equal("http://minio/a", media[0].URL)
}

func TestDailyBreakdown(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	f.comments.EXPECT().DailyBreakdown(gomock.Any(), alice.ID, from, to).Return([]model.DailyCount{
		{Day: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Count: 3},
		{Day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Count: 1},
	}, nil)

	counts, err := f.svc.DailyBreakdown(ctx, from, to, alice)
	req.NoError(err)
	req.Equal(map[string]int{"2024-03-02": 3, "2024-03-05": 1}, counts)

	_, err = f.svc.DailyBreakdown(ctx, to, from, alice)
	req.ErrorIs(err, apperr.ErrValidation)
}

func TestKeyValue(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.kv.EXPECT().Set(gomock.Any(), "greeting", "hello", time.Duration(0)).Return(nil)
	req.NoError(f.svc.SetValue(ctx, "greeting", "hello"))

	f.kv.EXPECT().Get(gomock.Any(), "greeting").Return("hello", nil)
	value, err := f.svc.GetValue(ctx, "greeting")
	req.NoError(err)
	req.Equal("hello", value)

	f.kv.EXPECT().Get(gomock.Any(), "missing").Return("", repository.ErrNotFound)
	_, err = f.svc.GetValue(ctx, "missing")
	req.ErrorIs(err, apperr.ErrNotFound)
}

func TestHealthChecks(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.tx.EXPECT().Ping(gomock.Any()).Return(nil)
	req.NoError(f.svc.CheckDB(ctx))

	f.kv.EXPECT().Ping(gomock.Any()).Return(errors.New("closed"))
	req.ErrorIs(f.svc.CheckKV(ctx), apperr.ErrUpstreamUnavailable)
}
