package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

func TestCreatePost(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.clean()
	ctx := context.Background()

	f.posts.EXPECT().ExistsWithContent(gomock.Any(), "Hello", "World").Return(false, nil)
	f.posts.EXPECT().Create(gomock.Any(), model.Post{
		UserID:  alice.ID,
		Title:   "Hello",
		Content: "World",
		Status:  model.StatusDraft,
	}).Return(&model.Post{ID: 5, UserID: alice.ID, Title: "Hello", Content: "World", Status: model.StatusDraft}, nil)

	post, err := f.svc.CreatePost(ctx, PostInput{Title: "Hello", Content: "World"}, alice)
	req.NoError(err)
	req.EqualValues(5, post.ID)
	req.Equal(model.StatusDraft, post.Status)
}

func TestCreatePost_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.clean()

	f.posts.EXPECT().ExistsWithContent(gomock.Any(), "Hello", "World").Return(true, nil)

	_, err := f.svc.CreatePost(context.Background(), PostInput{Title: "Hello", Content: "World"}, alice)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreatePost_Censored(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.moderator.EXPECT().Flagged(gomock.Any(), "Hello").Return(false)
	f.moderator.EXPECT().Flagged(gomock.Any(), "darn it").Return(true)
	f.posts.EXPECT().ExistsWithContent(gomock.Any(), "Hello", "darn it").Return(false, nil)
	f.posts.EXPECT().Create(gomock.Any(), model.Post{
		UserID:   alice.ID,
		Title:    "Hello",
		Content:  "darn it",
		Status:   model.StatusPublished,
		Censored: true,
	}).Return(&model.Post{ID: 6, Censored: true}, nil)

	post, err := f.svc.CreatePost(ctx, PostInput{Title: "Hello", Content: "darn it", Status: model.StatusPublished}, alice)
	req.Nil(post)
	req.ErrorIs(err, apperr.ErrValidation)
	req.Contains(apperr.MessageOf(err), "inappropriate language")
}

func TestCreatePost_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePost(context.Background(), PostInput{Title: "Hello", Status: "archived"}, alice)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreatePost(context.Background(), PostInput{Title: "Hello", ReplyDelay: -1}, alice)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetPost_NotFound(t *testing.T) {
	f := newFixture(t)
	f.posts.EXPECT().Get(gomock.Any(), int64(9)).Return(nil, repository.ErrNotFound)

	_, err := f.svc.GetPost(context.Background(), 9)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Equal(t, "Post has not been found", apperr.MessageOf(err))
}

func TestUpdatePost(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.clean()

	current := &model.Post{ID: 5, UserID: alice.ID, Title: "Old", Content: "Old", Status: model.StatusPublished}
	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(current, nil)
	f.posts.EXPECT().Update(gomock.Any(), model.Post{
		ID:                    5,
		UserID:                alice.ID,
		Title:                 "New",
		Content:               "New content",
		Status:                model.StatusPublished,
		AutomaticReplyEnabled: true,
		ReplyDelay:            3,
	}).DoAndReturn(func(_ context.Context, p model.Post) (*model.Post, error) {
		return &p, nil
	})

	post, err := f.svc.UpdatePost(context.Background(), 5, PostInput{
		Title:                 "New",
		Content:               "New content",
		AutomaticReplyEnabled: true,
		ReplyDelay:            3,
	}, alice)
	req.NoError(err)
	req.Equal("New", post.Title)
	req.Equal(model.StatusPublished, post.Status)
}

func TestUpdatePost_NotOwner(t *testing.T) {
	f := newFixture(t)
	f.clean()

	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, UserID: alice.ID}, nil)
	// No Update expectation: a call would fail the test.

	_, err := f.svc.UpdatePost(context.Background(), 5, PostInput{Title: "Mine now", Content: "x"}, bob)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)

	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, UserID: alice.ID}, nil)
	f.media.EXPECT().ListByPost(gomock.Any(), int64(5)).Return([]model.PostMedia{
		{ObjectKey: "posts/5/a.png"},
		{ObjectKey: "posts/5/b.jpg"},
	}, nil)
	f.posts.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil)
	f.objects.EXPECT().Remove(gomock.Any(), "posts/5/a.png").Return(nil)
	f.objects.EXPECT().Remove(gomock.Any(), "posts/5/b.jpg").Return(errors.New("minio down"))

	require.NoError(t, f.svc.DeletePost(context.Background(), 5, alice))
}

func TestDeletePost_NotOwner(t *testing.T) {
	f := newFixture(t)

	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, UserID: alice.ID}, nil)

	err := f.svc.DeletePost(context.Background(), 5, bob)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeletePost_NotFound(t *testing.T) {
	f := newFixture(t)

	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(nil, repository.ErrNotFound)

	err := f.svc.DeletePost(context.Background(), 5, alice)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPostComments(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5}, nil)
	f.comments.EXPECT().ListByPost(gomock.Any(), int64(5)).Return([]model.Comment{{ID: 1}, {ID: 2}}, nil)

	comments, err := f.svc.PostComments(context.Background(), 5)
	req.NoError(err)
	req.Len(comments, 2)

	f.posts.EXPECT().Get(gomock.Any(), int64(6)).Return(nil, repository.ErrNotFound)
	_, err = f.svc.PostComments(context.Background(), 6)
	req.ErrorIs(err, apperr.ErrNotFound)
}

func TestUpdatePostStatus(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdatePostStatus(ctx, 5, "archived", alice)
	req.ErrorIs(err, apperr.ErrValidation)

	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, UserID: alice.ID}, nil).Times(2)
	_, err = f.svc.UpdatePostStatus(ctx, 5, model.StatusPublished, bob)
	req.ErrorIs(err, apperr.ErrForbidden)

	f.posts.EXPECT().UpdateStatus(gomock.Any(), int64(5), model.StatusPublished).
		Return(&model.Post{ID: 5, Status: model.StatusPublished}, nil)
	post, err := f.svc.UpdatePostStatus(ctx, 5, model.StatusPublished, alice)
	req.NoError(err)
	req.Equal(model.StatusPublished, post.Status)
}

func TestPostStatus(t *testing.T) {
	f := newFixture(t)
	f.posts.EXPECT().Get(gomock.Any(), int64(5)).Return(&model.Post{ID: 5, Status: model.StatusDraft}, nil)

	status, err := f.svc.PostStatus(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, model.StatusDraft, status)
}
