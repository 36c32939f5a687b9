package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/service"
)

type postRequest struct {
	Title                 string `json:"title" binding:"required,min=3,max=255"`
	Content               string `json:"content" binding:"required"`
	Status                string `json:"status" binding:"poststatus"`
	AutomaticReplyEnabled bool   `json:"automatic_reply_enabled"`
	ReplyDelay            int    `json:"reply_delay" binding:"min=0"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:                 r.Title,
		Content:               r.Content,
		Status:                model.PostStatus(r.Status),
		AutomaticReplyEnabled: r.AutomaticReplyEnabled,
		ReplyDelay:            r.ReplyDelay,
	}
}

func (h *handler) listPosts(c *gin.Context) {
	p, ok := pageQuery(c)
	if !ok {
		return
	}

	posts, err := h.svc.ListPosts(c.Request.Context(), p.Limit, p.Offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *handler) listCensoredPosts(c *gin.Context) {
	p, ok := pageQuery(c)
	if !ok {
		return
	}

	posts, err := h.svc.ListCensoredPosts(c.Request.Context(), p.Limit, p.Offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *handler) getPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	post, err := h.svc.GetPost(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *handler) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), req.input(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *handler) updatePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), id, req.input(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *handler) deletePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), id, currentUser(c)); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) postComments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.svc.PostComments(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, commentResponses(comments))
}

func (h *handler) postStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	status, err := h.svc.PostStatus(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

func (h *handler) updatePostStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	status := model.PostStatus(c.Query("new_status"))
	if !status.Valid() {
		fail(c, apperr.Validation("new_status must be one of published, draft"))
		return
	}

	post, err := h.svc.UpdatePostStatus(c.Request.Context(), id, status, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}
