package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/service"
)

type commentRequest struct {
	PostID  int64  `json:"post_id" binding:"required,min=1"`
	Content string `json:"content" binding:"required"`
}

type commentUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

type commentAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type commentResponse struct {
	ID        int64         `json:"id"`
	PostID    int64         `json:"post_id"`
	Content   string        `json:"content"`
	Censored  bool          `json:"censored"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	User      commentAuthor `json:"user"`
}

func commentResponseOf(cm model.Comment) commentResponse {
	return commentResponse{
		ID:        cm.ID,
		PostID:    cm.PostID,
		Content:   cm.Content,
		Censored:  cm.Censored,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
		User: commentAuthor{
			ID:       cm.UserID,
			Username: cm.Username,
			Email:    cm.Email,
		},
	}
}

func commentResponses(comments []model.Comment) []commentResponse {
	return lo.Map(comments, func(cm model.Comment, _ int) commentResponse {
		return commentResponseOf(cm)
	})
}

// withAuthor fills the author fields of a comment written by user.
func withAuthor(cm *model.Comment, user model.User) commentResponse {
	cm.Username, cm.Email = user.Username, user.Email
	return commentResponseOf(*cm)
}

func (h *handler) listComments(c *gin.Context) {
	comments, err := h.svc.ListComments(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, commentResponses(comments))
}

func (h *handler) listCensoredComments(c *gin.Context) {
	p, ok := pageQuery(c)
	if !ok {
		return
	}

	comments, err := h.svc.ListCensoredComments(c.Request.Context(), currentUser(c), p.Limit, p.Offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, commentResponses(comments))
}

func (h *handler) getComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	comment, err := h.svc.GetComment(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, commentResponseOf(*comment))
}

func (h *handler) createComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	user := currentUser(c)
	comment, err := h.svc.CreateComment(c.Request.Context(), service.CommentInput{
		PostID:  req.PostID,
		Content: req.Content,
	}, user)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, withAuthor(comment, user))
}

func (h *handler) updateComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req commentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	user := currentUser(c)
	comment, err := h.svc.UpdateComment(c.Request.Context(), id, req.Content, user)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, withAuthor(comment, user))
}

func (h *handler) deleteComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteComment(c.Request.Context(), id, currentUser(c)); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
