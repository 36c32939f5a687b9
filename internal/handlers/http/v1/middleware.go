package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

const userKey = "user"

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// authenticate resolves the bearer access token to a user and stores it in
// the gin context.
func (h *handler) authenticate(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		fail(c, apperr.Unauthorized("Not authenticated"))
		return
	}
	user, err := h.svc.CurrentUser(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(userKey, *user)
	c.Next()
}

func currentUser(c *gin.Context) model.User {
	return c.MustGet(userKey).(model.User)
}
