package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/mail"
	"github.com/gfdmit/web-forum/posts-api/internal/service"
)

type signupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=150"`
	Password string `json:"password" binding:"required,min=6,max=10"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email,max=150"`
}

type resetPasswordForm struct {
	Token       string `form:"token" binding:"required"`
	NewPassword string `form:"new_password" binding:"required,min=6,max=10"`
}

func (h *handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// login follows the OAuth2 password flow: the email travels in the
// username form field.
func (h *handler) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		invalid(c, err)
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *handler) refreshToken(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		fail(c, apperr.Unauthorized("Not authenticated"))
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *handler) confirmedEmail(c *gin.Context) {
	msg, err := h.svc.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *handler) requestEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	msg, err := h.svc.RequestConfirmation(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *handler) requestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	msg, err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *handler) resetPasswordForm(c *gin.Context) {
	token := c.Param("token")
	if err := h.svc.CheckResetToken(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := mail.Execute(c.Writer, mail.TemplateResetPasswordForm, map[string]string{
		"action": "/api/auth/reset-password",
		"token":  token,
	})
	if err != nil {
		_ = c.Error(err)
	}
}

func (h *handler) resetPassword(c *gin.Context) {
	var form resetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		invalid(c, err)
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), form.Token, form.NewPassword); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully."})
}

func (h *handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *handler) setValue(c *gin.Context) {
	key, value := c.Query("key"), c.Query("value")
	if key == "" {
		fail(c, apperr.Validation("key is required"))
		return
	}

	if err := h.svc.SetValue(c.Request.Context(), key, value); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Value has been set"})
}

func (h *handler) getValue(c *gin.Context) {
	key := c.Param("key")
	value, err := h.svc.GetValue(c.Request.Context(), key)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}
