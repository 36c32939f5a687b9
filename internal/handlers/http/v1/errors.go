package v1

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts the request with the error translated to a status and a
// {"detail": ...} body. Internal errors are logged and never shown.
func fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		log.Printf("[HANDLER] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	if code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(code, gin.H{"detail": apperr.MessageOf(err)})
}

// invalid reports a request that failed binding or validation.
func invalid(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		fail(c, apperr.Validation("%s", strings.Join(msgs, "; ")))
		return
	}
	fail(c, apperr.Validation("Invalid request: %v", err))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "poststatus":
		return fmt.Sprintf("%s must be one of published, draft", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	v.RegisterTagNameFunc(fieldName)
	return v.RegisterValidation("poststatus", func(fl validator.FieldLevel) bool {
		status := model.PostStatus(fl.Field().String())
		return status == "" || status.Valid()
	})
}

// fieldName reports fields under their wire names in validation errors.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		fail(c, apperr.Validation("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

type page struct {
	Limit  int `form:"limit,default=10" binding:"min=1,max=500"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

func pageQuery(c *gin.Context) (page, bool) {
	var p page
	if err := c.ShouldBindQuery(&p); err != nil {
		invalid(c, err)
		return p, false
	}
	return p, true
}
