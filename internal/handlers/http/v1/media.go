package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/service"
)

func (h *handler) uploadMedia(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		fail(c, apperr.Validation("image file is required"))
		return
	}

	f, err := file.Open()
	if err != nil {
		fail(c, apperr.Validation("unable to read image file"))
		return
	}
	defer f.Close()

	media, err := h.svc.UploadMedia(c.Request.Context(), id, service.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        f,
	}, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, media)
}

func (h *handler) listMedia(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	media, err := h.svc.ListMedia(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, media)
}
