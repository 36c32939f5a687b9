package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) dbHealth(c *gin.Context) {
	if err := h.svc.CheckDB(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Connection to database is established. Welcome to Posts API"})
}

func (h *handler) kvHealth(c *gin.Context) {
	if err := h.svc.CheckKV(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Connection to key/value store is established"})
}
