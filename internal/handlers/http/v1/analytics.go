package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
)

type breakdownQuery struct {
	DateFrom string `form:"date_from" binding:"required"`
	DateTo   string `form:"date_to" binding:"required"`
}

// parseDate accepts RFC3339 timestamps and plain dates. A plain date used
// as an upper bound covers the whole day.
func parseDate(s string, upper bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

func (h *handler) dailyBreakdown(c *gin.Context) {
	var q breakdownQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalid(c, err)
		return
	}
	from, ok := parseDate(q.DateFrom, false)
	if !ok {
		fail(c, apperr.Validation("date_from must be a date or an RFC3339 timestamp"))
		return
	}
	to, ok := parseDate(q.DateTo, true)
	if !ok {
		fail(c, apperr.Validation("date_to must be a date or an RFC3339 timestamp"))
		return
	}

	breakdown, err := h.svc.DailyBreakdown(c.Request.Context(), from, to, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
