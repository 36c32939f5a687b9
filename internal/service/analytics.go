package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

// DailyBreakdown counts the user's comments per calendar day within
// [from, to]. Days without comments are absent from the result.
func (svc *Service) DailyBreakdown(ctx context.Context, from, to time.Time, user model.User) (map[string]int, error) {
	if to.Before(from) {
		return nil, apperr.Validation("date_from must not be after date_to")
	}
	rows, err := svc.comments.DailyBreakdown(ctx, user.ID, from, to)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(rows, func(row model.DailyCount) (string, int) {
		return row.Day.Format(time.DateOnly), row.Count
	}), nil
}
