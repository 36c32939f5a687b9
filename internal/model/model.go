package model

import "time"

type PostStatus string

const (
	StatusPublished PostStatus = "published"
	StatusDraft     PostStatus = "draft"
)

func (s PostStatus) Valid() bool {
	return s == StatusPublished || s == StatusDraft
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	Password     string    `db:"password" json:"-"`
	RefreshToken *string   `db:"refresh_token" json:"-"`
	Confirmed    bool      `db:"confirmed" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

type Post struct {
	ID                    int64      `db:"id" json:"id"`
	UserID                int64      `db:"user_id" json:"user_id"`
	Title                 string     `db:"title" json:"title"`
	Content               string     `db:"content" json:"content"`
	Status                PostStatus `db:"status" json:"status"`
	Censored              bool       `db:"censored" json:"censored"`
	AutomaticReplyEnabled bool       `db:"automatic_reply_enabled" json:"automatic_reply_enabled"`
	ReplyDelay            int        `db:"reply_delay" json:"reply_delay"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// Comment carries its author's public fields, filled by a join on users.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	Censored  bool      `db:"censored" json:"censored"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Username  string    `db:"username" json:"-"`
	Email     string    `db:"email" json:"-"`
}

type PostMedia struct {
	ID          int64     `db:"id" json:"id"`
	PostID      int64     `db:"post_id" json:"post_id"`
	ObjectKey   string    `db:"object_key" json:"object_key"`
	ContentType string    `db:"content_type" json:"content_type"`
	Size        int64     `db:"size" json:"size"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DailyCount is one row of the per-day comment breakdown.
type DailyCount struct {
	Day   time.Time `db:"day"`
	Count int       `db:"comment_count"`
}
