package model

import "time"

// Video is an upload slot: the row exists before any bytes land in object
// storage, so a freshly created video may have no playable content yet.
// UserID is immutable after creation; every mutation is scoped by it.
type Video struct {
	ID                     string     `db:"id" json:"id"`
	UserID                 string     `db:"user_id" json:"userId"`
	Title                  string     `db:"title" json:"title"`
	Sharing                bool       `db:"sharing" json:"sharing"`
	DeleteAfterLinkExpires bool       `db:"delete_after_link_expires" json:"delete_after_link_expires"`
	ShareLinkExpiresAt     *time.Time `db:"share_link_expires_at" json:"shareLinkExpiresAt"`
	CreatedAt              time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updatedAt"`
}
