package models

import "time"

type Post struct {
	ID           string    `db:"id" json:"id"`
	PageID       string    `db:"page_id" json:"page_id"`
	Channel      string    `db:"channel" json:"channel"`
	Kind         string    `db:"kind" json:"kind"`
	Text         string    `db:"text" json:"text"`
	ImageURLs    []string  `db:"image_urls" json:"image_urls"`
	VideoURLs    []string  `db:"video_urls" json:"video_urls"`
	IsApproved   bool      `db:"is_approved" json:"is_approved"`
	Status       string    `db:"status" json:"status"`
	StatusReason string    `db:"status_reason" json:"status_reason,omitempty"`
	PostedDate   time.Time `db:"posted_date" json:"posted_date"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft    = "draft"
	PostStatusQueued   = "queued"
	PostStatusSent     = "sent"
	PostStatusNotSent  = "not sent"
	PostStatusRejected = "rejected"
)

const (
	ChannelFacebook  = "facebook"
	ChannelInstagram = "instagram"
	ChannelTwitter   = "twitter"
	ChannelLinkedin  = "linkedin"
)
