package models

import "time"

// Page is a per-channel publish target. PageID is the channel-native
// identifier (Facebook page id, Instagram business account id, LinkedIn
// organization id, Twitter account id). PageToken is the opaque credential;
// for Twitter it is the composite "accessToken@accessTokenSecret" pair.
type Page struct {
	ID        int64     `db:"id" json:"id"`
	PageID    string    `db:"page_id" json:"page_id"`
	Name      string    `db:"name" json:"name"`
	PageToken string    `db:"page_token" json:"-"`
	UserToken string    `db:"user_token" json:"-"`
	UserID    string    `db:"user_id" json:"user_id"`
	Channel   string    `db:"channel" json:"channel"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
