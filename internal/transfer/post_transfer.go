package transfer

// PostCreation is the request body for creating or editing a post. PostID is
// set only on edits. ScheduleDate is the intended publish instant
// ("2006-01-02T15:04"); ScheduleSeconds is the TTL until it, supplied by the
// client alongside ShouldSchedule.
type PostCreation struct {
	PostID          string   `json:"post_id"`
	PageID          string   `json:"page_id"`
	Kind            string   `json:"kind"`
	Text            string   `json:"text"`
	ImageURLs       []string `json:"image_urls"`
	VideoURLs       []string `json:"video_urls"`
	Draft           bool     `json:"draft"`
	IsApproved      bool     `json:"is_approved"`
	ShouldSchedule  bool     `json:"should_schedule"`
	ScheduleSeconds int      `json:"schedule_seconds"`
	ScheduleDate    string   `json:"schedule_date"`
}

type PostApproval struct {
	PostID          string `json:"post_id"`
	PageID          string `json:"page_id"`
	Kind            string `json:"kind"`
	ShouldSchedule  bool   `json:"should_schedule"`
	ScheduleSeconds int    `json:"schedule_seconds"`
}

type PageCreation struct {
	PageID    string `json:"page_id"`
	Name      string `json:"name"`
	PageToken string `json:"page_token"`
	UserToken string `json:"user_token"`
	Channel   string `json:"channel"`
}
