package model

// LinkResponse is the scrapper API representation of a tracked link.
type LinkResponse struct {
	ID      int64    `json:"id"`
	URL     string   `json:"url"`
	Tags    []string `json:"tags"`
	Filters []string `json:"filters"`
}

// ListLinksResponse is the envelope for GET /links.
type ListLinksResponse struct {
	Links []LinkResponse `json:"links"`
	Size  int            `json:"size"`
}

// AddLinkRequest is the body of POST /links.
type AddLinkRequest struct {
	Link    string   `json:"link" binding:"required,url"`
	Tags    []string `json:"tags"`
	Filters []string `json:"filters"`
}

// RemoveLinkRequest is the body of DELETE /links.
type RemoveLinkRequest struct {
	Link string `json:"link" binding:"required,url"`
}

// TagRequest is the body of POST /tags and DELETE /tags.
type TagRequest struct {
	URL string `json:"url" binding:"required,url"`
	Tag string `json:"tag" binding:"required"`
}

// UpdateTimeRequest is the body of PUT /time. The value is HH:MM, 24h.
type UpdateTimeRequest struct {
	Time string `json:"time" binding:"required,hhmm"`
}

// LinkUpdate is the notification payload the scrapper pushes to the bot,
// over HTTP or Kafka depending on the configured transport.
type LinkUpdate struct {
	ID          int64   `json:"id"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	TgChatIDs   []int64 `json:"tgChatIds"`
}

// LinkSnapshot is the scheduler's flat view of a tracked link: one row per
// link with its tags and filters already aggregated.
type LinkSnapshot struct {
	LinkID  int64
	ChatID  int64
	URL     string
	Date    string
	Tags    []string
	Filters []string
}
