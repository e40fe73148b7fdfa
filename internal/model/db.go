// Package model defines the persistent entities and the wire types shared
// by the scrapper API, the bot, and the scheduler.
package model

// Chat is a registered Telegram chat. The primary key is the Telegram chat
// id itself, so there is no autoincrement.
type Chat struct {
	ID int64 `gorm:"primaryKey;autoIncrement:false"`
	// NotifyAt is an optional HH:MM local time at which the chat wants
	// its update notifications delivered. Nil means deliver immediately.
	NotifyAt *string       `gorm:"column:time_push_up"`
	Links    []TrackedLink `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

func (Chat) TableName() string { return "users" }

// TrackedLink is a URL tracked by a chat together with the date of the last
// observed upstream event. The date is stored as "YYYY-MM-DD HH:MM:SS".
type TrackedLink struct {
	ID      int64        `gorm:"column:link_id;primaryKey;autoIncrement"`
	ChatID  int64        `gorm:"column:tg_id;index:idx_linkdate_tg_id"`
	URL     string       `gorm:"column:link;index:idx_linkdate_link"`
	Date    string       `gorm:"column:date"`
	Tags    []LinkTag    `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`
	Filters []LinkFilter `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`
}

func (TrackedLink) TableName() string { return "link_date" }

// LinkTag attaches a tag to a tracked link. A tag is unique per link.
type LinkTag struct {
	LinkID int64  `gorm:"column:link_id;primaryKey;autoIncrement:false"`
	Tag    string `gorm:"column:tag;primaryKey"`
}

func (LinkTag) TableName() string { return "link_tag" }

// LinkFilter attaches a key:value filter to a tracked link.
type LinkFilter struct {
	LinkID int64  `gorm:"column:link_id;primaryKey;autoIncrement:false"`
	Filter string `gorm:"column:filter;primaryKey"`
}

func (LinkFilter) TableName() string { return "link_filter" }
