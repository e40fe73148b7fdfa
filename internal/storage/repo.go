// Package storage implements link persistence on top of the shared database
// pool. Two interchangeable repositories exist: a GORM one and a raw-SQL one,
// selected by database.access in the configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/linktrack/linktrack/internal/database"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

// LinkRepo is the persistence surface shared by the scrapper API and the
// scheduler.
type LinkRepo interface {
	// RegisterChat creates a chat row. Duplicate registration is an error.
	RegisterChat(ctx context.Context, tgID int64) error
	// DeleteChat removes a chat and, by cascade, everything it tracks.
	DeleteChat(ctx context.Context, tgID int64) error
	// ListLinks returns one page of the chat's links with tags and filters.
	ListLinks(ctx context.Context, tgID int64, page, pageSize int) ([]model.LinkResponse, error)
	// AddLink starts tracking a URL for a chat at the given event date.
	AddLink(ctx context.Context, tgID int64, url, date string, tags, filters []string) error
	// RemoveLink stops tracking a URL and returns the removed link.
	RemoveLink(ctx context.Context, tgID int64, url string) (*model.LinkResponse, error)
	// AllLinks returns one global page of tracked links for the scheduler.
	AllLinks(ctx context.Context, page, pageSize int) ([]model.LinkSnapshot, error)
	// AddTag attaches a tag to a tracked link.
	AddTag(ctx context.Context, tgID int64, url, tag string) error
	// RemoveTag detaches a tag from a tracked link.
	RemoveTag(ctx context.Context, tgID int64, url, tag string) error
	// UpdateEventDate stores a new last-event date for a link.
	UpdateEventDate(ctx context.Context, linkID int64, date string) error
	// SetNotifyTime sets (or clears, with nil) the chat's HH:MM delivery time.
	SetNotifyTime(ctx context.Context, tgID int64, hhmm *string) error
	// NotifyTime returns the chat's delivery time, nil when unset.
	NotifyTime(ctx context.Context, tgID int64) (*string, error)
}

// New builds the repository selected by the database access mode.
func New(db *database.DB, log *logger.Logger) (LinkRepo, error) {
	switch db.Config().Access {
	case database.AccessORM:
		return NewGormRepo(db, log), nil
	case database.AccessSQL:
		return NewSQLRepo(db, log), nil
	default:
		return nil, fmt.Errorf("unknown database access mode %q", db.Config().Access)
	}
}
