package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/linktrack/linktrack/internal/apperrors"
	"github.com/linktrack/linktrack/internal/database"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

// GormRepo is the ORM-backed LinkRepo implementation.
type GormRepo struct {
	db  *database.DB
	log *logger.Logger
}

// NewGormRepo creates a GORM repository over the shared pool.
func NewGormRepo(db *database.DB, log *logger.Logger) *GormRepo {
	return &GormRepo{db: db, log: log.WithComponent("storage.gorm")}
}

var _ LinkRepo = (*GormRepo)(nil)

// RegisterChat creates a chat row. Duplicate registration is an error.
func (r *GormRepo) RegisterChat(ctx context.Context, tgID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Chat
		err := tx.First(&existing, "id = ?", tgID).Error
		switch {
		case err == nil:
			return apperrors.ChatAlreadyRegistered(tgID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.Internal(err)
		}
		if err := tx.Create(&model.Chat{ID: tgID}).Error; err != nil {
			return apperrors.Internal(err)
		}
		r.log.Info("Chat registered", map[string]interface{}{"tg_id": tgID})
		return nil
	})
}

// DeleteChat removes a chat and everything it tracks.
func (r *GormRepo) DeleteChat(ctx context.Context, tgID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat, err := r.chat(tx, tgID)
		if err != nil {
			return err
		}
		// Row-level cascade covers links, tags, and filters.
		if err := tx.Delete(chat).Error; err != nil {
			return apperrors.Internal(err)
		}
		r.log.Info("Chat deleted", map[string]interface{}{"tg_id": tgID})
		return nil
	})
}

// ListLinks returns one page of the chat's links with tags and filters.
func (r *GormRepo) ListLinks(ctx context.Context, tgID int64, page, pageSize int) ([]model.LinkResponse, error) {
	tx := r.db.WithContext(ctx)
	if _, err := r.chat(tx, tgID); err != nil {
		return nil, err
	}

	var links []model.TrackedLink
	err := tx.Preload("Tags").Preload("Filters").
		Where("tg_id = ?", tgID).
		Order("link_id").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&links).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, toResponse(&l))
	}
	return out, nil
}

// AddLink starts tracking a URL for a chat at the given event date.
func (r *GormRepo) AddLink(ctx context.Context, tgID int64, url, date string, tags, filters []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.chat(tx, tgID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.TrackedLink{}).
			Where("tg_id = ? AND link = ?", tgID, url).
			Count(&count).Error; err != nil {
			return apperrors.Internal(err)
		}
		if count > 0 {
			return apperrors.LinkAlreadyTracked(url)
		}

		link := model.TrackedLink{ChatID: tgID, URL: url, Date: date}
		for _, t := range tags {
			link.Tags = append(link.Tags, model.LinkTag{Tag: t})
		}
		for _, f := range filters {
			link.Filters = append(link.Filters, model.LinkFilter{Filter: f})
		}
		if err := tx.Create(&link).Error; err != nil {
			return apperrors.Internal(err)
		}
		r.log.Info("Link added", map[string]interface{}{"tg_id": tgID, "url": url})
		return nil
	})
}

// RemoveLink stops tracking a URL and returns the removed link.
func (r *GormRepo) RemoveLink(ctx context.Context, tgID int64, url string) (*model.LinkResponse, error) {
	var removed *model.LinkResponse
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.chat(tx, tgID); err != nil {
			return err
		}

		var link model.TrackedLink
		err := tx.Preload("Tags").Preload("Filters").
			First(&link, "tg_id = ? AND link = ?", tgID, url).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.LinkNotFound(tgID, url)
		}
		if err != nil {
			return apperrors.Internal(err)
		}

		if err := tx.Delete(&model.TrackedLink{}, "link_id = ?", link.ID).Error; err != nil {
			return apperrors.Internal(err)
		}
		resp := toResponse(&link)
		removed = &resp
		r.log.Info("Link removed", map[string]interface{}{"tg_id": tgID, "url": url})
		return nil
	})
	return removed, err
}

// AllLinks returns one global page of tracked links for the scheduler.
func (r *GormRepo) AllLinks(ctx context.Context, page, pageSize int) ([]model.LinkSnapshot, error) {
	var links []model.TrackedLink
	err := r.db.WithContext(ctx).
		Preload("Tags").Preload("Filters").
		Order("link_id").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&links).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.LinkSnapshot, 0, len(links))
	for _, l := range links {
		out = append(out, model.LinkSnapshot{
			LinkID:  l.ID,
			ChatID:  l.ChatID,
			URL:     l.URL,
			Date:    l.Date,
			Tags:    tagValues(l.Tags),
			Filters: filterValues(l.Filters),
		})
	}
	return out, nil
}

// AddTag attaches a tag to a tracked link.
func (r *GormRepo) AddTag(ctx context.Context, tgID int64, url, tag string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linkID, err := r.linkID(tx, tgID, url)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.LinkTag{}).
			Where("link_id = ? AND tag = ?", linkID, tag).
			Count(&count).Error; err != nil {
			return apperrors.Internal(err)
		}
		if count > 0 {
			return apperrors.TagAlreadyExists(url, tag)
		}
		if err := tx.Create(&model.LinkTag{LinkID: linkID, Tag: tag}).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
}

// RemoveTag detaches a tag from a tracked link.
func (r *GormRepo) RemoveTag(ctx context.Context, tgID int64, url, tag string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linkID, err := r.linkID(tx, tgID, url)
		if err != nil {
			return err
		}

		res := tx.Delete(&model.LinkTag{}, "link_id = ? AND tag = ?", linkID, tag)
		if res.Error != nil {
			return apperrors.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.TagNotFound(url, tag)
		}
		return nil
	})
}

// UpdateEventDate stores a new last-event date for a link.
func (r *GormRepo) UpdateEventDate(ctx context.Context, linkID int64, date string) error {
	res := r.db.WithContext(ctx).Model(&model.TrackedLink{}).
		Where("link_id = ?", linkID).
		Update("date", date)
	if res.Error != nil {
		return apperrors.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.LinkNotFound(0, "")
	}
	return nil
}

// SetNotifyTime sets (or clears, with nil) the chat's HH:MM delivery time.
func (r *GormRepo) SetNotifyTime(ctx context.Context, tgID int64, hhmm *string) error {
	if hhmm != nil {
		if _, err := time.Parse("15:04", *hhmm); err != nil {
			return apperrors.BadTimeFormat(*hhmm)
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.chat(tx, tgID); err != nil {
			return err
		}
		if err := tx.Model(&model.Chat{}).
			Where("id = ?", tgID).
			Update("time_push_up", hhmm).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
}

// NotifyTime returns the chat's delivery time, nil when unset.
func (r *GormRepo) NotifyTime(ctx context.Context, tgID int64) (*string, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).First(&chat, "id = ?", tgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ChatNotRegistered(tgID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return chat.NotifyAt, nil
}

// --- helpers ---

func (r *GormRepo) chat(tx *gorm.DB, tgID int64) (*model.Chat, error) {
	var chat model.Chat
	err := tx.First(&chat, "id = ?", tgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ChatNotRegistered(tgID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &chat, nil
}

func (r *GormRepo) linkID(tx *gorm.DB, tgID int64, url string) (int64, error) {
	if _, err := r.chat(tx, tgID); err != nil {
		return 0, err
	}
	var link model.TrackedLink
	err := tx.Select("link_id").First(&link, "tg_id = ? AND link = ?", tgID, url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.LinkNotFound(tgID, url)
	}
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return link.ID, nil
}

func toResponse(l *model.TrackedLink) model.LinkResponse {
	return model.LinkResponse{
		ID:      l.ID,
		URL:     l.URL,
		Tags:    tagValues(l.Tags),
		Filters: filterValues(l.Filters),
	}
}

func tagValues(tags []model.LinkTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Tag)
	}
	return out
}

func filterValues(filters []model.LinkFilter) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.Filter)
	}
	return out
}
