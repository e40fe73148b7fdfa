package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/linktrack/linktrack/internal/apperrors"
	"github.com/linktrack/linktrack/internal/database"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

// SQLRepo is the raw-SQL LinkRepo implementation. It shares the GORM
// connection pool but issues hand-written queries.
type SQLRepo struct {
	db  *database.DB
	log *logger.Logger
}

// NewSQLRepo creates a raw-SQL repository over the shared pool.
func NewSQLRepo(db *database.DB, log *logger.Logger) *SQLRepo {
	return &SQLRepo{db: db, log: log.WithComponent("storage.sql")}
}

var _ LinkRepo = (*SQLRepo)(nil)

// RegisterChat creates a chat row. Duplicate registration is an error.
func (r *SQLRepo) RegisterChat(ctx context.Context, tgID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := r.chatExists(tx, tgID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ChatAlreadyRegistered(tgID)
		}
		if err := tx.Exec("INSERT INTO users (id) VALUES (?)", tgID).Error; err != nil {
			return apperrors.Internal(err)
		}
		r.log.Info("Chat registered", map[string]interface{}{"tg_id": tgID})
		return nil
	})
}

// DeleteChat removes a chat; dependent rows go with the FK cascade.
func (r *SQLRepo) DeleteChat(ctx context.Context, tgID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := r.chatExists(tx, tgID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ChatNotRegistered(tgID)
		}
		if err := tx.Exec("DELETE FROM users WHERE id = ?", tgID).Error; err != nil {
			return apperrors.Internal(err)
		}
		r.log.Info("Chat deleted", map[string]interface{}{"tg_id": tgID})
		return nil
	})
}

// ListLinks returns one page of the chat's links with tags and filters.
func (r *SQLRepo) ListLinks(ctx context.Context, tgID int64, page, pageSize int) ([]model.LinkResponse, error) {
	tx := r.db.WithContext(ctx)
	exists, err := r.chatExists(tx, tgID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ChatNotRegistered(tgID)
	}

	rows, err := r.pageRows(tx,
		"SELECT link_id, tg_id, link, date FROM link_date WHERE tg_id = ? ORDER BY link_id LIMIT ? OFFSET ?",
		tgID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(tx, rows); err != nil {
		return nil, err
	}

	out := make([]model.LinkResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.LinkResponse{
			ID: row.LinkID, URL: row.URL, Tags: row.Tags, Filters: row.Filters,
		})
	}
	return out, nil
}

// AddLink starts tracking a URL for a chat at the given event date.
func (r *SQLRepo) AddLink(ctx context.Context, tgID int64, url, date string, tags, filters []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := r.chatExists(tx, tgID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ChatNotRegistered(tgID)
		}

		var dup int64
		if err := tx.Raw(
			"SELECT count(*) FROM link_date WHERE tg_id = ? AND link = ?", tgID, url,
		).Scan(&dup).Error; err != nil {
			return apperrors.Internal(err)
		}
		if dup > 0 {
			return apperrors.LinkAlreadyTracked(url)
		}

		var linkID int64
		if err := tx.Raw(
			"INSERT INTO link_date (tg_id, link, date) VALUES (?, ?, ?) RETURNING link_id",
			tgID, url, date,
		).Scan(&linkID).Error; err != nil {
			return apperrors.Internal(err)
		}

		for _, tag := range tags {
			if err := tx.Exec("INSERT INTO link_tag (link_id, tag) VALUES (?, ?)", linkID, tag).Error; err != nil {
				return apperrors.Internal(err)
			}
		}
		for _, filter := range filters {
			if err := tx.Exec("INSERT INTO link_filter (link_id, filter) VALUES (?, ?)", linkID, filter).Error; err != nil {
				return apperrors.Internal(err)
			}
		}
		r.log.Info("Link added", map[string]interface{}{"tg_id": tgID, "url": url})
		return nil
	})
}

// RemoveLink stops tracking a URL and returns the removed link.
func (r *SQLRepo) RemoveLink(ctx context.Context, tgID int64, url string) (*model.LinkResponse, error) {
	var removed *model.LinkResponse
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := r.chatExists(tx, tgID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ChatNotRegistered(tgID)
		}

		rows, err := r.pageRows(tx,
			"SELECT link_id, tg_id, link, date FROM link_date WHERE tg_id = ? AND link = ?", tgID, url)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperrors.LinkNotFound(tgID, url)
		}
		if err := r.attachDetails(tx, rows); err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM link_date WHERE tg_id = ? AND link = ?", tgID, url).Error; err != nil {
			return apperrors.Internal(err)
		}
		removed = &model.LinkResponse{
			ID: rows[0].LinkID, URL: rows[0].URL, Tags: rows[0].Tags, Filters: rows[0].Filters,
		}
		r.log.Info("Link removed", map[string]interface{}{"tg_id": tgID, "url": url})
		return nil
	})
	return removed, err
}

// AllLinks returns one global page of tracked links for the scheduler.
func (r *SQLRepo) AllLinks(ctx context.Context, page, pageSize int) ([]model.LinkSnapshot, error) {
	tx := r.db.WithContext(ctx)
	rows, err := r.pageRows(tx,
		"SELECT link_id, tg_id, link, date FROM link_date ORDER BY link_id LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(tx, rows); err != nil {
		return nil, err
	}

	out := make([]model.LinkSnapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

// AddTag attaches a tag to a tracked link.
func (r *SQLRepo) AddTag(ctx context.Context, tgID int64, url, tag string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linkID, err := r.linkID(tx, tgID, url)
		if err != nil {
			return err
		}

		var dup int64
		if err := tx.Raw(
			"SELECT count(*) FROM link_tag WHERE link_id = ? AND tag = ?", linkID, tag,
		).Scan(&dup).Error; err != nil {
			return apperrors.Internal(err)
		}
		if dup > 0 {
			return apperrors.TagAlreadyExists(url, tag)
		}
		if err := tx.Exec("INSERT INTO link_tag (link_id, tag) VALUES (?, ?)", linkID, tag).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
}

// RemoveTag detaches a tag from a tracked link.
func (r *SQLRepo) RemoveTag(ctx context.Context, tgID int64, url, tag string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linkID, err := r.linkID(tx, tgID, url)
		if err != nil {
			return err
		}

		var present int64
		if err := tx.Raw(
			"SELECT count(*) FROM link_tag WHERE link_id = ? AND tag = ?", linkID, tag,
		).Scan(&present).Error; err != nil {
			return apperrors.Internal(err)
		}
		if present == 0 {
			return apperrors.TagNotFound(url, tag)
		}
		if err := tx.Exec("DELETE FROM link_tag WHERE link_id = ? AND tag = ?", linkID, tag).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
}

// UpdateEventDate stores a new last-event date for a link.
func (r *SQLRepo) UpdateEventDate(ctx context.Context, linkID int64, date string) error {
	res := r.db.WithContext(ctx).Exec("UPDATE link_date SET date = ? WHERE link_id = ?", date, linkID)
	if res.Error != nil {
		return apperrors.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.LinkNotFound(0, "")
	}
	return nil
}

// SetNotifyTime sets (or clears, with nil) the chat's HH:MM delivery time.
func (r *SQLRepo) SetNotifyTime(ctx context.Context, tgID int64, hhmm *string) error {
	if hhmm != nil {
		if _, err := time.Parse("15:04", *hhmm); err != nil {
			return apperrors.BadTimeFormat(*hhmm)
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := r.chatExists(tx, tgID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ChatNotRegistered(tgID)
		}
		if err := tx.Exec("UPDATE users SET time_push_up = ? WHERE id = ?", hhmm, tgID).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
}

// NotifyTime returns the chat's delivery time, nil when unset.
func (r *SQLRepo) NotifyTime(ctx context.Context, tgID int64) (*string, error) {
	tx := r.db.WithContext(ctx)
	exists, err := r.chatExists(tx, tgID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ChatNotRegistered(tgID)
	}

	var value sql.NullString
	if err := tx.Raw("SELECT time_push_up FROM users WHERE id = ?", tgID).Scan(&value).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if !value.Valid {
		return nil, nil
	}
	return &value.String, nil
}

// --- helpers ---

func (r *SQLRepo) chatExists(tx *gorm.DB, tgID int64) (bool, error) {
	var count int64
	if err := tx.Raw("SELECT count(*) FROM users WHERE id = ?", tgID).Scan(&count).Error; err != nil {
		return false, apperrors.Internal(err)
	}
	return count > 0, nil
}

func (r *SQLRepo) linkID(tx *gorm.DB, tgID int64, url string) (int64, error) {
	exists, err := r.chatExists(tx, tgID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, apperrors.ChatNotRegistered(tgID)
	}

	var linkID sql.NullInt64
	err = tx.Raw("SELECT link_id FROM link_date WHERE tg_id = ? AND link = ?", tgID, url).Scan(&linkID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.Internal(err)
	}
	if !linkID.Valid {
		return 0, apperrors.LinkNotFound(tgID, url)
	}
	return linkID.Int64, nil
}

// pageRows runs a link_date query and scans the flat rows.
func (r *SQLRepo) pageRows(tx *gorm.DB, query string, args ...interface{}) ([]*model.LinkSnapshot, error) {
	rows, err := tx.Raw(query, args...).Rows()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer rows.Close()

	var out []*model.LinkSnapshot
	for rows.Next() {
		snap := &model.LinkSnapshot{Tags: []string{}, Filters: []string{}}
		if err := rows.Scan(&snap.LinkID, &snap.ChatID, &snap.URL, &snap.Date); err != nil {
			return nil, apperrors.Internal(err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal(err)
	}
	return out, nil
}

// attachDetails fills Tags and Filters for the given rows.
func (r *SQLRepo) attachDetails(tx *gorm.DB, links []*model.LinkSnapshot) error {
	byID := make(map[int64]*model.LinkSnapshot, len(links))
	ids := make([]int64, 0, len(links))
	for _, l := range links {
		byID[l.LinkID] = l
		ids = append(ids, l.LinkID)
	}
	if len(ids) == 0 {
		return nil
	}

	tagRows, err := tx.Raw("SELECT link_id, tag FROM link_tag WHERE link_id IN ? ORDER BY tag", ids).Rows()
	if err != nil {
		return apperrors.Internal(err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var id int64
		var tag string
		if err := tagRows.Scan(&id, &tag); err != nil {
			return apperrors.Internal(err)
		}
		if l, ok := byID[id]; ok {
			l.Tags = append(l.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return apperrors.Internal(err)
	}

	filterRows, err := tx.Raw("SELECT link_id, filter FROM link_filter WHERE link_id IN ? ORDER BY filter", ids).Rows()
	if err != nil {
		return apperrors.Internal(err)
	}
	defer filterRows.Close()
	for filterRows.Next() {
		var id int64
		var filter string
		if err := filterRows.Scan(&id, &filter); err != nil {
			return apperrors.Internal(err)
		}
		if l, ok := byID[id]; ok {
			l.Filters = append(l.Filters, filter)
		}
	}
	return filterRows.Err()
}
