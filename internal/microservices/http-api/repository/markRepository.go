package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huger6/filseries/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

var (
	// ErrRelationConflict: the item already has the competing relation
	// (seen vs watchlist) for this user.
	ErrRelationConflict = errors.New("competing relation exists for item")
)

// MarkKey identifies a single mark row.
type MarkKey struct {
	UserID   string
	ItemID   int64
	ItemKind string
	Relation string
}

// MarkUpdate is a field mask for partial updates: only non-nil fields are
// written. UpdatedAt is always refreshed on a successful update.
type MarkUpdate struct {
	Rating         *float64
	ProgressStatus *string
	LastSeasonSeen *int
}

// Cursor is a keyset pagination position: the (item_id, updated_at) of the
// last row of the previous page.
type Cursor struct {
	LastID   int64
	LastDate time.Time
}

// MarkedIDSet holds the catalog ids a user has marked, bucketed by kind and
// relation. Used for status overlays on search/list cards.
type MarkedIDSet struct {
	MoviesSeen      map[int64]struct{}
	MoviesWatchlist map[int64]struct{}
	SeriesSeen      map[int64]struct{}
	SeriesWatchlist map[int64]struct{}
}

type MarkRepository interface {
	Add(ctx context.Context, mark *models.UserMark) error
	Remove(ctx context.Context, key MarkKey) error
	UpdateFields(ctx context.Context, key MarkKey, update MarkUpdate) error
	Exists(ctx context.Context, key MarkKey) (bool, error)
	Get(ctx context.Context, key MarkKey) (*models.UserMark, error)
	Promote(ctx context.Context, mark *models.UserMark) error
	FetchPage(ctx context.Context, userID, itemKind, relation string, cursor *Cursor, limit int) ([]models.UserMark, error)
	MarkedIDs(ctx context.Context, userID string) (MarkedIDSet, error)
	SeriesInProgress(ctx context.Context) ([]models.UserMark, error)
}

type markRepository struct {
	db *gorm.DB
}

func NewMarkRepository(db *gorm.DB) MarkRepository {
	return &markRepository{db: db}
}

func competingRelation(relation string) string {
	if relation == models.RelationSeen {
		return models.RelationWatchlist
	}
	return models.RelationSeen
}

// Add creates a mark. The exclusivity check (an item cannot be in seen and
// watchlist at the same time) runs in the same transaction as the insert.
func (r *markRepository) Add(ctx context.Context, mark *models.UserMark) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserMark{}).
			Where("user_id = ? AND item_id = ? AND item_kind = ? AND relation = ?",
				mark.UserID, mark.ItemID, mark.ItemKind, competingRelation(mark.Relation)).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check competing relation: %w", err)
		}
		if count > 0 {
			return ErrRelationConflict
		}

		mark.UpdatedAt = time.Now().UTC()
		if err := tx.Create(mark).Error; err != nil {
			return fmt.Errorf("add mark: %w", err)
		}
		return nil
	})
}

func (r *markRepository) Remove(ctx context.Context, key MarkKey) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND item_kind = ? AND relation = ?",
			key.UserID, key.ItemID, key.ItemKind, key.Relation).
		Delete(&models.UserMark{})

	if result.Error != nil {
		return fmt.Errorf("remove mark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateFields writes only the fields set in update. The statement is built
// from a column map, never from string concatenation.
func (r *markRepository) UpdateFields(ctx context.Context, key MarkKey, update MarkUpdate) error {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if update.Rating != nil {
		updates["user_rating"] = *update.Rating
	}
	if update.ProgressStatus != nil {
		updates["progress_status"] = *update.ProgressStatus
	}
	if update.LastSeasonSeen != nil {
		updates["last_season_seen"] = *update.LastSeasonSeen
	}

	result := r.db.WithContext(ctx).
		Model(&models.UserMark{}).
		Where("user_id = ? AND item_id = ? AND item_kind = ? AND relation = ?",
			key.UserID, key.ItemID, key.ItemKind, key.Relation).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("update mark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *markRepository) Exists(ctx context.Context, key MarkKey) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserMark{}).
		Where("user_id = ? AND item_id = ? AND item_kind = ? AND relation = ?",
			key.UserID, key.ItemID, key.ItemKind, key.Relation).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check mark exists: %w", err)
	}
	return count > 0, nil
}

func (r *markRepository) Get(ctx context.Context, key MarkKey) (*models.UserMark, error) {
	var mark models.UserMark
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND item_kind = ? AND relation = ?",
			key.UserID, key.ItemID, key.ItemKind, key.Relation).
		First(&mark).Error; err != nil {
		return nil, err
	}
	return &mark, nil
}

// Promote moves an item from the watchlist into the seen set. The watchlist
// delete and the seen insert commit as one transaction; a missing watchlist
// row is not an error.
func (r *markRepository) Promote(ctx context.Context, mark *models.UserMark) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND item_id = ? AND item_kind = ? AND relation = ?",
				mark.UserID, mark.ItemID, mark.ItemKind, models.RelationWatchlist).
			Delete(&models.UserMark{}).Error; err != nil {
			return fmt.Errorf("clear watchlist mark: %w", err)
		}

		mark.Relation = models.RelationSeen
		mark.UpdatedAt = time.Now().UTC()
		if err := tx.Create(mark).Error; err != nil {
			return fmt.Errorf("promote mark: %w", err)
		}
		return nil
	})
}

// FetchPage returns one page of marks ordered by updated_at DESC with
// item_id DESC as tie-break. With a cursor it returns rows strictly after
// the cursor position in that total order, which keeps pages stable under
// concurrent writes.
func (r *markRepository) FetchPage(ctx context.Context, userID, itemKind, relation string, cursor *Cursor, limit int) ([]models.UserMark, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND item_kind = ? AND relation = ?", userID, itemKind, relation)

	if cursor != nil {
		q = q.Where("updated_at < ? OR (updated_at = ? AND item_id < ?)",
			cursor.LastDate, cursor.LastDate, cursor.LastID)
	}

	var marks []models.UserMark
	if err := q.Order("updated_at DESC, item_id DESC").
		Limit(limit).
		Find(&marks).Error; err != nil {
		return nil, fmt.Errorf("fetch mark page: %w", err)
	}
	return marks, nil
}

// SeriesInProgress returns every series seen-mark whose status is not
// already new_season_available, across all users. The season sync job walks
// this set.
func (r *markRepository) SeriesInProgress(ctx context.Context) ([]models.UserMark, error) {
	var marks []models.UserMark
	if err := r.db.WithContext(ctx).
		Where("item_kind = ? AND relation = ?", models.KindSeries, models.RelationSeen).
		Where("progress_status IN ?", []string{models.StatusWatching, models.StatusCompletedSeason}).
		Find(&marks).Error; err != nil {
		return nil, fmt.Errorf("fetch series in progress: %w", err)
	}
	return marks, nil
}

func (r *markRepository) MarkedIDs(ctx context.Context, userID string) (MarkedIDSet, error) {
	set := MarkedIDSet{
		MoviesSeen:      make(map[int64]struct{}),
		MoviesWatchlist: make(map[int64]struct{}),
		SeriesSeen:      make(map[int64]struct{}),
		SeriesWatchlist: make(map[int64]struct{}),
	}

	var rows []models.UserMark
	if err := r.db.WithContext(ctx).
		Select("item_id", "item_kind", "relation").
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return set, fmt.Errorf("fetch marked ids: %w", err)
	}

	for _, row := range rows {
		switch {
		case row.ItemKind == models.KindMovie && row.Relation == models.RelationSeen:
			set.MoviesSeen[row.ItemID] = struct{}{}
		case row.ItemKind == models.KindMovie && row.Relation == models.RelationWatchlist:
			set.MoviesWatchlist[row.ItemID] = struct{}{}
		case row.ItemKind == models.KindSeries && row.Relation == models.RelationSeen:
			set.SeriesSeen[row.ItemID] = struct{}{}
		case row.ItemKind == models.KindSeries && row.Relation == models.RelationWatchlist:
			set.SeriesWatchlist[row.ItemID] = struct{}{}
		}
	}
	return set, nil
}
