package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/huger6/filseries/internal/catalog"
	"github.com/huger6/filseries/internal/microservices/http-api/models"
	"github.com/huger6/filseries/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrRelationConflict = errors.New("item already has the competing relation")
	ErrAlreadyMarked    = errors.New("item already marked")
	ErrMarkNotFound     = errors.New("mark not found")
	ErrInvalidItemID    = errors.New("item id must be a positive integer")
	ErrInvalidItemKind  = errors.New("unsupported item kind")
	ErrInvalidRating    = errors.New("rating must be between 0.0 and 10.0")
	ErrInvalidSeason    = errors.New("last season seen must be positive")
	ErrInvalidStatus    = errors.New("unknown progress status")
	ErrSeriesOnlyField  = errors.New("progress fields apply to series only")
)

// MarkFields are the optional user fields carried on a seen mark.
type MarkFields struct {
	Rating         *float64
	ProgressStatus *string
	LastSeasonSeen *int
}

// EnrichedItem is one entry of a watched/watchlist page: external catalog
// metadata overlaid with the user's own fields. Entry order follows the
// mark store's pagination order.
type EnrichedItem struct {
	ID             int64     `json:"id"`
	ItemKind       string    `json:"item_kind"`
	Title          string    `json:"title"`
	PosterPath     string    `json:"poster_path"`
	ReleaseDate    string    `json:"release_date"`
	Overview       string    `json:"overview"`
	VoteAverage    float64   `json:"vote_average"`
	UserRating     *float64  `json:"user_rating,omitempty"`
	ProgressStatus *string   `json:"progress_status,omitempty"`
	LastSeasonSeen *int      `json:"last_season_seen,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MarkFlags is the membership overlay for one catalog item.
type MarkFlags struct {
	Seen        bool `json:"seen"`
	InWatchlist bool `json:"in_watchlist"`
}

// MarkDetail is the user's relation to a single title, for detail pages.
type MarkDetail struct {
	Seen        *models.UserMark `json:"seen,omitempty"`
	InWatchlist bool             `json:"in_watchlist"`
}

type MarkService interface {
	AddSeen(ctx context.Context, userID, itemKind string, itemID int64, fields MarkFields) error
	RemoveSeen(ctx context.Context, userID, itemKind string, itemID int64) error
	UpdateSeen(ctx context.Context, userID, itemKind string, itemID int64, fields MarkFields) error
	AddWatchlist(ctx context.Context, userID, itemKind string, itemID int64) error
	RemoveWatchlist(ctx context.Context, userID, itemKind string, itemID int64) error
	Page(ctx context.Context, userID, itemKind, relation string, cursor *repository.Cursor, limit int) ([]EnrichedItem, bool, error)
	Overlay(ctx context.Context, userID string, itemIDs []int64) (map[int64]MarkFlags, error)
	Detail(ctx context.Context, userID, itemKind string, itemID int64) (MarkDetail, error)
}

type markService struct {
	repo         repository.MarkRepository
	catalog      catalog.Client
	batchTimeout time.Duration
	logger       *slog.Logger
}

func NewMarkService(repo repository.MarkRepository, cat catalog.Client, batchTimeout time.Duration, logger *slog.Logger) MarkService {
	return &markService{
		repo:         repo,
		catalog:      cat,
		batchTimeout: batchTimeout,
		logger:       logger,
	}
}

func validateKey(itemKind string, itemID int64) error {
	if itemID <= 0 {
		return ErrInvalidItemID
	}
	if !models.ValidKind(itemKind) {
		return ErrInvalidItemKind
	}
	return nil
}

func validateFields(itemKind string, fields MarkFields) error {
	if fields.Rating != nil && (*fields.Rating < 0.0 || *fields.Rating > 10.0) {
		return ErrInvalidRating
	}
	if fields.ProgressStatus != nil || fields.LastSeasonSeen != nil {
		if itemKind != models.KindSeries {
			return ErrSeriesOnlyField
		}
	}
	if fields.ProgressStatus != nil && !models.ValidStatus(*fields.ProgressStatus) {
		return ErrInvalidStatus
	}
	if fields.LastSeasonSeen != nil && *fields.LastSeasonSeen <= 0 {
		return ErrInvalidSeason
	}
	return nil
}

// AddSeen marks an item as seen. A watchlist mark for the same item is
// cleared in the same transaction as the insert, so the promotion cannot
// leave the item in both sets.
func (s *markService) AddSeen(ctx context.Context, userID, itemKind string, itemID int64, fields MarkFields) error {
	if err := validateKey(itemKind, itemID); err != nil {
		return err
	}
	if err := validateFields(itemKind, fields); err != nil {
		return err
	}

	mark := &models.UserMark{
		UserID:         userID,
		ItemID:         itemID,
		ItemKind:       itemKind,
		Relation:       models.RelationSeen,
		UserRating:     fields.Rating,
		ProgressStatus: fields.ProgressStatus,
		LastSeasonSeen: fields.LastSeasonSeen,
	}
	if itemKind == models.KindSeries && mark.ProgressStatus == nil {
		status := models.StatusWatching
		mark.ProgressStatus = &status
	}

	if err := s.repo.Promote(ctx, mark); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyMarked
		}
		return err
	}
	return nil
}

func (s *markService) RemoveSeen(ctx context.Context, userID, itemKind string, itemID int64) error {
	return s.remove(ctx, repository.MarkKey{
		UserID: userID, ItemID: itemID, ItemKind: itemKind, Relation: models.RelationSeen,
	})
}

// UpdateSeen applies a partial update to a seen mark. Only supplied fields
// are written; updated_at is refreshed either way.
func (s *markService) UpdateSeen(ctx context.Context, userID, itemKind string, itemID int64, fields MarkFields) error {
	if err := validateKey(itemKind, itemID); err != nil {
		return err
	}
	if err := validateFields(itemKind, fields); err != nil {
		return err
	}

	err := s.repo.UpdateFields(ctx, repository.MarkKey{
		UserID: userID, ItemID: itemID, ItemKind: itemKind, Relation: models.RelationSeen,
	}, repository.MarkUpdate{
		Rating:         fields.Rating,
		ProgressStatus: fields.ProgressStatus,
		LastSeasonSeen: fields.LastSeasonSeen,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMarkNotFound
	}
	return err
}

// AddWatchlist adds an item to the watchlist. Fails with ErrRelationConflict
// when the item is already in the seen set; remove it from seen first.
func (s *markService) AddWatchlist(ctx context.Context, userID, itemKind string, itemID int64) error {
	if err := validateKey(itemKind, itemID); err != nil {
		return err
	}

	err := s.repo.Add(ctx, &models.UserMark{
		UserID:   userID,
		ItemID:   itemID,
		ItemKind: itemKind,
		Relation: models.RelationWatchlist,
	})
	switch {
	case errors.Is(err, repository.ErrRelationConflict):
		return ErrRelationConflict
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyMarked
	}
	return err
}

func (s *markService) RemoveWatchlist(ctx context.Context, userID, itemKind string, itemID int64) error {
	return s.remove(ctx, repository.MarkKey{
		UserID: userID, ItemID: itemID, ItemKind: itemKind, Relation: models.RelationWatchlist,
	})
}

func (s *markService) remove(ctx context.Context, key repository.MarkKey) error {
	if err := validateKey(key.ItemKind, key.ItemID); err != nil {
		return err
	}
	err := s.repo.Remove(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMarkNotFound
	}
	return err
}

// Page fetches one keyset page of marks and enriches it with catalog
// metadata. Storage failures come back as an empty page (the response
// contract hides them) but are logged here. Marks whose metadata lookup
// fails are dropped so the client never renders a broken card.
func (s *markService) Page(ctx context.Context, userID, itemKind, relation string, cursor *repository.Cursor, limit int) ([]EnrichedItem, bool, error) {
	if err := validatePageKind(itemKind); err != nil {
		return nil, false, err
	}

	marks, err := s.repo.FetchPage(ctx, userID, itemKind, relation, cursor, limit)
	if err != nil {
		s.logger.Error("mark page fetch failed",
			"user_id", userID, "item_kind", itemKind, "relation", relation, "error", err)
		return []EnrichedItem{}, false, nil
	}

	// Known imprecision: a last page that exactly fills the limit is
	// reported as having more.
	hasMore := len(marks) == limit

	refs := make([]catalog.ItemRef, 0, len(marks))
	for _, m := range marks {
		refs = append(refs, catalog.ItemRef{ID: m.ItemID, Kind: m.ItemKind})
	}
	metaByID := catalog.FetchBatch(ctx, s.catalog, refs, s.batchTimeout)

	items := make([]EnrichedItem, 0, len(marks))
	for _, m := range marks {
		meta, ok := metaByID[m.ItemID]
		if !ok {
			s.logger.Warn("dropping mark with missing catalog metadata",
				"item_kind", m.ItemKind, "item_id", m.ItemID)
			continue
		}
		items = append(items, EnrichedItem{
			ID:             m.ItemID,
			ItemKind:       m.ItemKind,
			Title:          meta.Title,
			PosterPath:     meta.PosterPath,
			ReleaseDate:    meta.ReleaseDate,
			Overview:       meta.Overview,
			VoteAverage:    meta.VoteAverage,
			UserRating:     m.UserRating,
			ProgressStatus: m.ProgressStatus,
			LastSeasonSeen: m.LastSeasonSeen,
			UpdatedAt:      m.UpdatedAt,
		})
	}
	return items, hasMore, nil
}

func validatePageKind(itemKind string) error {
	if !models.ValidKind(itemKind) {
		return ErrInvalidItemKind
	}
	return nil
}

// Overlay returns seen/watchlist membership for a batch of catalog ids.
// Anonymous callers (empty userID) get all-false without a store round-trip.
func (s *markService) Overlay(ctx context.Context, userID string, itemIDs []int64) (map[int64]MarkFlags, error) {
	flags := make(map[int64]MarkFlags, len(itemIDs))
	for _, id := range itemIDs {
		flags[id] = MarkFlags{}
	}
	if userID == "" || len(itemIDs) == 0 {
		return flags, nil
	}

	set, err := s.repo.MarkedIDs(ctx, userID)
	if err != nil {
		s.logger.Error("marked id fetch failed", "user_id", userID, "error", err)
		return flags, nil
	}

	for _, id := range itemIDs {
		_, movieSeen := set.MoviesSeen[id]
		_, seriesSeen := set.SeriesSeen[id]
		_, movieWL := set.MoviesWatchlist[id]
		_, seriesWL := set.SeriesWatchlist[id]
		flags[id] = MarkFlags{
			Seen:        movieSeen || seriesSeen,
			InWatchlist: movieWL || seriesWL,
		}
	}
	return flags, nil
}

// Detail returns the user's marks for one title. Anonymous callers get the
// zero value.
func (s *markService) Detail(ctx context.Context, userID, itemKind string, itemID int64) (MarkDetail, error) {
	if err := validateKey(itemKind, itemID); err != nil {
		return MarkDetail{}, err
	}
	if userID == "" {
		return MarkDetail{}, nil
	}

	var detail MarkDetail
	seen, err := s.repo.Get(ctx, repository.MarkKey{
		UserID: userID, ItemID: itemID, ItemKind: itemKind, Relation: models.RelationSeen,
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return MarkDetail{}, err
	}
	detail.Seen = seen

	inWatchlist, err := s.repo.Exists(ctx, repository.MarkKey{
		UserID: userID, ItemID: itemID, ItemKind: itemKind, Relation: models.RelationWatchlist,
	})
	if err != nil {
		return MarkDetail{}, err
	}
	detail.InWatchlist = inWatchlist
	return detail, nil
}
