package models

import "time"

// Catalog item kinds, matching the external catalog's media types.
const (
	KindMovie  = "movie"
	KindSeries = "tv"
)

// Mark relations. An item is in at most one of them per user.
const (
	RelationSeen      = "seen"
	RelationWatchlist = "watchlist"
)

// Series progress statuses (seen relation only).
const (
	StatusWatching        = "watching"
	StatusCompletedSeason = "completed_season"
	StatusNewSeason       = "new_season_available"
)

// UserMark is a user's relation to a catalog item: seen/progress or
// watchlist. ItemID lives in the external catalog's numbering space.
// UpdatedAt is refreshed on every write and drives keyset pagination.
type UserMark struct {
	UserID         string    `gorm:"type:uuid;not null;primaryKey;index:idx_user_marks_page,priority:1" json:"user_id"`
	ItemID         int64     `gorm:"not null;primaryKey;index:idx_user_marks_page,priority:5" json:"item_id"`
	ItemKind       string    `gorm:"type:text;not null;primaryKey;index:idx_user_marks_page,priority:2" json:"item_kind"`
	Relation       string    `gorm:"type:text;not null;primaryKey;index:idx_user_marks_page,priority:3" json:"relation"`
	UserRating     *float64  `gorm:"check:user_rating >= 0.0 AND user_rating <= 10.0" json:"user_rating,omitempty"`
	ProgressStatus *string   `gorm:"type:text" json:"progress_status,omitempty"`
	LastSeasonSeen *int      `json:"last_season_seen,omitempty"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_user_marks_page,priority:4" json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (UserMark) TableName() string {
	return "user_marks"
}

// ValidKind reports whether k is a supported catalog item kind.
func ValidKind(k string) bool {
	return k == KindMovie || k == KindSeries
}

// ValidStatus reports whether s is a supported series progress status.
func ValidStatus(s string) bool {
	return s == StatusWatching || s == StatusCompletedSeason || s == StatusNewSeason
}
