package dto

// MarkRequest: payload for add/remove/update mark endpoints. Rating and the
// series progress fields are optional and only meaningful on seen marks.
type MarkRequest struct {
	ID             int64    `json:"id" binding:"required"`
	Rating         *float64 `json:"rating,omitempty"`
	Status         *string  `json:"status,omitempty"`
	LastSeasonSeen *int     `json:"last_season_seen,omitempty"`
}

// PageRequest: cursor pagination input for infinite-scroll list endpoints.
// last_id and last_date must be supplied together or not at all.
type PageRequest struct {
	LastID   *int64  `json:"last_id,omitempty"`
	LastDate *string `json:"last_date,omitempty"`
	Limit    *int    `json:"limit,omitempty"`
}

// OverlayRequest: catalog ids to resolve seen/watchlist membership for.
type OverlayRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}
