package models

import "time"

// Notification types
const (
	NotificationNewSeason  = "new_season_available"
	NotificationWarning    = "warning"
	NotificationSuggestion = "suggestion"
	NotificationNormal     = "normal"
)

type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string    `gorm:"not null" json:"type"`
	Message   string    `gorm:"not null" json:"message"`
	TargetURL *string   `json:"target_url,omitempty"`
	Read      bool      `gorm:"column:is_read;default:false" json:"read"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
