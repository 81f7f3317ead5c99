package schema

import "time"

// Channel represents the channels table - shared broadcast channels the
// bot can post trending activity into
type Channel struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ChatID is the channel's Telegram chat identifier
	ChatID int64 `gorm:"column:chat_id;not null;uniqueIndex"`
	// Title is the channel's display name
	Title string `gorm:"column:title;not null;default:'';type:text"`
	// ShowTrending opts the channel into trending-contract activity
	ShowTrending bool `gorm:"column:show_trending;not null;default:true"`
	// ShowAllActivity opts the channel into all activity of trending contracts
	ShowAllActivity bool `gorm:"column:show_all_activity;not null;default:false"`
	// IsActive is cleared when the bot is removed from the channel
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// CreatedAt is the timestamp when the channel was registered
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the Channel model
func (Channel) TableName() string {
	return "channels"
}
