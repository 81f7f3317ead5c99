package schema

import "time"

// User represents the users table - one row per end user known to the bot
type User struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TelegramID is the user's Telegram account identifier
	TelegramID int64 `gorm:"column:telegram_id;not null;uniqueIndex"`
	// Username is the Telegram handle, if known
	Username *string `gorm:"column:username;type:text"`
	// IsActive is cleared when the user blocks the bot or deletes their account
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// CreatedAt is the timestamp when the user first interacted with the bot
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
