package schema

import "time"

// ChatType distinguishes the chat context a subscription was created in
type ChatType string

const (
	// ChatTypePrivate is the user's own private chat with the bot
	ChatTypePrivate ChatType = "private"
	// ChatTypeGroup is a group chat the user added the bot to
	ChatTypeGroup ChatType = "group"
)

// Subscription represents the subscriptions table - a (user, token,
// chat-context) triple. One user may subscribe to the same token in
// several chat contexts; each row is delivered to exactly its own
// stored chat, never broadcast to the user's other contexts.
type Subscription struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID references the owning user
	UserID int64 `gorm:"column:user_id;not null;index;uniqueIndex:idx_subscriptions_user_token_chat,priority:1"`
	// TokenID references the tracked token
	TokenID int64 `gorm:"column:token_id;not null;index;uniqueIndex:idx_subscriptions_user_token_chat,priority:2"`
	// ChatID is the literal delivery target for this subscription
	ChatID int64 `gorm:"column:chat_id;not null;uniqueIndex:idx_subscriptions_user_token_chat,priority:3"`
	// ChatType records whether ChatID is a private or group chat
	ChatType ChatType `gorm:"column:chat_type;not null;type:text"`
	// NotifyEnabled toggles delivery without deleting the subscription
	NotifyEnabled bool `gorm:"column:notify_enabled;not null;default:true"`
	// CreatedAt is the timestamp when the subscription was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`

	// Associations
	User *User `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the Subscription model
func (Subscription) TableName() string {
	return "subscriptions"
}
