package schema

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog represents the webhook_logs table - the audit trail for
// inbound deliveries. A row is written once on receipt and updated once
// on completion with the processed flag and any error.
type WebhookLog struct {
	// ID is a UUID assigned on receipt
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// Source is the ingestion source ("chain", "marketplace", "solana")
	Source string `gorm:"column:source;not null;index;type:text"`
	// Payload is the raw request body as received
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// Processed is set once the delivery has been fully handled
	Processed bool `gorm:"column:processed;not null;default:false"`
	// ProcessedCount is how many activities the delivery yielded
	ProcessedCount int `gorm:"column:processed_count;not null;default:0"`
	// Error holds the failure message, if the delivery failed
	Error *string `gorm:"column:error;type:text"`
	// ReceivedAt is the timestamp when the delivery arrived
	ReceivedAt time.Time `gorm:"column:received_at;not null;default:now()"`
	// CompletedAt is the timestamp when handling finished
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

// TableName specifies the table name for the WebhookLog model
func (WebhookLog) TableName() string {
	return "webhook_logs"
}
