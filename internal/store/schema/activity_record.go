package schema

import "time"

// ActivityRecord represents the activity_log table - the append-only log
// of every canonical activity that passed deduplication
type ActivityRecord struct {
	// ID is a ULID assigned at ingestion time
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Source is the ingestion source ("chain", "marketplace", "solana")
	Source string `gorm:"column:source;not null;type:text"`
	// ContractAddress is the subject contract, stored lower-cased for EVM
	ContractAddress string `gorm:"column:contract_address;not null;index;type:text"`
	// TokenID is the token within the contract; nil for mint-address activity
	TokenID *string `gorm:"column:token_id;type:text"`
	// TokenIDSource records which payload field the token id came from
	TokenIDSource string `gorm:"column:token_id_source;not null;default:'';type:text"`
	// ActivityType is the derived canonical classification
	ActivityType string `gorm:"column:activity_type;not null;type:text"`
	// FromAddress is the sending party, if any
	FromAddress *string `gorm:"column:from_address;type:text"`
	// ToAddress is the receiving party, if any
	ToAddress *string `gorm:"column:to_address;type:text"`
	// TxHash is the transaction hash; nil for pre-confirmation stream events
	TxHash *string `gorm:"column:tx_hash;type:text;index"`
	// BlockNumber is the block the transaction was mined in, if known
	BlockNumber *uint64 `gorm:"column:block_number"`
	// Price is the integer minor-unit amount as a string, if any
	Price *string `gorm:"column:price;type:text"`
	// PriceCurrency is the currency symbol of Price
	PriceCurrency *string `gorm:"column:price_currency;type:text"`
	// PriceUSD is the externally quoted USD value at ingestion time
	PriceUSD *float64 `gorm:"column:price_usd"`
	// Marketplace is the resolved marketplace label, if any
	Marketplace *string `gorm:"column:marketplace;type:text"`
	// OccurredAt is the event's own timestamp
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
	// CreatedAt is the timestamp when the record was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ActivityRecord model
func (ActivityRecord) TableName() string {
	return "activity_log"
}
