package schema

import "time"

// TrackedToken represents the tracked_tokens table - one row per NFT
// contract (or Solana mint address) the service watches for activity
type TrackedToken struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ContractAddress is the chain-qualified contract address or mint address, stored lower-cased for EVM
	ContractAddress string `gorm:"column:contract_address;not null;uniqueIndex;type:text"`
	// Chain identifies the network the contract lives on (e.g. "eip155:1", "solana:mainnet")
	Chain string `gorm:"column:chain;not null;type:text"`
	// CollectionID is the marketplace collection identifier used for stream subscriptions
	CollectionID *string `gorm:"column:collection_id;type:text"`
	// Name is a human-readable collection name used in rendered messages
	Name string `gorm:"column:name;not null;default:'';type:text"`
	// ImageURL is the remote image resolved for paid-image notifications
	ImageURL *string `gorm:"column:image_url;type:text"`
	// IsActive is cleared when no subscriber and no paid feature remains
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// CreatedAt is the timestamp when this token was first added
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`

	// Associations
	Subscriptions []Subscription `gorm:"foreignKey:TokenID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the TrackedToken model
func (TrackedToken) TableName() string {
	return "tracked_tokens"
}
