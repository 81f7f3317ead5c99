package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// Source identifies where an activity was ingested from
type Source string

const (
	// SourceChain is the EVM chain-activity webhook
	SourceChain Source = "chain"
	// SourceMarketplace is the marketplace real-time event stream
	SourceMarketplace Source = "marketplace"
	// SourceSolana is the second-chain sale webhook
	SourceSolana Source = "solana"
)

// ActivityType classifies a canonical activity
type ActivityType string

const (
	ActivityTypeMint             ActivityType = "mint"
	ActivityTypeBurn             ActivityType = "burn"
	ActivityTypeTransfer         ActivityType = "transfer"
	ActivityTypeBuy              ActivityType = "buy"
	ActivityTypeSale             ActivityType = "sale"
	ActivityTypeExternalTransfer ActivityType = "external_transfer"
	ActivityTypeInternalTransfer ActivityType = "internal_transfer"
	ActivityTypeList             ActivityType = "list"
	ActivityTypeBid              ActivityType = "bid"
	ActivityTypeOffer            ActivityType = "offer"
	ActivityTypeUnknown          ActivityType = "unknown"
)

// TokenIDSource records which field of the raw payload a token id came from
type TokenIDSource string

const (
	TokenIDSourceExplicit TokenIDSource = "explicit"
	TokenIDSourceNested   TokenIDSource = "nested"
	TokenIDSourceStandard TokenIDSource = "standard"
	TokenIDSourceLogTopic TokenIDSource = "log_topic"
	// TokenIDSourceDerivedHash marks an id synthesized from the transaction
	// hash. It is not a real token identifier and can collide.
	TokenIDSourceDerivedHash TokenIDSource = "derived_hash"
)

// Activity is the canonical, source-agnostic representation of one
// on-chain or marketplace event. Every source adapter produces this shape.
type Activity struct {
	Source          Source
	ContractAddress string
	TokenID         *string
	TokenIDSource   TokenIDSource
	Type            ActivityType
	FromAddress     *string
	ToAddress       *string
	TxHash          *string
	BlockNumber     *uint64
	// Price is an integer minor-unit amount rendered as a string
	Price         *string
	PriceCurrency *string
	PriceUSD      *float64
	Marketplace   *string
	Timestamp     time.Time
}

// DedupKey derives the deterministic suppression key for this activity.
// The transaction hash is included whenever present so two genuine events
// on the same token (e.g. two separate sales) never collapse into one key.
// Stream events without a stable hash fall back to the event timestamp.
func (a *Activity) DedupKey() string {
	token := ""
	if a.TokenID != nil {
		token = *a.TokenID
	}
	if a.TxHash != nil && *a.TxHash != "" {
		return fmt.Sprintf("%s:%s:%s:%s:%s", a.Source, strings.ToLower(a.ContractAddress), token, a.Type, strings.ToLower(*a.TxHash))
	}
	return fmt.Sprintf("%s:%s:%s:%s:%d", a.Source, strings.ToLower(a.ContractAddress), token, a.Type, a.Timestamp.Unix())
}

// DeriveActivityType classifies an activity from its from/to addresses and
// marketplace involvement. The classification is total: a zero or missing
// "from" is a mint, a zero or missing "to" is a burn, a marketplace match
// is a buy, anything else is a plain transfer.
func DeriveActivityType(from *string, to *string, marketplace bool) ActivityType {
	if AddressNilOrZero(from) {
		return ActivityTypeMint
	}
	if AddressNilOrZero(to) {
		return ActivityTypeBurn
	}
	if marketplace {
		return ActivityTypeBuy
	}
	return ActivityTypeTransfer
}

// AddressNilOrZero reports whether an address pointer is nil, empty, or the zero address
func AddressNilOrZero(address *string) bool {
	return address == nil || *address == "" || strings.EqualFold(*address, ETHEREUM_ZERO_ADDRESS)
}

// NormalizeAddress normalizes an address for case-insensitive comparison.
// EVM addresses are canonicalized through go-ethereum and lower-cased;
// anything else (e.g. a Solana mint address, which is case-sensitive
// base58) passes through untouched.
func NormalizeAddress(address string) string {
	if strings.HasPrefix(address, "0x") && common.IsHexAddress(address) {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return address
}

// IsMintAddress reports whether s decodes as a 32-byte base58 Solana mint address
func IsMintAddress(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == SOLANA_MINT_ADDRESS_LENGTH
}
