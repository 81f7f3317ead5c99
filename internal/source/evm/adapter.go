package evm

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/registry"
)

const (
	// WebhookTypeNFTActivity is the provider's NFT-scoped webhook type
	WebhookTypeNFTActivity = "NFT_ACTIVITY"
	// WebhookTypeAddressActivity is the provider's address-scoped webhook type
	WebhookTypeAddressActivity = "ADDRESS_ACTIVITY"

	// tokenIDTopicIndex is the Transfer log topic holding the token id
	tokenIDTopicIndex = 3
)

// WebhookPayload is the chain-activity webhook envelope
type WebhookPayload struct {
	Type  string        `json:"type"`
	Event *WebhookEvent `json:"event"`
}

// WebhookEvent holds the activity batch inside the envelope
type WebhookEvent struct {
	Activity []ActivityItem `json:"activity"`
}

// ActivityItem is one raw activity entry from the provider
type ActivityItem struct {
	ContractAddress string           `json:"contractAddress"`
	FromAddress     string           `json:"fromAddress"`
	ToAddress       string           `json:"toAddress"`
	TokenID         string           `json:"tokenId"`
	ERC721TokenID   string           `json:"erc721TokenId"`
	ERC1155Metadata []ERC1155Token   `json:"erc1155Metadata"`
	Category        string           `json:"category"`
	Hash            string           `json:"hash"`
	BlockNum        string           `json:"blockNum"`
	Log             *LogEntry        `json:"log"`
	Metadata        *ActivityMeta    `json:"metadata"`
	RawContract     *RawContractInfo `json:"rawContract"`
}

// ERC1155Token is the nested token entry of an ERC-1155 batch item
type ERC1155Token struct {
	TokenID string `json:"tokenId"`
	Value   string `json:"value"`
}

// LogEntry is the raw log attached to an activity entry
type LogEntry struct {
	Topics []string `json:"topics"`
}

// ActivityMeta carries optional provider metadata
type ActivityMeta struct {
	BlockTimestamp string `json:"blockTimestamp"`
}

// RawContractInfo carries the raw contract info of an address-activity entry
type RawContractInfo struct {
	Address string `json:"address"`
}

// Adapter converts raw chain-activity webhook payloads into canonical activities
type Adapter struct {
	registry registry.MarketplaceRegistry
	clock    adapter.Clock
}

// NewAdapter creates a chain-activity adapter
func NewAdapter(reg registry.MarketplaceRegistry, clock adapter.Clock) *Adapter {
	return &Adapter{
		registry: reg,
		clock:    clock,
	}
}

// ParseBatch unwraps the webhook envelope and converts every entry it can.
// A missing envelope or activity container is a malformed payload; a
// missing optional field on an individual entry never is.
func (a *Adapter) ParseBatch(raw []byte) ([]*domain.Activity, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if payload.Event == nil || payload.Event.Activity == nil {
		return nil, fmt.Errorf("%w: missing event.activity container", domain.ErrMalformedPayload)
	}

	activities := make([]*domain.Activity, 0, len(payload.Event.Activity))
	for i := range payload.Event.Activity {
		activity := a.Convert(&payload.Event.Activity[i])
		if activity == nil {
			continue
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// Convert maps one raw entry to a canonical activity. Returns nil when
// the entry has no usable contract address.
func (a *Adapter) Convert(item *ActivityItem) *domain.Activity {
	contract := item.ContractAddress
	if contract == "" && item.RawContract != nil {
		contract = item.RawContract.Address
	}
	if contract == "" {
		logger.Debug("Skipping activity entry without contract address",
			zap.String("tx_hash", item.Hash))
		return nil
	}

	activity := &domain.Activity{
		Source:          domain.SourceChain,
		ContractAddress: domain.NormalizeAddress(contract),
		Timestamp:       a.eventTime(item),
	}

	if item.FromAddress != "" {
		from := domain.NormalizeAddress(item.FromAddress)
		activity.FromAddress = &from
	}
	if item.ToAddress != "" {
		to := domain.NormalizeAddress(item.ToAddress)
		activity.ToAddress = &to
	}
	if item.Hash != "" {
		hash := strings.ToLower(item.Hash)
		activity.TxHash = &hash
	}
	if block, ok := parseHexUint(item.BlockNum); ok {
		activity.BlockNumber = &block
	}

	tokenID, source := a.resolveTokenID(item)
	if tokenID != "" {
		activity.TokenID = &tokenID
		activity.TokenIDSource = source
	}

	marketplaceName, onMarketplace := a.matchMarketplace(item)
	activity.Type = domain.DeriveActivityType(activity.FromAddress, activity.ToAddress, onMarketplace)
	if onMarketplace {
		activity.Marketplace = &marketplaceName
	}

	// Plain transfers keep the provider's external/internal distinction
	if activity.Type == domain.ActivityTypeTransfer {
		switch strings.ToLower(item.Category) {
		case "external":
			activity.Type = domain.ActivityTypeExternalTransfer
		case "internal":
			activity.Type = domain.ActivityTypeInternalTransfer
		}
	}

	return activity
}

// resolveTokenID picks the token id from the first populated field in
// priority order: explicit, nested ERC-1155 token, standard-specific,
// log topic, hash-derived fallback. The fallback only exists so an
// activity is never dropped for lack of an id; its value is synthetic.
func (a *Adapter) resolveTokenID(item *ActivityItem) (string, domain.TokenIDSource) {
	if id := normalizeTokenID(item.TokenID); id != "" {
		return id, domain.TokenIDSourceExplicit
	}

	if len(item.ERC1155Metadata) > 0 {
		if id := normalizeTokenID(item.ERC1155Metadata[0].TokenID); id != "" {
			return id, domain.TokenIDSourceNested
		}
	}

	if id := normalizeTokenID(item.ERC721TokenID); id != "" {
		return id, domain.TokenIDSourceStandard
	}

	if item.Log != nil && len(item.Log.Topics) > tokenIDTopicIndex {
		if id := normalizeTokenID(item.Log.Topics[tokenIDTopicIndex]); id != "" {
			return id, domain.TokenIDSourceLogTopic
		}
	}

	if id := DeriveTokenIDFromHash(item.Hash); id != "" {
		return id, domain.TokenIDSourceDerivedHash
	}

	return "", ""
}

// DeriveTokenIDFromHash synthesizes a token id from the last 4 hex
// characters of the transaction hash, modulo 1000. The result is
// non-authoritative and can collide across unrelated transactions.
func DeriveTokenIDFromHash(txHash string) string {
	hash := strings.TrimPrefix(strings.ToLower(txHash), "0x")
	if len(hash) < 4 {
		return ""
	}

	tail := hash[len(hash)-4:]
	value, ok := new(big.Int).SetString(tail, 16)
	if !ok {
		return ""
	}

	return value.Mod(value, big.NewInt(1000)).String()
}

// matchMarketplace checks both parties against the curated marketplace address set
func (a *Adapter) matchMarketplace(item *ActivityItem) (string, bool) {
	if a.registry == nil {
		return "", false
	}
	if name, ok := a.registry.Lookup(item.FromAddress); ok {
		return name, true
	}
	if name, ok := a.registry.Lookup(item.ToAddress); ok {
		return name, true
	}
	return "", false
}

// eventTime prefers the provider's block timestamp and falls back to receipt time
func (a *Adapter) eventTime(item *ActivityItem) time.Time {
	if item.Metadata != nil && item.Metadata.BlockTimestamp != "" {
		if ts, err := time.Parse(time.RFC3339, item.Metadata.BlockTimestamp); err == nil {
			return ts
		}
	}
	return a.clock.Now()
}

// normalizeTokenID renders hex-encoded token ids as decimal strings
func normalizeTokenID(id string) string {
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "0x") || strings.HasPrefix(id, "0X") {
		value, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(id), "0x"), 16)
		if !ok {
			return ""
		}
		return value.String()
	}
	return id
}

// parseHexUint parses a 0x-prefixed block number
func parseHexUint(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	value, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(s), "0x"), 16)
	if !ok || !value.IsUint64() {
		return 0, false
	}
	return value.Uint64(), true
}
