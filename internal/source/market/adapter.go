package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/pricing"
)

// EventType tags a marketplace stream event
type EventType string

const (
	EventListed          EventType = "listed"
	EventSold            EventType = "sold"
	EventTransferred     EventType = "transferred"
	EventMetadataUpdated EventType = "metadata_updated"
	EventReceivedBid     EventType = "received_bid"
	EventReceivedOffer   EventType = "received_offer"
	EventCanceled        EventType = "canceled"
)

// StreamMessage is the raw frame received from the marketplace stream
type StreamMessage struct {
	Topic   string          `json:"topic"`
	Event   EventType       `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// EventPayload is the body of one marketplace event. Some stream versions
// wrap the body in one extra "payload" level; Unwrap handles both.
type EventPayload struct {
	Payload *EventPayload `json:"payload"`

	Item         *Item         `json:"item"`
	Collection   *Collection   `json:"collection"`
	Maker        *Account      `json:"maker"`
	Taker        *Account      `json:"taker"`
	FromAccount  *Account      `json:"from_account"`
	ToAccount    *Account      `json:"to_account"`
	BasePrice    string        `json:"base_price"`
	SalePrice    string        `json:"sale_price"`
	PaymentToken *PaymentToken `json:"payment_token"`
	Transaction  *Transaction  `json:"transaction"`
	EventTime    string        `json:"event_timestamp"`
}

// Item identifies the token an event is about
type Item struct {
	// NFTID is "chain/contract/token_id"
	NFTID    string `json:"nft_id"`
	Contract string `json:"contract_address"`
	TokenID  string `json:"token_id"`
}

// Collection identifies the collection an event belongs to
type Collection struct {
	Slug string `json:"slug"`
}

// Account is one party of an event
type Account struct {
	Address string `json:"address"`
}

// PaymentToken describes the currency of a priced event. The embedded
// usd_price is deliberately not modeled: USD values are always recomputed
// from a live quote.
type PaymentToken struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Transaction carries the on-chain settlement of a sale or transfer
type Transaction struct {
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"`
}

// Unwrap strips at most one nested payload level
func (p *EventPayload) Unwrap() *EventPayload {
	if p.Payload != nil && p.Item == nil {
		return p.Payload
	}
	return p
}

// Adapter converts marketplace stream events into canonical activities
type Adapter struct {
	quoter pricing.Quoter
	clock  adapter.Clock
}

// NewAdapter creates a marketplace event adapter
func NewAdapter(quoter pricing.Quoter, clock adapter.Clock) *Adapter {
	return &Adapter{
		quoter: quoter,
		clock:  clock,
	}
}

// Convert maps one stream event to a canonical activity. Events that carry
// no recipient-facing information (metadata updates, cancellations) return
// nil without error.
func (a *Adapter) Convert(ctx context.Context, event EventType, raw json.RawMessage) (*domain.Activity, error) {
	switch event {
	case EventMetadataUpdated, EventCanceled:
		return nil, nil
	case EventListed, EventSold, EventTransferred, EventReceivedBid, EventReceivedOffer:
	default:
		logger.DebugCtx(ctx, "Ignoring unrecognized marketplace event", zap.String("event", string(event)))
		return nil, nil
	}

	var payload EventPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	body := payload.Unwrap()

	contract, tokenID, err := resolveItem(body.Item)
	if err != nil {
		return nil, err
	}

	activity := &domain.Activity{
		Source:          domain.SourceMarketplace,
		ContractAddress: domain.NormalizeAddress(contract),
		Type:            activityType(event),
		Timestamp:       a.eventTime(body),
	}
	if tokenID != "" {
		activity.TokenID = &tokenID
		activity.TokenIDSource = domain.TokenIDSourceExplicit
	}

	a.applyParties(event, body, activity)
	a.applyPrice(ctx, event, body, activity)

	if body.Transaction != nil && body.Transaction.Hash != "" {
		hash := strings.ToLower(body.Transaction.Hash)
		activity.TxHash = &hash
	}

	return activity, nil
}

// activityType maps each priced event to its canonical classification
func activityType(event EventType) domain.ActivityType {
	switch event {
	case EventListed:
		return domain.ActivityTypeList
	case EventSold:
		return domain.ActivityTypeSale
	case EventTransferred:
		return domain.ActivityTypeTransfer
	case EventReceivedBid:
		return domain.ActivityTypeBid
	case EventReceivedOffer:
		return domain.ActivityTypeOffer
	}
	return domain.ActivityTypeUnknown
}

// applyParties fills from/to from whichever account pair the event carries
func (a *Adapter) applyParties(event EventType, body *EventPayload, activity *domain.Activity) {
	setAddr := func(dst **string, account *Account) {
		if account == nil || account.Address == "" {
			return
		}
		addr := domain.NormalizeAddress(account.Address)
		*dst = &addr
	}

	switch event {
	case EventTransferred:
		setAddr(&activity.FromAddress, body.FromAccount)
		setAddr(&activity.ToAddress, body.ToAccount)
	case EventSold:
		setAddr(&activity.FromAddress, body.Maker)
		setAddr(&activity.ToAddress, body.Taker)
	default:
		setAddr(&activity.FromAddress, body.Maker)
	}
}

// applyPrice picks the price field for the event type and recomputes the
// USD value from a live quote. Transfers carry no price; a failed quote
// only drops the USD figure, never the activity.
func (a *Adapter) applyPrice(ctx context.Context, event EventType, body *EventPayload, activity *domain.Activity) {
	var amount string
	switch event {
	case EventSold:
		amount = body.SalePrice
	case EventListed, EventReceivedBid, EventReceivedOffer:
		amount = body.BasePrice
	default:
		return
	}

	if amount == "" || body.PaymentToken == nil || body.PaymentToken.Symbol == "" {
		return
	}

	activity.Price = &amount
	symbol := strings.ToUpper(body.PaymentToken.Symbol)
	activity.PriceCurrency = &symbol

	quote, err := a.quoter.QuoteUSD(ctx, symbol)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to quote event currency, omitting USD value",
			zap.String("currency", symbol),
			zap.Error(err))
		return
	}

	usd, err := pricing.ComputeUSD(amount, body.PaymentToken.Decimals, quote)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to compute USD value",
			zap.String("amount", amount),
			zap.Error(err))
		return
	}
	activity.PriceUSD = &usd
}

// eventTime prefers the event's own timestamp, then the settlement
// timestamp, then receipt time
func (a *Adapter) eventTime(body *EventPayload) time.Time {
	for _, candidate := range []string{body.EventTime, txTimestamp(body.Transaction)} {
		if candidate == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, candidate); err == nil {
			return ts
		}
	}
	return a.clock.Now()
}

func txTimestamp(tx *Transaction) string {
	if tx == nil {
		return ""
	}
	return tx.Timestamp
}

// resolveItem extracts contract and token id, preferring the composite
// nft_id over the flat fields
func resolveItem(item *Item) (string, string, error) {
	if item == nil {
		return "", "", fmt.Errorf("%w: missing item", domain.ErrMalformedPayload)
	}

	if item.NFTID != "" {
		parts := strings.Split(item.NFTID, "/")
		if len(parts) == 3 && parts[1] != "" {
			return parts[1], parts[2], nil
		}
	}

	if item.Contract == "" {
		return "", "", fmt.Errorf("%w: item without contract address", domain.ErrMalformedPayload)
	}
	return item.Contract, item.TokenID, nil
}
