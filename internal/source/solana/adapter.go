package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/pricing"
)

const (
	// TransactionTypeNFTSale is the only transaction type this adapter consumes
	TransactionTypeNFTSale = "NFT_SALE"

	// SOL_DECIMALS converts lamport amounts to whole SOL
	SOL_DECIMALS = 9

	solCurrency = "SOL"
)

// TransactionEvent is one enriched transaction from the webhook batch
type TransactionEvent struct {
	Type      string      `json:"type"`
	Signature string      `json:"signature"`
	Timestamp int64       `json:"timestamp"`
	Source    string      `json:"source"`
	Events    *EventGroup `json:"events"`
}

// EventGroup holds the per-domain decoded events of a transaction
type EventGroup struct {
	NFT *NFTEvent `json:"nft"`
}

// NFTEvent is the decoded NFT sale inside a transaction
type NFTEvent struct {
	// Amount is the sale price in lamports
	Amount uint64      `json:"amount"`
	Buyer  string      `json:"buyer"`
	Seller string      `json:"seller"`
	NFTs   []SoldToken `json:"nfts"`
}

// SoldToken identifies one token that changed hands in a sale
type SoldToken struct {
	Mint          string `json:"mint"`
	TokenStandard string `json:"tokenStandard"`
}

// Adapter converts sale webhook batches into canonical activities
type Adapter struct {
	quoter pricing.Quoter
	clock  adapter.Clock
}

// NewAdapter creates a sale webhook adapter
func NewAdapter(quoter pricing.Quoter, clock adapter.Clock) *Adapter {
	return &Adapter{
		quoter: quoter,
		clock:  clock,
	}
}

// ParseBatch decodes the webhook body and converts every sale it can.
// The body must be a JSON array; anything else is malformed. Non-sale
// transaction types and entries without a valid mint address are skipped.
func (a *Adapter) ParseBatch(ctx context.Context, raw []byte) ([]*domain.Activity, error) {
	var events []TransactionEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	activities := make([]*domain.Activity, 0, len(events))
	for i := range events {
		activity := a.Convert(ctx, &events[i])
		if activity == nil {
			continue
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// Convert maps one transaction event to a canonical activity. The mint
// address stands in for the contract address; there is no separate token
// id on this chain.
func (a *Adapter) Convert(ctx context.Context, event *TransactionEvent) *domain.Activity {
	if event.Type != TransactionTypeNFTSale {
		logger.DebugCtx(ctx, "Skipping non-sale transaction",
			zap.String("type", event.Type),
			zap.String("signature", event.Signature))
		return nil
	}

	if event.Events == nil || event.Events.NFT == nil || len(event.Events.NFT.NFTs) == 0 {
		logger.WarnCtx(ctx, "Sale transaction without decoded NFT event",
			zap.String("signature", event.Signature))
		return nil
	}

	sale := event.Events.NFT
	mint := sale.NFTs[0].Mint
	if !domain.IsMintAddress(mint) {
		logger.WarnCtx(ctx, "Skipping sale with invalid mint address",
			zap.String("mint", mint),
			zap.String("signature", event.Signature))
		return nil
	}

	activity := &domain.Activity{
		Source:          domain.SourceSolana,
		ContractAddress: mint,
		Type:            domain.ActivityTypeBuy,
		Timestamp:       a.eventTime(event),
	}

	if sale.Seller != "" {
		seller := sale.Seller
		activity.FromAddress = &seller
	}
	if sale.Buyer != "" {
		buyer := sale.Buyer
		activity.ToAddress = &buyer
	}
	if event.Signature != "" {
		signature := event.Signature
		activity.TxHash = &signature
	}
	if event.Source != "" {
		marketplace := strings.ToLower(event.Source)
		activity.Marketplace = &marketplace
	}

	a.applyPrice(ctx, sale, activity)

	return activity
}

// applyPrice converts the lamport amount and recomputes its USD value
// from a live quote. A failed quote only drops the USD figure.
func (a *Adapter) applyPrice(ctx context.Context, sale *NFTEvent, activity *domain.Activity) {
	if sale.Amount == 0 {
		return
	}

	amount := strconv.FormatUint(sale.Amount, 10)
	currency := solCurrency
	activity.Price = &amount
	activity.PriceCurrency = &currency

	quote, err := a.quoter.QuoteUSD(ctx, currency)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to quote sale currency, omitting USD value",
			zap.String("currency", currency),
			zap.Error(err))
		return
	}

	usd, err := pricing.ComputeUSD(amount, SOL_DECIMALS, quote)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to compute USD value",
			zap.String("amount", amount),
			zap.Error(err))
		return
	}
	activity.PriceUSD = &usd
}

// eventTime uses the transaction timestamp when present
func (a *Adapter) eventTime(event *TransactionEvent) time.Time {
	if event.Timestamp > 0 {
		return time.Unix(event.Timestamp, 0).UTC()
	}
	return a.clock.Now()
}
