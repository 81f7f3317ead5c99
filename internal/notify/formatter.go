package notify

import (
	"fmt"
	"html"
	"math/big"
	"strings"

	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/store/schema"
	"github.com/nftpulse/notifier/internal/telegram"
)

// currencyDecimals maps quote currencies to their minor-unit scale
var currencyDecimals = map[string]int{
	"ETH":  18,
	"WETH": 18,
	"SOL":  9,
}

var activityLabels = map[domain.ActivityType]string{
	domain.ActivityTypeMint:             "🌱 Minted",
	domain.ActivityTypeBurn:             "🔥 Burned",
	domain.ActivityTypeTransfer:         "🔁 Transferred",
	domain.ActivityTypeExternalTransfer: "🔁 Transferred",
	domain.ActivityTypeInternalTransfer: "🔁 Transferred",
	domain.ActivityTypeBuy:              "💰 Sold",
	domain.ActivityTypeSale:             "💰 Sold",
	domain.ActivityTypeList:             "🏷️ Listed",
	domain.ActivityTypeBid:              "📈 Received bid",
	domain.ActivityTypeOffer:            "🤝 Received offer",
}

// Format renders the notification body as Telegram HTML. All
// payload-derived text is escaped; only our own markup is markup.
func Format(token *schema.TrackedToken, activity *domain.Activity, trendingPrefix bool) string {
	var b strings.Builder

	if trendingPrefix {
		b.WriteString("🚀 <b>Trending</b>\n\n")
	}

	label, ok := activityLabels[activity.Type]
	if !ok {
		label = "📣 Activity"
	}
	b.WriteString(fmt.Sprintf("%s — <b>%s</b>\n", label, html.EscapeString(token.Name)))

	// A hash-derived id is synthetic; presenting it would mislead
	if activity.TokenID != nil && activity.TokenIDSource != domain.TokenIDSourceDerivedHash {
		b.WriteString(fmt.Sprintf("Token <code>#%s</code>\n", html.EscapeString(*activity.TokenID)))
	}

	if from := shortAddress(activity.FromAddress); from != "" {
		b.WriteString(fmt.Sprintf("From <code>%s</code>\n", html.EscapeString(from)))
	}
	if to := shortAddress(activity.ToAddress); to != "" {
		b.WriteString(fmt.Sprintf("To <code>%s</code>\n", html.EscapeString(to)))
	}

	if price := formatPrice(activity); price != "" {
		b.WriteString(fmt.Sprintf("Price: <b>%s</b>\n", price))
	}

	if activity.Marketplace != nil && *activity.Marketplace != "" {
		b.WriteString(fmt.Sprintf("Marketplace: %s\n", html.EscapeString(*activity.Marketplace)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// ButtonFor builds the transaction link button when the activity settled
// on-chain
func ButtonFor(activity *domain.Activity) *telegram.SendOptions {
	if activity.TxHash == nil || *activity.TxHash == "" {
		return nil
	}

	var url string
	switch activity.Source {
	case domain.SourceSolana:
		url = fmt.Sprintf("https://solscan.io/tx/%s", *activity.TxHash)
	default:
		url = fmt.Sprintf("https://etherscan.io/tx/%s", *activity.TxHash)
	}

	return &telegram.SendOptions{
		InlineButtonText: "View transaction",
		InlineButtonURL:  url,
	}
}

// formatPrice renders the native amount with its recomputed USD value.
// The USD figure is omitted when no quote was available.
func formatPrice(activity *domain.Activity) string {
	if activity.Price == nil || activity.PriceCurrency == nil {
		return ""
	}

	native := formatNative(*activity.Price, *activity.PriceCurrency)
	if native == "" {
		return ""
	}

	if activity.PriceUSD != nil {
		return fmt.Sprintf("%s %s ($%.2f)", native, html.EscapeString(*activity.PriceCurrency), *activity.PriceUSD)
	}
	return fmt.Sprintf("%s %s", native, html.EscapeString(*activity.PriceCurrency))
}

// formatNative converts a minor-unit amount to a whole-unit decimal string
func formatNative(amountMinor string, currency string) string {
	amount, ok := new(big.Float).SetString(amountMinor)
	if !ok {
		return ""
	}

	decimals, ok := currencyDecimals[strings.ToUpper(currency)]
	if !ok {
		decimals = 18
	}

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	whole := new(big.Float).Quo(amount, scale)

	text := whole.Text('f', 6)
	text = strings.TrimRight(text, "0")
	text = strings.TrimRight(text, ".")
	if text == "" || text == "-" {
		text = "0"
	}
	return text
}

// shortAddress abbreviates long addresses for display
func shortAddress(address *string) string {
	if address == nil || *address == "" {
		return ""
	}
	a := *address
	if strings.EqualFold(a, domain.ETHEREUM_ZERO_ADDRESS) {
		return ""
	}
	if len(a) <= 12 {
		return a
	}
	return fmt.Sprintf("%s…%s", a[:6], a[len(a)-4:])
}
