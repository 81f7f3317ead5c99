package market_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/mocks"
	"github.com/nftpulse/notifier/internal/source/market"
)

const (
	sellerAddress   = "0x1111111111111111111111111111111111111111"
	buyerAddress    = "0x2222222222222222222222222222222222222222"
	contractAddress = "0x3333333333333333333333333333333333333333"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type adapterFixture struct {
	adapter *market.Adapter
	quoter  *mocks.MockQuoter
	clock   *mocks.MockClock
}

func setupAdapter(t *testing.T) *adapterFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	quoter := mocks.NewMockQuoter(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	return &adapterFixture{
		adapter: market.NewAdapter(quoter, clock),
		quoter:  quoter,
		clock:   clock,
	}
}

func soldPayload() json.RawMessage {
	return json.RawMessage(`{
		"item": {"nft_id": "ethereum/` + contractAddress + `/55"},
		"maker": {"address": "` + sellerAddress + `"},
		"taker": {"address": "` + buyerAddress + `"},
		"sale_price": "1500000000000000000",
		"payment_token": {"symbol": "eth", "decimals": 18},
		"transaction": {"hash": "0xFEED", "timestamp": "2026-08-30T10:00:00Z"}
	}`)
}

func TestConvert_Sold(t *testing.T) {
	f := setupAdapter(t)
	f.quoter.EXPECT().QuoteUSD(gomock.Any(), "ETH").Return(2000.0, nil)

	activity, err := f.adapter.Convert(context.Background(), market.EventSold, soldPayload())
	require.NoError(t, err)
	require.NotNil(t, activity)

	assert.Equal(t, domain.SourceMarketplace, activity.Source)
	assert.Equal(t, domain.ActivityTypeSale, activity.Type)
	assert.Equal(t, contractAddress, activity.ContractAddress)
	require.NotNil(t, activity.TokenID)
	assert.Equal(t, "55", *activity.TokenID)
	assert.Equal(t, domain.TokenIDSourceExplicit, activity.TokenIDSource)

	require.NotNil(t, activity.FromAddress)
	assert.Equal(t, sellerAddress, *activity.FromAddress)
	require.NotNil(t, activity.ToAddress)
	assert.Equal(t, buyerAddress, *activity.ToAddress)

	require.NotNil(t, activity.Price)
	assert.Equal(t, "1500000000000000000", *activity.Price)
	require.NotNil(t, activity.PriceCurrency)
	assert.Equal(t, "ETH", *activity.PriceCurrency)
	require.NotNil(t, activity.PriceUSD)
	assert.InDelta(t, 3000.0, *activity.PriceUSD, 0.001)

	require.NotNil(t, activity.TxHash)
	assert.Equal(t, "0xfeed", *activity.TxHash)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), activity.Timestamp)
}

func TestConvert_NestedPayloadUnwrapped(t *testing.T) {
	f := setupAdapter(t)
	f.quoter.EXPECT().QuoteUSD(gomock.Any(), "ETH").Return(2000.0, nil)

	nested := json.RawMessage(`{"payload": ` + string(soldPayload()) + `}`)
	activity, err := f.adapter.Convert(context.Background(), market.EventSold, nested)
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, contractAddress, activity.ContractAddress)
	require.NotNil(t, activity.PriceUSD)
}

func TestConvert_ListedUsesAskingPrice(t *testing.T) {
	f := setupAdapter(t)
	f.quoter.EXPECT().QuoteUSD(gomock.Any(), "ETH").Return(2000.0, nil)

	payload := json.RawMessage(`{
		"item": {"contract_address": "` + contractAddress + `", "token_id": "7"},
		"maker": {"address": "` + sellerAddress + `"},
		"base_price": "500000000000000000",
		"payment_token": {"symbol": "ETH", "decimals": 18}
	}`)

	activity, err := f.adapter.Convert(context.Background(), market.EventListed, payload)
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, domain.ActivityTypeList, activity.Type)
	require.NotNil(t, activity.Price)
	assert.Equal(t, "500000000000000000", *activity.Price)
	require.NotNil(t, activity.PriceUSD)
	assert.InDelta(t, 1000.0, *activity.PriceUSD, 0.001)
	assert.Nil(t, activity.ToAddress)
}

func TestConvert_TransferredCarriesNoPrice(t *testing.T) {
	f := setupAdapter(t)

	payload := json.RawMessage(`{
		"item": {"contract_address": "` + contractAddress + `", "token_id": "7"},
		"from_account": {"address": "` + sellerAddress + `"},
		"to_account": {"address": "` + buyerAddress + `"},
		"sale_price": "123",
		"payment_token": {"symbol": "ETH", "decimals": 18}
	}`)

	activity, err := f.adapter.Convert(context.Background(), market.EventTransferred, payload)
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, domain.ActivityTypeTransfer, activity.Type)
	assert.Nil(t, activity.Price)
	assert.Nil(t, activity.PriceUSD)
	require.NotNil(t, activity.FromAddress)
	assert.Equal(t, sellerAddress, *activity.FromAddress)
}

func TestConvert_SilentEvents(t *testing.T) {
	f := setupAdapter(t)

	for _, event := range []market.EventType{market.EventMetadataUpdated, market.EventCanceled} {
		activity, err := f.adapter.Convert(context.Background(), event, soldPayload())
		require.NoError(t, err)
		assert.Nil(t, activity)
	}
}

func TestConvert_UnrecognizedEventIgnored(t *testing.T) {
	f := setupAdapter(t)

	activity, err := f.adapter.Convert(context.Background(), "collection_update", soldPayload())
	require.NoError(t, err)
	assert.Nil(t, activity)
}

func TestConvert_MissingItemMalformed(t *testing.T) {
	f := setupAdapter(t)

	_, err := f.adapter.Convert(context.Background(), market.EventSold, json.RawMessage(`{"sale_price": "1"}`))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = f.adapter.Convert(context.Background(), market.EventSold, json.RawMessage(`not json`))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestConvert_QuoteFailureDropsUSDOnly(t *testing.T) {
	f := setupAdapter(t)
	f.quoter.EXPECT().QuoteUSD(gomock.Any(), "ETH").Return(0.0, errors.New("breaker open"))

	activity, err := f.adapter.Convert(context.Background(), market.EventSold, soldPayload())
	require.NoError(t, err)
	require.NotNil(t, activity)
	require.NotNil(t, activity.Price)
	assert.Nil(t, activity.PriceUSD)
}

func TestConvert_BidAndOffer(t *testing.T) {
	f := setupAdapter(t)
	f.quoter.EXPECT().QuoteUSD(gomock.Any(), "WETH").Return(2000.0, nil).Times(2)

	payload := json.RawMessage(`{
		"item": {"contract_address": "` + contractAddress + `", "token_id": "9"},
		"maker": {"address": "` + buyerAddress + `"},
		"base_price": "1000000000000000000",
		"payment_token": {"symbol": "WETH", "decimals": 18}
	}`)

	bid, err := f.adapter.Convert(context.Background(), market.EventReceivedBid, payload)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityTypeBid, bid.Type)

	offer, err := f.adapter.Convert(context.Background(), market.EventReceivedOffer, payload)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityTypeOffer, offer.Type)
	require.NotNil(t, offer.PriceUSD)
	assert.InDelta(t, 2000.0, *offer.PriceUSD, 0.001)
}
