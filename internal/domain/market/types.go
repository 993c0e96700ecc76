package market

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CoinMarketSnapshot mirrors one element of the upstream /coins/markets
// response. Transient: fetched per request, never persisted beyond the
// short cache window.
type CoinMarketSnapshot struct {
	ID                string          `json:"id"`
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	MarketCap         decimal.Decimal `json:"market_cap"`
	MarketCapRank     int             `json:"market_cap_rank"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	High24h           decimal.Decimal `json:"high_24h"`
	Low24h            decimal.Decimal `json:"low_24h"`
	PriceChange24h    decimal.Decimal `json:"price_change_24h"`
	PriceChangePct24h decimal.Decimal `json:"price_change_percentage_24h"`
	CirculatingSupply decimal.Decimal `json:"circulating_supply"`
	TotalSupply       decimal.Decimal `json:"total_supply"`
	ATH               decimal.Decimal `json:"ath"`
	ATL               decimal.Decimal `json:"atl"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// ChartPoint is one [timestamp, value] pair of a market chart series.
// The upstream encodes points as two-element JSON arrays.
type ChartPoint struct {
	Timestamp int64
	Value     decimal.Decimal
}

// UnmarshalJSON decodes the upstream [ms, value] pair format
func (p *ChartPoint) UnmarshalJSON(data []byte) error {
	var raw [2]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Timestamp = raw[0].IntPart()
	p.Value = raw[1]
	return nil
}

// ChartSeries mirrors the upstream /coins/{id}/market_chart response
type ChartSeries struct {
	Prices       []ChartPoint `json:"prices"`
	MarketCaps   []ChartPoint `json:"market_caps"`
	TotalVolumes []ChartPoint `json:"total_volumes"`
}

// TrendingCoin is one entry of the upstream /search/trending response
type TrendingCoin struct {
	ID            string `json:"id"`
	CoinID        int    `json:"coin_id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Small         string `json:"small"`
	Large         string `json:"large"`
}

// SearchCoin is one entry of the upstream /search response
type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

// SearchResult mirrors the upstream /search response envelope
type SearchResult struct {
	Coins []SearchCoin `json:"coins"`
}
