package market

import (
	"context"
	"strconv"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// BinanceRelay fetches 24h ticker statistics from Binance. It needs no
// credentials for public market data.
type BinanceRelay struct {
	client *binance.Client
}

// NewBinanceRelay creates a Binance-backed relay.
func NewBinanceRelay() *BinanceRelay {
	return &BinanceRelay{
		client: binance.NewClient("", ""),
	}
}

// Name implements Relay.
func (r *BinanceRelay) Name() string {
	return "binance"
}

// Quote implements Relay.
func (r *BinanceRelay) Quote(ctx context.Context, ticker string) (Quote, error) {
	stats, err := r.client.NewListPriceChangeStatsService().Symbol(ticker).Do(ctx)
	if err != nil {
		return Quote{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "binance price change stats for %s", ticker)
	}

	if len(stats) == 0 {
		return Quote{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "binance returned no stats for %s", ticker)
	}

	stat := stats[0]

	price, err := strconv.ParseFloat(stat.LastPrice, 64)
	if err != nil {
		return Quote{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "unparsable binance price %q for %s", stat.LastPrice, ticker)
	}

	// Change fields are best-effort; a bad payload degrades to zero change
	// rather than failing the quote.
	change, _ := strconv.ParseFloat(stat.PriceChange, 64)
	percent, _ := strconv.ParseFloat(stat.PriceChangePercent, 64)

	return Quote{
		Ticker:        ticker,
		Price:         price,
		Change:        change,
		ChangePercent: percent,
	}, nil
}
