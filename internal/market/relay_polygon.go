package market

import (
	"context"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// PolygonRelay fetches the previous session close for a ticker from Polygon.
type PolygonRelay struct {
	client *polygon.Client
}

// NewPolygonRelay creates a Polygon-backed relay.
func NewPolygonRelay(apiKey string) (*PolygonRelay, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return &PolygonRelay{
		client: polygon.New(apiKey),
	}, nil
}

// Name implements Relay.
func (r *PolygonRelay) Name() string {
	return "polygon"
}

// Quote implements Relay.
func (r *PolygonRelay) Quote(ctx context.Context, ticker string) (Quote, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.GetPreviousCloseAggParams{
		Ticker: ticker,
	}.WithAdjusted(true)

	res, err := r.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return Quote{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "polygon previous close for %s", ticker)
	}

	if len(res.Results) == 0 {
		return Quote{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "polygon returned no aggregates for %s", ticker)
	}

	agg := res.Results[0]
	change := agg.Close - agg.Open

	percent := 0.0
	if agg.Open != 0 {
		percent = change / agg.Open * 100
	}

	return Quote{
		Ticker:        ticker,
		Price:         agg.Close,
		Change:        change,
		ChangePercent: percent,
	}, nil
}
