package observations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/sony/gobreaker"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/stationlab/weather-agent/internal/analysis"
)

// queryTemplate follows the NOAA GSOD schema: temperatures arrive in °F,
// precipitation in inches, wind speed in knots, with 9999.9 sentinels for
// missing readings.
const queryTemplate = `
SELECT
  FORMAT_DATE('%%Y-%%m-%%d',
    DATE(CAST(year AS INT64), CAST(mo AS INT64), CAST(da AS INT64))
  ) AS date,
  ROUND((CAST(temp AS FLOAT64) - 32) * 5/9, 1) AS temp_c,
  ROUND(CAST(prcp AS FLOAT64) * 25.4, 1) AS precip_mm,
  ROUND(CAST(wdsp AS FLOAT64) * 1.852, 1) AS wind_speed_kmh
FROM ` + "`%s`" + `
WHERE stn = @station
  AND CAST(temp AS FLOAT64) < 9000
  AND temp IS NOT NULL
ORDER BY year DESC, mo DESC, da DESC
LIMIT %d
`

// Client fetches daily observations for one station from the BigQuery
// NOAA GSOD public dataset.
type Client struct {
	bq      *bigquery.Client
	table   string
	station string
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a BigQuery-backed observation source. table is the fully
// qualified GSOD table, e.g. "bigquery-public-data.noaa_gsod.gsod2023".
func NewClient(ctx context.Context, projectID, table, stationID string, opts ...option.ClientOption) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bigquery",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		bq:      bq,
		table:   table,
		station: stationID,
		circuit: cb,
	}, nil
}

// FetchRecent returns up to days daily observations, newest first.
func (c *Client) FetchRecent(ctx context.Context, days int) ([]analysis.Observation, error) {
	q := c.bq.Query(fmt.Sprintf(queryTemplate, c.table, days))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "station", Value: c.station},
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return q.Read(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("bigquery read: %w", err)
	}
	it, ok := result.(*bigquery.RowIterator)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}

	var out []analysis.Observation
	for {
		var row gsodRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bigquery scan: %w", err)
		}
		out = append(out, analysis.Observation{
			Date:         row.Date,
			TempC:        nullToPtr(row.TempC),
			PrecipMM:     nullToPtr(row.PrecipMM),
			WindSpeedKMH: nullToPtr(row.WindSpeedKMH),
		})
	}

	return out, nil
}

// Close releases the underlying BigQuery connection.
func (c *Client) Close() error {
	return c.bq.Close()
}

type gsodRow struct {
	Date         string               `bigquery:"date"`
	TempC        bigquery.NullFloat64 `bigquery:"temp_c"`
	PrecipMM     bigquery.NullFloat64 `bigquery:"precip_mm"`
	WindSpeedKMH bigquery.NullFloat64 `bigquery:"wind_speed_kmh"`
}

func nullToPtr(v bigquery.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
