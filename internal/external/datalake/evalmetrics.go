package datalake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/wonny/impactlab/internal/timeseries"
)

// Request describes one evalmetrics query. It is a plain value: per-location
// requests are always built fresh from a base request with ForID, so no
// request state can leak between loop iterations.
type Request struct {
	IDs         []string
	Expressions []string
	Start       time.Time
	End         time.Time
	Interval    string // DAY unless overridden
}

// ForID returns a copy of the request narrowed to a single location id,
// with its own expressions slice.
func (r Request) ForID(id string) Request {
	out := r
	out.IDs = []string{id}
	out.Expressions = append([]string(nil), r.Expressions...)
	return out
}

type evalMetricsSpec struct {
	IDs         []string `json:"ids"`
	Expressions []string `json:"expressions"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Interval    string   `json:"interval"`
	Offset      int      `json:"offset,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

type evalMetricsRequest struct {
	Spec evalMetricsSpec `json:"spec"`
}

type evalMetricsSeries struct {
	Dates   []string   `json:"dates"`
	Data    []*float64 `json:"data"`
	Missing []float64  `json:"missing"`
}

type evalMetricsResponse struct {
	// result -> location id -> expression -> series
	Result map[string]map[string]evalMetricsSeries `json:"result"`
}

// EvalMetrics fetches the requested metrics as a date-indexed table with
// one <id>.<expression>.data and one <id>.<expression>.missing column per
// pair. Large ranges are paged through until the server returns a short
// page.
func (c *Client) EvalMetrics(ctx context.Context, req Request) (*timeseries.Table, error) {
	interval := req.Interval
	if interval == "" {
		interval = "DAY"
	}

	result := timeseries.NewTable()
	offset := 0

	for {
		page, rows, err := c.fetchPage(ctx, req, interval, offset)
		if err != nil {
			return nil, err
		}
		result = result.OuterJoin(page)

		// A short (or unpaged) page means the range is exhausted.
		if c.cfg.PageLimit <= 0 || rows < c.cfg.PageLimit {
			break
		}
		offset += c.cfg.PageLimit
	}

	c.logger.WithFields(map[string]interface{}{
		"ids":  req.IDs,
		"rows": result.NumRows(),
		"cols": result.NumColumns(),
	}).Debug("Fetched evalmetrics")

	return result, nil
}

// fetchPage performs one evalmetrics call and returns the parsed table plus
// the largest row count seen in any returned series.
func (c *Client) fetchPage(ctx context.Context, req Request, interval string, offset int) (*timeseries.Table, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/%s/evalmetrics", c.cfg.BaseURL, c.cfg.TypeName)
	body := evalMetricsRequest{
		Spec: evalMetricsSpec{
			IDs:         req.IDs,
			Expressions: req.Expressions,
			Start:       req.Start.Format("2006-01-02"),
			End:         req.End.Format("2006-01-02"),
			Interval:    interval,
			Offset:      offset,
			Limit:       c.cfg.PageLimit,
		},
	}

	httpReq, err := c.buildRequest(ctx, url, body)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("evalmetrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("evalmetrics returned status %d: %s", resp.StatusCode, payload)
	}

	var parsed evalMetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decode evalmetrics response: %w", err)
	}

	return buildTable(parsed)
}

func (c *Client) buildRequest(ctx context.Context, url string, body evalMetricsRequest) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal evalmetrics spec: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create evalmetrics request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", c.cfg.APIKey)
	}
	return httpReq, nil
}

// buildTable flattens the nested response into table columns.
func buildTable(resp evalMetricsResponse) (*timeseries.Table, int, error) {
	table := timeseries.NewTable()
	maxRows := 0

	for id, metrics := range resp.Result {
		for expr, series := range metrics {
			if len(series.Dates) > maxRows {
				maxRows = len(series.Dates)
			}

			dataCol := fmt.Sprintf("%s.%s.data", id, expr)
			missingCol := fmt.Sprintf("%s.%s.missing", id, expr)

			for i, dateStr := range series.Dates {
				date, err := parseDate(dateStr)
				if err != nil {
					return nil, 0, fmt.Errorf("series %s: %w", dataCol, err)
				}

				value := math.NaN()
				if i < len(series.Data) && series.Data[i] != nil {
					value = *series.Data[i]
				}
				table.Set(date, dataCol, value)

				missing := 0.0
				if i < len(series.Missing) {
					missing = series.Missing[i]
				}
				table.Set(date, missingCol, missing)
			}
		}
	}

	return table, maxRows, nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return timeseries.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
