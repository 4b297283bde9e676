package kpi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/models"
)

const (
	CrUXEndpoint = "https://chromeuxreport.googleapis.com/v1/records:queryRecord"
	DesktopLabel = "VZY Web (Desktop)"
	MobileLabel  = "VZY mWeb (Mobile)"
	notAvailable = "N/A"
)

// CrUXClient reads p75 Core Web Vitals for one origin from the Chrome UX Report.
type CrUXClient struct {
	APIKey   string
	Origin   string
	Endpoint string
	HTTP     *http.Client
	Log      zerolog.Logger
}

var formFactors = []struct {
	factor string
	label  string
}{
	{"DESKTOP", DesktopLabel},
	{"PHONE", MobileLabel},
}

var webMetrics = []struct {
	key    string
	metric string
}{
	{"lcp", "largest_contentful_paint"},
	{"fid", "first_input_delay"},
	{"cls", "cumulative_layout_shift"},
	{"inp", "interaction_to_next_paint"},
	{"ttfb", "experimental_time_to_first_byte"},
}

type cruxRecord struct {
	Record struct {
		Metrics map[string]struct {
			Percentiles map[string]json.RawMessage `json:"percentiles"`
		} `json:"metrics"`
	} `json:"record"`
}

// FetchWeb returns nil without an API key. A form factor that answers with a
// non-200 status is left out.
func (c CrUXClient) FetchWeb(ctx context.Context) (map[string]models.MetricSet, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		c.Log.Info().Msg("CrUX API key not configured, skipping web performance fetch")
		return nil, nil
	}
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = CrUXEndpoint
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	target := endpoint + "?key=" + url.QueryEscape(c.APIKey)

	out := map[string]models.MetricSet{}
	for _, ff := range formFactors {
		record, ok, err := c.query(ctx, client, target, ff.factor)
		if err != nil {
			return nil, fmt.Errorf("crux %s: %w", ff.factor, err)
		}
		if !ok {
			continue
		}
		set := models.MetricSet{}
		for _, m := range webMetrics {
			set[m.key] = FormatP75(record.Record.Metrics[m.metric].Percentiles["p75"])
		}
		set["page_load"] = notAvailable
		out[ff.label] = set
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (c CrUXClient) query(ctx context.Context, client *http.Client, target, factor string) (cruxRecord, bool, error) {
	body, _ := json.Marshal(map[string]string{"origin": c.Origin, "formFactor": factor})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return cruxRecord{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return cruxRecord{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.Log.Warn().Str("form_factor", factor).Int("status", resp.StatusCode).Msg("CrUX record unavailable")
		return cruxRecord{}, false, nil
	}
	var rec cruxRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return cruxRecord{}, false, err
	}
	return rec, true, nil
}

// FormatP75 renders a p75 value: layout shift scores below one keep three
// decimals, values above 1000ms become seconds, anything else is whole ms.
func FormatP75(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return notAvailable
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return notAvailable
	}
	fractional := strings.ContainsAny(s, ".eE")
	switch {
	case fractional && v < 1:
		return fmt.Sprintf("%.3f", v)
	case v > 1000:
		return fmt.Sprintf("%.1fs", v/1000)
	default:
		return fmt.Sprintf("%dms", int64(v))
	}
}
