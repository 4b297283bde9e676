package kpi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/models"
)

const (
	DocumentFile    = "kpi_data.json"
	timestampLayout = "2006-01-02T15:04:05Z"
	templateComment = "Fill in KPI data manually. This will be included in daily email reports. Once Firebase credentials are configured, app data will be auto-fetched."
)

type Outcome string

const (
	OutcomeUpdated  Outcome = "updated"
	OutcomeExisting Outcome = "existing"
	OutcomeTemplate Outcome = "template"
)

// AppMetricsSource returns metrics keyed by app name, or nil when it has
// nothing to contribute.
type AppMetricsSource interface {
	FetchApps(ctx context.Context) (map[string]models.MetricSet, error)
}

// WebMetricsSource returns metrics keyed by web property, or nil.
type WebMetricsSource interface {
	FetchWeb(ctx context.Context) (map[string]models.MetricSet, error)
}

type DocumentWriter interface {
	WriteKPI(ctx context.Context, doc models.KPIDocument) error
}

// Collector refreshes kpi_data.json. Fetched metrics replace the matching
// section of the manual document; everything else is left as entered.
type Collector struct {
	Dir    string
	Writer DocumentWriter
	Apps   AppMetricsSource
	Web    WebMetricsSource
	Log    zerolog.Logger
	Now    func() time.Time
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Collector) Run(ctx context.Context) (Outcome, models.KPIDocument, error) {
	var apps, web map[string]models.MetricSet
	if c.Apps != nil {
		m, err := c.Apps.FetchApps(ctx)
		if err != nil {
			c.Log.Warn().Err(err).Msg("app metrics fetch failed")
		}
		apps = m
	}
	if c.Web != nil {
		m, err := c.Web.FetchWeb(ctx)
		if err != nil {
			c.Log.Warn().Err(err).Msg("web metrics fetch failed")
		}
		web = m
	}

	existing, found, err := LoadDocument(filepath.Join(c.Dir, DocumentFile))
	if err != nil {
		return "", models.KPIDocument{}, err
	}

	switch {
	case len(apps) > 0 || len(web) > 0:
		doc := existing
		if !found {
			doc = Template(c.now())
		}
		doc.UpdatedAt = c.now().UTC().Format(timestampLayout)
		if len(apps) > 0 {
			doc.Apps = apps
			c.Log.Info().Int("apps", len(apps)).Msg("app metrics updated")
		}
		if len(web) > 0 {
			doc.Web = web
			c.Log.Info().Int("web", len(web)).Msg("web metrics updated")
		}
		if err := c.Writer.WriteKPI(ctx, doc); err != nil {
			return "", models.KPIDocument{}, err
		}
		return OutcomeUpdated, doc, nil

	case found:
		updated := existing.UpdatedAt
		if updated == "" {
			updated = "unknown"
		}
		c.Log.Info().
			Str("updated_at", updated).
			Str("apps", sectionSummary(existing.Apps)).
			Str("web", sectionSummary(existing.Web)).
			Msg("using existing manual KPI data")
		return OutcomeExisting, existing, nil

	default:
		doc := Template(c.now())
		if err := c.Writer.WriteKPI(ctx, doc); err != nil {
			return "", models.KPIDocument{}, err
		}
		c.Log.Info().Msg("no KPI data available, template created for manual entry")
		return OutcomeTemplate, doc, nil
	}
}

// LoadDocument reads a manual KPI document. found is false when the file does
// not exist.
func LoadDocument(path string) (models.KPIDocument, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.KPIDocument{}, false, nil
	}
	if err != nil {
		return models.KPIDocument{}, false, err
	}
	var doc models.KPIDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return models.KPIDocument{}, false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, true, nil
}

func sectionSummary(section map[string]models.MetricSet) string {
	names := make([]string, 0, len(section))
	for k := range section {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("%d (%s)", len(names), strings.Join(names, ", "))
}

func appFields(anr string) models.MetricSet {
	return models.MetricSet{"dau": "", "crash_rate": "", "anr_rate": anr, "rating": "", "version": ""}
}

func webFields() models.MetricSet {
	return models.MetricSet{"lcp": "", "fid": "", "cls": "", "page_load": "", "bounce_rate": ""}
}

// Template is the empty document offered for manual entry.
func Template(now time.Time) models.KPIDocument {
	return models.KPIDocument{
		Comment:   templateComment,
		UpdatedAt: now.UTC().Format(timestampLayout),
		Apps: map[string]models.MetricSet{
			"VZY Android":            appFields(""),
			"VZY iOS":                appFields("N/A"),
			"VZY Android TV":         appFields(""),
			"VZY Fire TV":            appFields(""),
			"VZY Samsung TV (Tizen)": appFields("N/A"),
			"VZY LG TV (webOS)":      appFields("N/A"),
		},
		Web: map[string]models.MetricSet{
			DesktopLabel: webFields(),
			MobileLabel:  webFields(),
		},
	}
}

// DefaultApps lists the apps tracked in Firebase.
func DefaultApps() []models.AppTarget {
	return []models.AppTarget{
		{Name: "VZY Android", Platform: models.PlatformAndroid, StoreID: "com.vzy.android"},
		{Name: "VZY iOS", Platform: models.PlatformIOS, StoreID: "com.vzy.ios"},
		{Name: "VZY Android TV", Platform: models.PlatformATV, StoreID: "com.vzy.atv"},
		{Name: "VZY Fire TV", Platform: models.PlatformATV, StoreID: "com.vzy.firetv"},
		{Name: "VZY Samsung TV", Platform: models.PlatformSamTV, StoreID: "vzy-samsung-tv"},
		{Name: "VZY LG TV", Platform: models.PlatformLGTV, StoreID: "vzy-lg-tv"},
	}
}
