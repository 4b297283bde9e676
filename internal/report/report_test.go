package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzy-dashboard/backend/internal/models"
)

type memorySink struct {
	docs map[string][]byte
	err  error
}

func (m *memorySink) Put(ctx context.Context, name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.docs == nil {
		m.docs = map[string][]byte{}
	}
	m.docs[name] = data
	return nil
}

func sampleDashboard() models.DashboardReport {
	return models.DashboardReport{
		Data: models.Matrix{
			models.PlatformWeb: {"OPEN": 2, "PARKED": 0},
			models.PlatformIOS: {"OPEN": 1, "PARKED": 0},
		},
		UpdatedAt:          "2024-03-05T10:00:00Z",
		TotalIssuesFetched: 3,
		Project:            "VZY",
	}
}

func TestEncodeIndentedAndStable(t *testing.T) {
	a, err := Encode(sampleDashboard())
	require.NoError(t, err)
	b, err := Encode(sampleDashboard())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(string(a), "{\n  \"data\": {\n    \"IOS\""), string(a))
	assert.True(t, strings.HasSuffix(string(a), "}\n"))
}

func TestWriterNames(t *testing.T) {
	sink := &memorySink{}
	w := Writer{Sink: sink, Log: zerolog.Nop()}
	ctx := context.Background()

	require.NoError(t, w.WriteDashboard(ctx, sampleDashboard()))
	require.NoError(t, w.WriteDetail(ctx, models.DetailReport{UpdatedAt: "2024-03-05T10:00:00Z"}))
	require.NoError(t, w.WriteKPI(ctx, models.KPIDocument{UpdatedAt: "x"}))

	assert.Contains(t, sink.docs, DashboardFile)
	assert.Contains(t, sink.docs, DetailFile)
	assert.Contains(t, sink.docs, KPIFile)
	assert.Contains(t, string(sink.docs[DashboardFile]), `"total_issues_fetched": 3`)
}

func TestWriterPropagatesSinkError(t *testing.T) {
	w := Writer{Sink: &memorySink{err: errors.New("disk full")}, Log: zerolog.Nop()}
	err := w.WriteDashboard(context.Background(), sampleDashboard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), DashboardFile)
}

func TestFileSinkOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink := FileSink{Dir: dir}
	ctx := context.Background()

	require.NoError(t, sink.Put(ctx, DashboardFile, []byte("first")))
	require.NoError(t, sink.Put(ctx, DashboardFile, []byte("second")))

	got, err := os.ReadFile(filepath.Join(dir, DashboardFile))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestMultiSinkStopsAtFirstError(t *testing.T) {
	first := &memorySink{err: errors.New("boom")}
	second := &memorySink{}
	err := MultiSink{first, second}.Put(context.Background(), DetailFile, []byte("{}"))
	require.Error(t, err)
	assert.Empty(t, second.docs)
}

func TestCacheLoadDir(t *testing.T) {
	dir := t.TempDir()
	c := NewCache()
	require.NoError(t, c.LoadDir(dir))
	_, ok := c.Dashboard()
	assert.False(t, ok)

	w := Writer{Sink: FileSink{Dir: dir}, Log: zerolog.Nop()}
	require.NoError(t, w.WriteDashboard(context.Background(), sampleDashboard()))
	require.NoError(t, c.LoadDir(dir))

	dash, ok := c.Dashboard()
	require.True(t, ok)
	assert.Equal(t, 2, dash.Data[models.PlatformWeb]["OPEN"])
	_, ok = c.Detail()
	assert.False(t, ok)
}

func TestCacheWatchReloads(t *testing.T) {
	dir := t.TempDir()
	c := NewCache()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Watch(ctx, dir, zerolog.Nop()))

	w := Writer{Sink: FileSink{Dir: dir}, Log: zerolog.Nop()}
	require.NoError(t, w.WriteDashboard(context.Background(), sampleDashboard()))

	require.Eventually(t, func() bool {
		_, ok := c.Dashboard()
		return ok
	}, 5*time.Second, 50*time.Millisecond)
}

func TestObjectSinkKey(t *testing.T) {
	s, err := NewObjectSink(ObjectConfig{Endpoint: "http://localhost:9000", Bucket: "dashboard", Prefix: "vzy", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "vzy/data.json", s.Key(DashboardFile))

	_, err = NewObjectSink(ObjectConfig{Bucket: "dashboard"})
	assert.Error(t, err)
}
