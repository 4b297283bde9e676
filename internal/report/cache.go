package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/models"
)

const reloadDebounce = 500 * time.Millisecond

// Cache keeps the latest documents in memory for the HTTP API.
type Cache struct {
	mu        sync.RWMutex
	dashboard *models.DashboardReport
	detail    *models.DetailReport
	kpi       *models.KPIDocument
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) SetReports(dash models.DashboardReport, detail models.DetailReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dashboard = &dash
	c.detail = &detail
}

func (c *Cache) SetKPI(doc models.KPIDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kpi = &doc
}

func (c *Cache) Dashboard() (models.DashboardReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dashboard == nil {
		return models.DashboardReport{}, false
	}
	return *c.dashboard, true
}

func (c *Cache) Detail() (models.DetailReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.detail == nil {
		return models.DetailReport{}, false
	}
	return *c.detail, true
}

func (c *Cache) KPI() (models.KPIDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kpi == nil {
		return models.KPIDocument{}, false
	}
	return *c.kpi, true
}

// LoadDir reads whichever documents exist in dir. Missing files are skipped.
func (c *Cache) LoadDir(dir string) error {
	var dash models.DashboardReport
	okDash, err := readJSON(filepath.Join(dir, DashboardFile), &dash)
	if err != nil {
		return err
	}
	var detail models.DetailReport
	okDetail, err := readJSON(filepath.Join(dir, DetailFile), &detail)
	if err != nil {
		return err
	}
	var kpi models.KPIDocument
	okKPI, err := readJSON(filepath.Join(dir, KPIFile), &kpi)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if okDash {
		c.dashboard = &dash
	}
	if okDetail {
		c.detail = &detail
	}
	if okKPI {
		c.kpi = &kpi
	}
	return nil
}

func readJSON(path string, dst any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// Watch reloads the cache when a report file in dir changes, until ctx ends.
func (c *Cache) Watch(ctx context.Context, dir string, log zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isReportFile(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					if err := c.LoadDir(dir); err != nil {
						log.Warn().Err(err).Msg("report reload failed")
						return
					}
					log.Info().Str("dir", dir).Msg("reports reloaded")
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("report watcher error")
			}
		}
	}()
	return nil
}

func isReportFile(name string) bool {
	switch filepath.Base(name) {
	case DashboardFile, DetailFile, KPIFile:
		return true
	}
	return false
}
