package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shoplist/internal/config"
	"shoplist/internal/storage"
)

const (
	metaLastInitialSync     = "catalog.last_initial_sync"
	metaLastIncrementalSync = "catalog.last_incremental_sync."
	metaLastAislesSync      = "catalog.last_aisles_sync"
)

// SyncService mirrors the remote grocery catalog into the local database.
type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

func (s *SyncService) InitialSync(ctx context.Context) (int, error) {
	products, err := s.client.GetProductsScrollAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch catalog: %w", err)
	}
	if err := s.db.UpsertProducts(products); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata(metaLastInitialSync, time.Now().UTC().Format(time.RFC3339))
	slog.Info("catalog initial sync", "products", len(products))

	if err := s.refreshAislesIfNeeded(ctx, true); err != nil {
		return 0, err
	}
	return len(products), nil
}

func (s *SyncService) IncrementalSync(ctx context.Context, mode string) (int, error) {
	products, err := s.client.GetProductsIncremental(ctx, mode)
	if err != nil {
		return 0, fmt.Errorf("fetch catalog changes: %w", err)
	}
	if len(products) > 0 {
		if err := s.db.UpsertProducts(products); err != nil {
			return 0, err
		}
	}
	_ = s.db.SetMetadata(metaLastIncrementalSync+mode, time.Now().UTC().Format(time.RFC3339))
	slog.Info("catalog incremental sync", "mode", mode, "products", len(products))

	if err := s.refreshAislesIfNeeded(ctx, false); err != nil {
		return 0, err
	}
	return len(products), nil
}

// refreshAislesIfNeeded snapshots the aisle layout to OutputDir at most once
// per CatalogAislesRefreshDays unless forced.
func (s *SyncService) refreshAislesIfNeeded(ctx context.Context, force bool) error {
	last, err := s.db.GetMetadata(metaLastAislesSync)
	if err != nil {
		return err
	}

	if !force && last != nil {
		if parsed, err := time.Parse(time.RFC3339, *last); err == nil {
			if time.Since(parsed) < time.Duration(s.cfg.CatalogAislesRefreshDays)*24*time.Hour {
				return nil
			}
		}
	}

	aisles, err := s.client.GetAisles(ctx)
	if err != nil {
		return fmt.Errorf("fetch aisles: %w", err)
	}
	blob, _ := json.MarshalIndent(aisles, "", "  ")
	path := filepath.Join(s.cfg.OutputDir, "catalog-aisles.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return err
	}
	return s.db.SetMetadata(metaLastAislesSync, time.Now().UTC().Format(time.RFC3339))
}
