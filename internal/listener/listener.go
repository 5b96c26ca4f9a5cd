package listener

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"shoplist/internal"
	"shoplist/internal/config"
	"shoplist/internal/connectors"
	"shoplist/internal/ingredient"
	"shoplist/internal/pipeline"
	"shoplist/internal/storage"
)

// Service polls a mailbox for recipe emails, turns them into shopping lists
// and optionally exports each list as xlsx.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	parser    *ingredient.Parser
	connector connectors.MailConnector
}

// NewService returns a listener. A nil connector is built from the configured
// provider on each cycle.
func NewService(db *storage.DB, cfg config.Config, parser *ingredient.Parser, connector connectors.MailConnector) *Service {
	return &Service{db: db, cfg: cfg, parser: parser, connector: connector}
}

// CycleResult summarizes one fetch, process and export pass.
type CycleResult struct {
	Fetched   int
	Stored    int
	Processed int
	Items     int
	Exported  int
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.ListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("listener started", "provider", s.provider(), "label", s.cfg.ListenerLabel, "interval", interval)

	for {
		if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
			slog.Error("listener cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("listener stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	provider := s.provider()
	conn := s.connector
	if conn == nil {
		var err error
		conn, err = connectors.New(s.cfg, provider)
		if err != nil {
			return CycleResult{}, err
		}
	}

	fetched, err := connectors.NewFetchService(s.db, s.cfg.RawMailDir, conn).FetchAndStore(ctx, s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return CycleResult{}, err
	}
	res := CycleResult{Fetched: fetched.Fetched, Stored: fetched.Stored}

	processor := pipeline.NewProcessingService(s.db, s.cfg, s.parser)
	res.Processed, res.Items, err = processor.ProcessPending(ctx, s.cfg.ListenerProcessBatch, provider)
	if err != nil {
		return res, err
	}

	if s.cfg.ListenerAutoExport {
		res.Exported, err = s.exportProcessed(provider)
		if err != nil {
			return res, err
		}
	}

	slog.Info("listener cycle done", "provider", provider, "fetched", res.Fetched, "stored", res.Stored,
		"processed", res.Processed, "items", res.Items, "exported", res.Exported)
	return res, nil
}

func (s *Service) provider() string {
	return strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
}

// exportProcessed writes every list of processed emails to
// OUTPUT_DIR/listener and marks the emails exported.
func (s *Service) exportProcessed(provider string) (int, error) {
	emails, err := s.db.ListEmailsByStatus(internal.EmailProcessed, 200)
	if err != nil {
		return 0, err
	}

	lists := pipeline.NewListService(s.db, s.cfg, s.parser)
	exported := 0
	for _, email := range emails {
		if email.Provider != provider {
			continue
		}
		emailLists, err := s.db.ListListsForEmail(email.ID)
		if err != nil {
			return exported, err
		}
		for _, list := range emailLists {
			filename := fmt.Sprintf("%d_%s.xlsx", list.ID, sanitizeMessageID(email.MessageID))
			if _, err := lists.Export(list.ID, filepath.Join(s.cfg.OutputDir, "listener", filename)); err != nil {
				return exported, err
			}
			exported++
		}
		if err := s.db.UpdateEmailStatus(email.ID, internal.EmailExported); err != nil {
			return exported, err
		}
	}
	return exported, nil
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_", "@", "_at_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
