package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"shoplist/internal"
	"shoplist/internal/config"
	"shoplist/internal/ingredient"
	"shoplist/internal/storage"
)

// ProcessingService turns stored recipe emails into shopping lists.
type ProcessingService struct {
	db    *storage.DB
	cfg   config.Config
	lists *ListService
}

func NewProcessingService(db *storage.DB, cfg config.Config, parser *ingredient.Parser) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, lists: NewListService(db, cfg, parser)}
}

type ProcessResult struct {
	EmailID int
	ListID  int64
	Items   int
	Skipped bool
}

func (s *ProcessingService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	email, err := s.db.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(ctx, email)
}

// ProcessPending processes up to limit fetched emails, optionally for one
// provider only. It returns the number of emails and list items processed.
func (s *ProcessingService) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus(internal.EmailFetched, limit)
	if err != nil {
		return 0, 0, err
	}
	processedEmails := 0
	processedItems := 0
	for _, email := range pending {
		if err := ctx.Err(); err != nil {
			return processedEmails, processedItems, err
		}
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(ctx, email)
		if err != nil {
			return processedEmails, processedItems, err
		}
		processedEmails++
		processedItems += res.Items
	}
	return processedEmails, processedItems, nil
}

// ProcessEmail rebuilds the shopping list of one email. Lists built from an
// earlier run of the same email are replaced.
func (s *ProcessingService) ProcessEmail(ctx context.Context, email internal.EmailRow) (ProcessResult, error) {
	start := time.Now()
	traceID := uuid.NewString()
	log := slog.With("trace_id", traceID, "email_id", email.ID)

	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("read raw email: %w", err)
	}

	content, err := ExtractLinesFromEmailRaw(raw)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("parse email %d: %w", email.ID, err)
	}

	detect := DetectRecipe(firstNonEmpty(content.Subject, email.Subject), content.Text, content.HTML, content.Attachments)
	if err := s.db.ClearEmailLists(email.ID); err != nil {
		return ProcessResult{}, err
	}

	if !detect.IsRecipe || len(content.Lines) == 0 {
		log.Info("email skipped", "score", detect.Score, "reason", detect.Reason, "lines", len(content.Lines))
		if err := s.db.UpdateEmailStatus(email.ID, internal.EmailSkipped); err != nil {
			return ProcessResult{}, err
		}
		s.recordRun(log, traceID, email.ID, nil, start, map[string]int{"lines": len(content.Lines), "items": 0})
		return ProcessResult{EmailID: email.ID, Skipped: true}, nil
	}

	name := firstNonEmpty(content.Subject, email.Subject, fmt.Sprintf("Recipe email %d", email.ID))
	list, items, err := s.lists.Create(ctx, name, content.Lines, &email.ID)
	if err != nil {
		return ProcessResult{}, err
	}

	if err := s.db.UpdateEmailStatus(email.ID, internal.EmailProcessed); err != nil {
		return ProcessResult{}, err
	}

	counts := CountByStatus(items)
	counts["lines"] = len(content.Lines)
	s.recordRun(log, traceID, email.ID, &list.ID, start, counts)
	log.Info("email processed", "list_id", list.ID, "items", len(items), "ok", counts["ok"], "review", counts["review"])

	return ProcessResult{EmailID: email.ID, ListID: list.ID, Items: len(items)}, nil
}

func (s *ProcessingService) recordRun(log *slog.Logger, traceID string, emailID int, listID *int64, start time.Time, counts map[string]int) {
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if err := s.db.InsertRun(traceID, &emailID, listID, timings, counts); err != nil {
		log.Warn("run record failed", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
