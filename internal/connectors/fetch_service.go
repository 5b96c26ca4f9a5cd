package connectors

import (
	"context"
	"log/slog"

	"shoplist/internal/storage"
)

type FetchService struct {
	connector MailConnector
	store     *MailStoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

// FetchAndStore saves new messages from label. Messages already stored are
// counted as fetched but not stored again.
func (s *FetchService) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, err
	}

	stored := 0
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return FetchResult{Fetched: len(messages), Stored: stored}, err
		}
		created, err := s.store.Store(msg)
		if err != nil {
			return FetchResult{}, err
		}
		if created {
			stored++
		}
	}

	slog.Info("mail fetched", "label", label, "fetched", len(messages), "stored", stored)
	return FetchResult{Fetched: len(messages), Stored: stored}, nil
}
