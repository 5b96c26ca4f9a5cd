package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shoplist/internal"
	"shoplist/internal/config"
	"shoplist/internal/ingredient"
	"shoplist/internal/storage"
)

// ListService builds, stores and exports shopping lists.
type ListService struct {
	db     *storage.DB
	cfg    config.Config
	parser *ingredient.Parser
}

func NewListService(db *storage.DB, cfg config.Config, parser *ingredient.Parser) *ListService {
	return &ListService{db: db, cfg: cfg, parser: parser}
}

// Create builds a list from lines and stores it with its items. emailID may
// be nil for lists not built from an email.
func (s *ListService) Create(ctx context.Context, name string, lines []internal.SourceLine, emailID *int) (internal.ShoppingList, []internal.ListItem, error) {
	products, err := s.db.ListProducts()
	if err != nil {
		return internal.ShoppingList{}, nil, err
	}
	var matcher *Matcher
	if len(products) > 0 {
		matcher = NewMatcher(s.cfg, products)
	}

	items, err := NewBuilder(s.parser, matcher, s.cfg.ParseWorkers).Build(ctx, lines)
	if err != nil {
		return internal.ShoppingList{}, nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Shopping list"
	}
	list, err := s.db.CreateList(name, emailID)
	if err != nil {
		return internal.ShoppingList{}, nil, fmt.Errorf("create list: %w", err)
	}
	if err := s.db.InsertListItems(list.ID, items); err != nil {
		return internal.ShoppingList{}, nil, fmt.Errorf("insert list items: %w", err)
	}

	stored, err := s.db.GetListItems(list.ID)
	if err != nil {
		return internal.ShoppingList{}, nil, err
	}
	list.ItemCount = len(stored)

	slog.Info("list created", "list_id", list.ID, "public_id", list.PublicID, "lines", len(lines), "items", len(stored))
	return list, stored, nil
}

// Export writes the stored list to outputPath as xlsx.
func (s *ListService) Export(listID int64, outputPath string) (internal.ShoppingList, error) {
	list, err := s.db.GetList(listID)
	if err != nil {
		return internal.ShoppingList{}, err
	}
	items, err := s.db.GetListItems(listID)
	if err != nil {
		return internal.ShoppingList{}, err
	}
	if err := ExportListToXLSX(list, items, outputPath); err != nil {
		return internal.ShoppingList{}, fmt.Errorf("export list %d: %w", listID, err)
	}
	return list, nil
}
