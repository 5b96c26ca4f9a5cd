package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"shoplist/internal"
	"shoplist/internal/config"
	"shoplist/internal/ingredient"
	"shoplist/internal/logging"
	"shoplist/internal/pipeline"
	"shoplist/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type server struct {
	db     *storage.DB
	cfg    config.Config
	parser *ingredient.Parser
	lists  *pipeline.ListService
}

// NewRouter wires up all routes. A nil parser selects the built-in
// vocabulary.
func NewRouter(db *storage.DB, cfg config.Config, parser *ingredient.Parser) http.Handler {
	if parser == nil {
		parser = ingredient.Default()
	}
	s := &server{db: db, cfg: cfg, parser: parser, lists: pipeline.NewListService(db, cfg, parser)}

	r := chi.NewRouter()
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)

	r.Post("/ingredients/parse", s.handleParse)

	r.Get("/lists", s.handleListLists)
	r.Post("/lists", s.handleCreateList)
	r.Get("/lists/{id}", s.handleGetList)
	r.Get("/lists/{id}/export", s.handleExportList)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

// --- parse ---

type parseRequest struct {
	Lines any `json:"lines"`
}

func (s *server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	parsed, err := s.parser.ParseIngredientsConcurrent(r.Context(), ingredient.CoerceLines(req.Lines), s.cfg.ParseWorkers)
	if err != nil {
		jsonError(w, "parse cancelled", http.StatusServiceUnavailable, err)
		return
	}
	if parsed == nil {
		parsed = []ingredient.ParsedIngredient{}
	}
	jsonOK(w, parsed)
}

// --- lists ---

type createListRequest struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
	HTML  string   `json:"html"`
}

type listResponse struct {
	List  internal.ShoppingList `json:"list"`
	Items []internal.ListItem   `json:"items"`
}

func (s *server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lines := make([]internal.SourceLine, 0, len(req.Lines))
	for i, raw := range req.Lines {
		lines = append(lines, internal.SourceLine{LineNo: i + 1, Source: internal.SourceAPIRequest, Raw: raw})
	}
	for _, src := range []struct{ kind, content string }{{"text", req.Text}, {"html", req.HTML}} {
		if strings.TrimSpace(src.content) == "" {
			continue
		}
		extracted, err := pipeline.ExtractLinesFromInput(src.kind, src.content)
		if err != nil {
			jsonError(w, "failed to read "+src.kind, http.StatusBadRequest)
			return
		}
		for _, line := range extracted {
			line.LineNo = len(lines) + 1
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		jsonError(w, "lines, text or html is required", http.StatusBadRequest)
		return
	}

	list, items, err := s.lists.Create(r.Context(), req.Name, lines, nil)
	if err != nil {
		jsonError(w, "failed to create list", http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(listResponse{List: list, Items: items}) //nolint:errcheck
}

func (s *server) handleListLists(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	lists, err := s.db.ListLists(limit)
	if err != nil {
		jsonError(w, "failed to list shopping lists", http.StatusInternalServerError, err)
		return
	}
	jsonOK(w, lists)
}

func (s *server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, ok := s.lookupList(w, r)
	if !ok {
		return
	}
	items, err := s.db.GetListItems(list.ID)
	if err != nil {
		jsonError(w, "failed to load list items", http.StatusInternalServerError, err)
		return
	}
	list.ItemCount = len(items)
	jsonOK(w, listResponse{List: list, Items: items})
}

func (s *server) handleExportList(w http.ResponseWriter, r *http.Request) {
	list, ok := s.lookupList(w, r)
	if !ok {
		return
	}

	dir, err := os.MkdirTemp("", "shoplist-export-*")
	if err != nil {
		jsonError(w, "failed to export list", http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "list.xlsx")
	if _, err := s.lists.Export(list.ID, path); err != nil {
		jsonError(w, "failed to export list", http.StatusInternalServerError, err)
		return
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		jsonError(w, "failed to export list", http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="shopping-list-%d.xlsx"`, list.ID))
	w.Write(blob) //nolint:errcheck
}

// lookupList resolves {id} as a numeric id or a public UUID and writes the
// error response itself when it cannot.
func (s *server) lookupList(w http.ResponseWriter, r *http.Request) (internal.ShoppingList, bool) {
	raw := chi.URLParam(r, "id")

	var (
		list internal.ShoppingList
		err  error
	)
	if id, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
		list, err = s.db.GetList(id)
	} else if publicID, uuidErr := uuid.Parse(raw); uuidErr == nil {
		list, err = s.db.GetListByPublicID(publicID.String())
	} else {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return list, false
	}

	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, "list not found", http.StatusNotFound)
			return list, false
		}
		jsonError(w, "failed to get list", http.StatusInternalServerError, err)
		return list, false
	}
	return list, true
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonError(w http.ResponseWriter, msg string, status int, errs ...error) {
	if status >= 500 && len(errs) > 0 {
		slog.Error(msg, "status", status, "error", errs[0])
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
