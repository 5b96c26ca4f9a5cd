package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shoplist/internal"
	"shoplist/internal/api"
	"shoplist/internal/config"
	"shoplist/internal/ingredient"
	"shoplist/internal/storage"
	"shoplist/internal/util"
)

type listResponse struct {
	List  internal.ShoppingList `json:"list"`
	Items []internal.ListItem   `json:"items"`
}

func setupRouter(t *testing.T) (*storage.DB, http.Handler) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.UpsertProducts([]internal.ProductRecord{
		{ID: 1, Name: "Yellow onion", Aisle: util.StringPtr("Produce"), Aliases: []string{"onion"}},
		{ID: 2, Name: "Canned tomatoes", Aisle: util.StringPtr("Tins"), Aliases: []string{"tomatoes"}},
	}))

	cfg := config.Config{ParseWorkers: 2, MatchOKThreshold: 0.85, MatchReviewThreshold: 0.6, MatchGapThreshold: 0.08}
	return db, api.NewRouter(db, cfg, nil)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(v))
	return buf
}

func do(router http.Handler, method, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// GET /healthz
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	rec := do(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

// ---------------------------------------------------------------------------
// POST /ingredients/parse
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	rec := do(router, http.MethodPost, "/ingredients/parse", jsonBody(t, map[string]any{
		"lines": []any{"2 cups flour", "water", 42, "an onion"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []ingredient.ParsedIngredient
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []ingredient.ParsedIngredient{
		{Quantity: "2 cups", Item: "flour"},
		{Quantity: "an", Item: "onion"},
	}, got)
}

func TestParse_NonArrayLines(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	for _, body := range []string{`{"lines": "2 cups flour"}`, `{"lines": null}`, `{}`} {
		rec := do(router, http.MethodPost, "/ingredients/parse", bytes.NewBufferString(body))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String(), body)
	}
}

func TestParse_InvalidBody(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	rec := do(router, http.MethodPost, "/ingredients/parse", bytes.NewBufferString("not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

// ---------------------------------------------------------------------------
// /lists
// ---------------------------------------------------------------------------

func TestCreateAndGetList(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	rec := do(router, http.MethodPost, "/lists", jsonBody(t, map[string]any{
		"name":  "Chilli",
		"lines": []string{"1 onion, diced", "a can of tomatoes"},
		"text":  "Ingredients\n2 tsp cumin\nMethod\nCook it.",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "Chilli", created.List.Name)
	assert.Equal(t, 3, created.List.ItemCount)
	require.Len(t, created.Items, 3)
	assert.Equal(t, "onion", created.Items[0].Item)
	assert.Equal(t, internal.MatchOK, created.Items[0].MatchStatus)
	assert.Equal(t, "Produce", util.Deref(created.Items[0].Aisle))
	assert.Equal(t, "a can", created.Items[1].Quantity)
	assert.Equal(t, internal.SourceText, created.Items[2].Source)
	assert.Equal(t, 3, created.Items[2].LineNo)

	for _, id := range []string{"1", created.List.PublicID} {
		rec = do(router, http.MethodGet, "/lists/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code, id)
		var got listResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, created.List.ID, got.List.ID)
		assert.Len(t, got.Items, 3)
	}

	rec = do(router, http.MethodGet, "/lists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lists []internal.ShoppingList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&lists))
	assert.Len(t, lists, 1)
}

func TestCreateList_Empty(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	rec := do(router, http.MethodPost, "/lists", jsonBody(t, map[string]any{"name": "nothing"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetList_Errors(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	rec := do(router, http.MethodGet, "/lists/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"list not found"}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/lists/0b6a0f39-9c0e-4d3c-8f43-6f9f3e0b8f1a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/lists/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/lists?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportList(t *testing.T) {
	t.Parallel()
	_, router := setupRouter(t)

	rec := do(router, http.MethodPost, "/lists", jsonBody(t, map[string]any{"lines": []string{"2 onions", "1 tsp salt"}}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodGet, "/lists/1/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shopping-list-1.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Shopping list")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rec = do(router, http.MethodGet, "/lists/5/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
