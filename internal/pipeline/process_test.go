package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shoplist/internal"
	"shoplist/internal/storage"
	"shoplist/internal/util"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.UpsertProducts(testProducts()))
	return db
}

func storeEmail(t *testing.T, db *storage.DB, messageID, raw string) internal.EmailRow {
	t.Helper()
	rawPath := filepath.Join(t.TempDir(), "message.eml")
	require.NoError(t, os.WriteFile(rawPath, []byte(raw), 0o644))
	email, err := db.UpsertEmail("imap", messageID, "", "jo@example.com", "2026-10-17T09:00:00Z", "hash-"+messageID, rawPath, internal.EmailFetched)
	require.NoError(t, err)
	return email
}

func TestProcessEmailToXLSX(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	email := storeEmail(t, db, "<pancakes-1@example.com>", pancakeEmail)

	proc := NewProcessingService(db, testConfig(), nil)
	res, err := proc.ProcessEmail(ctx, email)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 4, res.Items)

	// A second run replaces the first list.
	res, err = proc.ProcessByProviderMessageID(ctx, "imap", "<pancakes-1@example.com>")
	require.NoError(t, err)

	lists, err := db.ListListsForEmail(email.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, res.ListID, lists[0].ID)
	assert.Equal(t, "Recipe: pancakes", lists[0].Name)

	stored, err := db.GetEmailByID(email.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.EmailProcessed, stored.Status)

	items, err := db.GetListItems(res.ListID)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "2 cups", items[0].Quantity)
	assert.Equal(t, "flour", items[0].Item)
	assert.Equal(t, "1 1/2", items[2].Quantity)
	assert.Equal(t, "cups milk", items[2].Item)
	assert.Equal(t, "", items[3].Quantity)
	assert.Equal(t, "salt", items[3].Item)
	assert.Equal(t, internal.MatchReview, items[3].MatchStatus)

	out := filepath.Join(t.TempDir(), "out", "pancakes.xlsx")
	list, err := NewListService(db, testConfig(), nil).Export(res.ListID, out)
	require.NoError(t, err)
	assert.Equal(t, res.ListID, list.ID)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Shopping list")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "aisle", rows[0][0])
	assert.Equal(t, []string{"Baking", "2 cups", "flour"}, rows[1][:3])
	assert.Equal(t, "Dairy", rows[2][0])
	assert.Equal(t, "Unsorted", rows[4][0])
	assert.Equal(t, "salt", rows[4][2])
}

func TestProcessPendingSkipsNonRecipes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)

	chat := "From: Sam <sam@example.com>\r\nSubject: Lunch?\r\nContent-Type: text/plain\r\n\r\nAre you free on Friday at noon?\r\n"
	skipped := storeEmail(t, db, "<chat@example.com>", chat)
	recipe := storeEmail(t, db, "<pancakes-2@example.com>", pancakeEmail)

	proc := NewProcessingService(db, testConfig(), nil)
	emails, items, err := proc.ProcessPending(ctx, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 2, emails)
	assert.Equal(t, 4, items)

	row, err := db.GetEmailByID(skipped.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.EmailSkipped, row.Status)

	lists, err := db.ListListsForEmail(skipped.ID)
	require.NoError(t, err)
	assert.Empty(t, lists)

	row, err = db.GetEmailByID(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.EmailProcessed, row.Status)

	emails, _, err = proc.ProcessPending(ctx, 10, "gmail")
	require.NoError(t, err)
	assert.Zero(t, emails)
}

func TestListServiceCreate(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	lines, err := ExtractLinesFromInput("text", "2 eggs\n1 cup whole milk\nwater")
	require.NoError(t, err)

	list, items, err := NewListService(db, testConfig(), nil).Create(context.Background(), "  ", lines, nil)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list", list.Name)
	assert.Equal(t, 2, list.ItemCount)
	assert.NotEmpty(t, list.PublicID)
	require.Len(t, items, 2)
	assert.Equal(t, "Whole milk", util.Deref(items[1].ProductName))
	assert.Equal(t, "Dairy", util.Deref(items[1].Aisle))
}
