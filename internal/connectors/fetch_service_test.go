package connectors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplist/internal"
	"shoplist/internal/config"
	"shoplist/internal/storage"
)

type fakeConnector struct {
	messages []internal.FetchedMailMessage
	err      error
	calls    int
}

func (f *fakeConnector) FetchInbox(_ context.Context, _ string, max int) ([]internal.FetchedMailMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.messages) > max {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func TestFetchAndStore(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn := &fakeConnector{messages: []internal.FetchedMailMessage{
		{Provider: "imap", MessageID: "<a@example.com>", Subject: "Soup", Raw: []byte("Subject: Soup\r\n\r\n1 onion\r\n")},
		{Provider: "imap", MessageID: "<b@example.com>", Subject: "Stew", Raw: []byte("Subject: Stew\r\n\r\n2 carrots\r\n")},
	}}
	rawDir := filepath.Join(tmp, "raw")
	svc := NewFetchService(db, rawDir, conn)

	res, err := svc.FetchAndStore(context.Background(), "INBOX", 10)
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Fetched: 2, Stored: 2}, res)

	res, err = svc.FetchAndStore(context.Background(), "INBOX", 10)
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Fetched: 2, Stored: 0}, res)

	pending, err := db.ListEmailsByStatus(internal.EmailFetched, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	blob, err := os.ReadFile(pending[0].RawRef)
	require.NoError(t, err)
	assert.Contains(t, string(blob), "Subject:")

	entries, err := os.ReadDir(rawDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFetchAndStoreConnectorError(t *testing.T) {
	t.Parallel()

	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("mailbox unavailable")
	_, err = NewFetchService(db, t.TempDir(), &fakeConnector{err: boom}).FetchAndStore(context.Background(), "INBOX", 5)
	assert.ErrorIs(t, err, boom)
}

func TestNewUnsupportedProvider(t *testing.T) {
	t.Parallel()

	_, err := New(config.Config{}, "pop3")
	assert.EqualError(t, err, "unsupported mail provider: pop3")

	_, err = New(config.Config{}, "imap")
	assert.Error(t, err)
}
