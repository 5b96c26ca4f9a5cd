package connectors

import (
	"context"

	"shoplist/internal"
)

// MailConnector pulls raw recipe emails from a mailbox.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}
