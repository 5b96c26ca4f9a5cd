package connectors

import (
	"fmt"
	"strings"

	"shoplist/internal/config"
	gmailconnector "shoplist/internal/connectors/gmail"
	imapconnector "shoplist/internal/connectors/imap"
)

// New returns the connector for provider ("gmail" or "imap").
func New(cfg config.Config, provider string) (MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", provider)
	}
}
