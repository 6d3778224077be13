package profilesdk

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// Client is a client for the reels Backend Profile Service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a profile service client. Outgoing requests are logged at
// debug level through logger.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &slogx.Transport{Logger: logger},
		},
	}
}
