package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// maxErrorBody bounds how much of a failed response is kept for the error message.
const maxErrorBody = 512

type (
	// Client pushes ciphertexts to the audit endpoint.
	Client struct {
		url    string
		http   *http.Client
		logger *slog.Logger
	}

	request struct {
		Ciphertext string `json:"ciphertext"`
	}
)

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("relay_client"),
	}
}

// Relay posts {"ciphertext": "0x..."}. Any non-2xx status is an error; the
// response body is otherwise ignored.
func (c *Client) Relay(ctx context.Context, ciphertext []byte) error {
	body, err := json.Marshal(request{Ciphertext: hexutil.Encode(ciphertext)})
	if err != nil {
		return fmt.Errorf("failed to marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.With("url", c.url).With("size", len(ciphertext)).Debug("relaying ciphertext")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to relay ciphertext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
