package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/kinetic/internal/domain/gesture"
)

// register posts cfg to a running service so it loads the new examples.
func register(ctx context.Context, c *Config, cfg gesture.Config) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal gesture config: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/gestures"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: c.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("post %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
