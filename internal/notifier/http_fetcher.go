package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// HTTPFetcher reads snapshots from the public menu endpoint.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// FetchSnapshot GETs /v1/menu/<table>.  The t query parameter defeats
// intermediate caches.
func (f *HTTPFetcher) FetchSnapshot(ctx context.Context, tableNumber int) (*model.MenuSnapshot, error) {
	url := fmt.Sprintf("%s/v1/menu/%d?t=%d", strings.TrimRight(f.BaseURL, "/"), tableNumber, time.Now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu snapshot: unexpected status %d", resp.StatusCode)
	}
	var snap model.MenuSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode menu snapshot: %w", err)
	}
	return &snap, nil
}
