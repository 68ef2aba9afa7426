package busycal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

// Provider is a calendar.Provider backed by an external busy-calendar feed.
//
// The feed exposes GET {base}/v1/busy?tenant=<id>&date=YYYY-MM-DD and answers
// {"busy": bool}. Failures propagate to the caller; the availability resolver
// surfaces them as calendar check errors without retrying.
type Provider struct {
	baseURL string
	client  *http.Client
}

func NewProvider(baseURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *Provider) IsBusy(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error) {
	q := url.Values{}
	q.Set("tenant", string(tenant))
	q.Set("date", date.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/busy?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("build busy-calendar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("query busy calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("busy calendar returned status %d", resp.StatusCode)
	}

	var body struct {
		Busy bool `json:"busy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode busy-calendar response: %w", err)
	}
	return body.Busy, nil
}
