package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookProvider posts the issue request as JSON to an external
// invoicing endpoint. A 2xx response with a reference acknowledges the
// invoice; 4xx means the provider refused the payload.
type WebhookProvider struct {
	url    string
	token  string
	client *http.Client
}

func NewWebhook(url, token string) *WebhookProvider {
	return &WebhookProvider{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *WebhookProvider) Name() string { return "webhook" }

func (p *WebhookProvider) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result IssueResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode provider response: %w", err)
		}
		return &result, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: status %d", ErrProviderRejected, resp.StatusCode)
	default:
		return nil, fmt.Errorf("invoice provider returned status %d", resp.StatusCode)
	}
}
