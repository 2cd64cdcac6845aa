// Package cloudflare is a thin client for the Cloudflare v4 REST API,
// covering zone listing and DNS record CRUD. Every call is single-attempt:
// no retry or backoff.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/KopralProject/Telegram/internal/metrics"
)

// DefaultBaseURL is the production Cloudflare API endpoint.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// APIError is a failed Cloudflare API call: a transport-level error is wrapped
// separately, so an APIError always carries the HTTP status and any
// provider-reported messages from the response envelope.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("cloudflare: status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("cloudflare: status %d", e.StatusCode)
}

// Client authenticates with the static X-Auth-Email / X-Auth-Key header pair
// supplied at construction.
type Client struct {
	baseURL    string
	email      string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, email, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// ListZones returns all zones in the account.
func (c *Client) ListZones(ctx context.Context) ([]Zone, error) {
	var out zonesResponse
	if err := c.do(ctx, "list_zones", http.MethodGet, "/zones", nil, &out); err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return out.Result, nil
}

// ListRecords returns the DNS records of a zone. recordType and name filter
// the listing when non-empty; an empty recordType requests all types.
func (c *Client) ListRecords(ctx context.Context, zoneID, recordType, name string) ([]Record, error) {
	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	params := url.Values{}
	if recordType != "" {
		params.Set("type", recordType)
	}
	if name != "" {
		params.Set("name", name)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out recordsResponse
	if err := c.do(ctx, "list_records", http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list records for zone %s: %w", zoneID, err)
	}
	return out.Result, nil
}

// CreateRecord creates a DNS record in the zone.
func (c *Client) CreateRecord(ctx context.Context, zoneID string, p RecordParams) (*Record, error) {
	var out recordResponse
	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	if err := c.do(ctx, "create_record", http.MethodPost, path, p, &out); err != nil {
		return nil, fmt.Errorf("create record %s: %w", p.Name, err)
	}
	return &out.Result, nil
}

// UpdateRecord replaces a DNS record in full. All fields of p must be set
// even when unchanged.
func (c *Client) UpdateRecord(ctx context.Context, zoneID, recordID string, p RecordParams) (*Record, error) {
	var out recordResponse
	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID)
	if err := c.do(ctx, "update_record", http.MethodPut, path, p, &out); err != nil {
		return nil, fmt.Errorf("update record %s: %w", recordID, err)
	}
	return &out.Result, nil
}

// DeleteRecord deletes a DNS record and returns the provider's
// acknowledgement, which echoes the record id.
func (c *Client) DeleteRecord(ctx context.Context, zoneID, recordID string) (*Record, error) {
	var out recordResponse
	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID)
	if err := c.do(ctx, "delete_record", http.MethodDelete, path, nil, &out); err != nil {
		return nil, fmt.Errorf("delete record %s: %w", recordID, err)
	}
	return &out.Result, nil
}

type envelope interface {
	failed() bool
	messages() []string
}

func (r *zonesResponse) failed() bool   { return !r.Success }
func (r *recordsResponse) failed() bool { return !r.Success }
func (r *recordResponse) failed() bool  { return !r.Success }

func (r *zonesResponse) messages() []string   { return flatten(r.Errors) }
func (r *recordsResponse) messages() []string { return flatten(r.Errors) }
func (r *recordResponse) messages() []string  { return flatten(r.Errors) }

func flatten(msgs []apiMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Message)
	}
	return out
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out envelope) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Auth-Email", c.email)
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(op, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequests.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("read response: %w", err)
	}

	// The envelope is decoded even on non-2xx status so the provider's error
	// messages can be surfaced.
	_ = json.Unmarshal(respBody, out)

	if resp.StatusCode >= 300 || out.failed() {
		metrics.APIRequests.WithLabelValues(op, "error").Inc()
		return &APIError{StatusCode: resp.StatusCode, Messages: out.messages()}
	}

	metrics.APIRequests.WithLabelValues(op, "ok").Inc()
	return nil
}
