package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAuthHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "admin@example.com", r.Header.Get("X-Auth-Email"))
	assert.Equal(t, "test-key", r.Header.Get("X-Auth-Key"))
}

// ---------- ListZones ----------

func TestClient_ListZones_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/zones", r.URL.Path)
		assertAuthHeaders(t, r)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"errors":[],"result":[
			{"id":"zone-1","name":"example.com"},
			{"id":"zone-2","name":"example.org"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	zones, err := client.ListZones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "zone-1", zones[0].ID)
	assert.Equal(t, "example.com", zones[0].Name)
}

func TestClient_ListZones_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"errors":[{"code":9103,"message":"Unknown X-Auth-Key or X-Auth-Email"}],"result":null}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "bad-key")
	_, err := client.ListZones(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Unknown X-Auth-Key or X-Auth-Email")
}

// ---------- ListRecords ----------

func TestClient_ListRecords_Filters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/zones/zone-1/dns_records", r.URL.Path)
		assert.Equal(t, "A", r.URL.Query().Get("type"))
		assert.Equal(t, "*.dev.example.com", r.URL.Query().Get("name"))
		assertAuthHeaders(t, r)

		w.Write([]byte(`{"success":true,"errors":[],"result":[
			{"id":"rec-1","type":"A","name":"*.dev.example.com","content":"10.0.0.5","proxied":true,"ttl":1}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	records, err := client.ListRecords(context.Background(), "zone-1", "A", "*.dev.example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
	assert.True(t, records[0].Proxied)
}

func TestClient_ListRecords_AllTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The type parameter must be omitted entirely, not sent empty.
		assert.False(t, r.URL.Query().Has("type"))
		assert.Equal(t, "*.example.com", r.URL.Query().Get("name"))
		w.Write([]byte(`{"success":true,"errors":[],"result":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	records, err := client.ListRecords(context.Background(), "zone-1", "", "*.example.com")
	require.NoError(t, err)
	assert.Empty(t, records)
}

// ---------- CreateRecord ----------

func TestClient_CreateRecord_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/zones/zone-1/dns_records", r.URL.Path)
		assertAuthHeaders(t, r)

		var payload map[string]any
		err := json.NewDecoder(r.Body).Decode(&payload)
		require.NoError(t, err)
		assert.Equal(t, "A", payload["type"])
		assert.Equal(t, "*.dev.example.com", payload["name"])
		assert.Equal(t, "10.0.0.5", payload["content"])
		assert.Equal(t, true, payload["proxied"])
		assert.Equal(t, float64(1), payload["ttl"])

		w.Write([]byte(`{"success":true,"errors":[],"result":
			{"id":"rec-new","type":"A","name":"*.dev.example.com","content":"10.0.0.5","proxied":true,"ttl":1}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	record, err := client.CreateRecord(context.Background(), "zone-1", RecordParams{
		Type: "A", Name: "*.dev.example.com", Content: "10.0.0.5", Proxied: true, TTL: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-new", record.ID)
}

func TestClient_CreateRecord_EnvelopeFailure(t *testing.T) {
	// 200 OK with success=false still fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"errors":[{"code":81057,"message":"Record already exists."}],"result":null}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	_, err := client.CreateRecord(context.Background(), "zone-1", RecordParams{
		Type: "A", Name: "*.dev.example.com", Content: "10.0.0.5", TTL: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Record already exists.")
}

// ---------- UpdateRecord ----------

func TestClient_UpdateRecord_FullReplace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/zones/zone-1/dns_records/rec-1", r.URL.Path)

		var payload map[string]any
		err := json.NewDecoder(r.Body).Decode(&payload)
		require.NoError(t, err)
		assert.Equal(t, "CNAME", payload["type"])
		assert.Equal(t, "*.dev.example.com", payload["name"])
		assert.Equal(t, "app.example.net", payload["content"])
		assert.Equal(t, false, payload["proxied"])
		assert.Equal(t, float64(1), payload["ttl"])

		w.Write([]byte(`{"success":true,"errors":[],"result":
			{"id":"rec-1","type":"CNAME","name":"*.dev.example.com","content":"app.example.net","proxied":false,"ttl":1}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	record, err := client.UpdateRecord(context.Background(), "zone-1", "rec-1", RecordParams{
		Type: "CNAME", Name: "*.dev.example.com", Content: "app.example.net", Proxied: false, TTL: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "app.example.net", record.Content)
}

// ---------- DeleteRecord ----------

func TestClient_DeleteRecord_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/zones/zone-1/dns_records/rec-1", r.URL.Path)
		assertAuthHeaders(t, r)
		w.Write([]byte(`{"success":true,"errors":[],"result":{"id":"rec-1"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	record, err := client.DeleteRecord(context.Background(), "zone-1", "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", record.ID)
}

func TestClient_DeleteRecord_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"errors":[{"code":81044,"message":"Record does not exist."}],"result":null}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin@example.com", "test-key")
	_, err := client.DeleteRecord(context.Background(), "zone-1", "rec-gone")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Record does not exist.")
}
