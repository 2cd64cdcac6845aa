package bot

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/KopralProject/Telegram/internal/cloudflare"
)

// mockProvider implements the Provider interface for testing.
type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ListZones(ctx context.Context) ([]cloudflare.Zone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cloudflare.Zone), args.Error(1)
}

func (m *mockProvider) ListRecords(ctx context.Context, zoneID, recordType, name string) ([]cloudflare.Record, error) {
	args := m.Called(ctx, zoneID, recordType, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cloudflare.Record), args.Error(1)
}

func (m *mockProvider) CreateRecord(ctx context.Context, zoneID string, p cloudflare.RecordParams) (*cloudflare.Record, error) {
	args := m.Called(ctx, zoneID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudflare.Record), args.Error(1)
}

func (m *mockProvider) UpdateRecord(ctx context.Context, zoneID, recordID string, p cloudflare.RecordParams) (*cloudflare.Record, error) {
	args := m.Called(ctx, zoneID, recordID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudflare.Record), args.Error(1)
}

func (m *mockProvider) DeleteRecord(ctx context.Context, zoneID, recordID string) (*cloudflare.Record, error) {
	args := m.Called(ctx, zoneID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudflare.Record), args.Error(1)
}
