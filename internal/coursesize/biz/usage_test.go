package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTotalUsage_Staleness(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	interval := 24 * time.Hour

	tests := []struct {
		name       string
		now        time.Time
		wantBytes  int64
		wantCached bool
		wantScans  int
	}{
		{name: "just before expiry", now: last.Add(interval - time.Second), wantBytes: 111, wantCached: true, wantScans: 0},
		{name: "at expiry", now: last.Add(interval), wantBytes: 222, wantCached: false, wantScans: 1},
		{name: "long expired", now: last.Add(10 * interval), wantBytes: 222, wantCached: false, wantScans: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{usage: &SiteUsage{Bytes: 111, LastUpdated: last}}
			scanner := &fakeScanner{total: 222}
			uc := NewSiteUsageUseCase(store, scanner, interval, nil, nil)

			got, err := uc.GetTotalUsage(context.Background(), tt.now)
			require.NoError(t, err)

			assert.Equal(t, tt.wantBytes, got.Bytes)
			assert.Equal(t, tt.wantCached, got.Cached)
			assert.Equal(t, tt.wantScans, scanner.scans)
			if tt.wantCached {
				assert.Equal(t, last, got.LastUpdated)
				assert.Zero(t, store.saves)
			} else {
				assert.Equal(t, tt.now, got.LastUpdated)
				assert.Equal(t, tt.now, store.usage.LastUpdated)
				assert.Equal(t, int64(222), store.usage.Bytes)
			}
		})
	}
}

func TestGetTotalUsage_EmptyStore(t *testing.T) {
	store := &fakeStore{}
	scanner := &fakeScanner{total: 5_000_001}
	obs := &fakeObserver{}
	uc := NewSiteUsageUseCase(store, scanner, 0, obs, nil)
	assert.Equal(t, DefaultRefreshInterval, uc.RefreshInterval())

	now := time.Unix(1_700_000_000, 0)
	got, err := uc.GetTotalUsage(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "6MB", got.Size)
	assert.Equal(t, []int64{5_000_001}, obs.usage)
	assert.Equal(t, []error{nil}, obs.scans)

	// second call inside the interval is served from the store
	got, err = uc.GetTotalUsage(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, got.Cached)
	assert.Equal(t, "6MB", got.Size)
	assert.Equal(t, 1, scanner.scans)
}

func TestGetTotalUsage_StoreFailures(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("load error counts as miss", func(t *testing.T) {
		store := &fakeStore{loadErr: errBoom, usage: &SiteUsage{Bytes: 1, LastUpdated: now}}
		scanner := &fakeScanner{total: 42}
		uc := NewSiteUsageUseCase(store, scanner, time.Hour, nil, nil)

		got, err := uc.GetTotalUsage(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Bytes)
		assert.Equal(t, 1, scanner.scans)
	})

	t.Run("save error is not surfaced", func(t *testing.T) {
		store := &fakeStore{saveErr: errBoom}
		scanner := &fakeScanner{total: 42}
		uc := NewSiteUsageUseCase(store, scanner, time.Hour, nil, nil)

		got, err := uc.GetTotalUsage(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Bytes)
		assert.Equal(t, 1, store.saves)

		_, err = uc.GetTotalUsage(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 2, scanner.scans)
	})
}

func TestForceRefresh(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := &fakeStore{usage: &SiteUsage{Bytes: 1, LastUpdated: now}}

	scanner := &fakeScanner{total: 9}
	uc := NewSiteUsageUseCase(store, scanner, time.Hour, nil, nil)
	got, err := uc.ForceRefresh(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Bytes)
	assert.Equal(t, int64(9), store.usage.Bytes)

	failing := &fakeScanner{err: errBoom}
	obs := &fakeObserver{}
	uc = NewSiteUsageUseCase(store, failing, time.Hour, obs, nil)
	_, err = uc.ForceRefresh(context.Background(), now)
	assert.ErrorIs(t, err, ErrUsageScanFailed)
	assert.Equal(t, []error{errBoom}, obs.scans)
	assert.Equal(t, int64(9), store.usage.Bytes)
}
