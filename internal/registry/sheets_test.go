package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"autonaver/internal/config"
)

func newSheetsTestSource(t *testing.T, handler http.HandlerFunc) *SheetsSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default().Registry
	cfg.SpreadsheetID = "sheet-123"
	cfg.SheetName = "Buyers"
	cfg.RatePerMinute = 0

	source, err := NewSheetsSource(context.Background(), cfg, discardLogger(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return source
}

func TestSheetsSourceFetch(t *testing.T) {
	source := newSheetsTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-123/values/Buyers"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"range":          "Buyers!A1:D3",
			"majorDimension": "ROWS",
			"values": [][]any{
				{"name", "email", "machine_id", "expiry"},
				{"Alice", "a@x.com", "NAVER-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "2030-01-01"},
				{"Bob", "b@x.com", "NAVER-bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
				{12345, "n@x.com", "NAVER-cccccccccccccccccccccccccccccccc", 20300101},
			},
		})
	})

	snapshot := source.Fetch(context.Background())
	require.Len(t, snapshot, 2)

	alice, ok := snapshot.Lookup(aliceID)
	require.True(t, ok)
	assert.Equal(t, "2030-01-01", alice.ExpiryDate)

	numeric, ok := snapshot.Lookup(carolID)
	require.True(t, ok)
	assert.Equal(t, "12345", numeric.Name)
	assert.Equal(t, "20300101", numeric.ExpiryDate)

	_, ok = snapshot.Lookup(bobID)
	assert.False(t, ok, "rows with fewer than four cells are skipped")
}

func TestSheetsSourceFetchErrorYieldsEmptySnapshot(t *testing.T) {
	source := newSheetsTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	})

	snapshot := source.Fetch(context.Background())
	assert.NotNil(t, snapshot)
	assert.True(t, snapshot.Empty())
}

func TestCellStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "1", "2.5", "true", ""}, cellStrings([]interface{}{"a", 1, 2.5, true, nil}))
}
