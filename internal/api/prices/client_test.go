package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fuelPage = `<html><body>
<table>
  <tr><th>Prodotto</th><th>Prezzo medio</th></tr>
  <tr><td>Benzina self</td><td>1,789 €/l</td></tr>
  <tr><td>Gasolio self</td><td>1,692 €/l</td></tr>
  <tr><td>GPL</td><td>0,712 €/l</td></tr>
</table>
</body></html>`

const electricityPage = `<table>
  <tr><td>Energia elettrica (PUN)</td><td>n/d</td><td>0.245</td></tr>
</table>`

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/fuel", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		fmt.Fprint(w, fuelPage)
	})
	mux.HandleFunc("/electricity", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		fmt.Fprint(w, electricityPage)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	c := NewClient(Options{
		FuelURL:        srv.URL + "/fuel",
		ElectricityURL: srv.URL + "/electricity",
		RequestsPerSec: 100,
	}, zap.NewNop())

	prices, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.789, prices.PetrolPerLiter)
	assert.Equal(t, 1.692, prices.DieselPerLiter)
	assert.Equal(t, 0.245, prices.ElectricPerKWh)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	// 第二次命中缓存
	_, err = c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	c.ClearCache()
	_, err = c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
}

func TestClient_FetchIncomplete(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	c := NewClient(Options{FuelURL: srv.URL + "/fuel", RequestsPerSec: 100}, zap.NewNop())

	_, err := c.Fetch(context.Background())
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "electricity")
}

func TestClient_FetchErrors(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)

	_, err := NewClient(Options{}, zap.NewNop()).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(Options{FuelURL: srv.URL + "/broken", RequestsPerSec: 100}, zap.NewNop()).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestParseTable(t *testing.T) {
	parsed, err := ParseTable(strings.NewReader(fuelPage + electricityPage))
	require.NoError(t, err)
	require.NotNil(t, parsed.Petrol)
	require.NotNil(t, parsed.Diesel)
	require.NotNil(t, parsed.Electricity)
	assert.Equal(t, 1.789, *parsed.Petrol)
	assert.Equal(t, 0.245, *parsed.Electricity)

	parsed, err = ParseTable(strings.NewReader("<p>nothing here</p>"))
	require.NoError(t, err)
	assert.Nil(t, parsed.Petrol)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{"1,789 €/l", 1.789, true},
		{"0.22", 0.22, true},
		{"€ 2", 2, true},
		{"n/d", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		v, ok := ParseDecimal(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.expected, v, tt.in)
	}
}
