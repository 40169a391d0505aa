package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registration-agent/pkg/catalog"
	"github.com/registration-agent/pkg/config"
)

func newTestServer(t *testing.T) (*Server, *catalog.Store) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Registration.DestinationHost = "registry.example.com"

	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_events_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	store := catalog.NewStore(catalog.Counter{Name: "test_events_total", Type: "counter", Dimensions: []string{"kind"}})
	return NewHTTPServer(cfg, nil, reg, store), store
}

func TestEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "test_events_total 1")

	resp, err = http.Get(ts.URL + "/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var counters []catalog.Counter
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counters))
	require.Len(t, counters, 1)
	assert.Equal(t, "test_events_total", counters[0].Name)
	assert.Equal(t, []string{"kind"}, counters[0].Dimensions)

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEmptyCatalogIsJSONArray(t *testing.T) {
	s, store := newTestServer(t)
	store.Remove("test_events_total")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestStartAndShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown())
	_, err = http.Get("http://" + s.Addr() + "/health")
	assert.Error(t, err)
}
