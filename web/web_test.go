package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/store"
)

func TestStatusHandler(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.PutUser(ctx, &market.User{ID: 1}))
	require.NoError(t, st.AppendListing(ctx, &market.Listing{UserID: 1, Title: "куртка", Approved: true}))

	srv := NewServer("127.0.0.1:0", st, time.Now().Add(-3*time.Second))
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var doc Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "ok", doc.Status)
	require.Equal(t, 1, doc.Users)
	require.Equal(t, 1, doc.Listings)
	require.GreaterOrEqual(t, doc.UptimeSeconds, int64(3))
}

func TestIndexHandler(t *testing.T) {
	srv := NewServer("127.0.0.1:0", store.NewMemory(), time.Now())
	rec := httptest.NewRecorder()
	srv.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Shomy Bay Bot")
}

func TestIndexHandlerUnknownPath(t *testing.T) {
	srv := NewServer("127.0.0.1:0", store.NewMemory(), time.Now())
	rec := httptest.NewRecorder()
	srv.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPingerPings(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPinger(ts.URL, 10*time.Millisecond, ts.Client())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return hits.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pinger did not stop after cancel")
	}
}

func TestPingerNoURL(t *testing.T) {
	p := NewPinger("", time.Second, nil)
	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pinger with empty url should return immediately")
	}
}
