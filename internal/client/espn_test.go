package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(coreURL, siteURL string) *Client {
	c := NewClient(coreURL, siteURL, 5*time.Second, 1000)
	c.retryDelay = 10 * time.Millisecond
	return c
}

func TestGetEventsPaginates(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		assert.Equal(t, "20260110-20260111", r.URL.Query().Get("dates"))
		assert.Equal(t, "52", r.URL.Query().Get("groups"))

		switch page {
		case "1":
			fmt.Fprint(w, `{"count": 3, "pageSize": 2, "pageCount": 2, "items": [
				{"$ref": "http://api/events/1"}, {"$ref": "http://api/events/2"}
			]}`)
		case "2":
			fmt.Fprint(w, `{"count": 3, "pageSize": 2, "pageCount": 2, "items": [
				{"$ref": "http://api/events/3"}
			]}`)
		default:
			t.Errorf("unexpected page %q", page)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	items, err := c.GetEvents(context.Background(), "20260110-20260111")
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, []string{"1", "2"}, pages)
}

func TestGetRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id": "42"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	body, err := c.GetRef(context.Background(), srv.URL+"/events/42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "42"}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.GetVenue(context.Background(), 99999)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetGameSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary", r.URL.Path)
		assert.Equal(t, "401706500", r.URL.Query().Get("event"))
		fmt.Fprint(w, `{"boxscore": {}}`)
	}))
	defer srv.Close()

	c := newTestClient("http://unused", srv.URL)
	body, err := c.GetGameSummary(context.Background(), 401706500)
	require.NoError(t, err)
	assert.JSONEq(t, `{"boxscore": {}}`, string(body))
}

func TestGetRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	c.retryDelay = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.GetRef(ctx, srv.URL+"/events/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDateRange(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20260110-20260117", DateRange(start, end))
}
