package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, listingURL, urlFeedURL string) *Client {
	t.Helper()
	return NewClient(Config{
		ListingURL:        listingURL,
		URLFeedURL:        urlFeedURL,
		Timeout:           2 * time.Second,
		MaxRetries:        2,
		RequestsPerSecond: 1000,
	}, zerolog.Nop())
}

func TestFetchListingsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ean":"111","marketplace":"Amazon","preco_final":"19.90"}]`))
	}))
	defer srv.Close()

	raws, err := newTestClient(t, srv.URL, "").FetchListings(context.Background())

	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "111", raws[0].EAN)
	assert.Equal(t, "19.90", raws[0].FinalPrice)
}

func TestFetchListingsWrappedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"ean":"111"},{"ean":"222"}]}`))
	}))
	defer srv.Close()

	raws, err := newTestClient(t, srv.URL, "").FetchListings(context.Background())

	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "222", raws[1].EAN)
}

func TestFetchListingsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 3}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, "").FetchListings(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no results array")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	raws, err := newTestClient(t, srv.URL, "").FetchListings(context.Background())

	require.NoError(t, err)
	assert.Empty(t, raws)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, "").FetchListings(context.Background())

	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.LastStatus)
	assert.Equal(t, 1, fe.Attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchAll(t *testing.T) {
	listings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ean":"111"}]`))
	}))
	defer listings.Close()
	urls := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ean":"111","marketplace":"Amazon","url":"https://example.com/p","active":true}]`))
	}))
	defer urls.Close()

	raws, recs, err := newTestClient(t, listings.URL, urls.URL).FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, raws, 1)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Active)
}

func TestFetchAllFailsWhole(t *testing.T) {
	listings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ean":"111"}]`))
	}))
	defer listings.Close()
	urls := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer urls.Close()

	raws, recs, err := newTestClient(t, listings.URL, urls.URL).FetchAll(context.Background())

	require.Error(t, err)
	assert.Nil(t, raws)
	assert.Nil(t, recs)
}
