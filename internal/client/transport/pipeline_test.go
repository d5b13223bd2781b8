package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/token"
	"github.com/viettravel/tourhub/internal/client/transport"
)

// newStore returns a file-backed store pre-loaded with the given credentials.
func newStore(t *testing.T, creds token.Credentials) *token.Store {
	t.Helper()
	s, err := token.Open(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	if creds != (token.Credentials{}) {
		require.NoError(t, s.Set(creds))
	}
	return s
}

// refreshHandler implements the refresh exchange, counting calls and
// rotating R1 → T2/R2 for the expected device.
func refreshHandler(t *testing.T, calls *int64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		var req struct {
			RefreshToken string `json:"refreshToken"`
			DeviceID     string `json:"deviceId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RefreshToken != "R1" || req.DeviceID != "dev-1" {
			http.Error(w, "unknown refresh token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"AccessToken":"T2","RefreshToken":"R2"}`))
	}
}

func TestJSON_ValidTokenPassesThrough(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tourId":7,"status":"Approved"}`))
	}))
	defer srv.Close()

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	p := transport.New(srv.URL, store, zap.NewNop())

	var out struct {
		TourID int64  `json:"tourId"`
		Status string `json:"status"`
	}
	require.NoError(t, p.JSON(context.Background(), http.MethodGet, "/api/tours/7", nil, &out))
	assert.Equal(t, "Bearer T1", gotAuth)
	assert.Equal(t, int64(7), out.TourID)
}

func TestJSON_RefreshAndReplayOnce(t *testing.T) {
	var refreshCalls, apiCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc(transport.RefreshPath, refreshHandler(t, &refreshCalls))
	mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		if r.Header.Get("Authorization") != "Bearer T2" {
			http.Error(w, "expired", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	p := transport.New(srv.URL, store, zap.NewNop())

	var out []any
	require.NoError(t, p.JSON(context.Background(), http.MethodGet, "/api/bookings", nil, &out))

	assert.Equal(t, int64(1), atomic.LoadInt64(&refreshCalls), "exactly one refresh exchange")
	assert.Equal(t, int64(2), atomic.LoadInt64(&apiCalls), "original call plus one replay")

	// Atomic credential replacement: the new pair is stored, bound to the
	// same device, and the old access token is gone.
	creds := store.Get()
	assert.Equal(t, token.Credentials{AccessToken: "T2", RefreshToken: "R2", DeviceID: "dev-1"}, creds)
}

func TestJSON_FailClosedWithoutRefreshMaterial(t *testing.T) {
	var refreshCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc(transport.RefreshPath, refreshHandler(t, &refreshCalls))
	mux.HandleFunc("/api/tours", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// Access token only: the narrow refresh window was interrupted.
	store := newStore(t, token.Credentials{AccessToken: "T1"})
	var invalidated error
	p := transport.New(srv.URL, store, zap.NewNop(),
		transport.WithInvalidateHook(func(cause error) { invalidated = cause }),
	)

	err := p.JSON(context.Background(), http.MethodGet, "/api/tours", nil, nil)
	require.Error(t, err)

	var sessionErr *transport.SessionInvalidatedError
	require.ErrorAs(t, err, &sessionErr)
	assert.ErrorIs(t, err, transport.ErrNoRefreshCredentials)

	assert.Equal(t, int64(0), atomic.LoadInt64(&refreshCalls), "no refresh HTTP call may be made")
	assert.True(t, store.Get().Empty(), "store must be cleared")
	assert.NotNil(t, invalidated, "shell must be notified")
}

func TestJSON_SecondUnauthorizedPropagatesWithoutSecondRefresh(t *testing.T) {
	var refreshCalls, apiCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc(transport.RefreshPath, refreshHandler(t, &refreshCalls))
	mux.HandleFunc("/api/tours", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		http.Error(w, "still expired", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	p := transport.New(srv.URL, store, zap.NewNop())

	err := p.JSON(context.Background(), http.MethodGet, "/api/tours", nil, nil)
	require.Error(t, err)

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.Equal(t, int64(1), atomic.LoadInt64(&refreshCalls), "at most one refresh per request")
	assert.Equal(t, int64(2), atomic.LoadInt64(&apiCalls))
}

func TestJSON_RefreshFailureClearsSessionAndSurfacesRefreshError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(transport.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "refresh token rejected", http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/tours", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	var invalidated error
	p := transport.New(srv.URL, store, zap.NewNop(),
		transport.WithInvalidateHook(func(cause error) { invalidated = cause }),
	)

	err := p.JSON(context.Background(), http.MethodGet, "/api/tours", nil, nil)
	require.Error(t, err)

	// The caller receives the refresh failure, not the original 401.
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, transport.RefreshPath, apiErr.Path)

	assert.True(t, store.Get().Empty())
	assert.NotNil(t, invalidated)
}

func TestJSON_NetworkErrorPropagatesUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	p := transport.New(srv.URL, store, zap.NewNop())

	err := p.JSON(context.Background(), http.MethodGet, "/api/tours", nil, nil)
	require.Error(t, err)

	var apiErr *transport.APIError
	assert.False(t, errors.As(err, &apiErr), "network failure must not become an APIError")
	// No session side effects on network failure.
	assert.Equal(t, "T1", store.Get().AccessToken)
}

func TestJSON_OtherStatusesPropagate(t *testing.T) {
	var refreshCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc(transport.RefreshPath, refreshHandler(t, &refreshCalls))
	mux.HandleFunc("/api/admin/bookings/9/refund/confirm", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "refund already resolved", http.StatusConflict)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	p := transport.New(srv.URL, store, zap.NewNop())

	err := p.JSON(context.Background(), http.MethodPost, "/api/admin/bookings/9/refund/confirm", nil, nil)
	require.Error(t, err)
	assert.True(t, transport.IsStatus(err, http.StatusConflict))
	assert.Contains(t, err.Error(), "refund already resolved")
	assert.Equal(t, int64(0), atomic.LoadInt64(&refreshCalls), "conflicts never trigger a refresh")
}

func TestRefresh_SingleFlightSharedByConcurrentRequests(t *testing.T) {
	var refreshCalls int64
	var mu sync.Mutex
	accepted := map[string]bool{"Bearer T2": true}

	mux := http.NewServeMux()
	mux.HandleFunc(transport.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&refreshCalls, 1)
		time.Sleep(50 * time.Millisecond) // hold the exchange open so callers pile up
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"AccessToken":"T2","RefreshToken":"R2"}`))
	})
	mux.HandleFunc("/api/tours", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ok := accepted[r.Header.Get("Authorization")]
		mu.Unlock()
		if !ok {
			http.Error(w, "expired", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	p := transport.New(srv.URL, store, zap.NewNop())

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out []any
			errs[i] = p.JSON(context.Background(), http.MethodGet, "/api/tours", nil, &out)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&refreshCalls),
		"concurrent 401s must share one refresh exchange")
}

func TestUpload_SendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "beach.jpg", header.Filename)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tourId":3}`))
	}))
	defer srv.Close()

	store := newStore(t, token.Credentials{AccessToken: "T1", RefreshToken: "R1", DeviceID: "dev-1"})
	p := transport.New(srv.URL, store, zap.NewNop())

	var out struct {
		TourID int64 `json:"tourId"`
	}
	err := p.Upload(context.Background(), "/api/partner/tours/3/images", "file", "beach.jpg",
		strings.NewReader("not really a jpeg"), nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.TourID)
}
