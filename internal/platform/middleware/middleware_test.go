package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loot/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(id *string) http.Handler {
		return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*id = requestcontext.RequestID(r.Context())
		}))
	}

	t.Run("generates UUID when no header provided", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		capture(&got).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/meta", nil))

		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("accepts valid client-provided ID", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/v1/meta", nil)
		req.Header.Set("X-Request-ID", "claim-run.42")
		capture(&got).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "claim-run.42", got)
	})

	t.Run("replaces unsafe or oversized IDs", func(t *testing.T) {
		for _, bad := range []string{"bad id\n", strings.Repeat("a", MaxRequestIDLength+1), "<script>"} {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/v1/meta", nil)
			req.Header.Set("X-Request-ID", bad)
			capture(&got).ServeHTTP(httptest.NewRecorder(), req)
			assert.NotEqual(t, bad, got)
			assert.Len(t, got, 36)
		}
	})
}

func TestRequestTime(t *testing.T) {
	var first, second time.Time
	h := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, first, second)
	assert.Equal(t, time.UTC, first.Location())
}

func TestRecovery(t *testing.T) {
	h := Recovery(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestContentTypeJSON(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"post without body type", http.MethodPost, "", http.StatusOK},
		{"post json", http.MethodPost, "application/json", http.StatusOK},
		{"post json with charset", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"post form", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"get ignores header", http.MethodGet, "text/plain", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/v1/bags/1/claim", nil)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			w := httptest.NewRecorder()
			ContentTypeJSON(ok).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	t.Run("request under limit passes through", func(t *testing.T) {
		h := BodyLimit(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Len(t, data, 100)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100))))
	})

	t.Run("request over limit returns error on read", func(t *testing.T) {
		var readErr error
		h := BodyLimit(100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 200))))

		require.Error(t, readErr)
		assert.Contains(t, readErr.Error(), "request body too large")
	})
}

type recordingObserver struct {
	endpoints []string
	statuses  []string
}

func (r *recordingObserver) ObserveEndpointLatency(endpoint string, _ float64) {
	r.endpoints = append(r.endpoints, endpoint)
}

func (r *recordingObserver) IncrementRequest(_ string, status string) {
	r.statuses = append(r.statuses, status)
}

func TestLatencyUsesRoutePattern(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Latency(obs))
	r.Get("/v1/bags/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/bags/12", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/bags/13", nil))

	assert.Equal(t, []string{"/v1/bags/{id}", "/v1/bags/{id}"}, obs.endpoints)
	assert.Equal(t, []string{"4xx", "4xx"}, obs.statuses)
}

func TestLatencyUnmatchedRoutesShareOneLabel(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Latency(obs))
	r.Get("/v1/meta", func(w http.ResponseWriter, _ *http.Request) {})

	for _, path := range []string{"/junk-0", "/junk-1", "/v1/bags/../../etc"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{UnmatchedEndpoint, UnmatchedEndpoint, UnmatchedEndpoint}, obs.endpoints)
	assert.Equal(t, []string{"4xx", "4xx", "4xx"}, obs.statuses)
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		prefix     string
		hidden     string
	}{
		{name: "ipv4 with port", remoteAddr: "203.0.113.77:5555", prefix: "203.0.113.0/24", hidden: "203.0.113.77"},
		{name: "ipv6 with port", remoteAddr: "[2001:db8:85a3::8a2e:370:7334]:443", prefix: "2001:db8:85a3::/48", hidden: "8a2e"},
		{name: "ipv4-mapped ipv6", remoteAddr: "[::ffff:198.51.100.9]:80", prefix: "198.51.100.0/24", hidden: "198.51.100.9"},
		{name: "bare address", remoteAddr: "192.0.2.10", prefix: "192.0.2.0/24", hidden: "192.0.2.10"},
		{name: "not an address", remoteAddr: "@unix-socket", prefix: "unknown", hidden: "unix-socket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
			}))

			req := httptest.NewRequest(http.MethodPost, "/v1/bags/1/claim", nil)
			req.RemoteAddr = tt.remoteAddr
			h.ServeHTTP(httptest.NewRecorder(), req)

			out := buf.String()
			assert.Contains(t, out, `"status":201`)
			assert.Contains(t, out, `"remote_addr_prefix":"`+tt.prefix+`"`)
			assert.NotContains(t, out, tt.hidden)
		})
	}
}
