package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/testutil"
)

func TestNew(t *testing.T) {
	client := New(Config{}, nil)

	testutil.AssertEqual(t, client.config.Timeout, 30*time.Second, "default timeout")
	testutil.AssertEqual(t, client.config.UserAgent, DefaultUserAgent, "default user agent")
	testutil.AssertTrue(t, client.rateLimiter == nil, "no limiter without rate")

	limited := New(Config{RateLimit: 2}, logx.NewDiscard())
	testutil.AssertNotNil(t, limited.rateLimiter, "limiter configured")
}

func TestClient_Retry(t *testing.T) {
	logger := logx.NewDiscard()

	t.Run("retries on 503 status", func(t *testing.T) {
		attempts := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := New(Config{MaxRetries: 3, RetryBackoff: 5 * time.Millisecond}, logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.RequireNoError(t, err, "should succeed after retries")
		resp.Body.Close()
		testutil.AssertEqual(t, resp.StatusCode, http.StatusOK, "final status should be 200")
		testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(3), "should have retried twice")
	})

	t.Run("does not retry on 404", func(t *testing.T) {
		attempts := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := New(Config{MaxRetries: 3, RetryBackoff: 5 * time.Millisecond}, logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.RequireNoError(t, err, "request should complete")
		resp.Body.Close()
		testutil.AssertEqual(t, resp.StatusCode, http.StatusNotFound, "status should be 404")
		testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(1), "should not retry on 404")
	})

	t.Run("exhausts retries and returns the last response", func(t *testing.T) {
		attempts := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := New(Config{MaxRetries: 2, RetryBackoff: 5 * time.Millisecond}, logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.RequireNoError(t, err, "a response is not a transport error")
		resp.Body.Close()
		testutil.AssertEqual(t, resp.StatusCode, http.StatusTooManyRequests, "last status passes through")
		testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(3), "1 + 2 retries")

		_, err = client.GetText(context.Background(), server.URL, nil)
		testutil.AssertErrorIs(t, err, errors.ErrRateLimit, "GetText should surface rate limit")
	})

	t.Run("retryable status without retries is a response", func(t *testing.T) {
		statuses := []int{
			http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		}
		for _, status := range statuses {
			attempts := int32(0)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.WriteHeader(status)
			}))

			probe := New(ProbeConfig(time.Second), logger)
			resp, err := probe.Head(context.Background(), server.URL)
			testutil.RequireNoError(t, err, http.StatusText(status)+" should not be an error")
			testutil.AssertEqual(t, resp.StatusCode, status, "status passes through")
			testutil.AssertEqual(t, atomic.LoadInt32(&attempts), int32(1), "single attempt")
			server.Close()
		}
	})
}

func TestClient_NoRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	probe := New(ProbeConfig(time.Second), logx.NewDiscard())
	resp, err := probe.Head(context.Background(), server.URL+"/start")
	testutil.RequireNoError(t, err, "head should succeed")
	testutil.AssertEqual(t, resp.StatusCode, http.StatusFound, "redirect must not be followed")
}

func TestClient_InsecureTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	probe := New(ProbeConfig(time.Second), logx.NewDiscard())
	resp, err := probe.Head(context.Background(), server.URL)
	testutil.RequireNoError(t, err, "self-signed certificate should be accepted")
	testutil.AssertEqual(t, resp.StatusCode, http.StatusNoContent, "status should pass through")

	strict := New(Config{Timeout: time.Second}, logx.NewDiscard())
	_, err = strict.Head(context.Background(), server.URL)
	testutil.AssertError(t, err, "verifying client should reject self-signed certificate")
}

func TestClient_GetTextAndDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/text":
			_, _ = w.Write([]byte("hello"))
		case "/json":
			_, _ = w.Write([]byte(`{"status":"success","query":"8.8.8.8"}`))
		case "/broken":
			_, _ = w.Write([]byte(`{"status":`))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	client := New(Config{}, logx.NewDiscard())
	ctx := context.Background()

	text, err := client.GetText(ctx, server.URL+"/text", nil)
	testutil.RequireNoError(t, err, "get text")
	testutil.AssertEqual(t, text, "hello", "body should match")

	var payload struct {
		Status string `json:"status"`
		Query  string `json:"query"`
	}
	testutil.RequireNoError(t, client.DecodeJSON(ctx, server.URL+"/json", &payload), "decode json")
	testutil.AssertEqual(t, payload.Query, "8.8.8.8", "field should decode")

	err = client.DecodeJSON(ctx, server.URL+"/broken", &payload)
	testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "malformed json is an invalid response")

	_, err = client.GetText(ctx, server.URL+"/forbidden", nil)
	testutil.AssertError(t, err, "403 should fail")
	testutil.AssertEqual(t, err.Error(), "HTTP 403", "status error text")
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code   int
		target error
	}{
		{http.StatusTooManyRequests, errors.ErrRateLimit},
		{http.StatusNotFound, errors.ErrNotFound},
		{http.StatusBadGateway, errors.ErrServiceUnavailable},
	}
	for _, tt := range tests {
		err := CheckStatus(&http.Response{StatusCode: tt.code})
		testutil.AssertErrorIs(t, err, tt.target, http.StatusText(tt.code))
	}
	testutil.AssertNoError(t, CheckStatus(&http.Response{StatusCode: http.StatusNoContent}), "2xx passes")
}
