package crtsh

import (
	"context"
	"net/http"
	"slices"
	"testing"
	"time"

	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/testutil"
)

func TestSearch(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Query().Get("q"), "%.example.com", "wildcard query")
		testutil.AssertEqual(t, r.URL.Query().Get("output"), "json", "json output")
		_, _ = w.Write([]byte(testutil.FixtureCTResponse))
	}))

	crt := New(srv.URL, time.Second, logx.NewDiscard())
	names, err := crt.Search(context.Background(), "example.com")
	testutil.RequireNoError(t, err, "search")
	testutil.AssertTrue(t, len(names) >= 3, "name_value bundles are split")
	testutil.AssertTrue(t, slices.Contains(names, "sub.example.com"), "subdomain present")
	testutil.AssertTrue(t, slices.Contains(names, "*.example.com"), "unfiltered wildcard present")
}

func TestSearch_MultiNameValue(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name_value":"a.example.com\nb.example.com\n"},{"name_value":" c.example.com "}]`))
	}))

	names, err := New(srv.URL, time.Second, logx.NewDiscard()).Search(context.Background(), "example.com")
	testutil.RequireNoError(t, err, "search")
	testutil.AssertEqual(t, names, []string{"a.example.com", "b.example.com", "c.example.com"}, "names in order")
}

func TestSearch_Errors(t *testing.T) {
	html := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>busy</html>"))
	}))
	_, err := New(html.URL, time.Second, logx.NewDiscard()).Search(context.Background(), "example.com")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "html body")

	down := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err = New(down.URL, time.Second, logx.NewDiscard()).Search(context.Background(), "example.com")
	testutil.AssertErrorIs(t, err, errors.ErrNotFound, "status error")
}

func TestNew_WithProxy(t *testing.T) {
	crt := New("", time.Second, logx.NewDiscard(), WithProxy("http://127.0.0.1:8080"))
	testutil.AssertEqual(t, crt.config.ProxyURL, "http://127.0.0.1:8080", "proxy forwarded to the client")
	testutil.AssertEqual(t, crt.baseURL, defaultURL, "default endpoint")

	direct := New("", time.Second, logx.NewDiscard(), WithProxy(""))
	testutil.AssertEqual(t, direct.config.ProxyURL, "", "empty proxy keeps direct connections")
}
