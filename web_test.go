/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Seednode/playr/games/trivia"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the full router with rooms on a fake clock, so no
// countdown ticks unless a test advances it.
func newTestServer(t *testing.T, modify ...func(*Config)) (*httptest.Server, *clockwork.FakeClock) {
	t.Helper()

	cfg := validConfig()
	for _, m := range modify {
		m(&cfg)
	}

	fc := clockwork.NewFakeClock()
	manager := trivia.NewManager(trivia.Options{
		Clock:       fc,
		Logger:      zerolog.Nop(),
		DefaultQuiz: trivia.DefaultQuiz(),
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = manager.Run(ctx)
		close(done)
	}()

	errs := make(chan error, 64)
	srv := httptest.NewServer(newRouter(&cfg, manager, newCors(&cfg), errs))

	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})

	return srv, fc
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestRealIP(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		remote  string
		headers map[string]string
		want    string
	}{
		"remote addr":        {remote: "10.0.0.1:5000", want: "10.0.0.1:5000"},
		"ipv6 remote":        {remote: "[::1]:5000", want: "[::1]:5000"},
		"cloudflare":         {remote: "10.0.0.1:5000", headers: map[string]string{"CF-Connecting-IP": "203.0.113.7"}, want: "203.0.113.7:5000"},
		"real ip":            {remote: "10.0.0.1:5000", headers: map[string]string{"X-Real-IP": "203.0.113.8"}, want: "203.0.113.8:5000"},
		"cloudflare wins":    {remote: "10.0.0.1:5000", headers: map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Real-IP": "203.0.113.8"}, want: "203.0.113.7:5000"},
		"garbage is ignored": {remote: "10.0.0.1:5000", headers: map[string]string{"X-Real-IP": "not-an-ip"}, want: "10.0.0.1:5000"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}

			assert.Equal(t, tc.want, realIP(r))
		})
	}
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	tests := map[string]struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		"home":         {path: "/", status: http.StatusOK, contentType: "text/html", contains: "/trivia"},
		"health":       {path: "/healthz", status: http.StatusOK, contains: "Ok"},
		"version":      {path: "/version", status: http.StatusOK, contains: "playr v" + releaseVersion},
		"robots":       {path: "/robots.txt", status: http.StatusOK, contains: "Disallow"},
		"favicon":      {path: "/favicon.svg", status: http.StatusOK, contentType: "image/svg+xml"},
		"script":       {path: "/assets/trivia/app.js", status: http.StatusOK, contentType: "text/javascript"},
		"stylesheet":   {path: "/assets/trivia/app.css", status: http.StatusOK, contentType: "text/css"},
		"no html":      {path: "/assets/trivia/index.html", status: http.StatusNotFound},
		"missing":      {path: "/assets/nope.js", status: http.StatusNotFound},
		"room page":    {path: "/trivia/AbCd1234", status: http.StatusOK, contentType: "text/html", contains: "app.js"},
		"qr code":      {path: "/trivia/AbCd1234/qr", status: http.StatusOK, contentType: "image/png"},
		"bad room key": {path: "/trivia/" + strings.Repeat("x", 65) + "/qr", status: http.StatusBadRequest},
		"no metrics":   {path: "/metrics", status: http.StatusNotFound},
		"no profiling": {path: "/pprof/heap", status: http.StatusNotFound},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp, body := get(t, srv, tc.path)

			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tc.contentType)
			}
			if tc.contains != "" {
				assert.Contains(t, body, tc.contains)
			}
		})
	}
}

func TestRoutes_NewGameRedirects(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, func(c *Config) { c.prefix = "/games" })

	resp, _ := get(t, srv, "/games/trivia")

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Regexp(t, `^/games/trivia/[A-Za-z0-9]{8}\?host=1$`, resp.Header.Get("Location"))
}

func TestRoutes_Metrics(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, func(c *Config) { c.metrics = true })

	resp, body := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "playr_trivia_rooms_active")
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp, _ := get(t, srv, "/healthz")

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", resp.Header.Get("Content-Security-Policy"))
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
}
