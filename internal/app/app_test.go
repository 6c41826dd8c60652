package app_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/niksmo/techstore/config"
	"github.com/niksmo/techstore/internal/adapter/cli"
	"github.com/niksmo/techstore/internal/adapter/storage"
	"github.com/niksmo/techstore/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-123"

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+testToken
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"` + testToken + `","user":{"id_key":1,"name":"Ana","lastname":"Diaz","email":"ana@test.com"}}`))
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.PathValue("id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Product not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id_key":1,"name":"Laptop","price":25,"stock":3,"category":{"id_key":1,"name":"Computers"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestApp(t *testing.T) {
	srv := newBackend(t)

	var cfg config.Config
	cfg.LogLevel = slog.LevelError
	cfg.API.BaseURL = srv.URL
	cfg.API.Timeout = time.Second
	cfg.Store.Driver = storage.DriverMemory

	var out, errOut bytes.Buffer
	a := app.New(t.Context(), cfg, cli.OutputOpt(&out, &errOut))
	t.Cleanup(a.Close)

	run := func(args ...string) int {
		out.Reset()
		errOut.Reset()
		return a.Run(args)
	}

	require.Equal(t, cli.ExitUnauthorized, run("cart"))

	require.Equal(t, cli.ExitUnauthorized, run("login", "-e", "ana@test.com", "-p", "bad"))
	assert.Contains(t, errOut.String(), "Incorrect email or password")

	require.Equal(t, cli.ExitOK, run("login", "-e", "ana@test.com", "-p", "pw"))
	assert.Contains(t, out.String(), "Ana Diaz")

	require.Equal(t, cli.ExitOK, run("cart", "add", "1"))
	require.Equal(t, cli.ExitOK, run("cart", "show"))
	assert.Contains(t, out.String(), "Total: $29.00")

	require.Equal(t, cli.ExitNotFound, run("product", "9"))

	require.Equal(t, cli.ExitOK, run("config"))
	assert.Contains(t, out.String(), srv.URL)

	require.Equal(t, cli.ExitOK, run("logout"))
	require.Equal(t, cli.ExitUnauthorized, run("dashboard"))
}
