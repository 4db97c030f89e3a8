package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/pantry/internal/database"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	return setupServerWith(t, false)
}

func setupServerWith(t *testing.T, trustProxy bool) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := New(db, Options{
		Location:       time.UTC,
		NearExpiryDays: 3,
		SessionTTL:     time.Hour,
		SweepInterval:  time.Hour,
		BcryptCost:     bcrypt.MinCost,
		TrustProxy:     trustProxy,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)
	resp, body := doJSON(t, http.DefaultClient, "GET", ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := setupServer(t)
	for _, path := range []string{"/api/groceries", "/api/wastage/stats", "/api/lists", "/api/profile", "/ws"} {
		resp, _ := doJSON(t, http.DefaultClient, "GET", ts.URL+path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestGroceryFlowEndToEnd(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t)

	resp, body := doJSON(t, c, "POST", ts.URL+"/api/signup",
		`{"username":"alice","full_name":"Alice","email":"alice@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	nextMonth := time.Now().UTC().AddDate(0, 1, 0).Format(time.DateOnly)

	resp, body = doJSON(t, c, "POST", ts.URL+"/api/groceries",
		`{"name":"Milk","price":"5.99","quantity":1,"unit":"L","expiry_date":"`+yesterday+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = doJSON(t, c, "POST", ts.URL+"/api/groceries",
		`{"name":"Rice","price":"2.50","expiry_date":"`+nextMonth+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = doJSON(t, c, "POST", ts.URL+"/api/wastage/sweep", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `{"swept":1}`, body)

	resp, body = doJSON(t, c, "GET", ts.URL+"/api/wastage/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var stats map[string]int
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, 1, stats["total"])

	resp, body = doJSON(t, c, "GET", ts.URL+"/api/wastage/value?period=all", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `{"period":"all","value":5.99}`, body)

	resp, body = doJSON(t, c, "GET", ts.URL+"/api/groceries?state=active", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var active []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &active))
	require.Len(t, active, 1)
	assert.Equal(t, "Rice", active[0]["name"])

	resp, _ = doJSON(t, c, "DELETE", ts.URL+"/api/groceries/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, c, "POST", ts.URL+"/api/logout", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, c, "GET", ts.URL+"/api/groceries", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestShoppingConversionEndToEnd(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t)

	resp, body := doJSON(t, c, "POST", ts.URL+"/api/signup",
		`{"username":"bob","email":"bob@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = doJSON(t, c, "POST", ts.URL+"/api/lists", `{"name":"Weekly"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var list map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	listID := list["id"].(string)

	resp, body = doJSON(t, c, "POST", ts.URL+"/api/lists/"+listID+"/items", `{"name":"Bananas","quantity":6,"unit":"pcs"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var item map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &item))
	itemID := item["id"].(string)

	resp, body = doJSON(t, c, "POST", ts.URL+"/api/items/"+itemID+"/convert", `{"price":"1.20","expiry_date":"2030-01-01"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var g map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Equal(t, "Bananas", g["name"])
	assert.Equal(t, "Produce", g["category"])

	resp, body = doJSON(t, c, "GET", ts.URL+"/api/lists/"+listID+"/items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
}

func TestLoginRateLimited(t *testing.T) {
	ts := setupServer(t)
	var last int
	for i := 0; i < 11; i++ {
		resp, _ := doJSON(t, http.DefaultClient, "POST", ts.URL+"/api/login", `{"email":"x@example.com","password":"whatever1"}`)
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestLoginRateLimitIgnoresSpoofedHeaders(t *testing.T) {
	ts := setupServer(t)
	var last int
	for i := 0; i < 11; i++ {
		req, err := http.NewRequest("POST", ts.URL+"/api/login", strings.NewReader(`{"email":"x@example.com","password":"whatever1"}`))
		require.NoError(t, err)
		req.Header.Set("X-Real-IP", fmt.Sprintf("203.0.113.%d", i))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestLoginRateLimitTrustsProxyHeadersWhenEnabled(t *testing.T) {
	ts := setupServerWith(t, true)
	for i := 0; i < 11; i++ {
		req, err := http.NewRequest("POST", ts.URL+"/api/login", strings.NewReader(`{"email":"x@example.com","password":"whatever1"}`))
		require.NoError(t, err)
		req.Header.Set("X-Real-IP", fmt.Sprintf("203.0.113.%d", i))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}
