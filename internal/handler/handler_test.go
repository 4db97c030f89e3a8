package handler

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/pantry/internal/auth"
	"github.com/dukerupert/pantry/internal/database"
	"github.com/dukerupert/pantry/internal/store"
	"github.com/dukerupert/pantry/internal/wastage"
)

// Wednesday 2025-03-12, ISO week 11.
var t0 = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	db        *sql.DB
	users     *store.UserStore
	sessions  *store.SessionStore
	groceries *store.GroceryStore
	shopping  *store.ShoppingStore
	svc       *wastage.Service

	grocery  *GroceryHandler
	wastage  *WastageHandler
	shop     *ShoppingHandler
	authH    *AuthHandler
	owner    string
	stranger string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := &testEnv{
		db:        db,
		users:     store.NewUserStore(db),
		sessions:  store.NewSessionStore(db),
		groceries: store.NewGroceryStore(db),
		shopping:  store.NewShoppingStore(db),
	}
	logger := discardLogger()
	e.svc = wastage.NewService(e.groceries, time.UTC, logger)

	e.grocery = NewGroceryHandler(e.groceries, e.svc, nil, time.UTC, 3, logger)
	e.grocery.now = func() time.Time { return t0 }
	e.wastage = NewWastageHandler(e.svc, nil, logger)
	e.wastage.now = func() time.Time { return t0 }
	e.shop = NewShoppingHandler(e.shopping, nil, time.UTC, logger)
	e.authH = NewAuthHandler(e.users, e.sessions, auth.NewPasswordService(bcrypt.MinCost), time.Hour, logger)

	alice, err := e.users.Create("alice", "Alice Smith", "alice@example.com", "hash")
	require.NoError(t, err)
	bob, err := e.users.Create("bob", "Bob Jones", "bob@example.com", "hash")
	require.NoError(t, err)
	e.owner, e.stranger = alice.ID, bob.ID
	return e
}

type call struct {
	method string
	target string
	body   string
	path   map[string]string
	user   string
}

func serve(t *testing.T, h http.HandlerFunc, c call) *httptest.ResponseRecorder {
	t.Helper()
	var ac *auth.AuthContext
	if c.user != "" {
		ac = &auth.AuthContext{UserID: c.user}
	}
	return do(t, h, c, ac)
}

func serveWithSession(t *testing.T, h http.HandlerFunc, c call, ac auth.AuthContext) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, c, &ac)
}

func do(t *testing.T, h http.HandlerFunc, c call, ac *auth.AuthContext) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.target, body)
	for k, v := range c.path {
		req.SetPathValue(k, v)
	}
	if ac != nil {
		req = req.WithContext(auth.WithAuth(req.Context(), *ac))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
