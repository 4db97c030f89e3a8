package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/pantry/internal/auth"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/middleware"
	"github.com/dukerupert/pantry/internal/store"
	"github.com/dukerupert/pantry/internal/wastage"
	ws "github.com/dukerupert/pantry/internal/websocket"
)

type Options struct {
	Location       *time.Location
	NearExpiryDays int
	SessionTTL     time.Duration
	SweepInterval  time.Duration
	BcryptCost     int // zero means bcrypt.DefaultCost
	TrustProxy     bool
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	groceryH     *handler.GroceryHandler
	wastageH     *handler.WastageHandler
	shoppingH    *handler.ShoppingHandler
	authH        *handler.AuthHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	clientIP     func(*http.Request) string
	scheduler    *wastage.Scheduler
	logger       *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	groceryStore := store.NewGroceryStore(db)
	shoppingStore := store.NewShoppingStore(db)

	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	passwords := auth.NewPasswordService(opts.BcryptCost)

	wastageSvc := wastage.NewService(groceryStore, opts.Location, logger)
	scheduler := wastage.NewScheduler(wastageSvc, userStore, sessionStore, hub, opts.SweepInterval, logger)

	return &Server{
		db:           db,
		hub:          hub,
		groceryH:     handler.NewGroceryHandler(groceryStore, wastageSvc, hub, opts.Location, opts.NearExpiryDays, logger.With("component", "grocery")),
		wastageH:     handler.NewWastageHandler(wastageSvc, hub, logger.With("component", "wastage_handler")),
		shoppingH:    handler.NewShoppingHandler(shoppingStore, hub, opts.Location, logger.With("component", "shopping")),
		authH:        handler.NewAuthHandler(userStore, sessionStore, passwords, opts.SessionTTL, logger.With("component", "auth")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		clientIP:     middleware.ClientIP(opts.TrustProxy),
		scheduler:    scheduler,
		logger:       logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Scheduler returns the expiry sweep scheduler.
func (s *Server) Scheduler() *wastage.Scheduler {
	return s.scheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, s.clientIP, 10, time.Minute)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/profile", s.authH.Profile)
	mux.HandleFunc("PUT /api/profile", s.authH.UpdateProfile)
	mux.HandleFunc("GET /api/suggestions", handler.Suggestions)

	// Grocery inventory
	mux.HandleFunc("GET /api/groceries", s.groceryH.List)
	mux.HandleFunc("POST /api/groceries", s.groceryH.Create)
	mux.HandleFunc("GET /api/groceries/soonest", s.groceryH.Soonest)
	mux.HandleFunc("GET /api/groceries/expiring", s.groceryH.Expiring)
	mux.HandleFunc("GET /api/groceries/summary", s.groceryH.Summary)
	mux.HandleFunc("PUT /api/groceries/{id}", s.groceryH.Update)
	mux.HandleFunc("DELETE /api/groceries/{id}", s.groceryH.Delete)
	mux.HandleFunc("POST /api/groceries/{id}/waste", s.groceryH.MarkWasted)

	// Wastage
	mux.HandleFunc("POST /api/wastage/sweep", s.wastageH.Sweep)
	mux.HandleFunc("GET /api/wastage/stats", s.wastageH.Stats)
	mux.HandleFunc("GET /api/wastage/value", s.wastageH.Value)
	mux.HandleFunc("GET /api/wastage/items", s.wastageH.Items)

	// Shopping lists
	mux.HandleFunc("GET /api/lists", s.shoppingH.ListLists)
	mux.HandleFunc("POST /api/lists", s.shoppingH.CreateList)
	mux.HandleFunc("DELETE /api/lists/{id}", s.shoppingH.DeleteList)
	mux.HandleFunc("GET /api/lists/{id}/items", s.shoppingH.ListItems)
	mux.HandleFunc("POST /api/lists/{id}/items", s.shoppingH.AddItem)
	mux.HandleFunc("PUT /api/items/{id}", s.shoppingH.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.shoppingH.DeleteItem)
	mux.HandleFunc("POST /api/items/{id}/convert", s.shoppingH.Convert)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})
}
