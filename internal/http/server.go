package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"darkfinance/internal/cache"
	"darkfinance/internal/calendar"
	"darkfinance/internal/core"
	"darkfinance/internal/log"
	"darkfinance/internal/middleware/ratelimit"
	"darkfinance/internal/middleware/security"
	"darkfinance/internal/middleware/trace"
	"darkfinance/internal/payoff"
)

// Planner is the service surface the API exposes. *services.PlanningService
// satisfies it.
type Planner interface {
	Refresh(ctx context.Context, userID string) (payoff.Overview, error)

	ListAccounts(ctx context.Context, userID string, order payoff.SortOrder) ([]payoff.AccountProjection, error)
	GetAccount(ctx context.Context, userID string, id int64) (payoff.AccountProjection, error)
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) error
	DeleteAccount(ctx context.Context, userID string, id int64) error

	ListBills(ctx context.Context, userID string) ([]core.FixedBill, error)
	GetBill(ctx context.Context, userID string, id int64) (core.FixedBill, error)
	CreateBill(ctx context.Context, b core.FixedBill) (core.FixedBill, error)
	UpdateBill(ctx context.Context, b core.FixedBill) error
	DeleteBill(ctx context.Context, userID string, id int64) error

	MonthlyIncome(ctx context.Context, userID string) (core.IncomeRecord, error)
	SetMonthlyIncome(ctx context.Context, userID string, amount float64) error

	Calendar(ctx context.Context, userID string, months int) ([]calendar.Month, error)
	ListSnapshots(ctx context.Context, userID string, limit int) ([]core.ProjectionSnapshot, error)
}

// Options tunes a Server. Zero values pick the defaults noted per field.
type Options struct {
	// DefaultUserID scopes requests without X-User-ID. Required.
	DefaultUserID string
	// OverviewCacheTTL of 0 disables the overview cache.
	OverviewCacheTTL time.Duration
	// OverviewCacheSize defaults to 256 users.
	OverviewCacheSize int
	// RateLimitPerMinute bounds writes per client; defaults to 60.
	RateLimitPerMinute int
	Logger             *log.Logger
	// Ready is probed by /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

type appMetrics struct {
	uptime      time.Time
	writes      int64
	cacheHits   int64
	cacheMisses int64
}

type Server struct {
	http.Server
	planner       Planner
	defaultUserID string
	logger        *log.Logger
	ready         func(ctx context.Context) error

	overviewCache *cache.LRUCache[payoff.Overview]
	cacheManager  *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. Call Shutdown to stop background work.
func NewServer(addr string, planner Planner, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}
	if opts.OverviewCacheSize <= 0 {
		opts.OverviewCacheSize = 256
	}

	s := &Server{
		planner:          planner,
		defaultUserID:    opts.DefaultUserID,
		logger:           logger.WithComponent(log.ComponentHTTP),
		ready:            opts.Ready,
		securityDetector: security.NewDetector(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	if opts.OverviewCacheTTL > 0 {
		s.overviewCache = cache.NewLRUCache[payoff.Overview](opts.OverviewCacheSize, opts.OverviewCacheTTL)
		s.cacheManager = cache.NewManager(logger)
		s.cacheManager.Register("overview", s.overviewCache)
		s.cacheManager.StartCleanup(context.Background(), 10*time.Minute)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/snapshots", s.handleSnapshots)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("POST /api/bills", s.handleCreateBill)
	mux.HandleFunc("PUT /api/bills/{id}", s.handleUpdateBill)
	mux.HandleFunc("DELETE /api/bills/{id}", s.handleDeleteBill)

	mux.HandleFunc("GET /api/income", s.handleGetIncome)
	mux.HandleFunc("PUT /api/income", s.handleSetIncome)

	var handler http.Handler = mux
	handler = s.rateLimiter.WritesOnly(s.securityDetector.ExtractClientIP, s.onRateLimit)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(r.Context(), http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown stops the cache sweeper and the rate limiter, then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// overview serves a user's overview from cache, refreshing on a miss.
func (s *Server) overview(ctx context.Context, userID string) (payoff.Overview, bool, error) {
	if s.overviewCache == nil {
		ov, err := s.planner.Refresh(ctx, userID)
		return ov, false, err
	}
	ov, hit, err := s.overviewCache.GetOrLoad(userID, func() (payoff.Overview, error) {
		return s.planner.Refresh(ctx, userID)
	})
	if hit {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
	} else {
		atomic.AddInt64(&s.appMetrics.cacheMisses, 1)
	}
	return ov, hit, err
}

// invalidate drops the cached overview after a successful write.
func (s *Server) invalidate(userID string) {
	atomic.AddInt64(&s.appMetrics.writes, 1)
	if s.overviewCache != nil {
		s.overviewCache.Delete(userID)
	}
}
