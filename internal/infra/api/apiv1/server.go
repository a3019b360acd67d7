package apiv1

import (
	"net"
	"net/http"
	"time"

	"mlm-membership-platform/internal/config"
	"mlm-membership-platform/internal/infra/logging"
	"mlm-membership-platform/internal/infra/redis"
	"mlm-membership-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server bundles the use cases behind the versioned HTTP surface.
type Server struct {
	registration usecase.RegistrationUseCase
	auth         usecase.AuthUseCase
	epins        usecase.EPinUseCase
	rewards      usecase.RewardUseCase
	profiles     usecase.ProfileUseCase
	tree         usecase.TreeUseCase
	plans        usecase.PlanUseCase

	authMgr *AuthManager
	limiter *redis.RateLimiter
	limits  config.RateLimitConfig
	log     *zerolog.Logger
}

func NewServer(
	registration usecase.RegistrationUseCase,
	auth usecase.AuthUseCase,
	epins usecase.EPinUseCase,
	rewards usecase.RewardUseCase,
	profiles usecase.ProfileUseCase,
	tree usecase.TreeUseCase,
	plans usecase.PlanUseCase,
	authMgr *AuthManager,
	limiter *redis.RateLimiter,
	limits config.RateLimitConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		registration: registration,
		auth:         auth,
		epins:        epins,
		rewards:      rewards,
		profiles:     profiles,
		tree:         tree,
		plans:        plans,
		authMgr:      authMgr,
		limiter:      limiter,
		limits:       limits,
		log:          logger,
	}
}

// Routes returns the /api/v1 router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.With(s.rateLimit("register", s.limits.RegisterPerMinute)).Post("/register", s.handleRegister)
		r.With(s.rateLimit("login", s.limits.LoginPerMinute)).Post("/login", s.handleLogin)
		r.With(s.authMgr.RequireAuth).Post("/password", s.handleChangePassword)
	})

	r.Route("/epins", func(r chi.Router) {
		r.Use(s.authMgr.RequireAuth)
		r.With(s.authMgr.RequireAdmin).Post("/", s.handleIssueEPins)
		r.With(s.authMgr.RequireAdmin).Post("/reshare", s.handleReshareEPins)
		r.With(s.authMgr.RequireAdmin).Get("/history", s.handleEPinHistory)
		r.Get("/assigned", s.handleAssignedEPins)
	})

	r.Route("/rewards", func(r chi.Router) {
		r.Get("/", s.handleListRewards)
		r.Group(func(r chi.Router) {
			r.Use(s.authMgr.RequireAuth)
			r.Get("/member/{id}", s.handleMemberRewards)
			r.With(s.authMgr.RequireAdmin).Post("/", s.handleAddReward)
			r.With(s.authMgr.RequireAdmin).Get("/eligible", s.handleEligibleRewards)
			r.With(s.authMgr.RequireAdmin).Post("/{id}/pay", s.handlePayReward)
			r.With(s.authMgr.RequireAdmin).Get("/paid", s.handlePaidRewards)
			r.With(s.authMgr.RequireAdmin).Get("/paid/{memberID}/{rewardID}", s.handlePaidStatus)
		})
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Use(s.authMgr.RequireAuth)
		r.Post("/", s.handleSubmitProfile)
		r.With(s.authMgr.RequireAdmin).Get("/pending", s.handlePendingProfiles)
		r.With(s.authMgr.RequireAdmin).Put("/{id}/status", s.handleProfileStatusUpdate)
		r.Get("/{id}/status", s.handleProfileStatus)
		r.Get("/{id}", s.handleProfileDetails)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMgr.RequireAuth)
		r.Get("/tree/{memberID}/{planID}", s.handleTree)
		r.Get("/sponsors/{id}", s.handleSponsors)
		r.Get("/sponsors/{id}/directs", s.handleDirects)
		r.Get("/sponsors/{id}/income", s.handleIncome)
		r.Post("/plans/upgrade", s.handlePlanUpgrade)
	})

	r.Get("/plans", s.handleListPlans)
	r.With(s.authMgr.RequireAuth, s.authMgr.RequireAdmin).Post("/plans", s.handleCreatePlan)

	return r
}

// rateLimit throttles an endpoint per client address. Redis trouble fails
// open so auth stays available without the cache.
func (s *Server) rateLimit(endpoint string, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				identity = r.RemoteAddr
			}
			key := redis.EndpointKey(identity, endpoint)
			ok, err := s.limiter.Allow(r.Context(), key, perMinute, time.Minute)
			if err != nil {
				l := logging.With(r.Context(), s.log)
				l.Warn().Err(err).Str("endpoint", endpoint).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeError(w, http.StatusTooManyRequests, "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
