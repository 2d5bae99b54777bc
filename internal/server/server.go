package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/mfarouk/hunterhall/internal/config"
	"github.com/mfarouk/hunterhall/internal/handler"
	"github.com/mfarouk/hunterhall/internal/middleware"
	"github.com/mfarouk/hunterhall/internal/notify"
	"github.com/mfarouk/hunterhall/internal/portal"
	"github.com/mfarouk/hunterhall/internal/quest"
	"github.com/mfarouk/hunterhall/internal/store"
	ws "github.com/mfarouk/hunterhall/internal/websocket"
)

// Server wires the stores, engines and handlers into one HTTP surface.
type Server struct {
	cfg *config.Config
	db  *sql.DB
	hub *ws.Hub

	playerH *handler.PlayerHandler
	taskH   *handler.TaskHandler
	portalH *handler.PortalHandler
	pushH   *handler.PushHandler
	adminH  *handler.AdminHandler

	launcher *quest.Launcher
	judge    *quest.Judge
	engine   *portal.Engine

	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(cfg *config.Config, db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	players := store.NewPlayerStore(db)
	subs := store.NewSubmissionStore(db)
	buffs := store.NewBuffStore(db)
	portals := store.NewPortalStore(db)
	penalties := store.NewPenaltyStore(db)
	pushes := store.NewPushStore(db)
	configStore := store.NewConfigStore(db)

	var sender *notify.PushSender
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		sender = notify.NewPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
	}
	notifier := notify.NewService(hub, sender, pushes, players, logger.With("component", "notify"))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	recorder := quest.NewRecorder(players, subs)
	launcher := quest.NewLauncher(configStore, buffs, notifier, logger.With("component", "launcher"))
	judge := quest.NewJudge(players, subs, buffs, penalties, configStore, notifier, logger.With("component", "judge"), rng)
	engine := portal.NewEngine(portals, players, configStore, notifier, logger.With("component", "portal"), rng)

	return &Server{
		cfg: cfg,
		db:  db,
		hub: hub,

		playerH: handler.NewPlayerHandler(players, buffs, penalties, logger.With("component", "player_handler")),
		taskH:   handler.NewTaskHandler(recorder, subs, logger.With("component", "task_handler")),
		portalH: handler.NewPortalHandler(engine, portals, logger.With("component", "portal_handler")),
		pushH:   handler.NewPushHandler(pushes, players, cfg.VAPIDPublicKey, logger.With("component", "push_handler")),
		adminH:  handler.NewAdminHandler(launcher, judge, engine, configStore, logger.With("component", "admin_handler")),

		launcher: launcher,
		judge:    judge,
		engine:   engine,

		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Launcher returns the daily quest launcher for the scheduler.
func (s *Server) Launcher() *quest.Launcher {
	return s.launcher
}

// Judge returns the judgment cycle for the scheduler.
func (s *Server) Judge() *quest.Judge {
	return s.judge
}

// PortalEngine returns the portal engine for the scheduler.
func (s *Server) PortalEngine() *portal.Engine {
	return s.engine
}

// RateLimiter returns the limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	outerMux.HandleFunc("GET /ws", s.rateLimited(ws.Handle(s.hub, s.logger.With("component", "websocket"))))

	// Protected routes, behind the bearer token the bot gateway holds
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.cfg.JWTSecret)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ClientKey, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Player API routes
	mux.HandleFunc("POST /api/players", s.playerH.Register)
	mux.HandleFunc("GET /api/players/{id}", s.playerH.Get)
	mux.HandleFunc("GET /api/players/by-external/{external_id}", s.playerH.GetByExternal)
	mux.HandleFunc("PUT /api/players/{id}/settings", s.playerH.UpdateSettings)
	mux.HandleFunc("DELETE /api/players/{id}", s.playerH.Delete)
	mux.HandleFunc("GET /api/leaderboard", s.playerH.Leaderboard)

	// Assessment
	mux.HandleFunc("GET /api/players/{id}/assessment", s.playerH.AssessmentQuestions)
	mux.HandleFunc("POST /api/players/{id}/assessment", s.playerH.SubmitAssessment)

	// Buffs and penalties
	mux.HandleFunc("GET /api/players/{id}/buffs", s.playerH.ListBuffs)
	mux.HandleFunc("POST /api/players/{id}/buffs", s.playerH.CreateBuff)
	mux.HandleFunc("GET /api/players/{id}/penalties", s.playerH.ListPenalties)
	mux.HandleFunc("POST /api/penalties/{id}/resolve", s.playerH.ResolvePenalty)

	// Daily tasks and submissions
	mux.HandleFunc("GET /api/players/{id}/tasks", s.taskH.Assigned)
	mux.HandleFunc("POST /api/players/{id}/submissions", s.taskH.Submit)
	mux.HandleFunc("GET /api/players/{id}/logs", s.taskH.Logs)
	mux.HandleFunc("GET /api/players/{id}/submissions", s.taskH.History)

	// Portals
	mux.HandleFunc("GET /api/portals", s.portalH.List)
	mux.HandleFunc("POST /api/portals", s.portalH.Create)
	mux.HandleFunc("GET /api/portals/{id}", s.portalH.Get)
	mux.HandleFunc("POST /api/portals/{id}/join", s.portalH.Join)
	mux.HandleFunc("POST /api/portals/{id}/start", s.portalH.Start)
	mux.HandleFunc("POST /api/portals/{id}/complete", s.portalH.Complete)
	mux.HandleFunc("GET /api/portal-quests", s.portalH.ListQuests)
	mux.HandleFunc("GET /api/players/{id}/portals", s.portalH.History)

	// Push subscriptions
	mux.HandleFunc("POST /api/players/{id}/push", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions", s.pushH.Unsubscribe)

	// Admin routes, behind the admin claim
	mux.Handle("POST /api/admin/launch", middleware.RequireAdmin(http.HandlerFunc(s.adminH.Launch)))
	mux.Handle("POST /api/admin/judgment", middleware.RequireAdmin(http.HandlerFunc(s.adminH.Judge)))
	mux.Handle("POST /api/admin/portal-tick", middleware.RequireAdmin(http.HandlerFunc(s.adminH.PortalTick)))
	mux.Handle("PUT /api/admin/portal-interval", middleware.RequireAdmin(http.HandlerFunc(s.adminH.SetPortalInterval)))
}
