package router

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"trafficdash/internal/api/v1/handler"
	"trafficdash/internal/config"
	"trafficdash/internal/middleware"
	"trafficdash/internal/repository"
	"trafficdash/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router wires into handlers. Nil services are built from
// the config and database.
type Deps struct {
	DB          *sql.DB
	RateLimiter *middleware.RateLimiter
	UserService service.UserService
	SpeedTest   service.SpeedTestService
}

func New(cfg *config.Config, deps Deps, logger zerolog.Logger) http.Handler {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initialized")

	// 1. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 2. Initialize repositories & services & handlers
	userSvc := deps.UserService
	if userSvc == nil {
		trafficRepo := repository.NewTrafficRepo(deps.DB)
		hostMetrics := service.NewHostMetricsCollector(diskPathFor(cfg), cfg.ServerIP, logger)
		userSvc = service.NewUserService(trafficRepo, hostMetrics, cfg.ServerLocation, logger)
	}
	speedSvc := deps.SpeedTest
	if speedSvc == nil {
		speedSvc = service.NewSpeedTestService(service.ExecRunner, cfg.SpeedTestTimeout(), logger)
	}

	userHandler := handler.NewUserHandler(userSvc, validate, logger)
	speedTestHandler := handler.NewSpeedTestHandler(speedSvc, logger)
	metaHandler := handler.NewMetaHandler(cfg.TelegramAdminURL)

	// 3. Initialize middleware
	limitMw := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limitMw = deps.RateLimiter.Middleware
	}

	// 4. Create ServeMux router
	mux := http.NewServeMux()

	apiMux := http.NewServeMux()
	userHandler.RegisterRoutes(apiMux, limitMw)
	speedTestHandler.RegisterRoutes(apiMux, limitMw)
	metaHandler.RegisterRoutes(apiMux, limitMw)

	// Mount the API routes under /api
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	// Serve the dashboard frontend, falling back to index.html for unknown paths
	if info, err := os.Stat(cfg.FrontendDir); err == nil && info.IsDir() {
		mux.Handle("/", frontendHandler(cfg.FrontendDir))
	} else {
		logger.Warn().Str("dir", cfg.FrontendDir).Msg("Frontend directory not found, serving API only")
	}

	// 5. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux))
}

func frontendHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + r.URL.Path)
		if clean != "/" {
			if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, index)
	})
}

// diskPathFor reports disk usage for the volume holding the sqlite database, or the root
// filesystem otherwise.
func diskPathFor(cfg *config.Config) string {
	if cfg.DBDriver == repository.DriverSQLite && cfg.DBDSN != "" && !strings.HasPrefix(cfg.DBDSN, "file:") {
		return filepath.Dir(cfg.DBDSN)
	}
	return "/"
}
