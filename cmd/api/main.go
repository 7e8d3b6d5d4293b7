package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dropfour/internal/config"
	"github.com/iamasit07/dropfour/internal/repository/postgres"
	"github.com/iamasit07/dropfour/internal/repository/redis"
	"github.com/iamasit07/dropfour/internal/service/cleanup"
	"github.com/iamasit07/dropfour/internal/service/game"
	transportHttp "github.com/iamasit07/dropfour/internal/transport/http"
	"github.com/iamasit07/dropfour/internal/transport/http/middleware"
	"github.com/iamasit07/dropfour/internal/transport/websocket"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Persistence (optional): finished-game history
	var gameRepo *postgres.GameRepo
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		log.Println("Running database migrations...")
		if err := postgres.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")
		gameRepo = postgres.NewGameRepo(db)
	} else {
		log.Println("[DB] DATABASE_URL not set, game history disabled")
	}

	// 2. Snapshot cache (optional)
	if err := redis.InitRedis(cfg.RedisURL, cfg.RedisPassword); err != nil {
		log.Printf("Failed to initialize Redis: %v", err)
	}
	defer redis.CloseRedis()

	var snapshotCache *redis.SnapshotCache
	if redis.IsRedisEnabled() && redis.RedisClient != nil {
		snapshotCache = redis.NewSnapshotCache(redis.RedisClient, cfg.SnapshotTTL)
	}

	// 3. Services
	connManager := websocket.NewConnectionManager()
	smCfg := game.SessionManagerConfig{
		Timings: game.Timings{
			AnimationDelay: cfg.AnimationDelay,
			DebounceWindow: cfg.DebounceWindow,
			MessageTimeout: cfg.MessageTimeout,
		},
		Conn: connManager,
	}
	// typed nils must not leak into the interfaces
	if gameRepo != nil {
		smCfg.Repo = gameRepo
	}
	if snapshotCache != nil {
		smCfg.Cache = snapshotCache
	}
	sessionManager := game.NewSessionManager(smCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.SessionIdleTimeout, cfg.CleanupInterval)
	go cleanupWorker.Start(ctx)

	// 4. Transport
	wsHandler := websocket.NewHandler(connManager, sessionManager, cfg.JWTSecret, middleware.OriginAllowed(cfg.AllowedOrigins))
	routerCfg := transportHttp.RouterConfig{
		SessionManager: sessionManager,
		WebSocket:      wsHandler.HandleWebSocket,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.SessionTokenTTL,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookie:   cfg.IsProduction(),
	}
	if snapshotCache != nil {
		routerCfg.Cache = snapshotCache
	}
	if gameRepo != nil {
		routerCfg.History = gameRepo
	}
	router := transportHttp.NewRouter(routerCfg)

	// Serve static frontend files (SPA fallback)
	if _, err := os.Stat("./static"); err == nil {
		router.Static("/assets", "./static/assets")
		router.GET("/", func(c *gin.Context) {
			c.File("./static/index.html")
		})
		router.NoRoute(func(c *gin.Context) {
			path := "./static" + c.Request.URL.Path
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				c.File(path)
				return
			}
			if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/assets/") {
				c.Status(http.StatusNotFound)
				return
			}
			c.File("./static/index.html")
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
