package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/anyoshi/bingo-live/config"
	"github.com/anyoshi/bingo-live/controllers"
	"github.com/anyoshi/bingo-live/routes"
	"github.com/anyoshi/bingo-live/services"
	"github.com/anyoshi/bingo-live/store"
	"github.com/anyoshi/bingo-live/utils/logger"
)

// buildStore wires the persistence stack: the gorm document store on
// Postgres or SQLite, wrapped in the NATS relay when configured.
func buildStore(cfg *config.Config) (store.Store, error) {
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	var st store.Store = store.NewDocumentStore(db)

	if cfg.NATSURL != "" {
		nc, err := store.Connect(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
		logger.Infof("relaying state changes over NATS (%s)", cfg.NATSSubject)
		st = store.NewRelay(st, nc, cfg.NATSSubject, logger.Log)
	}
	return st, nil
}

func setupRouter(cfg *config.Config, session *services.Session) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, controllers.NewGameController(session))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket live state feed
	r.GET("/ws", services.HandleWebSocket(session))

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	st, err := buildStore(cfg)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}

	session := services.NewSession(
		st,
		cfg.DefaultPoolSize,
		time.Duration(cfg.DrawIntervalMS)*time.Millisecond,
		clockwork.NewRealClock(),
		logger.Log,
	)
	if err := session.Start(context.Background()); err != nil {
		logger.Fatalf("session: %v", err)
	}
	defer session.Stop()

	router := setupRouter(cfg, session)

	logger.Infof("bingo-live listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
