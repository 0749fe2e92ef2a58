package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"bingo-hall/internal/bingo"
	"bingo-hall/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Server owns every game. mu serializes commands, timer callbacks and
// disconnects so game state is only ever touched by one of them at a time.
type Server struct {
	mu       sync.Mutex
	store    *Store
	db       *gorm.DB
	ws       *wsHub
	out      broadcaster
	archive  *archiver
	cfg      config.Config
	after    afterFunc
	rng      bingo.Rand
	now      func() time.Time
	upgrader websocket.Upgrader
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	hub := newWSHub()
	s := &Server{
		store:   NewStore(),
		db:      conn,
		ws:      hub,
		out:     hub,
		archive: newArchiver(conn, cfg.ArchiveQueueSize),
		cfg:     cfg,
		after:   systemAfterFunc,
		rng:     bingo.DefaultRand,
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))
	router.GET("/ws", s.handleWebsocket)
	router.GET("/healthz", s.handleHealth)
	router.GET("/api/games/active", s.handleActiveGame)
	return router
}

// Close cancels pending draws and flushes the archive.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.store.Games() {
		s.cancelDraw(game)
	}
	s.archive.close(5 * time.Second)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
		if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowed
	return cfg
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Str("remote", c.ClientIP()).
			Msg("http request")
	}
}
