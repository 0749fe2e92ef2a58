package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status  string `json:"status"`
	Games   int    `json:"games"`
	Clients int    `json:"clients"`
}

type activeGameResponse struct {
	GameID     *string `json:"gameId"`
	Started    bool    `json:"started"`
	Closed     bool    `json:"closed"`
	Players    int     `json:"players"`
	DrawnCount int     `json:"drawnCount"`
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	games := s.store.Count()
	s.mu.Unlock()
	c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Games:   games,
		Clients: s.ws.Count(),
	})
}

func (s *Server) handleActiveGame(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.store.Active()
	if !ok {
		c.JSON(http.StatusOK, activeGameResponse{})
		return
	}
	code := game.Code
	c.JSON(http.StatusOK, activeGameResponse{
		GameID:     &code,
		Started:    game.Started,
		Closed:     game.Closed,
		Players:    len(game.Players),
		DrawnCount: len(game.Drawn),
	})
}
