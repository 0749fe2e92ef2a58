package server

import (
	"github.com/rs/zerolog/log"
)

const (
	eventTypeGameCreated        = "game_created"
	eventTypeGameStarted        = "game_started"
	eventTypeGameStopped        = "game_stopped"
	eventTypeGameReset          = "game_reset"
	eventTypeGameWon            = "game_won"
	eventTypePlayerJoined       = "player_joined"
	eventTypePlayerLeft         = "player_left"
	eventTypePlayerDisqualified = "player_disqualified"
	eventTypeNumberDrawn        = "number_drawn"
	eventTypeDrawsExhausted     = "draws_exhausted"
)

func (s *Server) createGame(hostID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	game := s.store.Create(hostID, now)
	s.out.Join(hostID, game.Code)
	s.archive.gameCreated(game)
	log.Info().Str("game_id", game.Code).Str("conn_id", hostID).Uint64("generation", game.Generation).Msg("game created")
	s.store.SetActive(game.Code)
	s.announceActive()
	return game.Code
}

func (s *Server) hostJoin(code, hostID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.store.Get(code)
	if !ok {
		return "", ErrGameNotFound
	}
	game.HostID = hostID
	game.touch(s.now())
	s.out.Join(hostID, game.Code)
	s.out.Send(hostID, eventStateMeta, metaSnapshot(game))
	s.out.Send(hostID, eventStatePlayers, playersSnapshot(game))
	if !game.Closed {
		s.markActive(game)
	}
	log.Info().Str("game_id", game.Code).Str("conn_id", hostID).Msg("host attached")
	return game.Code, nil
}

func (s *Server) startGame(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.store.Get(code)
	if !ok {
		return ErrGameNotFound
	}
	if game.Closed {
		return ErrGameEnded
	}
	if len(game.Players) == 0 {
		return ErrNoPlayers
	}
	if game.Started {
		return nil
	}
	game.Started = true
	game.touch(s.now())
	s.scheduleDraw(game, s.cfg.FirstDrawDelay())
	s.broadcastMeta(game)
	s.archive.record(game, eventTypeGameStarted, EventPayload{DrawnCount: len(game.Drawn)}, archiveUpdate{started: true})
	log.Info().Str("game_id", game.Code).Int("players", len(game.Players)).Msg("game started")
	return nil
}

func (s *Server) stopGame(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.store.Get(code)
	if !ok {
		return ErrGameNotFound
	}
	s.cancelDraw(game)
	wasStarted := game.Started
	game.Started = false
	game.touch(s.now())
	s.broadcastMeta(game)
	if wasStarted {
		s.archive.record(game, eventTypeGameStopped, EventPayload{DrawnCount: len(game.Drawn)}, archiveUpdate{})
		log.Info().Str("game_id", game.Code).Int("drawn", len(game.Drawn)).Msg("game stopped")
	}
	return nil
}

func (s *Server) resetGame(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.store.Get(code)
	if !ok {
		return ErrGameNotFound
	}
	s.cancelDraw(game)
	fresh := s.store.Replace(game, s.now())
	s.archive.record(game, eventTypeGameReset, EventPayload{Generation: fresh.Generation}, archiveUpdate{})
	s.archive.forget(game)
	s.archive.gameCreated(fresh)
	s.out.Broadcast(fresh.Code, eventGameReset, gameReply{GameID: fresh.Code})
	s.broadcastState(fresh)
	s.markActive(fresh)
	log.Info().Str("game_id", fresh.Code).Uint64("generation", fresh.Generation).Msg("game reset")
	return nil
}

// closeWithWinner ends game for good. Callers hold s.mu and have checked
// that the game is still open.
func (s *Server) closeWithWinner(game *Game, player *Player) {
	now := s.now()
	game.Closed = true
	game.Started = false
	game.Winner = &Winner{PlayerID: player.ID, Name: player.Name, At: now}
	game.touch(now)
	s.cancelDraw(game)
	s.out.Broadcast(game.Code, eventGameWinner, copyWinner(game.Winner))
	if s.store.ClearActive(game.Code) {
		s.announceActive()
	}
	s.archive.record(game, eventTypeGameWon, EventPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		DrawnCount: len(game.Drawn),
	}, archiveUpdate{closed: true, winner: player.Name})
	log.Info().Str("game_id", game.Code).Str("player", player.Name).Int("drawn", len(game.Drawn)).Msg("game won")
}
