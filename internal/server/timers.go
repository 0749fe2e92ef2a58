package server

import (
	"context"
	"time"

	"bingo-hall/internal/bingo"

	"github.com/rs/zerolog/log"
)

type timerHandle interface {
	Stop() bool
}

type afterFunc func(time.Duration, func()) timerHandle

func systemAfterFunc(d time.Duration, fn func()) timerHandle {
	return time.AfterFunc(d, fn)
}

// scheduleDraw arms the next draw for game. Any earlier timer is
// invalidated first, so at most one callback per game can act.
func (s *Server) scheduleDraw(game *Game, delay time.Duration) {
	s.cancelDraw(game)
	run := game.drawRun
	game.drawTimer = s.after(delay, func() {
		s.autoDraw(game, run)
	})
}

func (s *Server) cancelDraw(game *Game) {
	if game.drawTimer != nil {
		game.drawTimer.Stop()
		game.drawTimer = nil
	}
	game.drawRun++
}

func (s *Server) autoDraw(game *Game, run uint64) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("game_id", game.Code).Msg("auto draw panicked")
		}
	}()
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.store.Get(game.Code); !ok || current != game {
		return
	}
	if game.drawRun != run || !game.Started || game.Closed {
		return
	}
	game.drawTimer = nil
	if s.drawNumber(game) {
		s.scheduleDraw(game, s.cfg.DrawInterval())
	}
}

// drawNumber draws one ball for game and reports whether any remain to be
// drawn afterwards. Callers hold s.mu.
func (s *Server) drawNumber(game *Game) bool {
	number, ok := bingo.Draw(game.Drawn, s.rng)
	if !ok {
		s.cancelDraw(game)
		game.Started = false
		s.broadcastMeta(game)
		s.archive.record(game, eventTypeDrawsExhausted, EventPayload{DrawnCount: len(game.Drawn)}, archiveUpdate{})
		log.Info().Str("game_id", game.Code).Msg("all numbers drawn")
		return false
	}
	game.Drawn = append(game.Drawn, number)
	game.Current = number
	game.touch(s.now())
	s.out.Broadcast(game.Code, eventNumberDrawn, drawnPayload{Number: number, Drawn: append([]int(nil), game.Drawn...)})
	s.broadcastMeta(game)
	s.archive.record(game, eventTypeNumberDrawn, EventPayload{Number: number, DrawnCount: len(game.Drawn)}, archiveUpdate{drawn: true})
	log.Debug().Str("game_id", game.Code).Int("number", number).Int("drawn", len(game.Drawn)).Msg("number drawn")
	return true
}

// RunJanitor evicts idle games every interval until ctx is done. A zero
// session TTL disables it.
func (s *Server) RunJanitor(ctx context.Context, every time.Duration) {
	ttl := s.cfg.SessionTTL()
	if ttl <= 0 || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(ttl)
		}
	}
}

func (s *Server) evictIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted, activeCleared := s.store.Evict(s.now().Add(-ttl))
	for _, game := range evicted {
		s.cancelDraw(game)
		s.archive.forget(game)
		s.out.Forget(game.Code)
		log.Info().Str("game_id", game.Code).Time("last_activity", game.LastActivity).Msg("idle game evicted")
	}
	if activeCleared {
		s.announceActive()
	}
	return len(evicted)
}
