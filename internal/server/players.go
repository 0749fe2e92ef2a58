package server

import (
	"bingo-hall/internal/bingo"

	"github.com/rs/zerolog/log"
)

// resolveJoinTarget picks the game a player lands in: the named one, or the
// active game when no code was given.
func (s *Server) resolveJoinTarget(code string) (*Game, error) {
	if code == "" {
		game, ok := s.store.Active()
		if !ok {
			return nil, ErrWaitingForHost
		}
		return game, nil
	}
	game, ok := s.store.Get(code)
	if !ok {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *Server) joinPlayer(connID, code, name string) (joinResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, err := s.resolveJoinTarget(code)
	if err != nil {
		return joinResponse{}, err
	}
	if game.Closed {
		return joinResponse{}, ErrGameEnded
	}
	if existing, ok := game.Players[connID]; ok {
		s.out.Join(connID, game.Code)
		return joinSnapshot(game, existing), nil
	}
	trimmed, err := validateName(name)
	if err != nil {
		return joinResponse{}, err
	}
	if game.nameTaken(trimmed) {
		return joinResponse{}, ErrNameTaken
	}
	player := &Player{
		ID:   connID,
		Name: trimmed,
		Card: bingo.NewCard(s.rng),
	}
	game.addPlayer(player)
	game.touch(s.now())
	s.out.Join(connID, game.Code)
	s.broadcastPlayers(game)
	s.archive.playerJoined(game, player)
	log.Info().Str("game_id", game.Code).Str("conn_id", connID).Str("player", player.Name).Msg("player joined")
	return joinSnapshot(game, player), nil
}

// playablePlayer applies the guards shared by mark and claim. Failures are
// reported to the client without detail.
func (s *Server) playablePlayer(connID, code string) (*Game, *Player, error) {
	game, ok := s.store.Get(code)
	if !ok || game.Closed || !game.Started {
		return nil, nil, errIgnored
	}
	player, ok := game.Players[connID]
	if !ok || player.Disqualified {
		return nil, nil, errIgnored
	}
	return game, player, nil
}

func (s *Server) markCell(connID, code string, row, col int) (markReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, player, err := s.playablePlayer(connID, code)
	if err != nil {
		return markReply{}, err
	}
	if !bingo.InBounds(row, col) {
		return markReply{}, errIgnored
	}
	card := player.Card
	cell := card.Cell(row, col)
	if cell != bingo.Free && !game.isDrawn(int(cell)) {
		return markReply{}, ErrNotDrawn
	}
	game.touch(s.now())
	if !card.Marked[row][col] {
		card.Marked[row][col] = true
		if card.Bingo() && !game.Closed {
			s.closeWithWinner(game, player)
		}
	}
	s.broadcastState(game)
	marked := card.Marked
	return markReply{
		OK:     true,
		Marked: &marked,
		Closed: game.Closed,
		Winner: copyWinner(game.Winner),
	}, nil
}

func (s *Server) claimBingo(connID, code string) (claimReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.store.Get(code); ok && game.Closed && game.Winner != nil && game.Winner.PlayerID == connID {
		return claimReply{OK: true, Valid: true, Winner: copyWinner(game.Winner)}, nil
	}
	game, player, err := s.playablePlayer(connID, code)
	if err != nil {
		return claimReply{}, err
	}
	game.touch(s.now())
	if player.Card.Bingo() {
		s.closeWithWinner(game, player)
		s.broadcastState(game)
		return claimReply{OK: true, Valid: true, Winner: copyWinner(game.Winner)}, nil
	}
	player.Disqualified = true
	s.broadcastPlayers(game)
	s.archive.playerFlagged(game, player)
	log.Info().Str("game_id", game.Code).Str("player", player.Name).Msg("false claim, player disqualified")
	return claimReply{OK: true, Valid: false, Disqualified: true}, nil
}

// disconnect drops connID's player from every game it joined.
func (s *Server) disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.store.Games() {
		player, ok := game.Players[connID]
		if !ok {
			continue
		}
		delete(game.Players, connID)
		game.touch(s.now())
		s.broadcastPlayers(game)
		s.archive.record(game, eventTypePlayerLeft, EventPayload{PlayerID: player.ID, PlayerName: player.Name}, archiveUpdate{})
		log.Info().Str("game_id", game.Code).Str("conn_id", connID).Str("player", player.Name).Msg("player left")
	}
}
