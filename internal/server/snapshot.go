package server

import (
	"slices"

	"bingo-hall/internal/bingo"
)

func metaSnapshot(game *Game) metaPayload {
	meta := metaPayload{
		Started:    game.Started,
		Closed:     game.Closed,
		Winner:     copyWinner(game.Winner),
		DrawnCount: len(game.Drawn),
	}
	if game.Current != 0 {
		current := game.Current
		meta.Current = &current
	}
	return meta
}

func playersSnapshot(game *Game) []playerPayload {
	list := make([]playerPayload, 0, len(game.Players))
	for _, player := range game.playerList() {
		list = append(list, playerPayload{
			ID:           player.ID,
			Name:         player.Name,
			Disqualified: player.Disqualified,
		})
	}
	return list
}

type joinResponse struct {
	GameID  string      `json:"gameId"`
	Card    *bingo.Card `json:"card"`
	Drawn   []int       `json:"drawn"`
	Started bool        `json:"started"`
	Closed  bool        `json:"closed"`
	Winner  *Winner     `json:"winner"`
}

func joinSnapshot(game *Game, player *Player) joinResponse {
	card := *player.Card
	return joinResponse{
		GameID:  game.Code,
		Card:    &card,
		Drawn:   slices.Clone(game.Drawn),
		Started: game.Started,
		Closed:  game.Closed,
		Winner:  copyWinner(game.Winner),
	}
}

func copyWinner(winner *Winner) *Winner {
	if winner == nil {
		return nil
	}
	out := *winner
	return &out
}

func (s *Server) broadcastMeta(game *Game) {
	s.out.Broadcast(game.Code, eventStateMeta, metaSnapshot(game))
}

func (s *Server) broadcastPlayers(game *Game) {
	s.out.Broadcast(game.Code, eventStatePlayers, playersSnapshot(game))
}

func (s *Server) broadcastState(game *Game) {
	s.broadcastMeta(game)
	s.broadcastPlayers(game)
}

func (s *Server) availableSnapshot() availablePayload {
	code := s.store.ActiveCode()
	if code == "" {
		return availablePayload{}
	}
	return availablePayload{GameID: &code}
}

func (s *Server) announceActive() {
	s.out.BroadcastAll(eventGameAvailable, s.availableSnapshot())
}

// markActive points walk-up joins at game and tells everyone if that moved.
func (s *Server) markActive(game *Game) {
	if s.store.SetActive(game.Code) {
		s.announceActive()
	}
}
