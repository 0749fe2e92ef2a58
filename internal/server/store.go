package server

import (
	"sort"
	"time"

	"bingo-hall/internal/bingo"
)

// Store maps game codes to games and remembers which game walk-up players
// land in. It does no locking of its own; Server serializes every call.
type Store struct {
	games      map[string]*Game
	activeCode string
	generation uint64
	newCode    func() string
}

func NewStore() *Store {
	return &Store{
		games:   make(map[string]*Game),
		newCode: bingo.NewCode,
	}
}

// Create registers a fresh game under a code no live game is using.
func (s *Store) Create(hostID string, now time.Time) *Game {
	code := s.newCode()
	for {
		if _, taken := s.games[code]; !taken {
			break
		}
		code = s.newCode()
	}
	game := newGame(code, hostID, s.nextGeneration(), now)
	s.games[code] = game
	return game
}

func (s *Store) Get(code string) (*Game, bool) {
	game, ok := s.games[bingo.NormalizeCode(code)]
	return game, ok
}

// Replace swaps game for an empty one with the same code and host.
func (s *Store) Replace(game *Game, now time.Time) *Game {
	fresh := newGame(game.Code, game.HostID, s.nextGeneration(), now)
	s.games[game.Code] = fresh
	return fresh
}

func (s *Store) Active() (*Game, bool) {
	if s.activeCode == "" {
		return nil, false
	}
	game, ok := s.games[s.activeCode]
	return game, ok
}

func (s *Store) ActiveCode() string {
	return s.activeCode
}

// SetActive reports whether the pointer moved.
func (s *Store) SetActive(code string) bool {
	if s.activeCode == code {
		return false
	}
	s.activeCode = code
	return true
}

// ClearActive unsets the pointer if it names code.
func (s *Store) ClearActive(code string) bool {
	if s.activeCode == "" || s.activeCode != code {
		return false
	}
	s.activeCode = ""
	return true
}

// Games lists every game ordered by code.
func (s *Store) Games() []*Game {
	list := make([]*Game, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, game)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Code < list[j].Code
	})
	return list
}

func (s *Store) Count() int {
	return len(s.games)
}

// Evict drops games idle since before cutoff.
func (s *Store) Evict(cutoff time.Time) (evicted []*Game, activeCleared bool) {
	for code, game := range s.games {
		if !game.LastActivity.Before(cutoff) {
			continue
		}
		delete(s.games, code)
		evicted = append(evicted, game)
		if s.ClearActive(code) {
			activeCleared = true
		}
	}
	sort.Slice(evicted, func(i, j int) bool {
		return evicted[i].Code < evicted[j].Code
	})
	return evicted, activeCleared
}

func (s *Store) nextGeneration() uint64 {
	s.generation++
	return s.generation
}
