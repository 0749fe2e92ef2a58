package server

import (
	"sort"
	"strings"
	"time"

	"bingo-hall/internal/bingo"
)

// Game is one bingo session. Started and Closed are independent: a stopped
// game can be started again, a closed one only comes back through reset.
type Game struct {
	Code         string
	HostID       string
	Generation   uint64
	Players      map[string]*Player
	Started      bool
	Closed       bool
	Winner       *Winner
	Drawn        []int
	Current      int
	CreatedAt    time.Time
	LastActivity time.Time

	joinSeq   int
	drawRun   uint64
	drawTimer timerHandle
}

type Player struct {
	ID           string
	Name         string
	Card         *bingo.Card
	Disqualified bool
	joinedSeq    int
}

type Winner struct {
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	At       time.Time `json:"at"`
}

func newGame(code, hostID string, generation uint64, now time.Time) *Game {
	return &Game{
		Code:         code,
		HostID:       hostID,
		Generation:   generation,
		Players:      make(map[string]*Player),
		Drawn:        make([]int, 0, bingo.MaxNumber),
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (g *Game) touch(now time.Time) {
	g.LastActivity = now
}

func (g *Game) isDrawn(n int) bool {
	for _, drawn := range g.Drawn {
		if drawn == n {
			return true
		}
	}
	return false
}

func (g *Game) nameTaken(name string) bool {
	for _, player := range g.Players {
		if strings.EqualFold(player.Name, name) {
			return true
		}
	}
	return false
}

func (g *Game) addPlayer(player *Player) {
	g.joinSeq++
	player.joinedSeq = g.joinSeq
	g.Players[player.ID] = player
}

// playerList returns players in join order.
func (g *Game) playerList() []*Player {
	list := make([]*Player, 0, len(g.Players))
	for _, player := range g.Players {
		list = append(list, player)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].joinedSeq < list[j].joinedSeq
	})
	return list
}
