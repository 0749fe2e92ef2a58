package server

import (
	"encoding/json"
	"time"

	"bingo-hall/internal/db"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type gameKey struct {
	code       string
	generation uint64
}

type playerKey struct {
	game   gameKey
	connID string
}

// archiveUpdate lists the game row columns an archived event touches.
type archiveUpdate struct {
	started bool
	closed  bool
	drawn   bool
	winner  string
}

// archiver writes game history to Postgres off the request path. Jobs run
// in order on a single worker goroutine, which alone owns the row id maps.
// Enqueueing never blocks: when the queue is full the job is dropped.
// Callers hold Server.mu, which also guards closed and dropped.
type archiver struct {
	db      *gorm.DB
	jobs    chan func()
	done    chan struct{}
	closed  bool
	dropped int

	games   map[gameKey]uint
	players map[playerKey]uint
}

func newArchiver(conn *gorm.DB, size int) *archiver {
	if conn == nil {
		return &archiver{}
	}
	if size <= 0 {
		size = 1
	}
	a := &archiver{
		db:      conn,
		jobs:    make(chan func(), size),
		done:    make(chan struct{}),
		games:   make(map[gameKey]uint),
		players: make(map[playerKey]uint),
	}
	go a.run()
	return a
}

func (a *archiver) run() {
	defer close(a.done)
	for job := range a.jobs {
		job()
	}
}

func (a *archiver) enqueue(job func()) {
	if a == nil || a.jobs == nil || a.closed {
		return
	}
	select {
	case a.jobs <- job:
	default:
		a.dropped++
		log.Warn().Int("dropped", a.dropped).Msg("archive queue full, event dropped")
	}
}

// close stops accepting jobs and waits up to timeout for the queue to drain.
func (a *archiver) close(timeout time.Duration) {
	if a == nil || a.jobs == nil || a.closed {
		return
	}
	a.closed = true
	close(a.jobs)
	if a.done == nil {
		return
	}
	select {
	case <-a.done:
	case <-time.After(timeout):
		log.Warn().Msg("archive queue did not drain before shutdown")
	}
}

func keyOf(game *Game) gameKey {
	return gameKey{code: game.Code, generation: game.Generation}
}

func (a *archiver) gameCreated(game *Game) {
	key := keyOf(game)
	row := db.Game{
		Code:       game.Code,
		Generation: game.Generation,
		HostID:     game.HostID,
		CreatedAt:  game.CreatedAt,
		UpdatedAt:  game.CreatedAt,
	}
	a.enqueue(func() {
		if err := a.db.Create(&row).Error; err != nil {
			log.Warn().Err(err).Str("game_id", key.code).Msg("archive game failed")
			return
		}
		a.games[key] = row.ID
		a.writeEvent(key, eventTypeGameCreated, EventPayload{GameID: key.code, Generation: key.generation}, row.CreatedAt)
	})
}

func (a *archiver) playerJoined(game *Game, player *Player) {
	key := keyOf(game)
	connID := player.ID
	name := player.Name
	now := game.LastActivity
	a.enqueue(func() {
		gameID, ok := a.games[key]
		if !ok {
			return
		}
		row := db.Player{
			GameID:   gameID,
			ConnID:   connID,
			Name:     name,
			JoinedAt: now,
		}
		if err := a.db.Create(&row).Error; err != nil {
			log.Warn().Err(err).Str("game_id", key.code).Str("player", name).Msg("archive player failed")
			return
		}
		a.players[playerKey{game: key, connID: connID}] = row.ID
		a.writeEvent(key, eventTypePlayerJoined, EventPayload{GameID: key.code, PlayerID: connID, PlayerName: name}, now)
	})
}

func (a *archiver) playerFlagged(game *Game, player *Player) {
	key := keyOf(game)
	pkey := playerKey{game: key, connID: player.ID}
	payload := EventPayload{GameID: key.code, PlayerID: player.ID, PlayerName: player.Name}
	now := game.LastActivity
	a.enqueue(func() {
		if id, ok := a.players[pkey]; ok {
			if err := a.db.Model(&db.Player{}).Where("id = ?", id).Update("disqualified", true).Error; err != nil {
				log.Warn().Err(err).Str("game_id", key.code).Msg("archive disqualification failed")
			}
		}
		a.writeEvent(key, eventTypePlayerDisqualified, payload, now)
	})
}

// record appends an event for game and applies update to its row.
func (a *archiver) record(game *Game, eventType string, payload EventPayload, update archiveUpdate) {
	key := keyOf(game)
	payload.GameID = key.code
	if payload.Generation == 0 {
		payload.Generation = key.generation
	}
	now := game.LastActivity
	a.enqueue(func() {
		gameID, ok := a.games[key]
		if !ok {
			return
		}
		a.writeEvent(key, eventType, payload, now)
		columns := map[string]any{}
		if update.started {
			columns["started_at"] = now
		}
		if update.closed {
			columns["closed_at"] = now
			columns["winner_name"] = update.winner
		}
		if update.drawn {
			columns["drawn_count"] = payload.DrawnCount
		}
		if len(columns) == 0 {
			return
		}
		columns["updated_at"] = now
		if err := a.db.Model(&db.Game{}).Where("id = ?", gameID).Updates(columns).Error; err != nil {
			log.Warn().Err(err).Str("game_id", key.code).Str("event", eventType).Msg("archive game update failed")
		}
		if update.closed && payload.PlayerID != "" {
			if id, ok := a.players[playerKey{game: key, connID: payload.PlayerID}]; ok {
				if err := a.db.Model(&db.Player{}).Where("id = ?", id).Update("won", true).Error; err != nil {
					log.Warn().Err(err).Str("game_id", key.code).Msg("archive winner failed")
				}
			}
		}
	})
}

// forget drops the worker's row ids for a game that will not be written again.
func (a *archiver) forget(game *Game) {
	key := keyOf(game)
	a.enqueue(func() {
		delete(a.games, key)
		for pkey := range a.players {
			if pkey.game == key {
				delete(a.players, pkey)
			}
		}
	})
}

func (a *archiver) writeEvent(key gameKey, eventType string, payload EventPayload, at time.Time) {
	gameID, ok := a.games[key]
	if !ok {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("archive payload encode failed")
		return
	}
	row := db.Event{
		GameID:    gameID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: at,
	}
	if err := a.db.Create(&row).Error; err != nil {
		log.Warn().Err(err).Str("game_id", key.code).Str("event", eventType).Msg("archive event failed")
	}
}
