package server

// Client commands.
const (
	eventHostCreate  = "host:create"
	eventHostJoin    = "host:join"
	eventHostStart   = "host:start"
	eventHostStop    = "host:stop"
	eventHostReset   = "host:reset"
	eventPlayerJoin  = "player:join"
	eventPlayerMark  = "player:mark"
	eventPlayerClaim = "player:claim"
)

// Server pushes.
const (
	eventAck           = "ack"
	eventWelcome       = "session:welcome"
	eventStateMeta     = "state:meta"
	eventStatePlayers  = "state:players"
	eventNumberDrawn   = "number:drawn"
	eventGameWinner    = "game:winner"
	eventGameReset     = "game:reset"
	eventGameAvailable = "game:available"
)

// broadcaster fans events out to connections. Implementations must not
// block: Server calls it while holding its lock.
type broadcaster interface {
	Send(connID, event string, payload any)
	Broadcast(gameCode, event string, payload any)
	BroadcastAll(event string, payload any)
	Join(connID, gameCode string)
	Forget(gameCode string)
}

type metaPayload struct {
	Started    bool    `json:"started"`
	Closed     bool    `json:"closed"`
	Winner     *Winner `json:"winner"`
	DrawnCount int     `json:"drawnCount"`
	Current    *int    `json:"current"`
}

type playerPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Disqualified bool   `json:"disqualified"`
}

type drawnPayload struct {
	Number int   `json:"number"`
	Drawn  []int `json:"drawn"`
}

type availablePayload struct {
	GameID *string `json:"gameId"`
}

type welcomePayload struct {
	ID string `json:"id"`
}

// EventPayload is the JSON body of an archived event.
type EventPayload struct {
	GameID     string `json:"game_id,omitempty"`
	Generation uint64 `json:"generation,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player,omitempty"`
	Number     int    `json:"number,omitempty"`
	DrawnCount int    `json:"drawn_count,omitempty"`
	Reason     string `json:"reason,omitempty"`
}
