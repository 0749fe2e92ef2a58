package server

import (
	"errors"
	"fmt"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrWaitingForHost = fmt.Errorf("%w: waiting for host", ErrGameNotFound)
	ErrGameEnded      = errors.New("game already ended")
	ErrNoPlayers      = errors.New("no players have joined")
	ErrNameRequired   = errors.New("name required")
	ErrNameTooLong    = fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	ErrNameTaken      = errors.New("name already taken")
	ErrNotDrawn       = errors.New("number not drawn")
)

// errIgnored rejects a mark or claim without telling the sender why.
var errIgnored = errors.New("ignored")

var (
	errUnknownCommand = errors.New("unknown command")
	errInvalidPayload = errors.New("invalid payload")
)

// errorMessage maps an error to the text sent back to clients.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrWaitingForHost):
		return "Waiting for host"
	case errors.Is(err, ErrGameNotFound):
		return "Game not found"
	case errors.Is(err, ErrGameEnded):
		return "Game already ended"
	case errors.Is(err, ErrNoPlayers):
		return "No players have joined"
	case errors.Is(err, ErrNameRequired):
		return "Name required"
	case errors.Is(err, ErrNameTooLong):
		return fmt.Sprintf("Name must be %d characters or fewer", maxNameLength)
	case errors.Is(err, ErrNameTaken):
		return "Name already taken"
	case errors.Is(err, ErrNotDrawn):
		return "Number not drawn"
	case errors.Is(err, errUnknownCommand):
		return "Unknown command"
	case errors.Is(err, errInvalidPayload):
		return "Invalid request"
	default:
		return "Something went wrong"
	}
}
