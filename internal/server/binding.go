package server

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// decodeCommand turns an event name and its raw payload into a validated
// command. On a bad payload it still returns the zero command so the caller
// can answer in that command's failure shape.
func decodeCommand(event string, data json.RawMessage) (command, error) {
	var cmd command
	switch event {
	case eventHostCreate:
		cmd = &hostCreateCommand{}
	case eventHostJoin:
		cmd = &hostJoinCommand{}
	case eventHostStart:
		cmd = &hostStartCommand{}
	case eventHostStop:
		cmd = &hostStopCommand{}
	case eventHostReset:
		cmd = &hostResetCommand{}
	case eventPlayerJoin:
		cmd = &playerJoinCommand{}
	case eventPlayerMark:
		cmd = &playerMarkCommand{}
	case eventPlayerClaim:
		cmd = &playerClaimCommand{}
	default:
		return nil, errUnknownCommand
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, cmd); err != nil {
			return cmd, errInvalidPayload
		}
	}
	if err := commandValidator().Struct(cmd); err != nil {
		return cmd, resolveBindError(err)
	}
	return cmd, nil
}

// resolveBindError reports a malformed game code as an unknown game; any
// other validation failure is an invalid payload.
func resolveBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if verr.Field() == "GameID" {
				return ErrGameNotFound
			}
		}
	}
	return errInvalidPayload
}
