package server

import (
	"encoding/json"
	"errors"

	"bingo-hall/internal/bingo"

	"github.com/rs/zerolog/log"
)

// command is one client request. Each variant knows how to run itself and
// how to shape its failure reply.
type command interface {
	apply(s *Server, connID string) any
	reject(err error) any
}

type hostCreateCommand struct{}

type hostJoinCommand struct {
	GameID string `json:"gameId" validate:"required,gamecode"`
}

type hostStartCommand struct {
	GameID string `json:"gameId" validate:"required,gamecode"`
}

type hostStopCommand struct {
	GameID string `json:"gameId" validate:"required,gamecode"`
}

type hostResetCommand struct {
	GameID string `json:"gameId" validate:"required,gamecode"`
}

type playerJoinCommand struct {
	GameID string `json:"gameId" validate:"omitempty,gamecode"`
	Name   string `json:"name"`
}

type playerMarkCommand struct {
	GameID string `json:"gameId" validate:"required,gamecode"`
	Row    *int   `json:"row" validate:"required,min=0,max=4"`
	Col    *int   `json:"col" validate:"required,min=0,max=4"`
}

type playerClaimCommand struct {
	GameID string `json:"gameId" validate:"required,gamecode"`
}

type gameReply struct {
	GameID string `json:"gameId"`
}

type emptyReply struct{}

type errorReply struct {
	Error string `json:"error"`
}

type markReply struct {
	OK     bool                          `json:"ok"`
	Marked *[bingo.Size][bingo.Size]bool `json:"marked,omitempty"`
	Closed bool                          `json:"closed,omitempty"`
	Winner *Winner                       `json:"winner,omitempty"`
	Error  string                        `json:"error,omitempty"`
}

type claimReply struct {
	OK           bool    `json:"ok"`
	Valid        bool    `json:"valid"`
	Winner       *Winner `json:"winner,omitempty"`
	Disqualified bool    `json:"disqualified,omitempty"`
}

type notOKReply struct {
	OK bool `json:"ok"`
}

func failure(err error) any {
	return errorReply{Error: errorMessage(err)}
}

func (c *hostCreateCommand) apply(s *Server, connID string) any {
	return gameReply{GameID: s.createGame(connID)}
}

func (c *hostCreateCommand) reject(err error) any { return failure(err) }

func (c *hostJoinCommand) apply(s *Server, connID string) any {
	code, err := s.hostJoin(c.GameID, connID)
	if err != nil {
		return failure(err)
	}
	return gameReply{GameID: code}
}

func (c *hostJoinCommand) reject(err error) any { return failure(err) }

func (c *hostStartCommand) apply(s *Server, connID string) any {
	if err := s.startGame(c.GameID); err != nil {
		return failure(err)
	}
	return emptyReply{}
}

func (c *hostStartCommand) reject(err error) any { return failure(err) }

func (c *hostStopCommand) apply(s *Server, connID string) any {
	if err := s.stopGame(c.GameID); err != nil {
		return failure(err)
	}
	return emptyReply{}
}

func (c *hostStopCommand) reject(err error) any { return failure(err) }

func (c *hostResetCommand) apply(s *Server, connID string) any {
	if err := s.resetGame(c.GameID); err != nil {
		return failure(err)
	}
	return emptyReply{}
}

func (c *hostResetCommand) reject(err error) any { return failure(err) }

func (c *playerJoinCommand) apply(s *Server, connID string) any {
	resp, err := s.joinPlayer(connID, c.GameID, c.Name)
	if err != nil {
		return failure(err)
	}
	return resp
}

func (c *playerJoinCommand) reject(err error) any { return failure(err) }

func (c *playerMarkCommand) apply(s *Server, connID string) any {
	resp, err := s.markCell(connID, c.GameID, *c.Row, *c.Col)
	if err != nil {
		return c.reject(err)
	}
	return resp
}

func (c *playerMarkCommand) reject(err error) any {
	if errors.Is(err, ErrNotDrawn) {
		return markReply{Error: errorMessage(err)}
	}
	return notOKReply{}
}

func (c *playerClaimCommand) apply(s *Server, connID string) any {
	resp, err := s.claimBingo(connID, c.GameID)
	if err != nil {
		return c.reject(err)
	}
	return resp
}

func (c *playerClaimCommand) reject(err error) any { return notOKReply{} }

// dispatch runs one client frame and returns the ack payload.
func (s *Server) dispatch(connID, event string, data json.RawMessage) (reply any) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("conn_id", connID).Str("event", event).Msg("command panicked")
			reply = errorReply{Error: errorMessage(nil)}
		}
	}()
	cmd, err := decodeCommand(event, data)
	if err != nil {
		log.Debug().Err(err).Str("conn_id", connID).Str("event", event).Msg("command rejected")
		if cmd == nil {
			return failure(err)
		}
		return cmd.reject(err)
	}
	return cmd.apply(s, connID)
}
