package server

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeCommand(t *testing.T) {
	cases := []struct {
		name    string
		event   string
		data    string
		wantErr error
	}{
		{name: "create without data", event: eventHostCreate, data: ""},
		{name: "create with null", event: eventHostCreate, data: "null"},
		{name: "join with code", event: eventPlayerJoin, data: `{"gameId":"abcd","name":"Ada"}`},
		{name: "join without code", event: eventPlayerJoin, data: `{"name":"Ada"}`},
		{name: "mark", event: eventPlayerMark, data: `{"gameId":"ABCD","row":0,"col":4}`},
		{name: "unknown event", event: "player:dance", data: `{}`, wantErr: errUnknownCommand},
		{name: "bad json", event: eventHostStart, data: `{"gameId":`, wantErr: errInvalidPayload},
		{name: "missing code", event: eventHostStart, data: `{}`, wantErr: ErrGameNotFound},
		{name: "malformed code", event: eventHostJoin, data: `{"gameId":"IO01"}`, wantErr: ErrGameNotFound},
		{name: "mark without row", event: eventPlayerMark, data: `{"gameId":"ABCD","col":1}`, wantErr: errInvalidPayload},
		{name: "mark out of range", event: eventPlayerMark, data: `{"gameId":"ABCD","row":5,"col":1}`, wantErr: errInvalidPayload},
		{name: "mark negative", event: eventPlayerMark, data: `{"gameId":"ABCD","row":-1,"col":1}`, wantErr: errInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeCommand(tc.event, json.RawMessage(tc.data))
			if err != tc.wantErr {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDispatchReplyShapes(t *testing.T) {
	h := newHarness(t)

	created := h.srv.dispatch("host", eventHostCreate, nil)
	reply, ok := created.(gameReply)
	if !ok || len(reply.GameID) != 4 {
		t.Fatalf("expected game reply, got %#v", created)
	}
	code := reply.GameID
	lower := strings.ToLower(code)

	cases := []struct {
		name  string
		conn  string
		event string
		data  string
		want  string
	}{
		{name: "unknown", conn: "x", event: "nope", data: `{}`, want: `{"error":"Unknown command"}`},
		{name: "start empty game", conn: "host", event: eventHostStart, data: `{"gameId":"` + code + `"}`, want: `{"error":"No players have joined"}`},
		{name: "host join unknown", conn: "host", event: eventHostJoin, data: `{"gameId":"ZZZZ"}`, want: `{"error":"Game not found"}`},
		{name: "host join", conn: "host", event: eventHostJoin, data: `{"gameId":"` + lower + `"}`, want: `{"gameId":"` + code + `"}`},
		{name: "join long name", conn: "p1", event: eventPlayerJoin, data: `{"name":"` + strings.Repeat("a", 21) + `"}`, want: `{"error":"Name must be 20 characters or fewer"}`},
		{name: "join empty name", conn: "p1", event: eventPlayerJoin, data: `{"name":" "}`, want: `{"error":"Name required"}`},
		{name: "mark before start", conn: "p1", event: eventPlayerMark, data: `{"gameId":"` + code + `","row":2,"col":2}`, want: `{"ok":false}`},
		{name: "mark bad payload", conn: "p1", event: eventPlayerMark, data: `{"gameId":"` + code + `","row":9,"col":2}`, want: `{"ok":false}`},
		{name: "claim unknown game", conn: "p1", event: eventPlayerClaim, data: `{"gameId":"ZZZZ"}`, want: `{"ok":false}`},
		{name: "stop", conn: "host", event: eventHostStop, data: `{"gameId":"` + code + `"}`, want: `{}`},
		{name: "reset unknown", conn: "host", event: eventHostReset, data: `{"gameId":"ZZZZ"}`, want: `{"error":"Game not found"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := toJSON(t, h.srv.dispatch(tc.conn, tc.event, json.RawMessage(tc.data)))
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDispatchJoinAndMark(t *testing.T) {
	h := newHarness(t)
	code := h.srv.createGame("host")

	joined := h.srv.dispatch("p1", eventPlayerJoin, json.RawMessage(`{"name":"Ada"}`))
	resp, ok := joined.(joinResponse)
	if !ok || resp.GameID != code || resp.Card == nil {
		t.Fatalf("expected join response, got %#v", joined)
	}
	raw := toJSON(t, resp)
	if !strings.Contains(raw, `"FREE"`) {
		t.Fatalf("expected FREE center in %s", raw)
	}
	taken := toJSON(t, h.srv.dispatch("p2", eventPlayerJoin, json.RawMessage(`{"gameId":"`+code+`","name":"ADA"}`)))
	if taken != `{"error":"Name already taken"}` {
		t.Fatalf("unexpected reply %s", taken)
	}

	if got := toJSON(t, h.srv.dispatch("host", eventHostStart, json.RawMessage(`{"gameId":"`+code+`"}`))); got != `{}` {
		t.Fatalf("unexpected start reply %s", got)
	}
	card := h.game(t, code).Players["p1"].Card
	undrawn := `{"gameId":"` + code + `","row":0,"col":0}`
	if got := toJSON(t, h.srv.dispatch("p1", eventPlayerMark, json.RawMessage(undrawn))); got != `{"ok":false,"error":"Number not drawn"}` {
		t.Fatalf("unexpected undrawn reply %s", got)
	}
	h.forceDraw(t, code, int(card.Cell(0, 0)))
	marked, ok := h.srv.dispatch("p1", eventPlayerMark, json.RawMessage(undrawn)).(markReply)
	if !ok || !marked.OK || marked.Marked == nil || !marked.Marked[0][0] {
		t.Fatalf("expected mark reply, got %#v", marked)
	}

	claim := toJSON(t, h.srv.dispatch("p1", eventPlayerClaim, json.RawMessage(`{"gameId":"`+code+`"}`)))
	if claim != `{"ok":true,"valid":false,"disqualified":true}` {
		t.Fatalf("unexpected claim reply %s", claim)
	}
}
