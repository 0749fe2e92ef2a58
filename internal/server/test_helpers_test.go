package server

import (
	"encoding/json"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bingo-hall/internal/bingo"
	"bingo-hall/internal/config"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (f *fakeTimer) Stop() bool {
	active := !f.stopped && !f.fired
	f.stopped = true
	return active
}

// fakeScheduler records timers instead of arming them; tests fire them by
// hand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (f *fakeScheduler) after(d time.Duration, fn func()) timerHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	timer := &fakeTimer{delay: d, fn: fn}
	f.timers = append(f.timers, timer)
	return timer
}

func (f *fakeScheduler) pending() []*fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakeTimer
	for _, timer := range f.timers {
		if !timer.stopped && !timer.fired {
			out = append(out, timer)
		}
	}
	return out
}

// fireNext runs the single pending timer.
func (f *fakeScheduler) fireNext(t *testing.T) *fakeTimer {
	t.Helper()
	pending := f.pending()
	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending timer, got %d", len(pending))
	}
	timer := pending[0]
	f.mu.Lock()
	timer.fired = true
	f.mu.Unlock()
	timer.fn()
	return timer
}

type sentEvent struct {
	scope   string
	target  string
	event   string
	payload any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
	joined map[string][]string
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{joined: make(map[string][]string)}
}

func (r *recordingBroadcaster) Send(connID, event string, payload any) {
	r.record(sentEvent{scope: "conn", target: connID, event: event, payload: payload})
}

func (r *recordingBroadcaster) Broadcast(gameCode, event string, payload any) {
	r.record(sentEvent{scope: "game", target: gameCode, event: event, payload: payload})
}

func (r *recordingBroadcaster) BroadcastAll(event string, payload any) {
	r.record(sentEvent{scope: "all", event: event, payload: payload})
}

func (r *recordingBroadcaster) Join(connID, gameCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined[connID] = append(r.joined[connID], gameCode)
}

func (r *recordingBroadcaster) Forget(gameCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for connID, codes := range r.joined {
		kept := codes[:0]
		for _, code := range codes {
			if code != gameCode {
				kept = append(kept, code)
			}
		}
		r.joined[connID] = kept
	}
}

func (r *recordingBroadcaster) record(event sentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingBroadcaster) named(event string) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, sent := range r.events {
		if sent.event == event {
			out = append(out, sent)
		}
	}
	return out
}

func (r *recordingBroadcaster) last(event string) (sentEvent, bool) {
	matches := r.named(event)
	if len(matches) == 0 {
		return sentEvent{}, false
	}
	return matches[len(matches)-1], true
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	srv   *Server
	sched *fakeScheduler
	out   *recordingBroadcaster
	clock *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		srv:   New(nil, config.Default()),
		sched: &fakeScheduler{},
		out:   newRecordingBroadcaster(),
		clock: &testClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)},
	}
	h.srv.after = h.sched.after
	h.srv.out = h.out
	h.srv.rng = rand.New(rand.NewPCG(1, 2))
	h.srv.now = h.clock.Now
	return h
}

func (h *harness) game(t *testing.T, code string) *Game {
	t.Helper()
	game, ok := h.srv.store.Get(code)
	if !ok {
		t.Fatalf("game %s not found", code)
	}
	return game
}

func (h *harness) join(t *testing.T, connID, code, name string) joinResponse {
	t.Helper()
	resp, err := h.srv.joinPlayer(connID, code, name)
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return resp
}

// forceDraw appends numbers to the game's drawn list as if the draw loop had
// produced them.
func (h *harness) forceDraw(t *testing.T, code string, numbers ...int) {
	t.Helper()
	h.srv.mu.Lock()
	defer h.srv.mu.Unlock()
	game, ok := h.srv.store.Get(code)
	if !ok {
		t.Fatalf("game %s not found", code)
	}
	for _, n := range numbers {
		if !game.isDrawn(n) {
			game.Drawn = append(game.Drawn, n)
			game.Current = n
		}
	}
}

// rowNumbers returns the non-free numbers on one row of card.
func rowNumbers(card *bingo.Card, row int) []int {
	var out []int
	for col := 0; col < bingo.Size; col++ {
		if cell := card.Cell(row, col); cell != bingo.Free {
			out = append(out, int(cell))
		}
	}
	return out
}

func toJSON(t *testing.T, value any) string {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}
