package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordingSender captures everything the core tries to deliver so tests can
// assert on the outbound traffic without a websocket.
type recordingSender struct {
	mu     sync.Mutex
	events []sentEvent
}

type sentEvent struct {
	ConnID  string
	Event   string
	Payload any
}

func (r *recordingSender) Send(connID string, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{ConnID: connID, Event: event, Payload: payload})
}

func (r *recordingSender) ofType(event string) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingSender) forConn(connID, event string) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, e := range r.events {
		if e.ConnID == connID && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingSender) last(event string) (sentEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Event == event {
			return r.events[i], true
		}
	}
	return sentEvent{}, false
}

func (r *recordingSender) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func newTestService() (*Service, *recordingSender) {
	sender := &recordingSender{}
	return NewService(sender, nil), sender
}

var testNames = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Heidi"}

// setupRoom registers n players, has the first create a room and the rest
// join it. Returns the room code and the connection ids in join order.
func setupRoom(t *testing.T, s *Service, gameType GameType, n int) (string, []string) {
	t.Helper()

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("conn-%d", i+1)
		s.RegisterPlayer(ids[i], fmt.Sprintf("user-%d", i+1), testNames[i], "")
	}

	if err := s.CreateRoom(ids[0], gameType); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	creator, _ := s.FindPlayer(ids[0])
	code := creator.RoomCode

	for i := 1; i < n; i++ {
		if err := s.JoinRoom(ids[i], code); err != nil {
			t.Fatalf("JoinRoom failed for %s: %v", ids[i], err)
		}
	}
	return code, ids
}

// fastDelays shortens the scheduling pauses so tests do not sit through
// real-time round transitions.
func fastDelays(room *Room) {
	room.mu.Lock()
	room.Config.StartDelay = 10 * time.Millisecond
	room.Config.RoundEndDelay = 20 * time.Millisecond
	room.Config.EarlyEndDelay = 10 * time.Millisecond
	room.mu.Unlock()
}

func waitForPhase(t *testing.T, room *Room, phase Phase) {
	t.Helper()
	assert.Eventually(t, func() bool {
		room.mu.Lock()
		defer room.mu.Unlock()
		return room.Phase == phase
	}, 2*time.Second, 5*time.Millisecond, "room never reached phase %s", phase)
}

func currentPhase(room *Room) Phase {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.Phase
}

// activeHolderID finds the member currently holding the active role.
func activeHolderID(s *Service, room *Room) string {
	room.mu.Lock()
	defer room.mu.Unlock()
	if p, ok := s.activePlayer(room); ok {
		return p.ID
	}
	return ""
}

// forceWordChoices pins the pick options so tests control the secret.
func forceWordChoices(room *Room, words ...string) {
	room.mu.Lock()
	room.WordChoices = words
	room.mu.Unlock()
}

// startWordRound drives a word-mode room from the lobby into a live round
// with a known secret. Returns the holder's connection id.
func startWordRound(t *testing.T, s *Service, room *Room, hostID, word string) string {
	t.Helper()

	fastDelays(room)
	if err := s.StartGame(hostID); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	waitForPhase(t, room, PhasePicking)

	holder := activeHolderID(s, room)
	if holder == "" {
		t.Fatal("no active holder after round start")
	}
	forceWordChoices(room, word, "decoy", "other")
	if err := s.SelectWord(holder, word); err != nil {
		t.Fatalf("SelectWord failed: %v", err)
	}
	waitForPhase(t, room, PhasePlaying)
	return holder
}
