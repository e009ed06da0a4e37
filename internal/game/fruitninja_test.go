package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func startFnMatch(t *testing.T, s *Service) (*Room, *fruitNinjaEngine, []string) {
	t.Helper()
	code, ids := setupRoom(t, s, TypeFruitNinja, 2)
	room, _ := s.FindRoom(code)
	fastDelays(room)

	assert.NoError(t, s.StartGame(ids[0]))
	waitForPhase(t, room, PhasePlaying)
	return room, room.engine.(*fruitNinjaEngine), ids
}

// plantCube injects a deterministic object so tests do not depend on the
// random spawner.
func plantCube(room *Room, id int, target string, health int, wireframe bool) {
	room.mu.Lock()
	room.Arena.Cubes[id] = &Cube{ID: id, Health: health, Wireframe: wireframe, TargetPlayer: target}
	room.mu.Unlock()
}

func TestFnSpawnInterval(t *testing.T) {
	e := &fruitNinjaEngine{}
	room := &Room{}

	assert.Equal(t, 1500*time.Millisecond, e.spawnInterval(room))
	room.Arena.SpawnTick = 10
	assert.Equal(t, 1250*time.Millisecond, e.spawnInterval(room))
	room.Arena.SpawnTick = 40
	assert.Equal(t, 500*time.Millisecond, e.spawnInterval(room))
	room.Arena.SpawnTick = 1000 // never below the floor
	assert.Equal(t, 500*time.Millisecond, e.spawnInterval(room))
}

// Test: a spawned object goes to exactly one player
// Why: Each arena is private; the opponent never sees your cubes
func TestFnSpawnTargetsOnePlayer(t *testing.T) {
	s, sender := newTestService()
	room, e, _ := startFnMatch(t, s)
	sender.reset()

	room.mu.Lock()
	e.spawnCube(room)
	cubeID := room.Arena.NextCubeID - 1
	cube := room.Arena.Cubes[cubeID]
	room.mu.Unlock()

	assert.NotNil(t, cube)
	assert.GreaterOrEqual(t, cube.Health, 1)
	assert.LessOrEqual(t, cube.Health, 3)

	spawns := sender.ofType("fn_spawn")
	assert.Len(t, spawns, 1, "spawn is unicast, not broadcast")
	assert.Equal(t, cube.TargetPlayer, spawns[0].ConnID)
	sc := spawns[0].Payload.(FnSpawnPayload).Cube
	assert.Equal(t, cubeID, sc.ID)
	assert.Equal(t, spawns[0].ConnID, sc.TargetPlayer, "the client filters spawns on targetPlayer")
}

// Test: spawns aimed at a slowed player move at half speed
// Why: The slow-motion reward must shape the server's physics, not the client's
func TestFnSpawnSlowedTarget(t *testing.T) {
	s, _ := newTestService()
	room, e, ids := startFnMatch(t, s)

	room.mu.Lock()
	room.Arena.SlowmoUntil[ids[0]] = time.Now().Add(time.Minute)
	var slowed *Cube
	for slowed == nil {
		e.spawnCube(room)
		c := room.Arena.Cubes[room.Arena.NextCubeID-1]
		if c != nil && c.TargetPlayer == ids[0] {
			slowed = c
		}
	}
	room.mu.Unlock()

	// Base vertical speed starts at 0.08; halved it must land below that.
	assert.Less(t, slowed.YD, 0.08)
}

// Test: hits whittle health, the last one destroys
// Why: Scoring and object lifetime both key off the health counter
func TestFnHitScoring(t *testing.T) {
	s, sender := newTestService()
	room, _, ids := startFnMatch(t, s)
	plantCube(room, 1, ids[0], 2, false)
	sender.reset()

	assert.NoError(t, s.HandleAction(ids[0], Action{Kind: ActionObjectHit, ObjectID: 1}))

	hit, _ := sender.last("fn_hit")
	payload := hit.Payload.(FnHitPayload)
	assert.Equal(t, ids[0], payload.SlicedBy, "the client filters hits on slicedBy")
	assert.False(t, payload.Destroyed)
	assert.Equal(t, 1, payload.NewHealth)
	assert.Equal(t, cubeHitPoints, payload.Points)

	assert.NoError(t, s.HandleAction(ids[0], Action{Kind: ActionObjectHit, ObjectID: 1}))

	hit, _ = sender.last("fn_hit")
	payload = hit.Payload.(FnHitPayload)
	assert.True(t, payload.Destroyed)
	assert.Equal(t, cubeDestroyPoints, payload.Points)

	p, _ := s.FindPlayer(ids[0])
	room.mu.Lock()
	assert.Equal(t, cubeHitPoints+cubeDestroyPoints, p.Score)
	assert.Equal(t, cubeHitPoints+cubeDestroyPoints, room.Arena.Scores[ids[0]])
	assert.NotContains(t, room.Arena.Cubes, 1)
	room.mu.Unlock()
}

func TestFnHitWrongTargetIgnored(t *testing.T) {
	s, sender := newTestService()
	room, _, ids := startFnMatch(t, s)
	plantCube(room, 1, ids[0], 1, false)
	sender.reset()

	assert.NoError(t, s.HandleAction(ids[1], Action{Kind: ActionObjectHit, ObjectID: 1}))
	assert.NoError(t, s.HandleAction(ids[1], Action{Kind: ActionObjectHit, ObjectID: 99}))

	assert.Empty(t, sender.ofType("fn_hit"))
	room.mu.Lock()
	assert.Contains(t, room.Arena.Cubes, 1)
	room.mu.Unlock()
}

// Test: destroying a wireframe object arms slow motion
// Why: The reward window gates the half-speed spawns
func TestFnWireframeSlowmo(t *testing.T) {
	s, sender := newTestService()
	room, _, ids := startFnMatch(t, s)
	plantCube(room, 1, ids[0], 1, true)
	sender.reset()

	assert.NoError(t, s.HandleAction(ids[0], Action{Kind: ActionObjectHit, ObjectID: 1}))

	slowmo := sender.ofType("fn_slowmo")
	assert.Len(t, slowmo, 2)
	assert.True(t, slowmo[0].Payload.(FnSlowmoPayload).Active)

	room.mu.Lock()
	until, ok := room.Arena.SlowmoUntil[ids[0]]
	room.mu.Unlock()
	assert.True(t, ok)
	assert.True(t, until.After(time.Now()))
}

// Test: fn_status tallies are keyed by connection id
// Why: The client indexes scores and lives by socket id, not username
func TestFnStatusKeyedByConnectionID(t *testing.T) {
	s, sender := newTestService()
	room, _, ids := startFnMatch(t, s)
	plantCube(room, 1, ids[0], 1, false)
	sender.reset()

	assert.NoError(t, s.HandleAction(ids[0], Action{Kind: ActionObjectHit, ObjectID: 1}))

	status, ok := sender.last("fn_status")
	assert.True(t, ok)
	payload := status.Payload.(FnStatusPayload)
	assert.Equal(t, cubeDestroyPoints, payload.Scores[ids[0]])
	assert.Equal(t, 0, payload.Scores[ids[1]])
	assert.Equal(t, 3, payload.Lives[ids[0]])
	assert.Contains(t, payload.Lives, ids[1])

	p0, _ := s.FindPlayer(ids[0])
	assert.NotContains(t, payload.Scores, p0.Username)
	assert.NotContains(t, payload.Lives, p0.Username)
}

func TestFnMissCostsLife(t *testing.T) {
	s, sender := newTestService()
	room, _, ids := startFnMatch(t, s)
	plantCube(room, 1, ids[0], 1, false)
	sender.reset()

	assert.NoError(t, s.HandleAction(ids[0], Action{Kind: ActionObjectMiss, ObjectID: 1}))

	miss, _ := sender.last("fn_miss")
	assert.Equal(t, 2, miss.Payload.(FnMissPayload).Lives)
	room.mu.Lock()
	assert.NotContains(t, room.Arena.Cubes, 1)
	assert.Equal(t, 2, room.Arena.Lives[ids[0]])
	room.mu.Unlock()
}

// Test: losing the last life settles the round by score
// Why: The survivor is not automatically the winner
func TestFnOutOfLivesEndsRound(t *testing.T) {
	s, sender := newTestService()
	room, _, ids := startFnMatch(t, s)

	room.mu.Lock()
	room.Arena.Lives[ids[0]] = 1
	room.Arena.Scores[ids[1]] = 40
	room.mu.Unlock()
	plantCube(room, 1, ids[0], 1, false)
	sender.reset()

	assert.NoError(t, s.HandleAction(ids[0], Action{Kind: ActionObjectMiss, ObjectID: 1}))

	res, ok := sender.last("fn_round_result")
	assert.True(t, ok)
	payload := res.Payload.(FnRoundResultPayload)
	assert.Equal(t, ids[1], payload.Winner)
	assert.Equal(t, 1, payload.RoundWins[ids[1]])

	// One series win is below the target; the next round follows.
	assert.Eventually(t, func() bool {
		room.mu.Lock()
		defer room.mu.Unlock()
		return room.Round == 2 && room.Phase == PhasePlaying
	}, 2*time.Second, 5*time.Millisecond)
}

// Test: an even score splits the round with no series point
// Why: Ties must not hand out wins
func TestFnTieAwardsNothing(t *testing.T) {
	s, sender := newTestService()
	room, e, _ := startFnMatch(t, s)
	sender.reset()

	room.mu.Lock()
	e.finishRound(room)
	room.mu.Unlock()

	res, ok := sender.last("fn_round_result")
	assert.True(t, ok)
	assert.Equal(t, "", res.Payload.(FnRoundResultPayload).Winner)
	room.mu.Lock()
	assert.Empty(t, room.Arena.SeriesWins)
	room.mu.Unlock()
}

func TestFnSeriesEndsMatch(t *testing.T) {
	s, sender := newTestService()
	room, e, ids := startFnMatch(t, s)

	p0, _ := s.FindPlayer(ids[0])
	room.mu.Lock()
	room.Arena.SeriesWins[ids[0]] = 1
	room.Arena.Scores[ids[0]] = 25
	p0.Score = 25
	e.finishRound(room)
	room.mu.Unlock()

	assert.Eventually(t, func() bool {
		return len(sender.ofType("game_end")) > 0
	}, 2*time.Second, 5*time.Millisecond)

	end, _ := sender.last("game_end")
	assert.Equal(t, p0.Username, end.Payload.(GameEndPayload).Winner)
}

func TestFnDisconnectForfeits(t *testing.T) {
	s, sender := newTestService()
	room, _, ids := startFnMatch(t, s)
	sender.reset()

	s.LeaveRoom(ids[1])

	assert.Equal(t, PhaseGameEnd, currentPhase(room))
	assert.NotEmpty(t, sender.ofType("game_end"))

	p0, _ := s.FindPlayer(ids[0])
	room.mu.Lock()
	assert.Equal(t, roundWinPoints, p0.Score)
	room.mu.Unlock()
}
