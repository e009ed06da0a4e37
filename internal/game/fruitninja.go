package game

import (
	"fmt"
	"log"
	"math/rand"
	"time"
)

// fruitNinjaEngine runs the two-player reflex mode. The server owns every
// spawned object: positions, velocities and health are decided here and the
// clients only render and report slices.
type fruitNinjaEngine struct {
	s *Service
}

const (
	cubeHitPoints     = 5
	cubeDestroyPoints = 10
	slowmoDuration    = 4 * time.Second
	slowmoChance      = 0.1
	spawnStartMs      = 1500
	spawnFloorMs      = 500
	spawnShrinkMs     = 25
)

var cubeColors = []string{"#ff5252", "#ffb142", "#fffa65", "#32ff7e", "#18dcff", "#7d5fff", "#ff4d94"}

func (e *fruitNinjaEngine) StartRound(room *Room) {
	if len(room.Members) < 2 {
		return
	}
	wins := room.Arena.SeriesWins
	if wins == nil {
		wins = make(map[string]int)
	}
	room.Arena = ArenaState{
		Scores:      make(map[string]int),
		Lives:       make(map[string]int),
		SeriesWins:  wins,
		Cubes:       make(map[int]*Cube),
		NextCubeID:  1,
		SlowmoUntil: make(map[string]time.Time),
	}
	for _, id := range room.Members {
		room.Arena.Scores[id] = 0
		room.Arena.Lives[id] = room.Config.StartLives
	}
	room.Phase = PhasePlaying

	e.s.broadcast(room, "round_start", e.s.roundStartPayload(room, "", 0))
	e.broadcastStatus(room)
	e.s.broadcastPlayerList(room)

	e.s.startRoomCountdown(room, room.Config.RoundTime,
		func(room *Room) { e.expireSlowmo(room) },
		func(room *Room) { e.finishRound(room) })
	e.scheduleSpawn(room)
}

func (e *fruitNinjaEngine) SelectSecret(room *Room, p *Player, word string) error {
	return ErrNotYourTurn
}

func (e *fruitNinjaEngine) HandleAction(room *Room, p *Player, act Action) error {
	switch act.Kind {
	case ActionObjectHit:
		e.handleHit(room, p, act.ObjectID)
	case ActionObjectMiss:
		e.handleMiss(room, p, act.ObjectID)
	default:
		return ErrNotInRound
	}
	return nil
}

func (e *fruitNinjaEngine) HandleActiveDisconnect(room *Room, p *Player) {
	room.timers.cancelAll()
	if remaining := e.s.playersInRoom(room); len(remaining) == 1 {
		winner := remaining[0]
		winner.Score += roundWinPoints
		winner.RoundScore += roundWinPoints
		e.s.systemChat(room, fmt.Sprintf("%s left. %s wins the match!", p.Username, winner.Username))
	}
	e.s.endGame(room)
}

// scheduleSpawn arms the next spawn on the delay slot. The chain reschedules
// itself until the round phase ends.
func (e *fruitNinjaEngine) scheduleSpawn(room *Room) {
	room.timers.scheduleAfter(e.spawnInterval(room), func(gen uint64) {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || !room.timers.delayAlive(gen) || room.Phase != PhasePlaying {
			return
		}
		e.spawnCube(room)
		e.scheduleSpawn(room)
	})
}

// spawnInterval shrinks linearly from 1500ms toward the 500ms floor as the
// round heats up.
func (e *fruitNinjaEngine) spawnInterval(room *Room) time.Duration {
	ms := spawnStartMs - room.Arena.SpawnTick*spawnShrinkMs
	if ms < spawnFloorMs {
		ms = spawnFloorMs
	}
	return time.Duration(ms) * time.Millisecond
}

// spawnCube creates one object aimed at a random member and tells only that
// member about it. Caller must hold room.mu.
func (e *fruitNinjaEngine) spawnCube(room *Room) {
	if len(room.Members) == 0 {
		return
	}
	target := room.Members[rand.Intn(len(room.Members))]

	cube := &Cube{
		ID:           room.Arena.NextCubeID,
		X:            rand.Float64()*8 - 4,
		Y:            -6,
		XD:           rand.Float64()*0.1 - 0.05,
		YD:           0.08 + rand.Float64()*0.06,
		Color:        cubeColors[rand.Intn(len(cubeColors))],
		Health:       1 + rand.Intn(3),
		Wireframe:    rand.Float64() < slowmoChance,
		TargetPlayer: target,
	}
	if until, slowed := room.Arena.SlowmoUntil[target]; slowed && time.Now().Before(until) {
		cube.XD *= 0.5
		cube.YD *= 0.5
	}
	room.Arena.NextCubeID++
	room.Arena.SpawnTick++
	room.Arena.Cubes[cube.ID] = cube

	e.s.sendTo(target, "fn_spawn", FnSpawnPayload{Cube: *cube})
}

func (e *fruitNinjaEngine) handleHit(room *Room, p *Player, cubeID int) {
	cube, ok := room.Arena.Cubes[cubeID]
	if !ok || cube.TargetPlayer != p.ID {
		return
	}
	cube.Health--
	destroyed := cube.Health <= 0
	points := cubeHitPoints
	if destroyed {
		points = cubeDestroyPoints
		delete(room.Arena.Cubes, cubeID)
	}
	room.Arena.Scores[p.ID] += points
	p.Score += points
	p.RoundScore += points

	e.s.broadcast(room, "fn_hit", FnHitPayload{
		SlicedBy:  p.ID,
		CubeID:    cubeID,
		Destroyed: destroyed,
		NewHealth: cube.Health,
		Points:    points,
	})
	if destroyed && cube.Wireframe {
		room.Arena.SlowmoUntil[p.ID] = time.Now().Add(slowmoDuration)
		e.s.broadcast(room, "fn_slowmo", FnSlowmoPayload{Player: p.ID, Active: true})
	}
	e.broadcastStatus(room)
}

func (e *fruitNinjaEngine) handleMiss(room *Room, p *Player, cubeID int) {
	cube, ok := room.Arena.Cubes[cubeID]
	if !ok || cube.TargetPlayer != p.ID {
		return
	}
	delete(room.Arena.Cubes, cubeID)
	room.Arena.Lives[p.ID]--
	lives := room.Arena.Lives[p.ID]

	e.s.broadcast(room, "fn_miss", FnMissPayload{Player: p.ID, CubeID: cubeID, Lives: lives})
	e.broadcastStatus(room)

	if lives <= 0 {
		e.s.systemChat(room, fmt.Sprintf("%s is out of lives!", p.Username))
		e.finishRound(room)
	}
}

// expireSlowmo clears any elapsed slow-motion windows on the countdown tick.
func (e *fruitNinjaEngine) expireSlowmo(room *Room) {
	now := time.Now()
	for id, until := range room.Arena.SlowmoUntil {
		if now.Before(until) {
			continue
		}
		delete(room.Arena.SlowmoUntil, id)
		e.s.broadcast(room, "fn_slowmo", FnSlowmoPayload{Player: id, Active: false})
	}
}

// finishRound settles one arena round: higher score takes the series point, a
// tie takes nothing. Caller must hold room.mu.
func (e *fruitNinjaEngine) finishRound(room *Room) {
	if room.Phase != PhasePlaying {
		return
	}
	room.timers.cancelAll()
	room.Phase = PhaseRoundEnd
	room.Arena.Cubes = make(map[int]*Cube)

	winnerID := ""
	best, tie := -1, false
	for _, id := range room.Members {
		score := room.Arena.Scores[id]
		switch {
		case score > best:
			best, tie, winnerID = score, false, id
		case score == best:
			tie = true
		}
	}
	if tie {
		winnerID = ""
	}
	if winnerID != "" {
		room.Arena.SeriesWins[winnerID]++
	}

	e.s.broadcast(room, "fn_round_result", FnRoundResultPayload{
		Scores:    copyCounts(room.Arena.Scores),
		RoundWins: copyCounts(room.Arena.SeriesWins),
		Winner:    winnerID,
	})
	e.s.broadcastPlayerList(room)
	log.Printf("Room %s fruitninja round %d winner: %q", room.Code, room.Round, winnerID)

	seriesOver := winnerID != "" && room.Arena.SeriesWins[winnerID] >= room.Config.SeriesTarget
	room.timers.scheduleAfter(room.Config.RoundEndDelay, func(gen uint64) {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || !room.timers.delayAlive(gen) || room.Phase != PhaseRoundEnd {
			return
		}
		if seriesOver {
			e.s.endGame(room)
			return
		}
		e.s.beginTurn(room)
	})
}

func (e *fruitNinjaEngine) broadcastStatus(room *Room) {
	e.s.broadcast(room, "fn_status", FnStatusPayload{
		Scores: copyCounts(room.Arena.Scores),
		Lives:  copyCounts(room.Arena.Lives),
	})
}

// copyCounts snapshots a tally so later mutation cannot race the send.
func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
