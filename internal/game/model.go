package game

import (
	"sync"
	"time"
)

type GameType string

const (
	TypeDoodle     GameType = "doodle"
	TypeHangman    GameType = "hangman"
	TypeTicTacToe  GameType = "tictactoe"
	TypeFruitNinja GameType = "fruitninja"
)

func ValidGameType(t GameType) bool {
	switch t {
	case TypeDoodle, TypeHangman, TypeTicTacToe, TypeFruitNinja:
		return true
	}
	return false
}

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseStarting Phase = "starting"
	PhasePicking  Phase = "picking"
	PhasePlaying  Phase = "playing"
	PhaseRoundEnd Phase = "round_end"
	PhaseGameEnd  Phase = "game_end"
)

// Config holds per-mode tuning. RoundTime doubles as the per-move clock for
// tictactoe, where there is no whole-round countdown.
type Config struct {
	MaxPlayers      int
	MinPlayers      int
	TotalRounds     int
	RoundTime       int // seconds
	PickTime        int // seconds, word modes only
	RoundEndDelay   time.Duration
	StartDelay      time.Duration
	EarlyEndDelay   time.Duration
	WordChoices     int
	GuessRateLimit  time.Duration
	DrawerBonus     int
	MaxWrongGuesses int // hangman
	SeriesTarget    int // tictactoe / fruitninja: round wins needed
	StartLives      int // fruitninja
}

func ConfigFor(t GameType) Config {
	base := Config{
		MaxPlayers:     8,
		MinPlayers:     2,
		TotalRounds:    3,
		RoundTime:      60,
		PickTime:       30,
		RoundEndDelay:  5 * time.Second,
		StartDelay:     1500 * time.Millisecond,
		EarlyEndDelay:  time.Second,
		WordChoices:    3,
		GuessRateLimit: 500 * time.Millisecond,
		DrawerBonus:    10,
	}

	switch t {
	case TypeHangman:
		base.RoundTime = 90
		base.MaxWrongGuesses = 6
	case TypeTicTacToe:
		base.MaxPlayers = 2
		base.RoundTime = 20 // per move
		base.SeriesTarget = 2
	case TypeFruitNinja:
		base.MaxPlayers = 2
		base.SeriesTarget = 2
		base.StartLives = 3
	}
	return base
}

// Player is the per-connection state. Identity fields come from the auth
// collaborator at connect time; everything else is transient per room.
type Player struct {
	ID       string // connection id
	UserID   string // stable external id, may be empty for guests
	Username string
	Avatar   string

	RoomCode       string
	Score          int
	RoundScore     int // points gained in the current turn, for round_end
	IsActive       bool // drawing / word-setting / "your turn"
	HasAnswered    bool
	CanParticipate bool // false for a mid-round joiner until the next turn starts
	LastGuessAt    time.Time
	JoinedAt       time.Time
}

// RevealState is shared by the word modes: the per-character mask plus the
// doodle reveal schedule and the hangman wrong-guess bookkeeping.
type RevealState struct {
	Mask           []string      // "" = hidden, otherwise the revealed char
	Schedule       map[int][]int // remaining seconds -> char indices to reveal
	GuessedLetters []string
	WrongGuesses   int
}

// BoardState is the tictactoe sub-state.
type BoardState struct {
	Cells       [9]string
	CurrentMark string
	PlayerX     string // connection ids
	PlayerO     string
	SeriesWins  map[string]int // keyed by connection id
	LastMove    *BoardMovePayload
}

// Cube is one live reflex-game object, server-authoritative. The client
// filters spawns on TargetPlayer, so it rides the wire with the rest.
type Cube struct {
	ID           int     `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	XD           float64 `json:"xD"`
	YD           float64 `json:"yD"`
	Color        string  `json:"color"`
	Health       int     `json:"health"`
	Wireframe    bool    `json:"wireframe"`
	TargetPlayer string  `json:"targetPlayer"` // connection id
}

// ArenaState is the fruitninja sub-state.
type ArenaState struct {
	Scores      map[string]int // per round, keyed by connection id
	Lives       map[string]int
	SeriesWins  map[string]int
	Cubes       map[int]*Cube
	NextCubeID  int
	SlowmoUntil map[string]time.Time
	SpawnTick   int // spawns so far this round, drives interval shrink
}

// Room is one live session. All fields are guarded by mu; every entry point
// (player action, timer callback, disconnect) locks the room first, which is
// what serializes mutation per room.
type Room struct {
	Code     string
	GameType GameType
	Config   Config

	HostID  string
	Members []string // connection ids in join order

	Phase       Phase
	Round       int
	TurnOrder   []string
	TurnIndex   int
	Word        string
	WordChoices []string
	TimeLeft    int

	Reveal RevealState
	Board  BoardState
	Arena  ArenaState

	engine Engine
	timers roomTimers
	closed bool // set on deletion; stale callbacks check it

	mu sync.Mutex
}

func (r *Room) memberIndex(id string) int {
	for i, m := range r.Members {
		if m == id {
			return i
		}
	}
	return -1
}

func (r *Room) removeMember(id string) {
	if i := r.memberIndex(id); i >= 0 {
		r.Members = append(r.Members[:i], r.Members[i+1:]...)
	}
	for i, m := range r.TurnOrder {
		if m == id {
			r.TurnOrder = append(r.TurnOrder[:i], r.TurnOrder[i+1:]...)
			// TurnIndex points at the next holder; keep it pointing there.
			if i < r.TurnIndex {
				r.TurnIndex--
			}
			break
		}
	}
}
