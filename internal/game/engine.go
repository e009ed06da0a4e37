package game

// ActionKind discriminates the in-round player actions after transport
// decoding. Each engine handles the kinds it knows and rejects the rest.
type ActionKind int

const (
	ActionGuess ActionKind = iota
	ActionGuessLetter
	ActionBoardMove
	ActionObjectHit
	ActionObjectMiss
)

// Action is the closed variant passed to Engine.HandleAction.
type Action struct {
	Kind     ActionKind
	Text     string // ActionGuess
	Letter   string // ActionGuessLetter
	Cell     int    // ActionBoardMove
	ObjectID int    // ActionObjectHit / ActionObjectMiss
}

// Engine is the per-mode rule set, chosen once at room creation. Every method
// is called with the room lock held.
type Engine interface {
	// StartRound sets up mode sub-state for the turn that beginTurn just
	// advanced to, and starts whatever countdown the mode needs.
	StartRound(room *Room)

	// SelectSecret handles the active player's word pick in word modes.
	SelectSecret(room *Room, p *Player, word string) error

	// HandleAction applies one in-round action from p.
	HandleAction(room *Room, p *Player, act Action) error

	// HandleActiveDisconnect reacts to a member leaving mid-round, after
	// membership has been updated. p.IsActive still reflects the role the
	// leaver held.
	HandleActiveDisconnect(room *Room, p *Player)
}

func (s *Service) engineFor(t GameType) Engine {
	switch t {
	case TypeHangman:
		return &hangmanEngine{s: s}
	case TypeTicTacToe:
		return &tictactoeEngine{s: s}
	case TypeFruitNinja:
		return &fruitNinjaEngine{s: s}
	default:
		return &doodleEngine{s: s}
	}
}
