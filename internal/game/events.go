package game

// Outbound payload shapes. Field names are the client contract and must stay
// stable.

type PlayerInfo struct {
	SocketID   string `json:"socketId"`
	Username   string `json:"username"`
	Score      int    `json:"score"`
	IsHost     bool   `json:"isHost"`
	IsDrawing  bool   `json:"isDrawing"`
	HasGuessed bool   `json:"hasGuessed"`
	CanGuess   bool   `json:"canGuess"`
	Avatar     string `json:"avatar,omitempty"`
}

type LeaderboardEntry struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar,omitempty"`
	Score      int    `json:"score"`
	RoundScore int    `json:"roundScore"`
}

type RoomCreatedPayload struct {
	RoomID   string   `json:"roomId"`
	GameType GameType `json:"gameType"`
}

type RoomJoinedPayload struct {
	RoomID   string       `json:"roomId"`
	GameType GameType     `json:"gameType"`
	Players  []PlayerInfo `json:"players"`
}

type RoomErrorPayload struct {
	Message string `json:"message"`
}

type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

type PlayerLeftPayload struct {
	Player  PlayerInfo `json:"player"`
	NewHost string     `json:"newHost,omitempty"`
}

type PlayerListPayload struct {
	Players []PlayerInfo `json:"players"`
}

type ChatMessagePayload struct {
	Player   string `json:"player"`
	Text     string `json:"text"`
	IsSystem bool   `json:"isSystem,omitempty"`
}

type GameStartingPayload struct {
	TotalRounds int `json:"totalRounds"`
}

type PickWordPayload struct {
	Words []string `json:"words"`
}

type YouAreDrawingPayload struct {
	Word string `json:"word"`
}

type WordHintPayload struct {
	Hint string `json:"hint"`
}

type RoundStartPayload struct {
	Round       int    `json:"round"`
	TotalRounds int    `json:"totalRounds"`
	Drawer      string `json:"drawer,omitempty"`
	WordLength  int    `json:"wordLength"`
	TotalTurns  int    `json:"totalTurns"`
	CurrentTurn int    `json:"currentTurn"`
}

type TimerUpdatePayload struct {
	TimeLeft int `json:"timeLeft"`
}

type CorrectGuessPayload struct {
	Player     string `json:"player"`
	Score      int    `json:"score"`
	TotalScore int    `json:"totalScore"`
}

type CloseGuessPayload struct {
	Text string `json:"text"`
}

type RoundEndPayload struct {
	Word        string             `json:"word"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type GameEndPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Winner      string             `json:"winner"`
}

type HangmanUpdatePayload struct {
	RevealedWord    []string `json:"revealedWord"`
	WrongGuesses    int      `json:"wrongGuesses"`
	GuessedLetters  []string `json:"guessedLetters"`
	MaxWrongGuesses int      `json:"maxWrongGuesses"`
}

type BoardMovePayload struct {
	Cell   int    `json:"cell"`
	Mark   string `json:"mark"`
	Player string `json:"player"`
}

type TttUpdatePayload struct {
	Board       []string          `json:"board"`
	CurrentMark string            `json:"currentMark"`
	PlayerX     string            `json:"playerX"`
	PlayerO     string            `json:"playerO"`
	PlayerXName string            `json:"playerXName"`
	PlayerOName string            `json:"playerOName"`
	LastMove    *BoardMovePayload `json:"lastMove,omitempty"`
}

type TttRoundResultPayload struct {
	Result    string         `json:"result"` // "X", "O" or "draw"
	WinLine   []int          `json:"winLine"`
	Board     []string       `json:"board"`
	RoundWins map[string]int `json:"roundWins"` // keyed "X"/"O"
}

// The reflex-mode payloads identify players by connection id throughout; the
// client filters and indexes everything on its own socket id.

type FnSpawnPayload struct {
	Cube Cube `json:"cube"`
}

type FnHitPayload struct {
	SlicedBy  string `json:"slicedBy"`
	CubeID    int    `json:"cubeId"`
	Destroyed bool   `json:"destroyed"`
	NewHealth int    `json:"newHealth"`
	Points    int    `json:"points"`
}

type FnMissPayload struct {
	Player string `json:"player"`
	CubeID int    `json:"cubeId"`
	Lives  int    `json:"lives"`
}

type FnSlowmoPayload struct {
	Player string `json:"player"`
	Active bool   `json:"active"`
}

type FnStatusPayload struct {
	Scores map[string]int `json:"scores"`
	Lives  map[string]int `json:"lives"`
}

type FnRoundResultPayload struct {
	Scores    map[string]int `json:"scores"`
	RoundWins map[string]int `json:"roundWins"`
	Winner    string         `json:"winner,omitempty"`
}
