package server

// ============================================================================
// ERROR RESPONSES
// ============================================================================
// tygo:generate
type ErrorMessage struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ============================================================================
// CONNECTED (sent once after the socket opens)
// ============================================================================
// tygo:generate
type ConnectedPayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// ============================================================================
// CREATE ROOM (create_room)
// ============================================================================
// tygo:generate
type CreateRoomRequest struct {
	GameType string `json:"gameType"`
}

// ============================================================================
// JOIN ROOM (join_room)
// ============================================================================
// tygo:generate
type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

// ============================================================================
// SELECT WORD (select_word)
// ============================================================================
// tygo:generate
type SelectWordRequest struct {
	Word string `json:"word"`
}

// ============================================================================
// GUESS (guess)
// ============================================================================
// tygo:generate
type GuessRequest struct {
	Text string `json:"text"`
}

// ============================================================================
// GUESS LETTER (guess_letter)
// ============================================================================
// tygo:generate
type GuessLetterRequest struct {
	Letter string `json:"letter"`
}

// ============================================================================
// BOARD MOVE (ttt_move)
// ============================================================================
// tygo:generate
type TttMoveRequest struct {
	Cell int `json:"cell"`
}

// ============================================================================
// REFLEX SLICE / MISS (fn_slice, fn_miss)
// ============================================================================
// tygo:generate
type FnSliceRequest struct {
	CubeID int `json:"cubeId"`
}

// tygo:generate
type FnMissRequest struct {
	CubeID int `json:"cubeId"`
}
