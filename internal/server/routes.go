package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"partyhub-server/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/", s.rootHandler)

	mux.HandleFunc("/health", s.healthHandler)

	mux.HandleFunc("/websocket", s.websocketHandler)

	// Wrap the mux with CORS middleware
	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Replace "*" with specific origins if needed
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"message": "partyhub server"}
	jsonResp, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(jsonResp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := json.Marshal(s.db.Health())
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: make environment-specific
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	log.Printf("New connection: %s", connectionID)
	s.connectionManager.AddConnection(connectionID, socket)

	// Identity comes from the auth layer in front of us via query params.
	// Without it the connection plays as a guest.
	userID := r.URL.Query().Get("userId")
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	avatar := r.URL.Query().Get("avatar")
	if username == "" {
		username = fmt.Sprintf("Guest-%s", strings.ToUpper(connectionID[:4]))
	}
	s.games.RegisterPlayer(connectionID, userID, username, avatar)

	defer func() {
		s.games.Disconnect(connectionID)
		s.connectionManager.RemoveConnection(connectionID)
		log.Printf("Connection closed: %s", connectionID)
	}()

	// Greet before the read loop so the client learns its socket id.
	s.sendMessage(socket, ctx, ServerMessage{
		Type: "connected",
		Payload: ConnectedPayload{
			SocketID: connectionID,
			Username: username,
			Avatar:   avatar,
		},
	})

	for {
		// Read from client
		msgType, data, err := socket.Read(ctx)

		if err != nil {
			log.Printf("Connection %s read error: %v", connectionID, err)
			return
		}

		if msgType != websocket.MessageText {
			log.Printf("Non-text input from %s", connectionID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Invalid JSON from %s: %v", connectionID, err)
			s.sendError(socket, ctx, "Invalid JSON")
			continue
		}

		// Route the message
		switch msg.Type {
		case "ping":
			s.handlePing(socket, ctx, connectionID)

		case "create_room":
			s.handleCreateRoom(socket, ctx, connectionID, msg.Payload)

		case "join_room":
			s.handleJoinRoom(socket, ctx, connectionID, msg.Payload)

		case "leave_room":
			s.games.LeaveRoom(connectionID)

		case "start_game":
			if err := s.games.StartGame(connectionID); err != nil {
				s.sendRoomError(socket, ctx, err)
			}

		case "select_word":
			s.handleSelectWord(socket, ctx, connectionID, msg.Payload)

		case "guess":
			s.handleGuess(socket, ctx, connectionID, msg.Payload)

		case "guess_letter":
			s.handleGuessLetter(socket, ctx, connectionID, msg.Payload)

		case "ttt_move":
			s.handleTttMove(socket, ctx, connectionID, msg.Payload)

		case "fn_slice":
			s.handleFnSlice(socket, ctx, connectionID, msg.Payload)

		case "fn_miss":
			s.handleFnMiss(socket, ctx, connectionID, msg.Payload)

		case "draw":
			// Canvas traffic is an opaque relay; the server never parses it.
			s.games.RelayDraw(connectionID, "draw", msg.Payload)

		case "clear_canvas":
			s.games.RelayDraw(connectionID, "clear_canvas", struct{}{})

		case "play_again":
			if err := s.games.PlayAgain(connectionID); err != nil {
				s.sendRoomError(socket, ctx, err)
			}

		default:
			log.Printf("Unknown message type '%s' from %s", msg.Type, connectionID)
			s.sendError(socket, ctx, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func (s *Server) handlePing(socket *websocket.Conn, ctx context.Context, connectionID string) {
	response := ServerMessage{
		Type:    "pong",
		Payload: struct{}{},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send pong to %s: %v", connectionID, err)
	}
}

func (s *Server) handleCreateRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req CreateRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid create_room payload")
		return
	}

	if err := s.games.CreateRoom(connectionID, game.GameType(req.GameType)); err != nil {
		s.sendRoomError(socket, ctx, err)
	}
}

func (s *Server) handleJoinRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid join_room payload")
		return
	}

	// Codes are entered by hand; be forgiving about case and spacing.
	code := strings.ToUpper(strings.TrimSpace(req.RoomID))
	if err := s.games.JoinRoom(connectionID, code); err != nil {
		s.sendRoomError(socket, ctx, err)
	}
}

func (s *Server) handleSelectWord(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req SelectWordRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid select_word payload")
		return
	}

	if err := s.games.SelectWord(connectionID, req.Word); err != nil {
		s.sendError(socket, ctx, err.Error())
	}
}

func (s *Server) handleGuess(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req GuessRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid guess payload")
		return
	}

	if err := s.games.HandleAction(connectionID, game.Action{Kind: game.ActionGuess, Text: req.Text}); err != nil {
		s.sendError(socket, ctx, err.Error())
	}
}

func (s *Server) handleGuessLetter(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req GuessLetterRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid guess_letter payload")
		return
	}

	if err := s.games.HandleAction(connectionID, game.Action{Kind: game.ActionGuessLetter, Letter: req.Letter}); err != nil {
		s.sendError(socket, ctx, err.Error())
	}
}

func (s *Server) handleTttMove(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req TttMoveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid ttt_move payload")
		return
	}

	if err := s.games.HandleAction(connectionID, game.Action{Kind: game.ActionBoardMove, Cell: req.Cell}); err != nil {
		s.sendError(socket, ctx, err.Error())
	}
}

func (s *Server) handleFnSlice(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req FnSliceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid fn_slice payload")
		return
	}

	if err := s.games.HandleAction(connectionID, game.Action{Kind: game.ActionObjectHit, ObjectID: req.CubeID}); err != nil {
		s.sendError(socket, ctx, err.Error())
	}
}

func (s *Server) handleFnMiss(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req FnMissRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "Invalid fn_miss payload")
		return
	}

	if err := s.games.HandleAction(connectionID, game.Action{Kind: game.ActionObjectMiss, ObjectID: req.CubeID}); err != nil {
		s.sendError(socket, ctx, err.Error())
	}
}

func (s *Server) sendMessage(socket *websocket.Conn, ctx context.Context, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	return socket.Write(ctx, websocket.MessageText, data)
}

func (s *Server) sendError(socket *websocket.Conn, ctx context.Context, msg string) {
	response := ServerMessage{
		Type: "error",
		Payload: ErrorMessage{
			Message: msg,
		},
	}

	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send error message: %v", err)
	}
}

// sendRoomError reports lobby-level failures on the room_error channel the
// client renders inside the join screen.
func (s *Server) sendRoomError(socket *websocket.Conn, ctx context.Context, err error) {
	response := ServerMessage{
		Type:    "room_error",
		Payload: game.RoomErrorPayload{Message: err.Error()},
	}

	if sendErr := s.sendMessage(socket, ctx, response); sendErr != nil {
		log.Printf("Failed to send room error: %v", sendErr)
	}
}
