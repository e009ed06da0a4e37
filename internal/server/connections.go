package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/coder/websocket"
)

// ConnectionManager tracks live sockets by connection id and implements the
// game package's Sender so the core never touches a websocket directly.
type ConnectionManager struct {
	connections map[string]*websocket.Conn // connectionID → socket
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, id)
}

// GetConnection returns the socket for a connection id
func (cm *ConnectionManager) GetConnection(id string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[id]
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// Send delivers one event to one connection. A missing or dead connection is
// logged and swallowed; the game core never handles delivery failures.
func (cm *ConnectionManager) Send(connID string, event string, payload any) {
	conn := cm.GetConnection(connID)
	if conn == nil {
		return
	}

	data, err := json.Marshal(ServerMessage{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal %s for %s: %v", event, connID, err)
		return
	}

	// Use background context for broadcasts
	if err := conn.Write(context.Background(), websocket.MessageText, data); err != nil {
		log.Printf("Failed to send %s to %s: %v", event, connID, err)
	}
}
