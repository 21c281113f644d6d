package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// GlobalHub is the singleton SSE Hub instance
var GlobalHub = NewHub()

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// SendToUser 给特定用户的所有连接发送事件
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Events <- event:
			default:
				log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
			}
		}
	}
}

// PublishNotification 给目标用户推送新通知事件
func PublishNotification(userID, notificationID, ntype string) {
	data := fmt.Sprintf(`{"notification_id":"%s","type":"%s"}`, notificationID, ntype)
	GlobalHub.SendToUser(userID, Event{
		EventType: "notification",
		Data:      data,
	})
}

// PublishProjectUpdate 项目级别更新（进度、排期变化），广播给所有连接
func PublishProjectUpdate(projectID, action string) {
	data := fmt.Sprintf(`{"project_id":"%s","action":"%s"}`, projectID, action)
	GlobalHub.mu.RLock()
	defer GlobalHub.mu.RUnlock()
	for _, client := range GlobalHub.clients {
		select {
		case client.Events <- Event{EventType: "project_update", Data: data}:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}
