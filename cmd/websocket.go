package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"finvoiceBack/internal/models"
	"finvoiceBack/internal/services"
)

// eventHub fans proposal events out to connected clients. Events arrive
// over the Redis channel the notification service publishes to, so every
// instance behind a load balancer sees them.
type eventHub struct {
	clients    map[int]map[*websocket.Conn]struct{}
	register   chan hubClient
	unregister chan hubClient
	events     chan models.NotificationEvent
}

type hubClient struct {
	userID int
	conn   *websocket.Conn
}

func newEventHub() *eventHub {
	return &eventHub{
		clients:    make(map[int]map[*websocket.Conn]struct{}),
		register:   make(chan hubClient),
		unregister: make(chan hubClient),
		events:     make(chan models.NotificationEvent, 64),
	}
}

func (h *eventHub) run() {
	for {
		select {
		case client := <-h.register:
			conns := h.clients[client.userID]
			if conns == nil {
				conns = make(map[*websocket.Conn]struct{})
				h.clients[client.userID] = conns
			}
			conns[client.conn] = struct{}{}
		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client.conn]; ok {
					client.conn.Close()
					delete(conns, client.conn)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

// deliver sends the event to its target users, or to everyone when no
// targets are set.
func (h *eventHub) deliver(event models.NotificationEvent) {
	if len(event.UserIDs) == 0 {
		for userID, conns := range h.clients {
			for conn := range conns {
				if err := conn.WriteJSON(event); err != nil {
					conn.Close()
					delete(conns, conn)
				}
			}
			if len(conns) == 0 {
				delete(h.clients, userID)
			}
		}
		return
	}
	for _, userID := range event.UserIDs {
		conns, ok := h.clients[userID]
		if !ok {
			continue
		}
		for conn := range conns {
			if err := conn.WriteJSON(event); err != nil {
				conn.Close()
				delete(conns, conn)
			}
		}
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// subscribe pipes Redis pub/sub messages into the hub until ctx is done.
func (h *eventHub) subscribe(ctx context.Context, rdb *redis.Client, errorLog *log.Logger) {
	sub := rdb.Subscribe(ctx, services.EventChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var event models.NotificationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				errorLog.Printf("event hub: bad event payload: %v", err)
				continue
			}
			h.events <- event
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("websocket upgrade error: %v", err)
		return
	}

	client := hubClient{userID: userID, conn: conn}
	app.eventHub.register <- client

	go func() {
		defer func() {
			app.eventHub.unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
