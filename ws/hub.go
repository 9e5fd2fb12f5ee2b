package ws

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/pkg/events"
)

// Client is one dashboard connection.
type Client struct {
	Conn *websocket.Conn
	Role string
	Send chan []byte
}

type message struct {
	payload []byte
	roles   map[string]bool
}

// Hub owns the connected clients. All map access happens inside Run.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled. Once it returns, Publish,
// register and unregister calls no longer block.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.log.Debug().Str("role", client.Role).Int("clients", len(h.clients)).Msg("ws client registered")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !msg.roles[client.Role] && client.Role != models.RoleManager {
					continue
				}
				select {
				case client.Send <- msg.payload:
				default:
					// slow consumer
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish implements events.Publisher. Each event goes to the stations that act on it.
func (h *Hub) Publish(ctx context.Context, evt events.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.log.Error().Err(err).Str("event", evt.Type).Msg("encode ws event")
		return
	}
	roles := make(map[string]bool)
	for _, r := range audience(evt.Type) {
		roles[r] = true
	}
	select {
	case h.broadcast <- message{payload: payload, roles: roles}:
	case <-ctx.Done():
	case <-h.done:
	}
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func audience(eventType string) []string {
	switch eventType {
	case events.VisitStatusChanged:
		return []string{models.RoleNurse, models.RoleDoctor}
	case events.LabOrdered, events.PrescriptionOrdered, events.BillCreated:
		return []string{models.RoleCashier}
	case events.LabPaid, events.LabCompleted:
		return []string{models.RoleLabTech, models.RoleDoctor}
	case events.PrescriptionPaid, events.PrescriptionDispense, events.StockAlert:
		return []string{models.RolePharmacist}
	case events.BillPaymentRecorded:
		return []string{models.RoleCashier}
	case events.PatientAdmitted, events.PatientDischarged:
		return []string{models.RoleNurse, models.RoleDoctor, models.RoleCashier}
	}
	return nil
}
