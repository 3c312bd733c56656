package ws

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// Gateway is the slice of the table registry the hub needs: who to fan out
// to, what each viewer may see, and the liveness signals.
type Gateway interface {
	Members(tableID string) []string
	SnapshotFor(tableID, viewerID string) (models.Table, error)
	Disconnected(playerID string)
	Reconnected(playerID string)
}

// Hub owns every live connection and serializes register, unregister and
// outbound sends through its run loop.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	sendOne    chan sendReq
	incoming   chan IncomingMessage
	quit       chan struct{}
	gateway    Gateway
	logger     *log.Logger

	// OnIncoming handles client-originated messages, typically by
	// dispatching actions to the registry. Errors go back only to the
	// sender, never to the table.
	OnIncoming func(msg IncomingMessage)

	mu sync.RWMutex
}

type sendReq struct {
	playerID string
	message  OutgoingMessage
}

func NewHub(gateway Gateway, logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sendOne:    make(chan sendReq, 64),
		incoming:   make(chan IncomingMessage, 64),
		quit:       make(chan struct{}),
		gateway:    gateway,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.PlayerID]; ok {
				close(old.Send)
			}
			h.clients[c.PlayerID] = c
			h.mu.Unlock()
			h.logger.Info("client connected", "player", c.PlayerID)
			h.gateway.Reconnected(c.PlayerID)

		case c := <-h.unregister:
			h.mu.Lock()
			current, ok := h.clients[c.PlayerID]
			if ok && current == c {
				delete(h.clients, c.PlayerID)
				close(c.Send)
			}
			h.mu.Unlock()
			if ok && current == c {
				h.logger.Info("client disconnected", "player", c.PlayerID)
				h.gateway.Disconnected(c.PlayerID)
			}

		case req := <-h.sendOne:
			h.mu.RLock()
			client, ok := h.clients[req.playerID]
			h.mu.RUnlock()
			if ok {
				select {
				case client.Send <- req.message:
				default:
					// slow consumer, drop rather than stall the hub
				}
			}

		case msg := <-h.incoming:
			if h.OnIncoming != nil {
				h.OnIncoming(msg)
			}

		case <-h.quit:
			h.mu.Lock()
			for _, c := range h.clients {
				close(c.Send)
			}
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			return
		}
	}
}

// PumpEvents consumes the registry's outbound stream. State-changed
// notifications fan out as per-viewer redacted snapshots; everything else is
// forwarded to the table's members as-is.
func (h *Hub) PumpEvents(events <-chan models.Event) {
	for event := range events {
		members := h.gateway.Members(event.TableID)
		if event.Event == "gameState" {
			for _, playerID := range members {
				snapshot, err := h.gateway.SnapshotFor(event.TableID, playerID)
				if err != nil {
					continue
				}
				h.SendToPlayer(playerID, OutgoingMessage{
					Event:   "gameState",
					TableID: event.TableID,
					Data:    snapshot,
				})
			}
			continue
		}
		for _, playerID := range members {
			h.SendToPlayer(playerID, OutgoingMessage{
				Event:   event.Event,
				TableID: event.TableID,
				Data:    event.Data,
			})
		}
	}
}

func (h *Hub) SendToPlayer(playerID string, msg OutgoingMessage) {
	select {
	case h.sendOne <- sendReq{playerID: playerID, message: msg}:
	case <-h.quit:
	}
}

func (h *Hub) Register(c *Client) {
	h.register <- c
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	close(h.quit)
}
