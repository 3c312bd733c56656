package ws

// OutgoingMessage is the envelope pushed to connected clients.
type OutgoingMessage struct {
	Event   string      `json:"event"`
	TableID string      `json:"tableId,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// IncomingMessage is what a client may send over the socket. Game actions
// arrive here as well as over the REST surface.
type IncomingMessage struct {
	From    string `json:"-"`
	Event   string `json:"event"`
	TableID string `json:"tableId"`
	Action  string `json:"action,omitempty"`
	Amount  int    `json:"amount,omitempty"`
}
