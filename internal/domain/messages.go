package domain

const (
	MessageTypeInit         = "init"
	MessageTypeSelectColumn = "select_column"
	MessageTypeRestart      = "restart"
	MessageTypeState        = "state"
	MessageTypeError        = "error"
)

// ClientMessage is a frame received from the browser.
type ClientMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	Column *int   `json:"column,omitempty"`
}

// ServerMessage is a frame pushed to the browser.
type ServerMessage struct {
	Type      string    `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	Message   string    `json:"message,omitempty"`
	State     *Snapshot `json:"state,omitempty"`
}
