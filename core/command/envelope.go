package command

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the command message carried in a record body.
type Envelope struct {
	// Command is the dispatch key, e.g. "/echo".
	Command       string `json:"command"`
	CorrelationID string `json:"correlationId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
	// Text is the argument payload typed after the command.
	Text string `json:"text,omitempty"`
	// APIGatewayStartTime marks when the request first entered the system,
	// in epoch milliseconds. Zero means unknown.
	APIGatewayStartTime int64 `json:"apiGatewayStartTime,omitempty"`
}

// GatewayStart returns the end-to-end start time and whether it was set.
func (e Envelope) GatewayStart() (time.Time, bool) {
	if e.APIGatewayStartTime == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(e.APIGatewayStartTime), true
}

// Decode parses a record body into an Envelope. Decoding is total: either the
// body yields an envelope with a non-empty command or a DecodeError is
// returned. There is no partial decode with defaults.
func Decode(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, &DecodeError{Err: err}
	}
	if env.Command == "" {
		return Envelope{}, &DecodeError{Err: fmt.Errorf("missing required field %q", "command")}
	}
	return env, nil
}
