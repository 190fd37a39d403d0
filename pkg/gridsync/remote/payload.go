package remote

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

var errNotObject = errors.New("payload is not an object")

// Payload is the argument handed to a read callback.
type Payload struct {
	// Columns is the ordered list of column names.
	Columns []string `json:"columns"`
	// Rows holds raw cell values; numbers decode as json.Number.
	Rows [][]any `json:"rows"`
	// Error is set when the backend refused the read.
	Error string `json:"error,omitempty"`
}

// Err promotes a backend-reported error to a *RemoteError.
func (p *Payload) Err() error {
	if p.Error == "" {
		return nil
	}
	return &RemoteError{Op: "get", Message: p.Error}
}

// UpdateRequest is the body of a write.
type UpdateRequest struct {
	Action  string            `json:"action"`
	Columns []string          `json:"columns"`
	Rows    [][]values.Scalar `json:"rows"`
}

type updateResponse struct {
	Error string `json:"error,omitempty"`
}

// decodePayload accepts only a JSON object; null, arrays and scalars are rejected.
func decodePayload(raw []byte) (*Payload, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
