package bulk

import (
	"encoding/json"
	"fmt"
)

// ErrorCause is the structured error of a failed bulk item.
type ErrorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ItemResult is the engine's outcome for one bulk operation.
type ItemResult struct {
	Index   string      `json:"_index"`
	ID      string      `json:"_id"`
	Routing string      `json:"_routing,omitempty"`
	Status  int         `json:"status"`
	Result  string      `json:"result,omitempty"`
	Error   *ErrorCause `json:"error,omitempty"`
}

// Failed reports whether the item carries an error object.
func (r ItemResult) Failed() bool { return r.Error != nil }

// Response is a raw bulk response. Each item maps the action name to its result.
type Response struct {
	Took   int                     `json:"took"`
	Errors bool                    `json:"errors"`
	Items  []map[string]ItemResult `json:"items"`
}

type envelope struct {
	Took   int             `json:"took"`
	Errors bool            `json:"errors"`
	Items  json.RawMessage `json:"items"`
}

// ParseResponse decodes a raw bulk response body. Items are decoded only when the errors
// flag is set, so a successful response is accepted whatever its items look like.
func ParseResponse(data []byte) (*Response, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}
	resp := &Response{Took: env.Took, Errors: env.Errors}
	if !env.Errors || len(env.Items) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(env.Items, &resp.Items); err != nil {
		return nil, fmt.Errorf("decode bulk items: %w", err)
	}
	return resp, nil
}
