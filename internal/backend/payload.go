package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/tileboard/internal/state"
)

// wirePayload is the canonical state message body.
type wirePayload struct {
	Val any   `json:"val"`
	TS  int64 `json:"ts,omitempty"`
}

// DecodePayload parses a state message body. nowMs stamps payloads that
// carry no timestamp of their own.
func DecodePayload(payload []byte, nowMs int64) (state.DataPointState, error) {
	body := bytes.TrimSpace(payload)
	if len(body) == 0 {
		return state.DataPointState{}, ErrEmptyPayload
	}

	if body[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return state.DataPointState{}, fmt.Errorf("decoding payload: %w", err)
		}
		raw, ok := fields["val"]
		if !ok {
			return state.DataPointState{}, ErrInvalidPayload
		}

		var st state.DataPointState
		if err := json.Unmarshal(raw, &st.Value); err != nil {
			return state.DataPointState{}, fmt.Errorf("decoding val: %w", err)
		}
		if rawTS, ok := fields["ts"]; ok {
			if err := json.Unmarshal(rawTS, &st.Timestamp); err != nil {
				return state.DataPointState{}, fmt.Errorf("decoding ts: %w", err)
			}
		}
		if st.Timestamp <= 0 {
			st.Timestamp = nowMs
		}
		return st, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		// Not JSON at all: a plain text value.
		return state.DataPointState{Value: string(body), Timestamp: nowMs}, nil
	}
	return state.DataPointState{Value: v, Timestamp: nowMs}, nil
}

// EncodePayload builds the canonical body for a write request.
func EncodePayload(value any, tsMs int64) ([]byte, error) {
	data, err := json.Marshal(wirePayload{Val: value, TS: tsMs})
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}
