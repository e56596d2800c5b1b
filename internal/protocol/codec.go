package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrEmpty = errors.New("empty message")

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("encoding envelope: missing type")
	}
	if payload == nil {
		return nil, fmt.Errorf("encoding %q: nil payload", t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmpty
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, errors.New("decoding envelope: missing type")
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decoding %q payload: %w", env.T, err)
	}
	return out, nil
}
