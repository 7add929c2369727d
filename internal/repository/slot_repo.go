package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Slot names, one value per shopping session each.
const (
	SlotCart         = "cart"
	SlotPendingOrder = "pendingOrder"
	SlotLastOrder    = "lastOrder"
)

// SlotVersion is the envelope version written by this build.
const SlotVersion = 1

var (
	ErrSlotNotFound       = errors.New("slot not found")
	ErrMalformedSlot      = errors.New("malformed slot content")
	ErrUnknownSlotVersion = errors.New("unknown slot version")
)

// SlotStore is a string-keyed store of whole JSON values.
// Save always overwrites; the last writer wins.
type SlotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SlotKey namespaces a slot by shopping session.
func SlotKey(sessionID, slot string) string {
	return sessionID + ":" + slot
}

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// SaveJSON wraps v in a versioned envelope and writes it to key.
func SaveJSON(ctx context.Context, s SlotStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	b, err := json.Marshal(envelope{Version: SlotVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	return s.Save(ctx, key, b)
}

// LoadJSON reads key into v. It returns ErrSlotNotFound when the slot is
// empty, and wraps ErrMalformedSlot or ErrUnknownSlotVersion when the stored
// bytes cannot be trusted. Callers treat every error as absence.
func LoadJSON(ctx context.Context, s SlotStore, key string, v any) error {
	raw, err := s.Load(ctx, key)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedSlot, key, err)
	}
	if env.Version != SlotVersion {
		return fmt.Errorf("%w: %s: version %d", ErrUnknownSlotVersion, key, env.Version)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrSlotNotFound
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedSlot, key, err)
	}
	return nil
}
