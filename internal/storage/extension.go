package storage

import (
	"encoding/json"
	"fmt"
)

// ExtensionState is free-form state keyed by owner (for example a behavior
// kind). Values stay encoded until read so unknown keys survive a save.
type ExtensionState map[string]json.RawMessage

// Set encodes v and stores it under key.
func (e *ExtensionState) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal extension %q: %w", key, err)
	}
	if *e == nil {
		*e = ExtensionState{}
	}
	(*e)[key] = b
	return nil
}

// Get decodes the value under key into out. found is false when the key is
// absent.
func (e ExtensionState) Get(key string, out any) (found bool, err error) {
	raw := e[key]
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal extension %q: %w", key, err)
	}
	return true, nil
}
