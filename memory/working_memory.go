// Package memory provides a thread-safe shared JSON document agents
// can read and deep-merge into, grounded on the source crate's
// shared_working_memory.rs.
package memory

import (
	"encoding/json"
	"sync"
)

// WorkingMemory guards a single JSON-compatible value (map[string]any,
// []any, or a scalar) behind a mutex. Reads return an independent deep
// copy; writes deep-merge the given value into the current one.
type WorkingMemory struct {
	mu    sync.Mutex
	value any
}

// NewWorkingMemory constructs a WorkingMemory seeded with initial. A
// nil initial defaults to an empty object.
func NewWorkingMemory(initial any) *WorkingMemory {
	if initial == nil {
		initial = map[string]any{}
	}
	return &WorkingMemory{value: deepClone(initial)}
}

// Get returns a deep-cloned snapshot of the current value.
func (w *WorkingMemory) Get() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return deepClone(w.value)
}

// Merge deep-merges src into the current value under the mutex.
func (w *WorkingMemory) Merge(src any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = deepMerge(w.value, deepClone(src))
}

// deepMerge implements the source crate's exact semantics: when both
// dest and src are JSON objects, merge key-wise, recursing into shared
// keys and inserting src-only keys. Any other pairing (arrays,
// primitives, object-vs-non-object) replaces dest with src wholesale.
func deepMerge(dest, src any) any {
	destMap, destIsMap := dest.(map[string]any)
	srcMap, srcIsMap := src.(map[string]any)

	if destIsMap && srcIsMap {
		merged := make(map[string]any, len(destMap))
		for k, v := range destMap {
			merged[k] = v
		}
		for k, v := range srcMap {
			if existing, ok := merged[k]; ok {
				merged[k] = deepMerge(existing, v)
			} else {
				merged[k] = v
			}
		}
		return merged
	}

	return src
}

// deepClone round-trips through JSON to produce an independent copy,
// since Go's map/slice values alias by reference (unlike the source
// crate's value-semantic serde_json::Value).
func deepClone(v any) any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return v
	}
	return out
}
