package models

import "sort"

// ChangeOp is the kind of mutation carried by a change event.
type ChangeOp string

const (
	ChangeUpsert ChangeOp = "upsert"
	ChangeDelete ChangeOp = "delete"
)

// InventoryChange is pushed by the storage layer whenever an inventory
// document of a watched store is written.
type InventoryChange struct {
	Op    ChangeOp
	Entry InventoryEntry
}

// InventoryState is the client-side view of one store's inventory.
// Values are never mutated in place; ApplyInventoryChange returns a new one.
type InventoryState struct {
	StoreID string
	entries map[string]InventoryEntry
}

// NewInventoryState seeds the view from a snapshot. Entries of other stores are ignored.
func NewInventoryState(storeID string, snapshot []InventoryEntry) InventoryState {
	entries := make(map[string]InventoryEntry, len(snapshot))
	for _, entry := range snapshot {
		if entry.StoreID != storeID {
			continue
		}
		entries[entry.ItemID] = entry
	}
	return InventoryState{StoreID: storeID, entries: entries}
}

// ApplyInventoryChange is the pure reducer behind live views.
func ApplyInventoryChange(state InventoryState, change InventoryChange) InventoryState {
	if change.Entry.StoreID != state.StoreID {
		return state
	}

	next := make(map[string]InventoryEntry, len(state.entries)+1)
	for k, v := range state.entries {
		next[k] = v
	}

	switch change.Op {
	case ChangeUpsert:
		next[change.Entry.ItemID] = change.Entry
	case ChangeDelete:
		delete(next, change.Entry.ItemID)
	default:
		return state
	}

	return InventoryState{StoreID: state.StoreID, entries: next}
}

// Entries returns the entries sorted by item id.
func (s InventoryState) Entries() []InventoryEntry {
	out := make([]InventoryEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Len reports how many entries the view holds.
func (s InventoryState) Len() int {
	return len(s.entries)
}
