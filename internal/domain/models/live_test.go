package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyInventoryChange(t *testing.T) {
	state := NewInventoryState("s1", []InventoryEntry{
		NewInventoryEntry("s1", "a", 1, 5),
		NewInventoryEntry("s2", "x", 0, 9),
	})
	require.Equal(t, 1, state.Len())

	next := ApplyInventoryChange(state, InventoryChange{Op: ChangeUpsert, Entry: NewInventoryEntry("s1", "b", 0, 3)})
	assert.Equal(t, 2, next.Len())
	assert.Equal(t, 1, state.Len(), "input state must not change")

	next = ApplyInventoryChange(next, InventoryChange{Op: ChangeUpsert, Entry: NewInventoryEntry("s1", "a", 4, 5)})
	entries := next.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ItemID)
	assert.Equal(t, 4.0, entries[0].CurrentQty)

	next = ApplyInventoryChange(next, InventoryChange{Op: ChangeDelete, Entry: NewInventoryEntry("s1", "a", 0, 0)})
	assert.Equal(t, 1, next.Len())
}

func TestApplyInventoryChangeIgnoresForeignEvents(t *testing.T) {
	state := NewInventoryState("s1", nil)

	next := ApplyInventoryChange(state, InventoryChange{Op: ChangeUpsert, Entry: NewInventoryEntry("s2", "a", 0, 1)})
	assert.Equal(t, 0, next.Len())

	next = ApplyInventoryChange(state, InventoryChange{Op: "truncate", Entry: NewInventoryEntry("s1", "a", 0, 1)})
	assert.Equal(t, 0, next.Len())
}

func TestParseCommand(t *testing.T) {
	cmd := ParseCommand("/lista CT")
	assert.Equal(t, CommandShoppingList, cmd.Type)
	assert.Equal(t, []string{"CT"}, cmd.Args)

	assert.Equal(t, CommandShoppingList, ParseCommand("Compras").Type)
	assert.Equal(t, CommandOrders, ParseCommand("/PEDIDOS ct").Type)
	assert.Equal(t, []string{"ct"}, ParseCommand("/PEDIDOS ct").Args)
	assert.Equal(t, CommandHelp, ParseCommand("/help").Type)
	assert.Equal(t, CommandUnknown, ParseCommand("bom dia").Type)
	assert.Equal(t, CommandUnknown, ParseCommand("   ").Type)
}
