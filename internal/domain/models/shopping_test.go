package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveShoppingListDeficit(t *testing.T) {
	items := []Item{{ID: "a", Name: "Arroz", Unit: "kg"}}

	lines := DeriveShoppingList(items, []InventoryEntry{NewInventoryEntry("s", "a", 3, 10)})
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, 7.0, lines[0].ToBuy)

	lines = DeriveShoppingList(items, []InventoryEntry{NewInventoryEntry("s", "a", 15, 10)})
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestDeriveShoppingListOmitsItemsWithoutEntry(t *testing.T) {
	items := []Item{
		{ID: "a", Name: "Arroz"},
		{ID: "b", Name: "Batata"},
	}
	inventory := []InventoryEntry{
		NewInventoryEntry("s", "a", 0, 2),
		NewInventoryEntry("s", "ghost", 0, 9),
	}

	lines := DeriveShoppingList(items, inventory)
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].ItemID)
}

func TestDeriveShoppingListOrdering(t *testing.T) {
	items := []Item{
		{ID: "3", Name: "cebola"},
		{ID: "1", Name: "Óleo"},
		{ID: "2", Name: "Açúcar"},
		{ID: "4", Name: "Batata"},
		{ID: "5", Name: "batata"},
	}
	inventory := []InventoryEntry{
		NewInventoryEntry("s", "1", 0, 2),
		NewInventoryEntry("s", "2", 0, 2),
		NewInventoryEntry("s", "3", 0, 2),
		NewInventoryEntry("s", "4", 0, 5),
		NewInventoryEntry("s", "5", 0, 5),
	}

	lines := DeriveShoppingList(items, inventory)
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}

	// larger deficit first; equal names fall back to id; accents sort with their base letter
	assert.Equal(t, []string{"4", "5", "2", "3", "1"}, ids)
}

func TestDeriveShoppingListRoundsNoise(t *testing.T) {
	items := []Item{{ID: "a", Name: "Arroz"}, {ID: "b", Name: "Batata"}}
	inventory := []InventoryEntry{
		NewInventoryEntry("s", "a", 0.1+0.2, 0.3),
		NewInventoryEntry("s", "b", 0.1, 0.3),
	}

	lines := DeriveShoppingList(items, inventory)
	require.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].ItemID)
	assert.Equal(t, 0.2, lines[0].ToBuy)
}

func TestOrderLinesSnapshot(t *testing.T) {
	out := OrderLines("o1", []ShoppingLine{{ItemID: "a", ItemName: "Arroz", Unit: "kg", CurrentQty: 1, MinQty: 4, ToBuy: 3}})
	require.Len(t, out, 1)
	assert.Equal(t, "o1_a", out[0].ID)
	assert.Equal(t, "o1", out[0].OrderID)
	assert.Equal(t, 3.0, out[0].ToBuy)
}
