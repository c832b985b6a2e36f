package models

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ShoppingLine is one row of a derived shopping list.
type ShoppingLine struct {
	ItemID     string  `json:"itemId"`
	ItemName   string  `json:"itemName"`
	Unit       string  `json:"unit"`
	Supplier   string  `json:"supplier,omitempty"`
	Buyer      string  `json:"buyer,omitempty"`
	CurrentQty float64 `json:"currentQty"`
	MinQty     float64 `json:"minQty"`
	ToBuy      float64 `json:"toBuy"`
}

// ShoppingList is the derived list of a store.
type ShoppingList struct {
	Store Store          `json:"store"`
	Lines []ShoppingLine `json:"lines"`
}

// DeriveShoppingList returns the items whose current quantity at a store is
// below the minimum, with the deficit in ToBuy.
//
// inventory must belong to a single store. Items without an inventory entry
// are omitted, as are entries whose item is not in the catalog. Lines are
// ordered by ToBuy descending, then by item name, then by item id.
func DeriveShoppingList(items []Item, inventory []InventoryEntry) []ShoppingLine {
	byItem := make(map[string]InventoryEntry, len(inventory))
	for _, entry := range inventory {
		byItem[entry.ItemID] = entry
	}

	lines := make([]ShoppingLine, 0)
	for _, item := range items {
		entry, ok := byItem[item.ID]
		if !ok {
			continue
		}

		toBuy := RoundQty(entry.MinQty - entry.CurrentQty)
		if toBuy <= 0 {
			continue
		}

		lines = append(lines, ShoppingLine{
			ItemID:     item.ID,
			ItemName:   item.Name,
			Unit:       item.Unit,
			Supplier:   item.Supplier,
			Buyer:      item.Buyer,
			CurrentQty: entry.CurrentQty,
			MinQty:     entry.MinQty,
			ToBuy:      toBuy,
		})
	}

	col := collate.New(language.Portuguese, collate.IgnoreCase)
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.ToBuy != b.ToBuy {
			return a.ToBuy > b.ToBuy
		}
		if c := col.CompareString(a.ItemName, b.ItemName); c != 0 {
			return c < 0
		}
		return a.ItemID < b.ItemID
	})

	return lines
}

// OrderLines snapshots shopping lines into order lines for orderID.
func OrderLines(orderID string, lines []ShoppingLine) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, OrderLine{
			ID:         OrderLineKey(orderID, line.ItemID),
			OrderID:    orderID,
			ItemID:     line.ItemID,
			ItemName:   line.ItemName,
			Unit:       line.Unit,
			CurrentQty: line.CurrentQty,
			MinQty:     line.MinQty,
			ToBuy:      line.ToBuy,
		})
	}
	return out
}
