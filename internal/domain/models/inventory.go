package models

import (
	"math"
	"time"
)

// InventoryEntry holds the on-hand and minimum quantities of one item at one store.
type InventoryEntry struct {
	ID         string    `bson:"_id" json:"id"`
	StoreID    string    `bson:"storeId" json:"storeId"`
	ItemID     string    `bson:"itemId" json:"itemId"`
	CurrentQty float64   `bson:"currentQty" json:"currentQty"`
	MinQty     float64   `bson:"minQty" json:"minQty"`
	UpdatedAt  time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	UpdatedBy  string    `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// InventoryKey is the document id of the entry for (storeID, itemID).
func InventoryKey(storeID, itemID string) string {
	return storeID + "_" + itemID
}

// NewInventoryEntry returns an entry with its id derived from the pair.
func NewInventoryEntry(storeID, itemID string, current, min float64) InventoryEntry {
	return InventoryEntry{
		ID:         InventoryKey(storeID, itemID),
		StoreID:    storeID,
		ItemID:     itemID,
		CurrentQty: current,
		MinQty:     min,
	}
}

// EntryInput is a direct edit of one inventory row.
type EntryInput struct {
	ItemID     string  `json:"itemId"`
	CurrentQty float64 `json:"currentQty"`
	MinQty     float64 `json:"minQty"`
}

// Validate checks the identifiers and that both quantities are non-negative.
func (in EntryInput) Validate() error {
	if in.ItemID == "" {
		return Invalid("itemId", "must not be blank")
	}
	if math.IsNaN(in.CurrentQty) || in.CurrentQty < 0 {
		return Invalid("currentQty", "must be zero or greater")
	}
	if math.IsNaN(in.MinQty) || in.MinQty < 0 {
		return Invalid("minQty", "must be zero or greater")
	}
	return nil
}

// RoundQty drops floating point noise below a millionth of a unit.
func RoundQty(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
