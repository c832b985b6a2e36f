package models

import (
	"sort"
	"time"
)

// OrderStatus is the lifecycle state of a purchase order.
type OrderStatus string

const (
	OrderDraft    OrderStatus = "draft"
	OrderSent     OrderStatus = "sent"
	OrderReceived OrderStatus = "received"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderSent, OrderReceived:
		return true
	}
	return false
}

// Order is the header of a purchase order. Store fields are copied at creation.
type Order struct {
	ID         string      `bson:"_id" json:"id"`
	StoreID    string      `bson:"storeId" json:"storeId"`
	StoreName  string      `bson:"storeName" json:"storeName"`
	StoreCode  string      `bson:"storeCode" json:"storeCode"`
	Status     OrderStatus `bson:"status" json:"status"`
	LineCount  int         `bson:"lineCount" json:"lineCount"`
	CreatedAt  time.Time   `bson:"createdAt" json:"createdAt"`
	CreatedBy  string      `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedAt  time.Time   `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	ReceivedAt *time.Time  `bson:"receivedAt,omitempty" json:"receivedAt,omitempty"`
	ReceivedBy string      `bson:"receivedBy,omitempty" json:"receivedBy,omitempty"`
}

// OrderLine is a frozen snapshot of one shopping-list row.
type OrderLine struct {
	ID         string    `bson:"_id" json:"-"`
	OrderID    string    `bson:"orderId" json:"orderId"`
	ItemID     string    `bson:"itemId" json:"itemId"`
	ItemName   string    `bson:"itemName" json:"itemName"`
	Unit       string    `bson:"unit" json:"unit"`
	CurrentQty float64   `bson:"currentQty" json:"currentQty"`
	MinQty     float64   `bson:"minQty" json:"minQty"`
	ToBuy      float64   `bson:"toBuy" json:"toBuy"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// OrderLineKey is the document id of the line for itemID inside orderID.
func OrderLineKey(orderID, itemID string) string {
	return orderID + "_" + itemID
}

// OrderDetail bundles a header with its lines for presentation.
type OrderDetail struct {
	Order      Order       `json:"order"`
	Lines      []OrderLine `json:"lines"`
	TotalToBuy float64     `json:"totalToBuy"`
}

// NewOrderDetail sorts lines by item name and sums their toBuy quantities.
func NewOrderDetail(order Order, lines []OrderLine) OrderDetail {
	sorted := make([]OrderLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ItemName != sorted[j].ItemName {
			return sorted[i].ItemName < sorted[j].ItemName
		}
		return sorted[i].ItemID < sorted[j].ItemID
	})

	var total float64
	for _, line := range sorted {
		total += line.ToBuy
	}

	return OrderDetail{Order: order, Lines: sorted, TotalToBuy: RoundQty(total)}
}
