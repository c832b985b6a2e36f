package models

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Store is a physical shop whose stock is tracked independently.
type Store struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Code      string    `bson:"code" json:"code"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	CreatedBy string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
}

// Item is a catalog entry shared by every store.
type Item struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Unit      string    `bson:"unit" json:"unit"`
	Supplier  string    `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Buyer     string    `bson:"buyer,omitempty" json:"buyer,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	CreatedBy string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// ItemInput carries the editable fields of an Item.
type ItemInput struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Supplier string `json:"supplier"`
	Buyer    string `json:"buyer"`
}

// Clean trims every field and checks the required ones.
func (in ItemInput) Clean() (ItemInput, error) {
	out := ItemInput{
		Name:     strings.TrimSpace(in.Name),
		Unit:     strings.TrimSpace(in.Unit),
		Supplier: strings.TrimSpace(in.Supplier),
		Buyer:    strings.TrimSpace(in.Buyer),
	}
	if out.Name == "" {
		return out, Invalid("name", "must not be blank")
	}
	if NormalizeName(out.Name) == "" {
		return out, Invalid("name", "must contain letters or digits")
	}
	if out.Unit == "" {
		return out, Invalid("unit", "must not be blank")
	}
	return out, nil
}

// NameIndexEntry reserves a normalized item name for exactly one item.
type NameIndexEntry struct {
	Key       string    `bson:"_id" json:"key"`
	ItemID    string    `bson:"itemId" json:"itemId"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// NormalizeName produces the uniqueness key of an item name: whitespace is
// collapsed, the result trimmed, lower-cased and stripped of diacritics.
func NormalizeName(s string) string {
	return stripDiacritics(lower(strings.Join(strings.Fields(s), " ")))
}

// NormalizeSearch prepares free text for substring matching. Internal
// whitespace is kept as typed.
func NormalizeSearch(s string) string {
	return stripDiacritics(lower(strings.TrimSpace(s)))
}

// MatchesSearch reports whether the item name, supplier or buyer contains query.
func (i Item) MatchesSearch(query string) bool {
	q := NormalizeSearch(query)
	if q == "" {
		return true
	}
	for _, field := range []string{i.Name, i.Supplier, i.Buyer} {
		if strings.Contains(NormalizeSearch(field), q) {
			return true
		}
	}
	return false
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
