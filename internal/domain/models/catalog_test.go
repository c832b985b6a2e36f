package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Tomate":            "tomate",
		"  Feijão   Preto ": "feijao preto",
		"AÇÚCAR\tcristal":   "acucar cristal",
		"Pão de Queijo":     "pao de queijo",
		"crème brûlée":      "creme brulee",
		"   ":               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "NormalizeName(%q)", in)
	}
}

func TestNormalizeSearchKeepsInnerSpacing(t *testing.T) {
	assert.Equal(t, "feijao  preto", NormalizeSearch("  Feijão  Preto "))
}

func TestItemMatchesSearch(t *testing.T) {
	item := Item{Name: "Feijão preto", Supplier: "Atacadão", Buyer: "João"}

	assert.True(t, item.MatchesSearch(""))
	assert.True(t, item.MatchesSearch("FEIJAO"))
	assert.True(t, item.MatchesSearch("atacadao"))
	assert.True(t, item.MatchesSearch("joa"))
	assert.False(t, item.MatchesSearch("arroz"))
}

func TestItemInputClean(t *testing.T) {
	in, err := ItemInput{Name: "  Arroz ", Unit: " kg ", Supplier: " Ceasa "}.Clean()
	require.NoError(t, err)
	assert.Equal(t, ItemInput{Name: "Arroz", Unit: "kg", Supplier: "Ceasa"}, in)

	_, err = ItemInput{Name: " ", Unit: "kg"}.Clean()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	_, err = ItemInput{Name: "Arroz"}.Clean()
	require.ErrorIs(t, err, ErrValidation)
}

func TestEntryInputValidate(t *testing.T) {
	require.NoError(t, EntryInput{ItemID: "a", CurrentQty: 0, MinQty: 2.5}.Validate())
	require.ErrorIs(t, EntryInput{ItemID: "a", CurrentQty: -1}.Validate(), ErrValidation)
	require.ErrorIs(t, EntryInput{ItemID: "a", MinQty: -0.5}.Validate(), ErrValidation)
	require.ErrorIs(t, EntryInput{CurrentQty: 1}.Validate(), ErrValidation)
}
