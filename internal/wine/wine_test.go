package wine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDryness(t *testing.T) {
	tests := []struct {
		in      string
		want    Dryness
		wantErr bool
	}{
		{"Dry", Dry, false},
		{"SemiDry", SemiDry, false},
		{"SemiSweet", SemiSweet, false},
		{"Sweet", Sweet, false},
		{"Unknown", Unknown, false},
		{"", Unknown, true},
		{"dry", Unknown, true},
		{"Extra Dry", Unknown, true},
		{"Wytrawne", Unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDryness(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDrynessLevelOrdering(t *testing.T) {
	assert.Equal(t, 0, Unknown.Level())
	assert.Less(t, Dry.Level(), SemiDry.Level())
	assert.Less(t, SemiDry.Level(), SemiSweet.Level())
	assert.Less(t, SemiSweet.Level(), Sweet.Level())
}

func TestWireLiteralsExcludeUnknown(t *testing.T) {
	assert.Equal(t, []string{"Dry", "SemiDry", "SemiSweet", "Sweet"}, WireLiterals())
	assert.NotContains(t, WireLiterals(), string(Unknown))
}

func validRecord() Record {
	return Record{
		ID:             NewID(),
		Name:           "Barolo",
		Region:         "Piemonte",
		Dryness:        Dry,
		Description:    "Full-bodied with notes of tar and roses.",
		Pairings:       []string{"brasato", "aged cheese"},
		GrapeType:      "Nebbiolo",
		AlcoholContent: "14%",
		ServingTemp:    DefaultServingTemp,
		CreatedAt:      time.Now(),
	}
}

func TestRecordValidate(t *testing.T) {
	r := validRecord()
	require.NoError(t, r.Validate())

	empty := r
	empty.Name = "  "
	assert.Error(t, empty.Validate())

	badDryness := r
	badDryness.Dryness = "Medium"
	assert.Error(t, badDryness.Validate())

	noRegion := r
	noRegion.Region = ""
	assert.Error(t, noRegion.Validate())
}

func TestSameWine(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.ID = NewID()
	b.Dryness = Sweet // dryness is not part of the identity
	assert.True(t, a.SameWine(&b))

	b.Name = "  barolo "
	assert.True(t, a.SameWine(&b), "name match is case-insensitive and trimmed")

	b.Name = "Chianti Classico"
	assert.False(t, a.SameWine(&b))
}

func TestNewIDShortAndUnique(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}
