package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByCategory(t *testing.T) {
	items := []MenuItem{
		{ID: 4, Name: "Thé", Price: decimal.RequireFromString("2.5")},
		{ID: 2, Name: "Harira", Price: decimal.NewFromInt(6), Category: "Entrées"},
		{ID: 7, Name: "Briouates", Price: decimal.RequireFromString("7.5"), Category: "Entrées"},
		{ID: 1, Name: "Tajine", Price: decimal.RequireFromString("14.5"), Category: "Plats"},
	}

	sections := GroupByCategory(items)

	require.Len(t, sections, 3)
	assert.Equal(t, "Entrées", sections[0].Title)
	assert.Equal(t, "Plats", sections[1].Title)
	assert.Equal(t, UncategorisedSection, sections[2].Title)

	require.Len(t, sections[0].Items, 2)
	assert.Equal(t, int64(2), sections[0].Items[0].ID)
	assert.Equal(t, int64(7), sections[0].Items[1].ID)
	assert.Equal(t, int64(4), sections[2].Items[0].ID)
}

func TestGroupByCategory_Empty(t *testing.T) {
	assert.Empty(t, GroupByCategory(nil))
}

func TestNormalizeAvailability(t *testing.T) {
	yes, no := true, false

	assert.True(t, NormalizeAvailability(nil))
	assert.True(t, NormalizeAvailability(&yes))
	assert.False(t, NormalizeAvailability(&no))
}
