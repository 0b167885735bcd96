package tarot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionName(t *testing.T) {
	tests := []struct {
		spread SpreadType
		index  int
		want   string
	}{
		{SpreadThreeCard, 0, "Past"},
		{SpreadThreeCard, 2, "Future"},
		{SpreadThreeCard, 3, "Position 4"},
		{SpreadSingle, 0, "Your Guidance"},
		{SpreadCelticCross, 8, "Hopes & Fears"},
		{SpreadType("unknown"), 0, "Position"},
		{SpreadType("unknown"), 1, "Position 2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PositionName(tt.spread, tt.index), "%s[%d]", tt.spread, tt.index)
	}
}

func TestSpreadCardCount(t *testing.T) {
	assert.Equal(t, 1, SpreadSingle.CardCount())
	assert.Equal(t, 3, SpreadThreeCard.CardCount())
	assert.Equal(t, 10, SpreadCelticCross.CardCount())
	assert.Equal(t, 5, SpreadHorseshoe.CardCount())
	assert.Equal(t, 0, SpreadType("nope").CardCount())
	assert.False(t, SpreadType("nope").Valid())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "ace_of_swords", Slug("Ace of  Swords"))
	assert.Equal(t, "the_tower", Slug("The Tower"))
}
