package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tags := NormalizeTags([]string{" VPN ", "printer", "vpn", "", "Printer", "urgent"})
	assert.Equal(t, []string{"printer", "urgent", "vpn"}, tags)
}

func TestNormalizeTagsEmpty(t *testing.T) {
	assert.Empty(t, NormalizeTags(nil))
	assert.Empty(t, NormalizeTags([]string{"", "   "}))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("Hardware"))
	assert.True(t, ValidCategory("Network Issue"))
	assert.True(t, ValidCategory("Other"))
	assert.False(t, ValidCategory("hardware"))
	assert.False(t, ValidCategory("Gardening"))
	assert.False(t, ValidCategory(""))
}

func TestCategoriesSorted(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 12)
	for i := 1; i < len(cats); i++ {
		assert.Less(t, cats[i-1], cats[i])
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, TicketStatusOpen.Valid())
	assert.True(t, TicketStatusWaitingForResponse.Valid())
	assert.False(t, TicketStatus("ARCHIVED").Valid())
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, TicketPriorityCritical.Valid())
	assert.False(t, TicketPriority("URGENT").Valid())
}

func TestLevelValid(t *testing.T) {
	assert.True(t, LevelHigh.Valid())
	assert.False(t, TicketLevel("CRITICAL").Valid())
}
