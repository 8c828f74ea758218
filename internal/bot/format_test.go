package bot

import (
	"testing"

	"scrimbot/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Phoenix Five", titleCase("phoenix five"))
	assert.Equal(t, "Alpha", titleCase("  ALPHA "))
	assert.Equal(t, "Équipe Rouge", titleCase("équipe rouge"))
	assert.Equal(t, "", titleCase(""))
}

func TestFormatSlots(t *testing.T) {
	got := formatSlots([]schedule.Interval{{Start: 18, End: 22}, {Start: 9, End: 11}})
	assert.Equal(t, "• 18h - 22h\n• 9h - 11h", got)
}

func TestTeamScheduleEmbed(t *testing.T) {
	common := map[int][]schedule.Interval{
		0: {{Start: 18, End: 22}},
		4: {{Start: 20, End: 23}},
	}
	embed := teamScheduleEmbed("alpha", common)

	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Monday", embed.Fields[0].Name)
	assert.Equal(t, "• 18h - 22h", embed.Fields[0].Value)
	assert.Equal(t, "Friday", embed.Fields[1].Name)
	assert.Contains(t, embed.Title, "Alpha")
	assert.Equal(t, colorGreen, embed.Color)
}

func TestTeamScheduleEmbed_NothingInCommon(t *testing.T) {
	embed := teamScheduleEmbed("alpha", map[int][]schedule.Interval{})

	assert.Empty(t, embed.Fields)
	assert.Contains(t, embed.Description, "No common slots")
	assert.Equal(t, colorOrange, embed.Color)
}

func TestPlayerScheduleEmbed_AllSevenDays(t *testing.T) {
	week := map[int][]schedule.Interval{
		6: {{Start: 10, End: 14}},
	}
	embed := playerScheduleEmbed("someone", week)

	require.Len(t, embed.Fields, 7)
	assert.Equal(t, "—", embed.Fields[0].Value)
	assert.Equal(t, "• 10h - 14h", embed.Fields[6].Value)
}
