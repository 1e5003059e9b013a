package roster_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonwatty/seatify-sub000/internal/models"
	"github.com/neonwatty/seatify-sub000/internal/roster"
)

func TestParseEvent_FullDocument(t *testing.T) {
	doc := `{
		"guests": [
			{"id": "g1", "name": "Ada", "group": "Lovelace", "interests": ["chess"],
			 "relationships": [{"guest_id": "g2", "type": "partner", "strength": 5}],
			 "rsvp_status": "confirmed"},
			{"name": "Bob"}
		],
		"tables": [{"id": "t1", "name": "Head Table", "capacity": 8}],
		"constraints": [{"guest_ids": ["g1", "g2"], "type": "same_table", "priority": "required"}]
	}`

	ev, err := roster.ParseEvent(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, ev.Guests, 2)
	assert.Equal(t, "g1", ev.Guests[0].ID)
	// Missing IDs and RSVP statuses are filled in.
	assert.NotEmpty(t, ev.Guests[1].ID)
	assert.Equal(t, models.RSVPPending, ev.Guests[1].RSVPStatus)

	require.Len(t, ev.Constraints, 1)
	assert.NotEmpty(t, ev.Constraints[0].ID)
	assert.Equal(t, models.PriorityRequired, ev.Constraints[0].Priority)
}

func TestParseEvent_Invalid(t *testing.T) {
	cases := map[string]string{
		"guest without name":   `{"guests": [{"group": "x"}]}`,
		"bad rsvp":             `{"guests": [{"name": "Ada", "rsvp_status": "maybe"}]}`,
		"bad relationship":     `{"guests": [{"name": "Ada", "relationships": [{"guest_id": "g2", "type": "rival"}]}]}`,
		"zero capacity table":  `{"tables": [{"name": "t", "capacity": 0}]}`,
		"one-guest constraint": `{"constraints": [{"guest_ids": ["g1"], "type": "same_table"}]}`,
		"bad constraint type":  `{"constraints": [{"guest_ids": ["g1", "g2"], "type": "adjacent"}]}`,
		"not json":             `{{{`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := roster.ParseEvent(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseGuestsCSV_HeaderDrivenColumns(t *testing.T) {
	csvData := `name,group,industry,interests,rsvp_status
Ada Lovelace,Lovelace,tech,chess; math,confirmed
Bob,,finance,,
`
	guests, err := roster.ParseGuestsCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, guests, 2)

	assert.Equal(t, "Ada Lovelace", guests[0].Name)
	assert.Equal(t, "Lovelace", guests[0].Group)
	assert.Equal(t, []string{"chess", "math"}, guests[0].Interests)
	assert.Equal(t, models.RSVPConfirmed, guests[0].RSVPStatus)
	assert.NotEmpty(t, guests[0].ID)

	assert.Equal(t, models.RSVPPending, guests[1].RSVPStatus)
	assert.Nil(t, guests[1].Interests)
}

func TestParseGuestsCSV_ColumnsInAnyOrder(t *testing.T) {
	csvData := `rsvp_status,name
declined,Cleo
`
	guests, err := roster.ParseGuestsCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "Cleo", guests[0].Name)
	assert.Equal(t, models.RSVPDeclined, guests[0].RSVPStatus)
}

func TestParseGuestsCSV_Errors(t *testing.T) {
	t.Run("missing name column", func(t *testing.T) {
		_, err := roster.ParseGuestsCSV(strings.NewReader("group,industry\nx,y\n"))
		assert.Error(t, err)
	})
	t.Run("empty name cell", func(t *testing.T) {
		_, err := roster.ParseGuestsCSV(strings.NewReader("name,group\n,x\n"))
		assert.Error(t, err)
	})
	t.Run("invalid rsvp", func(t *testing.T) {
		_, err := roster.ParseGuestsCSV(strings.NewReader("name,rsvp_status\nAda,maybe\n"))
		assert.Error(t, err)
	})
}
