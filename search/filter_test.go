package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/model"
)

func fixture() []model.Event {
	return []model.Event{
		{Id: "1", Title: "Go Workshop", Category: "Tech", Location: "Pune", Tags: []string{"golang"}},
		{Id: "2", Title: "Jazz Night", Category: "Music", Location: "Mumbai", Description: "Live quartet"},
		{Id: "3", Title: "Startup Pitch", Category: "Business", Location: "Bangalore"},
		{Id: "4", Title: "Food Festival", Category: "Food", Location: "Delhi", Tags: []string{"street food"}},
		{Id: "5", Title: "pottery workshop", Category: "Art", Location: "Chennai"},
		{Id: "6", Title: "Marathon", Category: "Sports", Location: "Hyderabad"},
		{Id: "7", Title: "Comedy Hour", Category: "Entertainment", Location: "Kolkata"},
		{Id: "8", Title: "AI Summit", Category: "Tech", Location: "Bangalore", Description: "Keynotes and panels"},
		{Id: "9", Title: "Book Fair", Category: "Literature", Location: "Ahmedabad"},
		{Id: "10", Title: "Yoga Retreat", Category: "Wellness", Location: "Pune"},
	}
}

func ids(events []model.Event) []string {
	out := []string{}
	for _, e := range events {
		out = append(out, e.Id)
	}
	return out
}

func TestFilterBlankQueryReturnsInput(t *testing.T) {
	events := fixture()
	for _, q := range []string{"", "   ", "\t\n"} {
		assert.Equal(t, events, Filter(events, q))
	}
}

func TestFilterWorkshop(t *testing.T) {
	for _, q := range []string{"workshop", "WORKSHOP", "Workshop"} {
		got := Filter(fixture(), q)
		assert.Equal(t, []string{"1", "5"}, ids(got), q)
	}
}

func TestFilterFields(t *testing.T) {
	tests := []struct {
		description string
		query       string
		expected    []string
	}{
		{"category", "tech", []string{"1", "8"}},
		{"location", "bangalore", []string{"3", "8"}},
		{"description", "QUARTET", []string{"2"}},
		{"tag", "street", []string{"4"}},
		{"surrounding whitespace", "  jazz ", []string{"2"}},
		{"no match", "opera", []string{}},
	}

	for _, test := range tests {
		assert.Equalf(t, test.expected, ids(Filter(fixture(), test.query)), test.description)
	}
}

func TestFilterProperties(t *testing.T) {
	events := fixture()
	for _, q := range []string{"a", "o", "pu", "tech", "festival", "zzz"} {
		got := Filter(events, q)

		// every result matches
		for _, e := range got {
			assert.True(t, Match(e, q), "event %s should match %q", e.Id, q)
		}

		// results are an order-preserving subsequence
		i := 0
		for _, e := range got {
			for i < len(events) && events[i].Id != e.Id {
				i++
			}
			require.Less(t, i, len(events), "result %s out of order for %q", e.Id, q)
			i++
		}

		// nothing matching was dropped
		for _, e := range events {
			hay := strings.ToLower(strings.Join(append([]string{e.Title, e.Category, e.Location, e.Description}, e.Tags...), "\x00"))
			if strings.Contains(hay, q) {
				assert.Contains(t, ids(got), e.Id)
			}
		}
	}
}

func TestFilterEmptyFieldsNeverMatch(t *testing.T) {
	events := []model.Event{{Id: "x"}}
	assert.Empty(t, Filter(events, "x"))
}

func TestFilterJSON(t *testing.T) {
	got, err := FilterJSON([]byte(`[{"_id":"1","title":"Go Workshop"},{"_id":"2","title":"Gala"}]`), "work")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got))

	for _, raw := range []string{`{"data":[]}`, `"events"`, `null`, ``, `42`, `[1,2]`} {
		_, err := FilterJSON([]byte(raw), "work")
		assert.ErrorIs(t, err, ErrInvalidArgument, raw)
	}
}
