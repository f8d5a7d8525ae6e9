package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/model"
)

func TestEventRoles(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.userWithRole("user", model.RoleUser)
	orgToken, org := s.userWithRole("org", model.RoleOrganizer)
	otherOrgToken, _ := s.userWithRole("other", model.RoleOrganizer)
	adminToken, _ := s.userWithRole("admin", model.RoleAdmin)

	body := map[string]interface{}{
		"title":    "Go Workshop",
		"category": "Technology",
		"date":     "2030-02-01",
		"location": "Bangalore",
		"price":    499,
		"capacity": 30,
		"tags":     []string{"golang"},
	}

	code, _ := s.call("POST", "/api/events", "", body)
	assert.Equal(t, 400, code, "missing token")

	code, _ = s.call("POST", "/api/events", userToken, body)
	assert.Equal(t, 403, code, "plain users cannot create events")

	code, res := s.call("POST", "/api/events", orgToken, body)
	require.Equal(t, 201, code)
	created := decode[model.Event](t, res.Data)
	assert.Equal(t, org.Id, created.OrganizerId)
	assert.Equal(t, "org", created.Organizer.Name)
	assert.Equal(t, 0, created.Attendees)

	code, _ = s.call("PUT", "/api/events/"+created.Id, otherOrgToken, map[string]interface{}{"title": "Hijacked"})
	assert.Equal(t, 403, code, "organizers only edit their own events")

	code, res = s.call("PUT", "/api/events/"+created.Id, orgToken, map[string]interface{}{"price": 599})
	require.Equal(t, 200, code)
	updated := decode[model.Event](t, res.Data)
	assert.Equal(t, 599.0, updated.Price)
	assert.Equal(t, "Go Workshop", updated.Title, "fields absent from the body are kept")

	code, _ = s.call("PUT", "/api/events/"+created.Id, adminToken, map[string]interface{}{"capacity": 0})
	assert.Equal(t, 400, code)

	code, _ = s.call("DELETE", "/api/events/"+created.Id, orgToken, nil)
	assert.Equal(t, 403, code, "only admins delete events")

	code, _ = s.call("DELETE", "/api/events/"+created.Id, adminToken, nil)
	assert.Equal(t, 200, code)

	code, _ = s.call("GET", "/api/events/"+created.Id, "", nil)
	assert.Equal(t, 404, code)
}

func TestGetEvents(t *testing.T) {
	s := newTestServer(t)
	_, org := s.userWithRole("org", model.RoleOrganizer)
	s.event(org, "Photography Workshop", 0, 10)
	s.event(org, "Jazz Night", 300, 100)
	s.event(org, "Startup Pitch", 0, 50)

	tests := []struct {
		description   string
		route         string
		expectedCode  int
		expectedCount int
		expectedTotal int
	}{
		{"all events", "/api/events", 200, 3, 3},
		{"search is case insensitive", "/api/events?search=WORKSHOP", 200, 1, 1},
		{"search matches location", "/api/events?search=pune", 200, 3, 3},
		{"no match", "/api/events?search=opera", 200, 0, 0},
		{"paged", "/api/events?limit=2&page=2", 200, 1, 3},
		{"page past the end", "/api/events?limit=2&page=1000", 200, 0, 3},
		{"largest page of one", "/api/events?limit=1&page=9223372036854775807", 200, 0, 3},
		{"page without limit is ignored", "/api/events?page=4611686018427387904", 200, 3, 3},
		{"page offset overflows", "/api/events?limit=4&page=4611686018427387904", 400, 0, 0},
		{"bad page", "/api/events?page=0", 400, 0, 0},
		{"limit not a number", "/api/events?limit=ten", 400, 0, 0},
	}

	for _, test := range tests {
		code, res := s.call("GET", test.route, "", nil)
		require.Equalf(t, test.expectedCode, code, test.description)
		if code != 200 {
			continue
		}
		events := decode[[]model.Event](t, res.Data)
		assert.Lenf(t, events, test.expectedCount, test.description)
		require.NotNilf(t, res.Total, test.description)
		assert.Equalf(t, test.expectedTotal, *res.Total, test.description)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, res := s.call("GET", "/api/health", "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "success", res.Status)
}
