// Package search implements the free-text event filter shared by the API's
// ?search= parameter and the client.
package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"eventease/model"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Filter returns the events whose title, category, location, description or
// any tag contains query, ignoring case. Order is preserved. A blank query
// returns events unchanged.
func Filter(events []model.Event, query string) []model.Event {
	q := normalize(query)
	if q == "" {
		return events
	}

	matched := make([]model.Event, 0, len(events))
	for _, event := range events {
		if matches(event, q) {
			matched = append(matched, event)
		}
	}
	return matched
}

// Match reports whether a single event satisfies query.
func Match(event model.Event, query string) bool {
	q := normalize(query)
	if q == "" {
		return true
	}
	return matches(event, q)
}

// FilterJSON filters an undecoded event list. Anything other than a JSON
// array of events is rejected with ErrInvalidArgument.
func FilterJSON(raw []byte, query string) ([]model.Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: events must be a JSON array", ErrInvalidArgument)
	}

	var events []model.Event
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return Filter(events, query), nil
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func matches(event model.Event, q string) bool {
	for _, field := range []string{event.Title, event.Category, event.Location, event.Description} {
		if contains(field, q) {
			return true
		}
	}
	for _, tag := range event.Tags {
		if contains(tag, q) {
			return true
		}
	}
	return false
}

// empty fields never match
func contains(field, q string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), q)
}
