package registration

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"eventease/model"
)

const MaxTicketsPerRegistration = 10

var ErrValidation = errors.New("validation failed")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError lists every offending field with a user-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidPhone(phone string) bool {
	return len(NormalizePhone(phone)) == 10
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidateAttendee checks the attendee form and the ticket count.
func ValidateAttendee(a model.Attendee, tickets int) error {
	fields := map[string]string{}
	if strings.TrimSpace(a.Name) == "" {
		fields["name"] = "name is required"
	}
	switch {
	case strings.TrimSpace(a.Email) == "":
		fields["email"] = "email is required"
	case !ValidEmail(a.Email):
		fields["email"] = "email is not valid"
	}
	switch {
	case strings.TrimSpace(a.Phone) == "":
		fields["phone"] = "phone is required"
	case !ValidPhone(a.Phone):
		fields["phone"] = "phone must contain exactly 10 digits"
	}
	if tickets < 1 || tickets > MaxTicketsPerRegistration {
		fields["numberOfTickets"] = fmt.Sprintf("between 1 and %d tickets per registration", MaxTicketsPerRegistration)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NormalizeAttendee trims the fields and reduces the phone to its digits.
func NormalizeAttendee(a model.Attendee) model.Attendee {
	return model.Attendee{
		Name:  strings.TrimSpace(a.Name),
		Email: strings.ToLower(strings.TrimSpace(a.Email)),
		Phone: NormalizePhone(a.Phone),
	}
}
