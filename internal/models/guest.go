package models

import (
	"strings"
	"unicode/utf8"
)

// Guest represents one RSVP entry on the event roster
type Guest struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name" validate:"required"`
	NumberOfGuests int         `json:"numberOfGuests" validate:"gte=1"`
	ContactType    ContactType `json:"contactType,omitempty" validate:"omitempty,oneof=email phone"`
	ContactValue   string      `json:"contactValue,omitempty" validate:"required_with=ContactType"`
}

// ContactType is how a guest can be reached
type ContactType string

const (
	ContactEmail ContactType = "email"
	ContactPhone ContactType = "phone"
)

// Label returns the human readable name of the contact type
func (c ContactType) Label() string {
	switch c {
	case ContactEmail:
		return "Email"
	case ContactPhone:
		return "Phone"
	default:
		return ""
	}
}

// ParseContactType maps form input onto a contact type, falling back to email
func ParseContactType(s string) ContactType {
	if ContactType(strings.ToLower(strings.TrimSpace(s))) == ContactPhone {
		return ContactPhone
	}
	return ContactEmail
}

// Normalized returns a copy with surrounding whitespace removed from text fields
func (g Guest) Normalized() Guest {
	g.Name = strings.TrimSpace(g.Name)
	g.ContactValue = strings.TrimSpace(g.ContactValue)
	return g
}

// Initial is the avatar letter shown in the guest list
func (g Guest) Initial() string {
	r, _ := utf8.DecodeRuneInString(g.Name)
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}

// Attendance is the head count for this entry: the stated party size plus one
func (g Guest) Attendance() int {
	return g.NumberOfGuests + 1
}
