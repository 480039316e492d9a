package handler

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	maxNameLen   = 120
	minSourceLen = 2
	maxSourceLen = 64
)

var (
	emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Digits plus the usual formatting characters. Length is checked on the
	// trimmed value, not the digit count.
	phoneRx = regexp.MustCompile(`^[0-9+()\-. ]{6,32}$`)
	// Source tags end up in queries and metric labels, so the charset is
	// deliberately tight.
	sourceRx = regexp.MustCompile(`^[a-z0-9_:-]+$`)
)

// ContactIn is the contact portion of an ingest payload.
type ContactIn struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// IngestIn is the ingest request body. Context and Metadata are raw so a
// wrong shape (array, scalar) is a field error, not a decode failure;
// Metadata is an accepted alias for Context.
type IngestIn struct {
	Source   string          `json:"source"`
	Contact  ContactIn       `json:"contact"`
	Context  json.RawMessage `json:"context"`
	Metadata json.RawMessage `json:"metadata"`

	parsedContext map[string]interface{}
}

// Validate normalizes the payload in place and returns every field problem
// at once, keyed by field path. An empty map means the payload is good.
func (in *IngestIn) Validate() map[string]string {
	errs := make(map[string]string)

	in.Source = strings.ToLower(strings.TrimSpace(in.Source))
	switch {
	case in.Source == "":
		errs["source"] = "required"
	case len(in.Source) < minSourceLen || len(in.Source) > maxSourceLen:
		errs["source"] = "must be 2-64 characters"
	case !sourceRx.MatchString(in.Source):
		errs["source"] = "allowed characters: a-z 0-9 _ - :"
	}

	in.Contact.Email = strings.ToLower(strings.TrimSpace(in.Contact.Email))
	if in.Contact.Email != "" && !emailRx.MatchString(in.Contact.Email) {
		errs["contact.email"] = "invalid email"
	}

	in.Contact.Phone = strings.TrimSpace(in.Contact.Phone)
	if in.Contact.Phone != "" && !phoneRx.MatchString(in.Contact.Phone) {
		errs["contact.phone"] = "invalid phone"
	}

	in.Contact.Name = strings.TrimSpace(in.Contact.Name)
	if len(in.Contact.Name) > maxNameLen {
		errs["contact.name"] = "must be at most 120 characters"
	}

	if in.Contact.Email == "" && in.Contact.Phone == "" {
		errs["contact"] = "email or phone required"
	}

	raw := in.Context
	field := "context"
	if len(raw) == 0 {
		raw = in.Metadata
		field = "metadata"
	}
	in.parsedContext = map[string]interface{}{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &in.parsedContext); err != nil {
			errs[field] = "must be an object"
		}
	}

	return errs
}

// ContextMap returns the validated context/metadata object, defaulting to
// an empty object. Only meaningful after Validate.
func (in *IngestIn) ContextMap() map[string]interface{} {
	if in.parsedContext == nil {
		return map[string]interface{}{}
	}
	return in.parsedContext
}
