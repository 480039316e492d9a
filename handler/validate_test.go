package handler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
		bad    bool
	}{
		{name: "normalized to lowercase", source: " Web_Form ", want: "web_form"},
		{name: "colon and dash allowed", source: "shopify:abandoned-cart", want: "shopify:abandoned-cart"},
		{name: "empty", source: "", bad: true},
		{name: "too short", source: "x", bad: true},
		{name: "too long", source: strings.Repeat("a", 65), bad: true},
		{name: "space inside", source: "web form", bad: true},
		{name: "dot not allowed", source: "web.form", bad: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := IngestIn{Source: tt.source, Contact: ContactIn{Email: "a@b.com"}}
			errs := in.Validate()
			if tt.bad {
				assert.Contains(t, errs, "source")
				return
			}
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, in.Source)
		})
	}
}

func TestValidateContact(t *testing.T) {
	t.Run("neither email nor phone fails", func(t *testing.T) {
		in := IngestIn{Source: "web_form"}
		errs := in.Validate()
		assert.Contains(t, errs, "contact")
	})

	t.Run("whitespace-only identifiers count as absent", func(t *testing.T) {
		in := IngestIn{Source: "web_form", Contact: ContactIn{Email: "   ", Phone: " "}}
		errs := in.Validate()
		assert.Contains(t, errs, "contact")
	})

	t.Run("phone only passes", func(t *testing.T) {
		in := IngestIn{Source: "web_form", Contact: ContactIn{Phone: "+1 (555) 123-4567"}}
		assert.Empty(t, in.Validate())
		assert.Equal(t, "+1 (555) 123-4567", in.Contact.Phone)
	})

	t.Run("phone too short", func(t *testing.T) {
		in := IngestIn{Source: "web_form", Contact: ContactIn{Phone: "12345"}}
		assert.Contains(t, in.Validate(), "contact.phone")
	})

	t.Run("phone with letters", func(t *testing.T) {
		in := IngestIn{Source: "web_form", Contact: ContactIn{Phone: "call-me-maybe"}}
		assert.Contains(t, in.Validate(), "contact.phone")
	})

	t.Run("email is trimmed and lowercased", func(t *testing.T) {
		in := IngestIn{Source: "web_form", Contact: ContactIn{Email: "  USER@Example.COM "}}
		assert.Empty(t, in.Validate())
		assert.Equal(t, "user@example.com", in.Contact.Email)
	})

	t.Run("bad email format", func(t *testing.T) {
		in := IngestIn{Source: "web_form", Contact: ContactIn{Email: "not-an-email"}}
		assert.Contains(t, in.Validate(), "contact.email")
	})

	t.Run("name too long", func(t *testing.T) {
		in := IngestIn{
			Source:  "web_form",
			Contact: ContactIn{Email: "a@b.com", Name: strings.Repeat("n", maxNameLen+1)},
		}
		assert.Contains(t, in.Validate(), "contact.name")
	})

	t.Run("all errors reported together", func(t *testing.T) {
		in := IngestIn{Source: "", Contact: ContactIn{Email: "bad", Phone: "123"}}
		errs := in.Validate()
		assert.Contains(t, errs, "source")
		assert.Contains(t, errs, "contact.email")
		assert.Contains(t, errs, "contact.phone")
	})
}

func TestValidateContext(t *testing.T) {
	t.Run("absent defaults to empty object", func(t *testing.T) {
		in := IngestIn{Source: "web_form", Contact: ContactIn{Email: "a@b.com"}}
		assert.Empty(t, in.Validate())
		assert.NotNil(t, in.ContextMap())
		assert.Len(t, in.ContextMap(), 0)
	})

	t.Run("object is kept", func(t *testing.T) {
		in := IngestIn{
			Source:  "web_form",
			Contact: ContactIn{Email: "a@b.com"},
			Context: json.RawMessage(`{"cart_total": 42.5}`),
		}
		assert.Empty(t, in.Validate())
		assert.Equal(t, 42.5, in.ContextMap()["cart_total"])
	})

	t.Run("array is rejected", func(t *testing.T) {
		in := IngestIn{
			Source:  "web_form",
			Contact: ContactIn{Email: "a@b.com"},
			Context: json.RawMessage(`[1,2,3]`),
		}
		assert.Contains(t, in.Validate(), "context")
	})

	t.Run("scalar is rejected", func(t *testing.T) {
		in := IngestIn{
			Source:  "web_form",
			Contact: ContactIn{Email: "a@b.com"},
			Context: json.RawMessage(`"hi"`),
		}
		assert.Contains(t, in.Validate(), "context")
	})

	t.Run("metadata is an accepted alias", func(t *testing.T) {
		in := IngestIn{
			Source:   "web_form",
			Contact:  ContactIn{Email: "a@b.com"},
			Metadata: json.RawMessage(`{"page":"/pricing"}`),
		}
		assert.Empty(t, in.Validate())
		assert.Equal(t, "/pricing", in.ContextMap()["page"])
	})

	t.Run("bad metadata shape is reported on metadata", func(t *testing.T) {
		in := IngestIn{
			Source:   "web_form",
			Contact:  ContactIn{Email: "a@b.com"},
			Metadata: json.RawMessage(`[]`),
		}
		assert.Contains(t, in.Validate(), "metadata")
	})

	t.Run("null is treated as absent", func(t *testing.T) {
		in := IngestIn{
			Source:  "web_form",
			Contact: ContactIn{Email: "a@b.com"},
			Context: json.RawMessage(`null`),
		}
		assert.Empty(t, in.Validate())
		assert.Len(t, in.ContextMap(), 0)
	})
}
