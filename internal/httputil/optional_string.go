package httputil

import (
	"bytes"
	"encoding/json"
	"strings"

	"agora/internal/domain/models"
)

// OptionalString decodes a nullable PATCH field (RFC 7396):
//   - absent: Present=false, leave the column alone
//   - null or blank: Present=true, Value=nil, clear the column
//   - "text": Present=true, Value=&"text"
//
// Every nullable column in the API is a reference or a URL, so a blank string
// from a form is treated as a clear.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the key is present.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s = strings.TrimSpace(s); s != "" {
		o.Value = &s
	}
	return nil
}

// Domain converts to the service-layer tri-state.
func (o OptionalString) Domain() models.OptionalString {
	return models.OptionalString{Present: o.Present, Value: o.Value}
}
