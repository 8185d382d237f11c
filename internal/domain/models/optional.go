package models

// OptionalString tracks tri-state semantics for nullable PATCH fields (RFC 7396).
// This is transport-agnostic (no JSON tags) - handlers convert with httputil.OptionalString.Domain.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"text": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// Apply writes the value into dst when present.
func (o OptionalString) Apply(dst **string) {
	if o.Present {
		*dst = o.Value
	}
}

// SetString builds a present OptionalString.
func SetString(v *string) OptionalString {
	return OptionalString{Present: true, Value: v}
}
