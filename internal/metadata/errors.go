package metadata

import "fmt"

// SchemaError is returned when a metadata value is neither a string nor a
// non-empty list of strings.
type SchemaError struct {
	Key    string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("metadata schema: %s", e.Reason)
	}
	return fmt.Sprintf("metadata schema: key %q: %s", e.Key, e.Reason)
}

// AmbiguousFieldError is returned when a field that must hold exactly one
// non-empty value holds zero, several, or an empty one.
type AmbiguousFieldError struct {
	Field  string
	Values []string
}

func (e *AmbiguousFieldError) Error() string {
	switch len(e.Values) {
	case 0:
		return fmt.Sprintf("field %q has no value", e.Field)
	case 1:
		return fmt.Sprintf("field %q is empty", e.Field)
	default:
		return fmt.Sprintf("field %q has %d values, want exactly one", e.Field, len(e.Values))
	}
}

// ExpectOne returns the single value of field, or an AmbiguousFieldError.
func ExpectOne(field string, values []string) (string, error) {
	if len(values) != 1 || values[0] == "" {
		return "", &AmbiguousFieldError{Field: field, Values: values}
	}
	return values[0], nil
}
