package validation

import "errors"

// Sentinel error kinds. Match with errors.Is; the concrete *Error carries the field.
var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidNumber = errors.New("invalid number")
)

// Error is a rejected submission. Its message is shown to the participant verbatim.
type Error struct {
	Field string
	Kind  error
	Msg   string
}

func (e *Error) Error() string { return e.Msg }

// Unwrap exposes the sentinel kind.
func (e *Error) Unwrap() error { return e.Kind }

func missing(field string) *Error {
	return &Error{Field: field, Kind: ErrMissingField, Msg: "please fill in all the fields: " + field + " is missing"}
}

func invalid(field, want string) *Error {
	return &Error{Field: field, Kind: ErrInvalidNumber, Msg: field + " must be " + want}
}
