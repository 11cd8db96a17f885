package model

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// RawField is one untyped form value. It keeps "not sent" apart from
// "sent as zero" so validation never relies on truthiness.
type RawField struct {
	Text    string
	Present bool
}

// Text builds a present field.
func Text(s string) RawField { return RawField{Text: s, Present: true} }

// Missing reports whether the field was absent or blank.
func (f RawField) Missing() bool {
	return !f.Present || strings.TrimSpace(f.Text) == ""
}

// UnmarshalJSON accepts JSON strings and numbers; null leaves the field absent.
// Any other literal is kept verbatim so validation can reject it as non-numeric.
func (f *RawField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = RawField{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Text(s)
		return nil
	}
	*f = Text(string(b))
	return nil
}

// MarshalJSON writes absent fields as null and present ones as strings.
func (f RawField) MarshalJSON() ([]byte, error) {
	if !f.Present {
		return []byte("null"), nil
	}
	return json.Marshal(f.Text)
}

// RawSubmission is the collaborator input for one kiosk submission. Only the
// numeric fields the configured measurement kind asks for are read.
type RawSubmission struct {
	SubmissionID string   `json:"submission_id,omitempty"`
	Name         RawField `json:"name"`
	Age          RawField `json:"age"`
	Measurement  RawField `json:"measurement"`
	Feet         RawField `json:"feet"`
	Inches       RawField `json:"inches"`
}

// Field returns a numeric input by its form name.
func (s RawSubmission) Field(name string) RawField {
	switch name {
	case "measurement":
		return s.Measurement
	case "feet":
		return s.Feet
	case "inches":
		return s.Inches
	case "age":
		return s.Age
	case "name":
		return s.Name
	default:
		return RawField{}
	}
}

// SubmissionFromForm reads a urlencoded kiosk form.
func SubmissionFromForm(form url.Values) RawSubmission {
	field := func(key string) RawField {
		if _, ok := form[key]; !ok {
			return RawField{}
		}
		return Text(form.Get(key))
	}
	return RawSubmission{
		SubmissionID: form.Get("submission_id"),
		Name:         field("name"),
		Age:          field("age"),
		Measurement:  field("measurement"),
		Feet:         field("feet"),
		Inches:       field("inches"),
	}
}
