package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FieldType is the declared type of a custom field.
type FieldType string

const (
	FieldTypeString FieldType = "String"
	FieldTypeInt    FieldType = "Int"
	FieldTypeBool   FieldType = "Bool"
)

// Valid reports whether t is one of the recognized field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeString, FieldTypeInt, FieldTypeBool:
		return true
	}
	return false
}

// ParseFieldType accepts any casing of a recognized type name and returns
// its canonical spelling.
func ParseFieldType(s string) (FieldType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return FieldTypeString, true
	case "int":
		return FieldTypeInt, true
	case "bool":
		return FieldTypeBool, true
	}
	return "", false
}

// CustomField is a user-defined, typed attribute attachable to contacts.
type CustomField struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FieldType FieldType `json:"fieldType"`
	CreatedAt time.Time `json:"createdAt"`
}

// FieldValue holds exactly one typed payload. The populated slot is fixed by
// the constructor, so a value written as Int stays Int even if its field
// definition is later retyped.
type FieldValue struct {
	kind FieldType
	str  string
	num  int
	flag bool
}

// StringValue returns a String-kind value.
func StringValue(s string) FieldValue { return FieldValue{kind: FieldTypeString, str: s} }

// IntValue returns an Int-kind value.
func IntValue(n int) FieldValue { return FieldValue{kind: FieldTypeInt, num: n} }

// BoolValue returns a Bool-kind value.
func BoolValue(b bool) FieldValue { return FieldValue{kind: FieldTypeBool, flag: b} }

// Kind returns the slot this value occupies.
func (v FieldValue) Kind() FieldType { return v.kind }

// String returns the payload of a String-kind value.
func (v FieldValue) String() (string, bool) { return v.str, v.kind == FieldTypeString }

// Int returns the payload of an Int-kind value.
func (v FieldValue) Int() (int, bool) { return v.num, v.kind == FieldTypeInt }

// Bool returns the payload of a Bool-kind value.
func (v FieldValue) Bool() (bool, bool) { return v.flag, v.kind == FieldTypeBool }

// Slots spreads the value across three nullable slots, the shape used by the
// storage schema and the wire format.
func (v FieldValue) Slots() (s *string, n *int, b *bool) {
	switch v.kind {
	case FieldTypeString:
		str := v.str
		s = &str
	case FieldTypeInt:
		num := v.num
		n = &num
	case FieldTypeBool:
		flag := v.flag
		b = &flag
	}
	return s, n, b
}

// ValueFromSlots rebuilds a value from nullable slots. Exactly one slot must
// be set.
func ValueFromSlots(s *string, n *int, b *bool) (FieldValue, error) {
	set := 0
	var v FieldValue
	if s != nil {
		set++
		v = StringValue(*s)
	}
	if n != nil {
		set++
		v = IntValue(*n)
	}
	if b != nil {
		set++
		v = BoolValue(*b)
	}
	if set != 1 {
		return FieldValue{}, fmt.Errorf("field value must populate exactly one slot, got %d", set)
	}
	return v, nil
}

// ValueForType picks the slot matching the declared type from loosely typed
// input. The second result is false when the matching slot is absent.
func ValueForType(t FieldType, s *string, n *int, b *bool) (FieldValue, bool) {
	switch t {
	case FieldTypeString:
		if s != nil {
			return StringValue(*s), true
		}
	case FieldTypeInt:
		if n != nil {
			return IntValue(*n), true
		}
	case FieldTypeBool:
		if b != nil {
			return BoolValue(*b), true
		}
	}
	return FieldValue{}, false
}

// CustomFieldValue is a contact's value for one custom field.
type CustomFieldValue struct {
	CustomFieldID   string
	CustomFieldName string
	Value           FieldValue
}

type customFieldValueJSON struct {
	CustomFieldID   string  `json:"customFieldId"`
	CustomFieldName *string `json:"customFieldName"`
	StringValue     *string `json:"stringValue"`
	IntValue        *int    `json:"intValue"`
	BoolValue       *bool   `json:"boolValue"`
}

// MarshalJSON renders the value with one populated slot and the others null.
func (cv CustomFieldValue) MarshalJSON() ([]byte, error) {
	out := customFieldValueJSON{CustomFieldID: cv.CustomFieldID}
	if cv.CustomFieldName != "" {
		name := cv.CustomFieldName
		out.CustomFieldName = &name
	}
	out.StringValue, out.IntValue, out.BoolValue = cv.Value.Slots()
	return json.Marshal(out)
}

// UnmarshalJSON accepts the wire form. Exactly one slot must be set.
func (cv *CustomFieldValue) UnmarshalJSON(data []byte) error {
	var in customFieldValueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v, err := ValueFromSlots(in.StringValue, in.IntValue, in.BoolValue)
	if err != nil {
		return err
	}
	cv.CustomFieldID = in.CustomFieldID
	cv.CustomFieldName = ""
	if in.CustomFieldName != nil {
		cv.CustomFieldName = *in.CustomFieldName
	}
	cv.Value = v
	return nil
}
