package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in   string
		want FieldType
		ok   bool
	}{
		{"String", FieldTypeString, true},
		{"int", FieldTypeInt, true},
		{" BOOL ", FieldTypeBool, true},
		{"Date", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFieldType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFieldValue_OneSlotPopulated(t *testing.T) {
	s, n, b := IntValue(7).Slots()
	assert.Nil(t, s)
	assert.Nil(t, b)
	require.NotNil(t, n)
	assert.Equal(t, 7, *n)

	_, ok := IntValue(7).String()
	assert.False(t, ok)
}

func TestValueFromSlots_RejectsAmbiguous(t *testing.T) {
	str, num := "x", 1
	_, err := ValueFromSlots(&str, &num, nil)
	assert.Error(t, err)

	_, err = ValueFromSlots(nil, nil, nil)
	assert.Error(t, err)

	v, err := ValueFromSlots(nil, nil, boolPtr(true))
	require.NoError(t, err)
	assert.Equal(t, FieldTypeBool, v.Kind())
}

func TestValueForType_IgnoresOtherSlots(t *testing.T) {
	str, num := "hello", 3
	v, ok := ValueForType(FieldTypeInt, &str, &num, nil)
	require.True(t, ok)
	got, _ := v.Int()
	assert.Equal(t, 3, got)

	_, ok = ValueForType(FieldTypeBool, &str, &num, nil)
	assert.False(t, ok)
}

func TestCustomFieldValue_JSON(t *testing.T) {
	in := CustomFieldValue{CustomFieldID: "f1", CustomFieldName: "Tier", Value: StringValue("gold")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"customFieldId":"f1","customFieldName":"Tier","stringValue":"gold","intValue":null,"boolValue":null}`, string(data))

	var out CustomFieldValue
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "x@y.com", NormalizeEmail("  X@Y.COM "))
	assert.True(t, IsBlank(" \t"))
	assert.False(t, IsBlank(" a "))
}

func boolPtr(b bool) *bool { return &b }
