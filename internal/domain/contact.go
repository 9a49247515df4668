package domain

import (
	"strings"
	"time"
)

// Contact is a person record. Email is stored normalized and is unique
// across all live contacts.
type Contact struct {
	ID                string             `json:"id"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Email             string             `json:"email"`
	Phone             *string            `json:"phone"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	CustomFieldValues []CustomFieldValue `json:"customFieldValues"`
}

// HasField reports whether the contact already holds a value for fieldID.
func (c *Contact) HasField(fieldID string) bool {
	for _, v := range c.CustomFieldValues {
		if v.CustomFieldID == fieldID {
			return true
		}
	}
	return false
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// The result is both the uniqueness key and the merge grouping key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// MergeResult summarizes a bulk merge. Both members are always non-nil so
// they serialize as [] and {} for an empty merge.
type MergeResult struct {
	MergedContacts     []Contact      `json:"mergedContacts"`
	MergedCountByEmail map[string]int `json:"mergedCountByEmail"`
}

// NewMergeResult returns an empty result.
func NewMergeResult() *MergeResult {
	return &MergeResult{
		MergedContacts:     []Contact{},
		MergedCountByEmail: map[string]int{},
	}
}
