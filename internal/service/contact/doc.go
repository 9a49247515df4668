// Package contact implements contact CRUD and paginated listing.
//
// Email addresses are normalized (trimmed, lower-cased) before they are
// stored or compared, and creating a second contact with the same normalized
// email is rejected with ErrEmailExists. Custom field values supplied by the
// client are written into the slot matching each field's declared type.
//
// The service depends on the Repository and FieldLookup interfaces defined
// in repository.go and never imports net/http or database/sql directly.
package contact
