// Package customfield implements the custom field registry: the catalog of
// typed field definitions that contacts can carry values for.
//
// The service validates field types and delegates persistence to the
// Repository interface defined in repository.go. Implementations live in
// repository/postgres/ and repository/memory/; repository/rediscache/ wraps
// any of them with a read-through cache.
package customfield
