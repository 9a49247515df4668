// Package merge implements the bulk-merge engine that consolidates contacts
// sharing a normalized email address.
//
// A merge runs in three steps against the Store interface: one bulk read of
// the candidate contacts, one atomic Apply of the whole plan (survivor
// updates, transferred custom field values, loser deletions), and one bulk
// re-read of the survivors for the result. Grouping and reconciliation are
// pure functions in plan.go and run sequentially in memory.
//
// Reconciliation is deliberately asymmetric. For first name, last name and
// phone the last loser (in creation order) with a non-blank value wins. For
// custom fields the survivor keeps its own values and a field it lacks is
// taken from the first loser that has it.
package merge
