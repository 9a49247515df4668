// Package httputil provides shared HTTP response/request helpers for the
// API handlers so every endpoint emits the same JSON shapes and error
// envelope.
package httputil
