// Package event defines the envelope for everything the mirror state folds:
// payloads pushed by the storefront server and local lifecycle actions.
//
// Server events carry the raw JSON they arrived with so that the same bytes
// can be folded, cached for a warm start, and replayed.
package event
