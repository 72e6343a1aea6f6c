// Package accounts persists the virtual mail data vmaild answers for in
// SQLite: domains, users with their quota usage, forwards, vacation messages,
// and the record of which senders were already sent an autoreply.
//
// Deleting a domain removes its users and forwards; deleting a user removes
// its quota row and vacation; deleting a vacation removes its notification
// history. The cascades are enforced by foreign keys, so the connection
// always runs with PRAGMA foreign_keys enabled.
//
// Schema changes bump the version in schema.go; operators recreate the
// database to adopt the new schema.
package accounts
