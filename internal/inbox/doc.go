// Package inbox implements per-agent mailboxes for inter-teammate messaging.
//
// Each agent owns one document, inboxes/{name}.json: an append-only array of
// messages with per-message read flags. Sends and unread-consumption hold the
// recipient document's cross-process lock for the full read-modify-write, so
// a message is never lost to a concurrent writer and read-once consumption is
// exact.
package inbox
