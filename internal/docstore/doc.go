// Package docstore provides the shared persistence primitive for the
// coordination stores: a cross-process advisory lock scoped to a single
// document path, plus durable JSON read/write helpers.
//
// Every coordination document (a team's config, a team's task queue, an
// agent's inbox) is the unit of atomicity. A store performs each
// read-modify-write sequence while holding the document's FileLock, so two
// processes mutating the same document are serialized while operations on
// different documents never block each other.
package docstore
