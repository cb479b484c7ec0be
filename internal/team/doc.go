// Package team implements the membership registry: the durable record of one
// team's identity and members.
//
// Each team owns a single document at teams/{name}/config.json under the
// registry's root. Every mutation runs its full load-modify-save sequence
// under the document's cross-process lock, so concurrent member updates from
// independent agent processes never lose writes.
package team
