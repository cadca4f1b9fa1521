// Package sqlite provides SQLite-backed save slots.
//
// Each Store is bound to one slot name; several stores may share a database
// file and ListSlots reports every slot in it. A match id can occupy only one
// slot at a time.
package sqlite
