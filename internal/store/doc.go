// Package store persists named mixes.
//
// Two backends implement Store: FileStore, a single JSON document written
// atomically, and SQLiteStore, a SQLite table. Open picks one from the
// settings. The mixer always saves to and seeds from DefaultMixName.
//
// Watch reports changes to the backing file so a running UI can reload
// mixes saved from the command line.
package store
