// Package domain contains the core entities of the learning companion:
// users, progress records, learning paths and flashcards, together with the
// error kinds shared by every layer above it.
package domain
