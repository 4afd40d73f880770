// Package session holds the in-memory flashcard study sessions.
//
// A Session is a deck of generated cards with a cursor and a flip flag.
// Manager keeps one session per user, drives generation and records the
// resulting deck size in the user's progress. Janitor evicts sessions that
// have been idle for too long.
package session
