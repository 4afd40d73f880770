// Package events publishes user activity (flashcards generated, paths
// created or deleted, quiz attempts recorded) to in-process handlers so that
// caches and audit logging stay decoupled from the services that act.
package events
