// Package store defines the persistence contracts used by the services.
// Implementations live under internal/platform; every operation is scoped
// to the owning user.
package store
