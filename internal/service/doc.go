// Package service contains the application use cases. Services validate
// input, call the content generator and the stores defined in
// internal/store, publish activity events, and translate collaborator
// failures into the error kinds of the domain package.
//
// The authenticated user's ID is passed explicitly to every operation.
package service
