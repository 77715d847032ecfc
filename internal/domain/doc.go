// Package domain defines the task-management value types and the provider
// interfaces through which the rest of the application (and plugins, via the
// capability context) perform CRUD operations against the remote API.
//
// The concrete providers live outside this subsystem; everything here is the
// boundary surface only.
package domain
