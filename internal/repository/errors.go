// Package repository persists the hotel's state in MySQL: engine snapshots
// (bookings and their rooms), user accounts and refresh tokens.  The
// sentinel values below let handlers and services distinguish failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when registering an email that is taken.
// Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenInvalid is returned when a refresh token is unknown, revoked or
// expired.  Handlers translate it into HTTP 401.
var ErrTokenInvalid = errors.New("refresh token invalid")

// ErrNoSnapshot is returned by SnapshotRepo.Load when nothing has been
// saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")
