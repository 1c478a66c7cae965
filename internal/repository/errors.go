// Package repository provides MySQL data access for trains, holds,
// bookings, users and refresh tokens, plus in-memory variants of the
// reservation stores for tests.  Domain-meaningful failures are
// reported through the sentinel errors in internal/model so services
// and handlers can branch with errors.Is; anything else is a raw
// driver error.
package repository

import "errors"

// ErrEmailExists is returned when registering an email that is
// already taken.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
