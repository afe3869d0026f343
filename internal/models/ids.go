package models

import "github.com/bluesky-social/indigo/atproto/syntax"

var tidClock = syntax.NewTIDClock(0)

// NewID returns a new record ID. IDs are TIDs, so lexical order is creation order.
func NewID() string {
	return tidClock.Next().String()
}
