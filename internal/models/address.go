package models

// Address is a queued address awaiting resolution.
type Address struct {
	ID  int    // ID is the unique identifier of the queue entry.
	Raw string // Raw is the free-text address to be resolved.
}
