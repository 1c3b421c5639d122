package gfx

import "fmt"

// SyncToken marks a point in the command stream of a deferred execution
// context. A token is released once every command submitted before it has
// executed. The zero token is invalid and is considered released.
type SyncToken struct {
	Release uint64
}

// IsValid reports whether t refers to submitted work.
func (t SyncToken) IsValid() bool {
	return t.Release != 0
}

func (t SyncToken) String() string {
	if !t.IsValid() {
		return "SyncToken(invalid)"
	}
	return fmt.Sprintf("SyncToken(%d)", t.Release)
}
