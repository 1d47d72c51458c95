/*
coordinator.go - Stale-response guard for concurrent re-fetches

THE RACE:
  A view re-fetches a resource while an older request for the same resource
  is still in flight. With plain last-write-wins on COMPLETION order, the
  slower, older response can land after the newer one and overwrite fresher
  data.

THE FIX:
  Every logical fetch takes a monotonically increasing token per resource.
  When a response arrives, the caller asks Commit whether its token is
  still the latest issued; a stale token means the response must be
  discarded. Latest-ISSUED-wins replaces latest-completed-wins.

Tokens order fetches, they do not cancel them: an in-flight request is
allowed to finish, its result just gets dropped.
*/
package clubapi

import "sync"

// FetchCoordinator issues and checks per-resource fetch tokens. Safe for
// concurrent use.
type FetchCoordinator struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewFetchCoordinator creates an empty coordinator.
func NewFetchCoordinator() *FetchCoordinator {
	return &FetchCoordinator{latest: make(map[string]uint64)}
}

// Begin registers a new fetch for the resource and returns its token. Any
// token issued earlier for the same resource becomes stale immediately.
func (fc *FetchCoordinator) Begin(resource string) uint64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.latest[resource]++
	return fc.latest[resource]
}

// Commit reports whether the response carrying this token may be applied.
// False means a newer fetch was issued in the meantime and this response
// must be discarded.
func (fc *FetchCoordinator) Commit(resource string, token uint64) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.latest[resource] == token
}

// Latest returns the most recently issued token for the resource (0 when
// none was ever issued).
func (fc *FetchCoordinator) Latest(resource string) uint64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.latest[resource]
}
