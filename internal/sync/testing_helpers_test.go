// ABOUTME: Shared test helpers for internal/sync
// ABOUTME: Small ring constructors used across the package's test files
package sync

import "github.com/driftsync-project/driftsync-go/internal/ring"

func newEmptySampleRing() *ring.Ring[sample] {
	return ring.New[sample](DefaultCapacity)
}

func newSingleSampleRing(s sample) *ring.Ring[sample] {
	r := ring.New[sample](DefaultCapacity)
	r.Push(s)
	return r
}
