package pdfium

import "sync"

// borrows counts the live children of a handle (documents of a library,
// pages of a document) and refuses new children once the handle retires.
//
// Usage:
//
//	if !doc.pages.acquire() {
//	    return lifetimeError("loadPage", "document")
//	}
//	// ... on failure: doc.pages.release()
//
//	// Close:
//	if live, ok := doc.pages.retire(); !ok {
//	    return borrowedError("close", "document", live)
//	}
//
// acquire and retire are decided under one mutex, so a child can never
// slip in between a successful retire and the native teardown.
type borrows struct {
	mu      sync.Mutex
	active  int
	retired bool
}

// acquire registers a new child. It returns false once the parent retired.
func (b *borrows) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.retired {
		return false
	}
	b.active++
	return true
}

// release drops a child registered by acquire.
func (b *borrows) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active > 0 {
		b.active--
	}
}

// retire marks the parent closed if no children are live.
// It returns the live count and whether the parent is now retired.
// Retiring twice succeeds.
func (b *borrows) retire() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active > 0 {
		return b.active, false
	}
	b.retired = true
	return 0, true
}

// live returns the number of live children.
func (b *borrows) live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// isRetired reports whether retire has succeeded.
func (b *borrows) isRetired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.retired
}
