package pdfium

import (
	"sync"
	"sync/atomic"
)

// gate serializes every call into the native engine.
//
// PDFium keeps global mutable state and must be entered by one caller at a
// time no matter how many goroutines the process runs. There is exactly one
// gate per process (engineGate); every exported operation in this package
// funnels its native calls through withLock. The gate is not reentrant: an
// op must never call back into an exported operation that takes the gate.
type gate struct {
	mu           sync.Mutex
	held         atomic.Bool
	acquisitions atomic.Int64
}

// engineGate guards the one engine a process may have initialized.
var engineGate gate

// withLock runs op with exclusive access to the engine and returns its
// result. The gate is released on every exit path, panics included.
// Acquisition blocks without timeout.
func (g *gate) withLock(op func() error) error {
	g.mu.Lock()
	g.held.Store(true)
	g.acquisitions.Add(1)
	defer func() {
		g.held.Store(false)
		g.mu.Unlock()
	}()
	return op()
}

// isHeld reports whether some caller is inside withLock.
func (g *gate) isHeld() bool {
	return g.held.Load()
}

// count returns the number of acquisitions so far.
func (g *gate) count() int64 {
	return g.acquisitions.Load()
}
