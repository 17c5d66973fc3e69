package pdfium

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"go_pdfium/fpdf"
)

// initialized is the process-wide flag behind the one-Library rule.
var initialized atomic.Bool

// Library is the process-wide handle on an initialized engine.
//
// At most one Library is live per process. Documents opened from it borrow
// it: Close fails with ErrHandleStillBorrowed until every Document is
// closed. After a successful Close a new Library may be initialized.
type Library struct {
	engine fpdf.Engine
	docs   borrows

	closeMu sync.Mutex
	closed  bool
}

// Init initializes engine and returns the process's Library.
//
// Init fails with ErrAlreadyInitialized while another Library is live. The
// native FPDF_InitLibraryWithConfig call runs under the engine gate.
func Init(engine fpdf.Engine) (*Library, error) {
	if engine == nil {
		return nil, &Error{Op: "init", Message: "nil engine", Err: ErrEngine}
	}
	if !initialized.CompareAndSwap(false, true) {
		return nil, &Error{Op: "init", Message: "another Library is live in this process", Err: ErrAlreadyInitialized}
	}

	start := time.Now()
	_ = engineGate.withLock(func() error {
		engine.InitLibrary()
		return nil
	})

	Logger().Info("library initialized",
		zap.String("engine", engineName(engine)),
		zap.Duration("duration", time.Since(start)))

	return &Library{engine: engine}, nil
}

// Close tears the engine down.
//
// Close fails with ErrHandleStillBorrowed (an ErrLifetimeViolation) while any
// Document opened from l is alive, leaving the Library usable. Closing an
// already closed Library is a no-op.
func (l *Library) Close() error {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()

	if l.closed {
		return nil
	}
	if live, ok := l.docs.retire(); !ok {
		err := borrowedError("close", "library", live)
		Logger().Warn("library close refused", zap.Int("live_documents", live))
		return err
	}

	_ = engineGate.withLock(func() error {
		l.engine.DestroyLibrary()
		return nil
	})
	l.closed = true
	initialized.Store(false)

	Logger().Info("library destroyed", zap.String("engine", engineName(l.engine)))
	return nil
}

// DocumentCount returns the number of open documents.
func (l *Library) DocumentCount() int {
	return l.docs.live()
}

// EngineName names the engine for logs and status output.
func (l *Library) EngineName() string {
	return engineName(l.engine)
}

// Source identifies what a Document is opened from.
// A non-empty Path wins over Data.
type Source struct {
	Path string
	Data []byte
}

// FileSource returns a Source reading the file at path.
func FileSource(path string) Source {
	return Source{Path: path}
}

// BytesSource returns a Source over an in-memory PDF.
func BytesSource(data []byte) Source {
	return Source{Data: data}
}

func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return fmt.Sprintf("<memory: %d bytes>", len(s.Data))
}

// Open parses src with the given password ("" for none).
//
// Errors: ErrIO when the file cannot be read, ErrInvalidFormat when the
// bytes are not a PDF, ErrIncorrectPassword when the password is missing or
// wrong, ErrUnsupportedSecurity for unknown security handlers,
// ErrLifetimeViolation when l is closed, ErrEngine otherwise.
//
// For a memory source the engine reads Data for the whole life of the
// Document; the caller must not modify it until Close.
func (l *Library) Open(src Source, password string) (*Document, error) {
	if !l.docs.acquire() {
		return nil, lifetimeError("open", "library")
	}

	start := time.Now()
	var handle fpdf.Document
	var code fpdf.ErrorCode
	_ = engineGate.withLock(func() error {
		if src.Path != "" {
			handle = l.engine.LoadDocument(src.Path, password)
		} else {
			handle = l.engine.LoadMemDocument(src.Data, password)
		}
		if handle == 0 {
			code = l.engine.GetLastError()
		}
		return nil
	})

	if handle == 0 {
		l.docs.release()
		err := openError("open", code, src.String())
		Logger().Warn("document open failed",
			zap.String("source", src.String()),
			zap.Stringer("code", code),
			zap.Error(err))
		return nil, err
	}

	doc := newDocument(l, handle, src)
	Logger().Debug("document opened",
		zap.String("doc_id", doc.id),
		zap.String("source", src.String()),
		zap.Duration("duration", time.Since(start)))
	return doc, nil
}

// OpenFile opens the PDF at path.
func (l *Library) OpenFile(path, password string) (*Document, error) {
	if path == "" {
		return nil, &Error{Op: "open", Message: "empty path", Err: ErrIO}
	}
	return l.Open(FileSource(path), password)
}

// OpenBytes opens an in-memory PDF. See Open for the buffer contract.
func (l *Library) OpenBytes(data []byte, password string) (*Document, error) {
	return l.Open(BytesSource(data), password)
}

func engineName(e fpdf.Engine) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", e)
}
