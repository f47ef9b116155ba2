package mark

import (
	"github.com/charmbracelet/log"

	"github.com/dshills/coremark/internal/event"
)

// Default configuration values.
const (
	DefaultCheckLimit   = 1000
	DefaultPointHistory = 8
)

// Option configures a Document during creation.
type Option func(*Document)

// WithID sets the document identity used in events and logs.
func WithID(id string) Option {
	return func(d *Document) {
		if id != "" {
			d.id = id
		}
	}
}

// WithSeqLimit lowers the largest sequence key the document may assign.
// Limits below 16 are ignored.
func WithSeqLimit(limit Seq) Option {
	return func(d *Document) {
		if limit >= 16 && limit <= DefaultSeqLimit {
			d.seqLimit = limit
		}
	}
}

// WithCheckLimit caps the number of entries a consistency check visits
// per list.
func WithCheckLimit(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.checkLimit = n
		}
	}
}

// WithValidateEachOp runs a consistency check after every mutating call.
func WithValidateEachOp() Option {
	return func(d *Document) {
		d.validateEachOp = true
	}
}

// WithStrictChecks makes a failed consistency check panic with
// ErrInconsistent instead of only reporting it.
func WithStrictChecks() Option {
	return func(d *Document) {
		d.strict = true
	}
}

// WithMoveChecks validates neighbor ordering after every MoveTo.
func WithMoveChecks() Option {
	return func(d *Document) {
		d.checkMoves = true
	}
}

// WithPointHistory sets the size of the recently-visited point ring.
func WithPointHistory(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.history = newPointRing(n)
		}
	}
}

// WithRefCount installs a callback invoked whenever a mark's ref changes.
func WithRefCount(fn RefCountFunc) Option {
	return func(d *Document) {
		d.refCount = fn
	}
}

// WithBus sets the publisher that receives mark notifications.
func WithBus(p event.Publisher) Option {
	return func(d *Document) {
		d.bus = p
	}
}

// WithLogger sets the logger for warnings and debug traces.
func WithLogger(l *log.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}
