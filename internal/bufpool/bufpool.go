// Package bufpool pools the fixed-size byte buffers the pipeline uses to
// copy data between coder stages, sized for the source→coder copy loop
// (4 KiB).
package bufpool

import "sync"

// CopyBufferSize is the size of buffer the pipeline uses to shuttle bytes
// between one coder stage and the next.
const CopyBufferSize = 4 * 1024

var pool = sync.Pool{
	New: func() any {
		b := make([]byte, CopyBufferSize)
		return &b
	},
}

// Get returns a CopyBufferSize byte slice for exclusive use.
func Get() []byte {
	p, _ := pool.Get().(*[]byte)

	return *p
}

// Put returns a buffer obtained from Get back to the pool. Buffers of any
// other size are silently discarded rather than pooled.
func Put(b []byte) {
	if cap(b) != CopyBufferSize {
		return
	}

	b = b[:CopyBufferSize]
	pool.Put(&b)
}
