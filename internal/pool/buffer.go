package pool

import (
	"bytes"
	"sync"
)

// maxPooledBuffer bounds the capacity of buffers kept for reuse so one large
// DOTS picture does not pin its memory forever.
const maxPooledBuffer = 64 << 10

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// GetBuffer returns an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf, _ := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	return buf
}

// PutBuffer returns buf to the pool. buf must not be used afterwards.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}
