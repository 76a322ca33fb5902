package encryption

import (
	"sync"
)

// chunkSize bounds how much of a file is held in memory at once.
const chunkSize = 4096

// bufferPool provides reusable chunk buffers for file I/O.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		return make([]byte, chunkSize)
	},
}
