package utils

import (
	"io"
	"sync"
)

// flushableWriter matches writers that buffer output until flushed.
type flushableWriter interface {
	Flush() error
}

// FlushingWriter wraps a destination stream so pumped process output becomes
// visible as it arrives instead of sitting in a buffer until process exit.
// Writes are serialized, which keeps interleaved stdout and stderr chunks
// ordered when both pumps share a destination.
type FlushingWriter struct {
	destination io.Writer
	writeMutex  sync.Mutex
}

// NewFlushingWriter wraps the provided writer, flushing after each write when
// the writer supports it. Wrapping an already wrapped writer is a no-op.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write forwards the data to the wrapped writer and flushes it when possible.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.destination == nil {
		return 0, nil
	}

	flushingWriter.writeMutex.Lock()
	defer flushingWriter.writeMutex.Unlock()

	writtenCount, writeError := flushingWriter.destination.Write(data)
	if writeError != nil {
		return writtenCount, writeError
	}

	if bufferedDestination, supportsFlush := flushingWriter.destination.(flushableWriter); supportsFlush {
		if flushError := bufferedDestination.Flush(); flushError != nil {
			return writtenCount, flushError
		}
	}

	return writtenCount, nil
}
