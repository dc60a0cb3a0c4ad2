package scan

import (
	"io"

	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
	"github.com/GonxKZ/disksense64-sub000/pkg/hashing"
	"github.com/GonxKZ/disksense64-sub000/pkg/stream"
)

// signatureChunkSize is the number of bytes read from the head and from the
// tail of a file when computing its head/tail signature.
const signatureChunkSize = 16 * 1024

// fullHashChunkSize is the buffer size used when streaming a whole file
// through the full-content hasher.
const fullHashChunkSize = 64 * 1024

// computeHeadTailSignature reads up to signatureChunkSize bytes from the
// start of file and up to signatureChunkSize bytes from its end, hashing the
// concatenation of both with a single BLAKE3 pass. Files no larger than
// 2*signatureChunkSize are hashed in their entirety: a file of at most
// signatureChunkSize bytes is covered by the head read alone, and for a
// larger one the tail read starts where the head read ended.
func computeHeadTailSignature(file filesystem.ReadableFile, size uint64) ([]byte, error) {
	hasher := hashing.New()

	head := make([]byte, signatureChunkSize)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	if _, err := hasher.Write(head[:n]); err != nil {
		return nil, err
	}

	if size > signatureChunkSize {
		tailStart := int64(size) - signatureChunkSize
		if tailStart < int64(n) {
			// Head and tail windows overlap; only hash the non-overlapping
			// remainder of the tail.
			tailStart = int64(n)
		}
		if _, err := file.Seek(tailStart, io.SeekStart); err != nil {
			return nil, err
		}
		tail := make([]byte, signatureChunkSize)
		tn, err := io.ReadFull(file, tail)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, err
		}
		if _, err := hasher.Write(tail[:tn]); err != nil {
			return nil, err
		}
	}

	return hasher.Sum(nil), nil
}

// computeFullHash streams the entire file through a BLAKE3 hasher in
// fullHashChunkSize chunks, checking cancelled after each chunk so a large
// file doesn't delay a requested cancellation.
func computeFullHash(file filesystem.ReadableFile, cancelled <-chan struct{}) ([]byte, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	hasher := hashing.New()
	writer := stream.NewPreemptableWriter(hasher, cancelled, 0)

	buffer := make([]byte, fullHashChunkSize)
	if _, err := io.CopyBuffer(writer, file, buffer); err != nil {
		return nil, err
	}
	return hasher.Sum(nil), nil
}
