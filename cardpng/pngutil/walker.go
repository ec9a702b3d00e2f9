package pngutil

import (
	"encoding/binary"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
)

// Walker iterates over the chunks of an in-memory PNG stream. It is lazy and
// forward-only: each Next decodes one chunk header without copying its data.
// A Walker stops after yielding IEND, at the end of the stream, or at the
// first malformed chunk, in which case Err reports why.
//
//	w, err := pngutil.NewWalker(stream)
//	if err != nil {
//		return err
//	}
//	for w.Next() {
//		c := w.Chunk()
//		...
//	}
//	if err := w.Err(); err != nil {
//		return err
//	}
type Walker struct {
	stream []byte
	offset int
	chunk  Chunk
	err    error
	done   bool
}

// NewWalker validates the PNG signature and returns a Walker positioned at
// the first chunk. Every call starts a fresh traversal.
func NewWalker(stream []byte) (*Walker, error) {
	if !HasSignature(stream) {
		n := len(stream)
		if n > len(Signature) {
			n = len(Signature)
		}
		return nil, cerrors.NewInvalidSignatureError(stream[:n])
	}
	return &Walker{stream: stream, offset: len(Signature)}, nil
}

// Next advances to the next chunk and reports whether one is available.
func (w *Walker) Next() bool {
	if w.done {
		return false
	}

	remaining := len(w.stream) - w.offset
	if remaining == 0 {
		w.done = true
		return false
	}
	if remaining < 8 {
		return w.fail(cerrors.NewTruncatedStreamError(w.offset, ChunkOverhead, remaining))
	}

	src := w.stream[w.offset:]
	length := binary.BigEndian.Uint32(src[0:4])
	need := uint64(ChunkOverhead) + uint64(length)
	if uint64(remaining) < need {
		return w.fail(cerrors.NewTruncatedStreamError(w.offset, need, remaining))
	}

	var typ ChunkType
	copy(typ[:], src[4:8])
	end := int(need)
	w.chunk = Chunk{
		Offset: w.offset,
		Length: length,
		Type:   typ,
		Data:   src[8 : end-4 : end-4],
		CRC:    binary.BigEndian.Uint32(src[end-4 : end]),
		raw:    src[:end:end],
	}
	w.offset += end
	if typ == TypeIEND {
		w.done = true
	}
	return true
}

// Chunk returns the chunk produced by the last successful Next.
func (w *Walker) Chunk() Chunk {
	return w.chunk
}

// Err returns the error that stopped the walk, if any.
func (w *Walker) Err() error {
	return w.err
}

// Offset returns the byte offset just past the last chunk yielded.
func (w *Walker) Offset() int {
	return w.offset
}

func (w *Walker) fail(err error) bool {
	w.err = err
	w.done = true
	w.chunk = Chunk{}
	return false
}

// Chunks walks the whole stream and returns every chunk up to and including
// IEND. Use a Walker directly when an early exit is possible.
func Chunks(stream []byte) ([]Chunk, error) {
	w, err := NewWalker(stream)
	if err != nil {
		return nil, err
	}
	var chunks []Chunk
	for w.Next() {
		chunks = append(chunks, w.Chunk())
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// FindChunk returns the first chunk of the given type.
func FindChunk(stream []byte, typ ChunkType) (Chunk, bool, error) {
	w, err := NewWalker(stream)
	if err != nil {
		return Chunk{}, false, err
	}
	for w.Next() {
		if c := w.Chunk(); c.Type == typ {
			return c, true, nil
		}
	}
	return Chunk{}, false, w.Err()
}
