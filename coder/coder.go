// Package coder is the 7z codec registry: it maps coder IDs (as they appear
// in a block's coder descriptors) to encoder/decoder factories, and defines
// the minimal streaming contract every codec/filter/encryption coder must
// satisfy.
//
// This generalizes a whole-buffer Compress/Decompress-pair-keyed-by-a-1-byte-
// type registry shape to a streaming push/pull pair keyed by an arbitrary
// 1..15-byte coder ID, which is what the 7z pipeline needs: coders are
// chained, and a decoder must stop exactly at a declared unpacked size
// rather than consume its whole input.
package coder

import "io"

// Encoder is a push-model compressor: callers write plain bytes in and the
// encoder writes compressed bytes to its sink as it goes. Close flushes any
// codec-specific footer and must be called exactly once, after the last
// Write.
type Encoder interface {
	io.WriteCloser
}

// Decoder is a pull-model decompressor: callers Read compressed bytes back
// out as plain bytes. Read returns io.EOF once the coder's declared
// unpacked size has been produced, even if the underlying source has more
// bytes (a later coder stage, or the next packed stream).
type Decoder interface {
	io.ReadCloser
}

// EncoderFactory builds an Encoder that writes compressed output to sink.
// options is the coder's properties blob (codec-specific, may be nil).
type EncoderFactory func(options []byte, sink io.Writer) (Encoder, error)

// DecoderFactory builds a Decoder that reads compressed input from source.
// packSize is the compressed byte count available from source (some codecs,
// notably BCJ2, need to know this up front); unpackSize is the declared
// uncompressed size the Decoder must stop at.
type DecoderFactory func(options []byte, source io.Reader, packSize, unpackSize int64) (Decoder, error)

// PasswordSetter is implemented by decoders/encoders for encryption coders;
// the pipeline builder calls SetPassword after construction, before any
// Read/Write, when a password was supplied to the archive.
type PasswordSetter interface {
	SetPassword(password []byte) error
}

type entry struct {
	name    string
	encode  EncoderFactory
	decode  DecoderFactory
	isCrypt bool
}

var registry = map[string]*entry{}

// Register adds a codec to the registry, keyed by its raw ID bytes (1..15
// bytes, as they appear on the wire). Intended to be called from package
// init functions; panics on a duplicate ID, which would indicate a bug in
// this package rather than anything a caller can recover from.
func Register(id []byte, name string, encode EncoderFactory, decode DecoderFactory, isCrypt bool) {
	key := string(id)
	if _, dup := registry[key]; dup {
		panic("coder: duplicate registration for id " + name)
	}

	registry[key] = &entry{name: name, encode: encode, decode: decode, isCrypt: isCrypt}
}

// lookup returns the registered entry for id, or nil if none is registered.
func lookup(id []byte) *entry {
	return registry[string(id)]
}

// IsEncryption reports whether id names a registered encryption coder.
func IsEncryption(id []byte) bool {
	e := lookup(id)

	return e != nil && e.isCrypt
}

// Name returns the human-readable name registered for id, or "" if unknown.
func Name(id []byte) string {
	e := lookup(id)
	if e == nil {
		return ""
	}

	return e.name
}

// NewEncoder builds an Encoder for the given coder ID.
func NewEncoder(id, options []byte, sink io.Writer) (Encoder, error) {
	e := lookup(id)
	if e == nil || e.encode == nil {
		return nil, newUnsupported(id)
	}

	return e.encode(options, sink)
}

// NewDecoder builds a Decoder for the given coder ID.
func NewDecoder(id, options []byte, source io.Reader, packSize, unpackSize int64) (Decoder, error) {
	e := lookup(id)
	if e == nil || e.decode == nil {
		return nil, newUnsupported(id)
	}

	return e.decode(options, source, packSize, unpackSize)
}
