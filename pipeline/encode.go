package pipeline

import (
	"fmt"
	"io"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
	"github.com/go7z/sevenz/crc"
)

// EncodeChain is a built encode pipeline: the caller writes uncompressed
// bytes to it (via io.Writer) and must Close it once done, then read
// Sizes() for the block's per-coder output-size vector.
type EncodeChain struct {
	io.WriteCloser
	stages []*crc.Writer
}

// Sizes returns each coder's declared output size, in declaration order,
// matching archive.Block.Sizes: decoding coder i produces exactly the
// number of bytes coder i's encoder received as input, so each stage's
// counter sits on the encoder's input side, not its output side.
func (e *EncodeChain) Sizes() []uint64 {
	out := make([]uint64, len(e.stages))
	for i, s := range e.stages {
		out[i] = uint64(s.Count())
	}

	return out
}

type chainEntry struct {
	entry    io.Writer    // stages[len-1], where callers write raw bytes
	encoders []coder.Encoder // declaration order, closed innermost-last
}

func (c *chainEntry) Write(p []byte) (int, error) {
	return c.entry.Write(p)
}

func (c *chainEntry) Close() error {
	for i := len(c.encoders) - 1; i >= 0; i-- {
		if err := c.encoders[i].Close(); err != nil {
			return err
		}
	}

	return nil
}

// BuildEncodeChain builds a strictly linear coder chain: coders is in
// block-descriptor declaration order, and uncompressed input enters the
// last-declared coder, each stage's output feeding the previous declared
// coder's input, terminating at sink. This covers every topology the writer
// ever produces (a single compressor, optionally
// preceded by one filter and/or followed by one encryption coder); it does
// not attempt to build an arbitrary bind-pair DAG the way NewBlockDecoder
// does for reading, since the writer never emits one.
func BuildEncodeChain(coders []archive.Coder, sink io.Writer, password []byte) (*EncodeChain, error) {
	if len(coders) == 0 {
		return nil, fmt.Errorf("pipeline: empty coder chain")
	}

	stages := make([]*crc.Writer, len(coders))
	encoders := make([]coder.Encoder, len(coders))

	// next is the writer that coder i's encoded output is written to: the
	// sink for i == 0, or coder i-1's input counter otherwise.
	var next io.Writer = sink

	for i := 0; i < len(coders); i++ {
		co := coders[i]
		if co.In != 1 || co.Out != 1 {
			return nil, fmt.Errorf("pipeline: encode chain requires single in/out coders, got %x (in=%d out=%d)", co.ID, co.In, co.Out)
		}

		enc, err := coder.NewEncoder(co.ID, co.Properties, next)
		if err != nil {
			return nil, err
		}

		if coder.IsEncryption(co.ID) {
			ps, ok := enc.(coder.PasswordSetter)
			if !ok {
				return nil, fmt.Errorf("pipeline: encryption coder %x does not implement PasswordSetter", co.ID)
			}

			if err := ps.SetPassword(password); err != nil {
				return nil, err
			}
		}

		// inputCounter tallies the plain bytes coder i receives, which is
		// exactly the byte count its decoder must later reproduce as
		// output — archive.Block.Sizes' convention.
		inputCounter := crc.NewWriter(enc)
		stages[i] = inputCounter
		encoders[i] = enc
		next = inputCounter
	}

	return &EncodeChain{
		WriteCloser: &chainEntry{entry: stages[len(stages)-1], encoders: encoders},
		stages:      stages,
	}, nil
}
