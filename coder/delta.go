package coder

import "io"

// Delta is 7z's byte-distance prediction filter: each output byte is the
// sum (mod 256) of the input byte and the byte `distance` positions back in
// the *decoded* stream. No ecosystem package exports a standalone
// byte-distance delta filter (the closest relatives, image/PNG's
// paeth/sub filters and audio codecs' delta predictors, are not exposed as
// a reusable io.Reader/io.Writer), so this is a direct, small
// implementation of the documented algorithm.
func init() {
	Register(IDDelta, "Delta", newDeltaEncoder, newDeltaDecoder, false)
}

func deltaDistance(options []byte) int {
	if len(options) == 0 {
		return 1
	}

	return int(options[0]) + 1
}

type deltaEncoder struct {
	sink    io.Writer
	history []byte
	pos     int
}

func newDeltaEncoder(options []byte, sink io.Writer) (Encoder, error) {
	return &deltaEncoder{sink: sink, history: make([]byte, deltaDistance(options))}, nil
}

func (e *deltaEncoder) Write(p []byte) (int, error) {
	out := make([]byte, len(p))

	for i, b := range p {
		prev := e.history[e.pos]
		delta := b - prev
		out[i] = delta
		e.history[e.pos] = b
		e.pos = (e.pos + 1) % len(e.history)
	}

	if _, err := e.sink.Write(out); err != nil {
		return 0, err
	}

	return len(p), nil
}

func (e *deltaEncoder) Close() error { return nil }

type deltaDecoder struct {
	source  io.Reader
	history []byte
	pos     int
	left    int64
}

func newDeltaDecoder(options []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	return &deltaDecoder{source: source, history: make([]byte, deltaDistance(options)), left: unpackSize}, nil
}

func (d *deltaDecoder) Read(p []byte) (int, error) {
	if d.left <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > d.left {
		p = p[:d.left]
	}

	n, err := d.source.Read(p)
	for i := 0; i < n; i++ {
		v := p[i] + d.history[d.pos]
		p[i] = v
		d.history[d.pos] = v
		d.pos = (d.pos + 1) % len(d.history)
	}

	d.left -= int64(n)

	if n > 0 && err == io.EOF {
		err = nil
	}

	return n, err
}

func (d *deltaDecoder) Close() error { return nil }
