package coder

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/go7z/sevenz/errs"
)

// DefaultAESNumCyclesPower is the SHA-256 iteration exponent 7-Zip itself
// defaults to for AES-256 header and content encryption.
const DefaultAESNumCyclesPower = 19

// AES-256+SHA-256 (method ID 06 F1 07 01) is 7z's only encryption coder:
// AES-256-CBC with a key derived by iterating SHA-256 over
// salt‖password‖counter. The core treats this as an opaque encrypt/decrypt
// stream; the primitives themselves are stdlib crypto/aes + crypto/cipher +
// crypto/sha256 — no third-party package in the ecosystem replaces Go's
// standard block-cipher implementations.
func init() {
	Register(IDAES256SHA, "AES256SHA256", newAESEncoder, newAESDecoder, true)
}

type aesProperties struct {
	numCyclesPower byte
	salt, iv       []byte
}

func parseAESProperties(options []byte) (aesProperties, error) {
	var p aesProperties
	if len(options) < 1 {
		return p, errs.NewMalformedHeader(0, "AES properties blob too short")
	}

	p.numCyclesPower = options[0] & 0x3F
	rest := options[1:]

	saltSize, ivSize := 0, 0
	if options[0]&0xC0 != 0 {
		if len(rest) < 1 {
			return p, errs.NewMalformedHeader(0, "AES properties missing size byte")
		}

		saltSize = int(rest[0] & 0x0F)
		ivSize = int(rest[0]>>4) & 0x0F
		rest = rest[1:]
	}

	if len(rest) < saltSize+ivSize {
		return p, errs.NewMalformedHeader(0, "AES properties blob truncated")
	}

	p.salt = rest[:saltSize]
	p.iv = make([]byte, 16)
	copy(p.iv, rest[saltSize:saltSize+ivSize])

	return p, nil
}

// encodeAESProperties serializes numCyclesPower, salt and iv into the blob
// parseAESProperties above reads: a control byte (numCyclesPower in the low
// 6 bits, bit 6/7 set when salt/iv follow), optionally a size byte (salt
// length in its low nibble, iv length in its high nibble), then the salt
// and iv bytes themselves.
func encodeAESProperties(numCyclesPower byte, salt, iv []byte) []byte {
	options := []byte{numCyclesPower & 0x3F}

	if len(salt) > 0 || len(iv) > 0 {
		options[0] |= 0xC0
		options = append(options, byte(len(salt)&0x0F)|byte(len(iv)&0x0F)<<4)
		options = append(options, salt...)
		options = append(options, iv...)
	}

	return options
}

// NewAESProperties generates a fresh random salt and IV and returns the
// encoded properties blob for an AES-256-SHA256 coder using numCyclesPower
// key-derivation rounds. Callers needing to encrypt a header or content
// block with this coder use this to build the Properties a ContentMethod
// carries, since the coder itself never invents key material.
func NewAESProperties(numCyclesPower byte) ([]byte, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	iv := make([]byte, 16)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	return encodeAESProperties(numCyclesPower, salt, iv), nil
}

// deriveKey iterates SHA-256 2^numCyclesPower times over salt‖password‖i
// (i an 8-byte little-endian counter), per the 7z AES key-derivation
// scheme, producing a 32-byte AES-256 key.
func deriveKey(p aesProperties, password []byte) []byte {
	if p.numCyclesPower == 0x3F {
		key := make([]byte, 32)
		copy(key, p.salt)
		copy(key[len(p.salt):], password)

		return key
	}

	h := sha256.New()
	counter := make([]byte, 8)

	rounds := uint64(1) << p.numCyclesPower
	for i := uint64(0); i < rounds; i++ {
		h.Write(p.salt)
		h.Write(password)
		binary.LittleEndian.PutUint64(counter, i)
		h.Write(counter)
	}

	return h.Sum(nil)
}

type aesEncoder struct {
	sink    io.Writer
	props   aesProperties
	block   cipher.Block
	mode    cipher.BlockMode
	pending []byte
}

func newAESEncoder(options []byte, sink io.Writer) (Encoder, error) {
	p, err := parseAESProperties(options)
	if err != nil {
		return nil, err
	}

	return &aesEncoder{sink: sink, props: p}, nil
}

func (e *aesEncoder) SetPassword(password []byte) error {
	key := deriveKey(e.props, password)

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}

	e.block = block
	e.mode = cipher.NewCBCEncrypter(block, e.props.iv)

	return nil
}

func (e *aesEncoder) Write(p []byte) (int, error) {
	if e.mode == nil {
		return 0, errs.ErrPasswordRequired
	}

	e.pending = append(e.pending, p...)

	n := len(e.pending) - len(e.pending)%aes.BlockSize
	if n == 0 {
		return len(p), nil
	}

	out := make([]byte, n)
	e.mode.CryptBlocks(out, e.pending[:n])

	if _, err := e.sink.Write(out); err != nil {
		return 0, err
	}

	e.pending = e.pending[n:]

	return len(p), nil
}

func (e *aesEncoder) Close() error {
	if len(e.pending) == 0 {
		return nil
	}

	// Pad the final partial block with zeros; the declared unpacked size
	// on read lets the decoder discard the padding.
	block := make([]byte, aes.BlockSize)
	copy(block, e.pending)
	out := make([]byte, aes.BlockSize)
	e.mode.CryptBlocks(out, block)
	_, err := e.sink.Write(out)

	return err
}

type aesDecoder struct {
	source     io.Reader
	props      aesProperties
	mode       cipher.BlockMode
	plain      bytes.Buffer
	left       int64
	sourceDone bool
}

func newAESDecoder(options []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	p, err := parseAESProperties(options)
	if err != nil {
		return nil, err
	}

	return &aesDecoder{source: source, props: p, left: unpackSize}, nil
}

func (d *aesDecoder) SetPassword(password []byte) error {
	key := deriveKey(d.props, password)

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}

	d.mode = cipher.NewCBCDecrypter(block, d.props.iv)

	return nil
}

func (d *aesDecoder) fill() error {
	if d.mode == nil {
		return errs.ErrPasswordRequired
	}

	buf := make([]byte, aes.BlockSize)

	n, err := io.ReadFull(d.source, buf)
	if n == aes.BlockSize {
		out := make([]byte, aes.BlockSize)
		d.mode.CryptBlocks(out, buf)
		d.plain.Write(out)

		return nil
	}

	if err != nil {
		return err
	}

	return io.ErrUnexpectedEOF
}

func (d *aesDecoder) Read(p []byte) (int, error) {
	if d.left <= 0 {
		return 0, io.EOF
	}

	for d.plain.Len() == 0 {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}

	if int64(len(p)) > d.left {
		p = p[:d.left]
	}

	n, err := d.plain.Read(p)
	d.left -= int64(n)

	if err == io.EOF && n > 0 {
		err = nil
	}

	return n, err
}

func (d *aesDecoder) Close() error { return nil }
