package writer

import "github.com/go7z/sevenz/coder"

// DefaultContentMethod is the single-LZMA2 chain new writers start with.
// Nil properties select the decoder's 16 MiB default dictionary, matching
// the encoder's default.
func DefaultContentMethod() ContentMethod {
	return ContentMethod{ID: coder.IDLZMA2}
}
