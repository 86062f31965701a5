package coder

import "io"

// PPMd (method ID 03 04 01) has no Go implementation available as an
// importable package — porting Dmitry Shkarin's PPMdH/I is a project in its
// own right, not something to hand-roll for one coder slot. The registry
// still carries an entry for it so an archive referencing PPMd fails with
// errs.UnsupportedCodecError rather than a registry lookup miss.
func init() {
	Register(IDPPMd, "PPMd", ppmdUnsupported, ppmdUnsupportedDecode, false)
}

func ppmdUnsupported(_ []byte, _ io.Writer) (Encoder, error) {
	return nil, newUnsupported(IDPPMd)
}

func ppmdUnsupportedDecode(_ []byte, _ io.Reader, _, _ int64) (Decoder, error) {
	return nil, newUnsupported(IDPPMd)
}
