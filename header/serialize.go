package header

import (
	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/internal/bitset"
	"github.com/go7z/sevenz/internal/utf16name"
)

func writeDigestsFor(w *cursorWriter, vals []uint32, defined []bool) {
	writeDigests(w, vals, defined)
}

func writePackInfo(w *cursorWriter, pack archive.PackInfo) {
	w.id(idPackInfo)
	w.u64(pack.Base)
	w.u64(uint64(len(pack.Sizes)))

	w.id(idSize)
	for _, s := range pack.Sizes {
		w.u64(s)
	}

	if len(pack.CRCs) > 0 {
		w.id(idCRC)
		writeDigestsFor(w, pack.CRCs, pack.HasCRC)
	}

	w.id(idEnd)
}

func writeFolder(w *cursorWriter, b archive.Block) {
	w.u64(uint64(len(b.Coders)))

	for _, co := range b.Coders {
		flags := byte(len(co.ID))
		if co.In != 1 || co.Out != 1 {
			flags |= 0x10
		}

		if len(co.Properties) > 0 {
			flags |= 0x20
		}

		w.byteVal(flags)
		w.write(co.ID)

		if flags&0x10 != 0 {
			w.u64(co.In)
			w.u64(co.Out)
		}

		if flags&0x20 != 0 {
			w.u64(uint64(len(co.Properties)))
			w.write(co.Properties)
		}
	}

	for _, bp := range b.BindPairs {
		w.u64(bp.InIndex)
		w.u64(bp.OutIndex)
	}

	if b.NumPackedStreams > 1 {
		for _, idx := range b.PackedIndices {
			w.u64(idx)
		}
	}
}

func writeUnpackInfo(w *cursorWriter, blocks []archive.Block) {
	w.id(idUnpackInfo)
	w.id(idFolder)
	w.u64(uint64(len(blocks)))
	w.byteVal(0) // external

	for _, b := range blocks {
		writeFolder(w, b)
	}

	w.id(idCodersUnpackSize)

	for _, b := range blocks {
		for _, s := range b.Sizes {
			w.u64(s)
		}
	}

	crcs := make([]uint32, len(blocks))
	defined := make([]bool, len(blocks))
	anyDefined := false

	for i, b := range blocks {
		crcs[i], defined[i] = b.CRC, b.HasCRC
		anyDefined = anyDefined || b.HasCRC
	}

	if anyDefined {
		w.id(idCRC)
		writeDigestsFor(w, crcs, defined)
	}

	w.id(idEnd)
}

func writeSubStreamsInfo(w *cursorWriter, blocks []archive.Block) {
	w.id(idSubStreamsInfo)

	needNumUnpack := false

	for _, b := range blocks {
		if len(b.Substreams) != 1 {
			needNumUnpack = true
		}
	}

	if needNumUnpack {
		w.id(idNumUnpackStream)
		for _, b := range blocks {
			w.u64(uint64(len(b.Substreams)))
		}
	}

	w.id(idSize)

	for _, b := range blocks {
		n := len(b.Substreams)
		for i := 0; i < n-1; i++ {
			w.u64(b.Substreams[i].Size)
		}
	}

	var crcs []uint32

	var defined []bool

	for _, b := range blocks {
		n := len(b.Substreams)
		if n == 1 && b.HasCRC {
			continue
		}

		for _, s := range b.Substreams {
			crcs = append(crcs, s.CRC)
			defined = append(defined, s.HasCRC)
		}
	}

	if len(crcs) > 0 {
		w.id(idCRC)
		writeDigestsFor(w, crcs, defined)
	}

	w.id(idEnd)
}

// writeStreamsInfo serializes MainStreamsInfo (id 0x04) for a.
func writeStreamsInfo(w *cursorWriter, a *archive.Archive) {
	w.id(idMainStreamsInfo)

	if len(a.Pack.Sizes) > 0 {
		writePackInfo(w, a.Pack)
	}

	if len(a.Blocks) > 0 {
		writeUnpackInfo(w, a.Blocks)
		writeSubStreamsInfo(w, a.Blocks)
	}

	w.id(idEnd)
}

func writeTimeProperty(w *cursorWriter, id byte, times []time64, defined []bool) {
	w.id(id)

	body := &cursorWriter{}
	if bitset.AllTrue(defined) {
		body.boolByte(true)
	} else {
		body.boolByte(false)
		body.write(bitset.Pack(defined))
	}

	body.byteVal(0) // external

	for i, t := range times {
		if defined[i] {
			body.u64le(uint64(t))
		}
	}

	w.u64(uint64(len(body.bytes())))
	w.write(body.bytes())
}

// time64 is a raw NT FILETIME value, used only to keep writeTimeProperty's
// signature explicit about units.
type time64 = uint64

func writeAttributesProperty(w *cursorWriter, attrs []uint32, defined []bool) {
	w.id(idWinAttributes)

	body := &cursorWriter{}
	if bitset.AllTrue(defined) {
		body.boolByte(true)
	} else {
		body.boolByte(false)
		body.write(bitset.Pack(defined))
	}

	body.byteVal(0) // external

	for i, v := range attrs {
		if defined[i] {
			body.u32le(v)
		}
	}

	w.u64(uint64(len(body.bytes())))
	w.write(body.bytes())
}

// writeFilesInfo serializes FilesInfo (id 0x05) for a.Files.
func writeFilesInfo(w *cursorWriter, a *archive.Archive) error {
	w.id(idFilesInfo)
	w.u64(uint64(len(a.Files)))

	emptyStream := make([]bool, len(a.Files))
	numEmpty := 0

	for i, f := range a.Files {
		if !f.HasStream {
			emptyStream[i] = true
			numEmpty++
		}
	}

	if numEmpty > 0 {
		w.id(idEmptyStream)
		w.u64(uint64(bitset.ByteLen(len(a.Files))))
		w.write(bitset.Pack(emptyStream))

		emptyFile := make([]bool, 0, numEmpty)
		anti := make([]bool, 0, numEmpty)

		for i, f := range a.Files {
			if !emptyStream[i] {
				continue
			}

			emptyFile = append(emptyFile, !f.IsDir)
			anti = append(anti, f.IsAnti)
		}

		if !bitset.AllTrue(invert(emptyFile)) {
			w.id(idEmptyFile)
			w.u64(uint64(bitset.ByteLen(len(emptyFile))))
			w.write(bitset.Pack(emptyFile))
		}

		hasAnti := false

		for _, v := range anti {
			hasAnti = hasAnti || v
		}

		if hasAnti {
			w.id(idAnti)
			w.u64(uint64(bitset.ByteLen(len(anti))))
			w.write(bitset.Pack(anti))
		}
	}

	var nameBlob []byte

	for _, f := range a.Files {
		enc, err := utf16name.Encode(f.Name)
		if err != nil {
			return err
		}

		nameBlob = append(nameBlob, enc...)
	}

	w.id(idName)
	w.u64(uint64(len(nameBlob) + 1))
	w.byteVal(0) // external
	w.write(nameBlob)

	mtimes := make([]time64, len(a.Files))
	mdefined := make([]bool, len(a.Files))
	attrs := make([]uint32, len(a.Files))
	adefined := make([]bool, len(a.Files))

	for i, f := range a.Files {
		if f.HasModTime {
			mtimes[i] = timeToFiletime(f.ModifiedTime)
			mdefined[i] = true
		}

		if f.HasAttribs {
			attrs[i] = f.Attributes
			adefined[i] = true
		}
	}

	if anyTrue(mdefined) {
		writeTimeProperty(w, idMTime, mtimes, mdefined)
	}

	if anyTrue(adefined) {
		writeAttributesProperty(w, attrs, adefined)
	}

	w.id(idEnd)

	return nil
}

func invert(bits []bool) []bool {
	out := make([]bool, len(bits))
	for i, b := range bits {
		out[i] = !b
	}

	return out
}

func anyTrue(bits []bool) bool {
	for _, b := range bits {
		if b {
			return true
		}
	}

	return false
}

// EncodeHeaderBody serializes a's plain header (id Header through id End),
// suitable either as the start-header bytes directly or as the payload
// that gets compressed into an EncodedHeader block.
func EncodeHeaderBody(a *archive.Archive) ([]byte, error) {
	w := &cursorWriter{}
	w.id(idHeader)

	if len(a.Pack.Sizes) > 0 || len(a.Blocks) > 0 {
		writeStreamsInfo(w, a)
	}

	if len(a.Files) > 0 {
		if err := writeFilesInfo(w, a); err != nil {
			return nil, err
		}
	}

	w.id(idEnd)

	return w.bytes(), nil
}

// EncodeEncodedHeaderWrapper serializes the outer EncodedHeader section
// (id EncodedHeader, then a raw StreamsInfo body — PackInfo, UnpackInfo,
// End — with no SubStreamsInfo, since the wrapped block is always exactly
// one implicit substream) that points at a compressed blob holding a plain
// header, given that blob's pack placement and the block describing how it
// was compressed.
func EncodeEncodedHeaderWrapper(pack archive.PackInfo, block archive.Block) []byte {
	w := &cursorWriter{}
	w.id(idEncodedHeader)

	w.id(idPackInfo)
	w.u64(pack.Base)
	w.u64(1)
	w.id(idSize)
	w.u64(pack.Sizes[0])
	w.id(idEnd)

	w.id(idUnpackInfo)
	w.id(idFolder)
	w.u64(1)
	w.byteVal(0)
	writeFolder(w, block)
	w.id(idCodersUnpackSize)

	for _, s := range block.Sizes {
		w.u64(s)
	}

	if block.HasCRC {
		w.id(idCRC)
		writeDigestsFor(w, []uint32{block.CRC}, []bool{true})
	}

	w.id(idEnd) // UnpackInfo End

	w.id(idEnd) // StreamsInfo End

	return w.bytes()
}
