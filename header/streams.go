package header

import (
	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/internal/bitset"
)

// readDigests reads the grammar's common "CRC vector": one AllAreDefined
// byte, an optional per-item defined bitset when that byte is zero, then
// one little-endian uint32 per item whose bit is set.
func readDigests(c *cursor, n int) ([]uint32, []bool, error) {
	allDefined, err := c.boolByte()
	if err != nil {
		return nil, nil, err
	}

	defined := make([]bool, n)
	if allDefined {
		for i := range defined {
			defined[i] = true
		}
	} else {
		bits, err := bitset.Read(c.r, n)
		if err != nil {
			return nil, nil, c.fail("truncated digest-defined bitset")
		}

		defined = bits
	}

	vals := make([]uint32, n)

	for i := 0; i < n; i++ {
		if !defined[i] {
			continue
		}

		v, err := c.u32le()
		if err != nil {
			return nil, nil, err
		}

		vals[i] = v
	}

	return vals, defined, nil
}

func writeDigests(w *cursorWriter, vals []uint32, defined []bool) {
	if bitset.AllTrue(defined) {
		w.boolByte(true)
	} else {
		w.boolByte(false)
		w.write(bitset.Pack(defined))
	}

	for i, v := range vals {
		if defined[i] {
			w.u32le(v)
		}
	}
}

// readPackInfo parses the PackInfo section (id 0x06), already consumed by
// the caller, into a.Pack.
func readPackInfo(c *cursor, a *archive.Archive) error {
	base, err := c.u64()
	if err != nil {
		return err
	}

	numPack, err := c.u64()
	if err != nil {
		return err
	}

	a.Pack.Base = base
	a.Pack.Sizes = make([]uint64, numPack)

	for {
		id, err := c.id()
		if err != nil {
			return err
		}

		switch id {
		case idSize:
			for i := range a.Pack.Sizes {
				v, err := c.u64()
				if err != nil {
					return err
				}

				a.Pack.Sizes[i] = v
			}
		case idCRC:
			vals, defined, err := readDigests(c, int(numPack))
			if err != nil {
				return err
			}

			a.Pack.CRCs = vals
			a.Pack.HasCRC = defined
		case idEnd:
			return nil
		default:
			return c.fail("unexpected id in PackInfo")
		}
	}
}

// readFolder parses one Folder's coder/bind-pair/packed-index topology
// (everything except the per-output Sizes, which live in the enclosing
// UnpackInfo's CodersUnpackSize section).
func readFolder(c *cursor) (archive.Block, error) {
	var b archive.Block

	numCoders, err := c.u64()
	if err != nil {
		return b, err
	}

	var totalIn, totalOut uint64

	for i := uint64(0); i < numCoders; i++ {
		flags, err := c.byte()
		if err != nil {
			return b, err
		}

		idSize := int(flags & 0x0F)
		isComplex := flags&0x10 != 0
		hasAttrs := flags&0x20 != 0

		if flags&0x80 != 0 {
			return b, c.fail("alternative coder methods not supported")
		}

		id, err := c.bytes(idSize)
		if err != nil {
			return b, err
		}

		coder := archive.Coder{ID: id, In: 1, Out: 1}

		if isComplex {
			in, err := c.u64()
			if err != nil {
				return b, err
			}

			out, err := c.u64()
			if err != nil {
				return b, err
			}

			coder.In, coder.Out = in, out
		}

		if hasAttrs {
			size, err := c.u64()
			if err != nil {
				return b, err
			}

			props, err := c.bytes(int(size))
			if err != nil {
				return b, err
			}

			coder.Properties = props
		}

		totalIn += coder.In
		totalOut += coder.Out
		b.Coders = append(b.Coders, coder)
	}

	numBindPairs := totalOut - 1
	for i := uint64(0); i < numBindPairs; i++ {
		in, err := c.u64()
		if err != nil {
			return b, err
		}

		out, err := c.u64()
		if err != nil {
			return b, err
		}

		b.BindPairs = append(b.BindPairs, archive.BindPair{InIndex: in, OutIndex: out})
	}

	numPacked := totalIn - numBindPairs
	b.NumPackedStreams = int(numPacked)

	if numPacked == 1 {
		var found bool

		for i := uint64(0); i < totalIn; i++ {
			if b.InBindPair(i) == nil {
				b.PackedIndices = []uint64{i}
				found = true

				break
			}
		}

		if !found {
			return b, c.fail("folder has no unbound input for its single packed stream")
		}
	} else {
		for i := uint64(0); i < numPacked; i++ {
			idx, err := c.u64()
			if err != nil {
				return b, err
			}

			b.PackedIndices = append(b.PackedIndices, idx)
		}
	}

	return b, nil
}

// readUnpackInfo parses the UnpackInfo section (id 0x07) into a.Blocks.
func readUnpackInfo(c *cursor, a *archive.Archive) error {
	id, err := c.id()
	if err != nil {
		return err
	}

	if id != idFolder {
		return c.fail("expected Folder id in UnpackInfo")
	}

	numFolders, err := c.u64()
	if err != nil {
		return err
	}

	external, err := c.byte()
	if err != nil {
		return err
	}

	if external != 0 {
		return c.fail("external folder data not supported")
	}

	a.Blocks = make([]archive.Block, numFolders)

	for i := range a.Blocks {
		b, err := readFolder(c)
		if err != nil {
			return err
		}

		a.Blocks[i] = b
	}

	id, err = c.id()
	if err != nil {
		return err
	}

	if id != idCodersUnpackSize {
		return c.fail("expected CodersUnpackSize in UnpackInfo")
	}

	for i := range a.Blocks {
		n := len(a.Blocks[i].Coders)
		total := 0

		for _, co := range a.Blocks[i].Coders {
			total += int(co.Out)
		}

		_ = n
		sizes := make([]uint64, total)

		for j := range sizes {
			v, err := c.u64()
			if err != nil {
				return err
			}

			sizes[j] = v
		}

		a.Blocks[i].Sizes = sizes
	}

	for {
		id, err := c.id()
		if err != nil {
			return err
		}

		switch id {
		case idCRC:
			vals, defined, err := readDigests(c, len(a.Blocks))
			if err != nil {
				return err
			}

			for i := range a.Blocks {
				a.Blocks[i].CRC = vals[i]
				a.Blocks[i].HasCRC = defined[i]
			}
		case idEnd:
			return nil
		default:
			return c.fail("unexpected id in UnpackInfo")
		}
	}
}

// readSubStreamsInfo parses the SubStreamsInfo section (id 0x08), filling
// in each block's Substreams. When the section (or its Size/CRC
// sub-entries) is absent, each block defaults to exactly one substream
// spanning its whole unpacked size, per the format's implicit default.
func readSubStreamsInfo(c *cursor, a *archive.Archive) error {
	numUnpackStreams := make([]int, len(a.Blocks))
	for i := range numUnpackStreams {
		numUnpackStreams[i] = 1
	}

	id, err := c.id()
	if err != nil {
		return err
	}

	if id == idNumUnpackStream {
		for i := range numUnpackStreams {
			v, err := c.u64()
			if err != nil {
				return err
			}

			numUnpackStreams[i] = int(v)
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	}

	for i := range a.Blocks {
		a.Blocks[i].Substreams = make([]archive.Substream, numUnpackStreams[i])
	}

	if id == idSize {
		for i := range a.Blocks {
			n := numUnpackStreams[i]
			if n == 0 {
				continue
			}

			sum := uint64(0)

			for j := 0; j < n-1; j++ {
				v, err := c.u64()
				if err != nil {
					return err
				}

				a.Blocks[i].Substreams[j].Size = v
				sum += v
			}

			a.Blocks[i].Substreams[n-1].Size = a.Blocks[i].UnpackSize() - sum
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	} else {
		for i := range a.Blocks {
			if numUnpackStreams[i] == 1 {
				a.Blocks[i].Substreams[0].Size = a.Blocks[i].UnpackSize()
			}
		}
	}

	// Count substreams needing an explicit CRC: those not already
	// covered by a folder-level CRC on a single-substream block.
	needCRC := 0

	for i := range a.Blocks {
		n := len(a.Blocks[i].Substreams)
		if n == 1 && a.Blocks[i].HasCRC {
			a.Blocks[i].Substreams[0].CRC = a.Blocks[i].CRC
			a.Blocks[i].Substreams[0].HasCRC = true

			continue
		}

		needCRC += n
	}

	if id == idCRC {
		vals, defined, err := readDigests(c, needCRC)
		if err != nil {
			return err
		}

		k := 0

		for i := range a.Blocks {
			n := len(a.Blocks[i].Substreams)
			if n == 1 && a.Blocks[i].HasCRC {
				continue
			}

			for j := 0; j < n; j++ {
				a.Blocks[i].Substreams[j].CRC = vals[k]
				a.Blocks[i].Substreams[j].HasCRC = defined[k]
				k++
			}
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	}

	if id != idEnd {
		return c.fail("unexpected id in SubStreamsInfo")
	}

	return nil
}

// readStreamsInfo parses the StreamsInfo section (id 0x04, "MainStreamsInfo"
// in the on-wire grammar), dispatching to PackInfo/UnpackInfo/SubStreamsInfo.
func readStreamsInfo(c *cursor, a *archive.Archive) error {
	id, err := c.id()
	if err != nil {
		return err
	}

	if id == idPackInfo {
		if err := readPackInfo(c, a); err != nil {
			return err
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	}

	if id == idUnpackInfo {
		if err := readUnpackInfo(c, a); err != nil {
			return err
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	}

	if id == idSubStreamsInfo {
		if err := readSubStreamsInfo(c, a); err != nil {
			return err
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	} else {
		// No SubStreamsInfo: each block holds exactly one substream.
		for i := range a.Blocks {
			a.Blocks[i].Substreams = []archive.Substream{{
				Size:   a.Blocks[i].UnpackSize(),
				CRC:    a.Blocks[i].CRC,
				HasCRC: a.Blocks[i].HasCRC,
			}}
		}
	}

	if id != idEnd {
		return c.fail("unexpected id in StreamsInfo")
	}

	return nil
}
