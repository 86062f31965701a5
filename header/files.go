package header

import (
	"time"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/internal/bitset"
	"github.com/go7z/sevenz/internal/utf16name"
)

func filetimeToTime(ft uint64) time.Time {
	sec := int64(ft/10_000_000) - ntEpochOffsetSeconds
	nsec := int64(ft%10_000_000) * 100

	return time.Unix(sec, nsec).UTC()
}

func timeToFiletime(t time.Time) uint64 {
	sec := t.Unix() + ntEpochOffsetSeconds
	nsec := int64(t.Nanosecond())

	return uint64(sec)*10_000_000 + uint64(nsec)/100
}

// readTimeProperty parses the common (kCTime/kATime/kMTime) layout:
// AllAreDefined, an optional defined bitset, an external byte, then one
// 8-byte FILETIME per defined entry.
func readTimeProperty(c *cursor, n int) ([]time.Time, []bool, error) {
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
			return nil, nil, c.fail("truncated time-defined bitset")
		}

		defined = bits
	}

	external, err := c.byte()
	if err != nil {
		return nil, nil, err
	}

	if external != 0 {
		return nil, nil, c.fail("external time data not supported")
	}

	times := make([]time.Time, n)

	for i := 0; i < n; i++ {
		if !defined[i] {
			continue
		}

		v, err := c.u64le()
		if err != nil {
			return nil, nil, err
		}

		times[i] = filetimeToTime(v)
	}

	return times, defined, nil
}

func readAttributesProperty(c *cursor, n int) ([]uint32, []bool, error) {
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
			return nil, nil, c.fail("truncated attribute-defined bitset")
		}

		defined = bits
	}

	external, err := c.byte()
	if err != nil {
		return nil, nil, err
	}

	if external != 0 {
		return nil, nil, c.fail("external attribute data not supported")
	}

	attrs := make([]uint32, n)

	for i := 0; i < n; i++ {
		if !defined[i] {
			continue
		}

		v, err := c.u32le()
		if err != nil {
			return nil, nil, err
		}

		attrs[i] = v
	}

	return attrs, defined, nil
}

// readFilesInfo parses the FilesInfo section (id 0x05) into a.Files, then
// links each stream-bearing entry to its block/substream via linkStreams.
func readFilesInfo(c *cursor, a *archive.Archive) error {
	numFilesU, err := c.u64()
	if err != nil {
		return err
	}

	numFiles := int(numFilesU)
	a.Files = make([]archive.FileEntry, numFiles)

	var emptyStream []bool

	numEmptyStreams := 0
	sawEmptyFile := false

	for {
		propType, err := c.u64()
		if err != nil {
			return err
		}

		if propType == idEnd {
			break
		}

		size, err := c.u64()
		if err != nil {
			return err
		}

		remainingBefore := c.remaining()

		switch propType {
		case idEmptyStream:
			bits, err := bitset.Read(c.r, numFiles)
			if err != nil {
				return c.fail("truncated EmptyStream bitset")
			}

			emptyStream = bits
			for _, b := range bits {
				if b {
					numEmptyStreams++
				}
			}
		case idEmptyFile:
			bits, err := bitset.Read(c.r, numEmptyStreams)
			if err != nil {
				return c.fail("truncated EmptyFile bitset")
			}

			sawEmptyFile = true
			j := 0

			for i := 0; i < numFiles; i++ {
				if emptyStream != nil && emptyStream[i] {
					if !bits[j] {
						a.Files[i].IsDir = true
					}

					j++
				}
			}
		case idAnti:
			bits, err := bitset.Read(c.r, numEmptyStreams)
			if err != nil {
				return c.fail("truncated Anti bitset")
			}

			j := 0

			for i := 0; i < numFiles; i++ {
				if emptyStream != nil && emptyStream[i] {
					if bits[j] {
						a.Files[i].IsAnti = true
						a.Files[i].IsDir = false
					}

					j++
				}
			}
		case idName:
			external, err := c.byte()
			if err != nil {
				return err
			}

			if external != 0 {
				return c.fail("external name data not supported")
			}

			blob, err := c.bytes(int(size) - 1)
			if err != nil {
				return err
			}

			for i := 0; i < numFiles; i++ {
				name, n, err := utf16name.Decode(blob)
				if err != nil {
					return err
				}

				a.Files[i].Name = name
				blob = blob[n:]
			}
		case idCTime:
			times, defined, err := readTimeProperty(c, numFiles)
			if err != nil {
				return err
			}

			for i := range a.Files {
				a.Files[i].CreationTime = times[i]
				a.Files[i].HasCreatedTime = defined[i]
			}
		case idATime:
			times, defined, err := readTimeProperty(c, numFiles)
			if err != nil {
				return err
			}

			for i := range a.Files {
				a.Files[i].AccessTime = times[i]
				a.Files[i].HasAccessTime = defined[i]
			}
		case idMTime:
			times, defined, err := readTimeProperty(c, numFiles)
			if err != nil {
				return err
			}

			for i := range a.Files {
				a.Files[i].ModifiedTime = times[i]
				a.Files[i].HasModTime = defined[i]
			}
		case idWinAttributes:
			attrs, defined, err := readAttributesProperty(c, numFiles)
			if err != nil {
				return err
			}

			for i := range a.Files {
				a.Files[i].Attributes = attrs[i]
				a.Files[i].HasAttribs = defined[i]
			}
		case idDummy:
			if _, err := c.bytes(int(size)); err != nil {
				return err
			}
		default:
			if _, err := c.bytes(int(size)); err != nil {
				return err
			}
		}

		consumed := remainingBefore - c.remaining()
		if consumed != int(size) {
			return c.fail("FilesInfo property size mismatch")
		}
	}

	for i := range a.Files {
		a.Files[i].HasStream = !(emptyStream != nil && emptyStream[i])
	}

	if !sawEmptyFile {
		// No EmptyFile section: every empty-stream entry defaults to a
		// directory, per the format's rule.
		for i := range a.Files {
			if emptyStream != nil && emptyStream[i] && !a.Files[i].IsAnti {
				a.Files[i].IsDir = true
			}
		}
	}

	linkStreams(a)

	return nil
}

// blockPackedSizes sums each block's share of a.Pack.Sizes, in block order,
// from each block's NumPackedStreams.
func blockPackedSizes(a *archive.Archive) []uint64 {
	out := make([]uint64, len(a.Blocks))
	packIdx := 0

	for i := range a.Blocks {
		var sum uint64

		for j := 0; j < a.Blocks[i].NumPackedStreams; j++ {
			if packIdx < len(a.Pack.Sizes) {
				sum += a.Pack.Sizes[packIdx]
			}

			packIdx++
		}

		out[i] = sum
	}

	return out
}

// linkStreams walks a.Blocks in order, assigning each stream-bearing
// FileEntry (in file-table order) to the next unclaimed substream.
func linkStreams(a *archive.Archive) {
	blockIdx, subIdx := 0, 0
	packedSizes := blockPackedSizes(a)

	advance := func() {
		subIdx++
		for blockIdx < len(a.Blocks) && subIdx >= len(a.Blocks[blockIdx].Substreams) {
			blockIdx++
			subIdx = 0
		}
	}

	for i := range a.Files {
		if !a.Files[i].HasStream {
			continue
		}

		if blockIdx >= len(a.Blocks) {
			break
		}

		sub := a.Blocks[blockIdx].Substreams[subIdx]
		a.Files[i].BlockIndex = blockIdx
		a.Files[i].SubstreamIndex = subIdx
		a.Files[i].Size = sub.Size
		a.Files[i].CRC = sub.CRC
		a.Files[i].HasCRC = sub.HasCRC

		if subIdx == 0 {
			a.Files[i].CompressedSize = packedSizes[blockIdx]
		}

		advance()
	}
}
