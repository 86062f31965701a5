package header

// Property IDs tagging each section of the header grammar. Names follow the
// 7-Zip reference source's kXxx constants.
const (
	idEnd                  = 0x00
	idHeader               = 0x01
	idArchiveProperties    = 0x02
	idAdditionalStreamInfo = 0x03
	idMainStreamsInfo      = 0x04
	idFilesInfo            = 0x05
	idPackInfo             = 0x06
	idUnpackInfo           = 0x07
	idSubStreamsInfo       = 0x08
	idSize                 = 0x09
	idCRC                  = 0x0A
	idFolder               = 0x0B
	idCodersUnpackSize     = 0x0C
	idNumUnpackStream      = 0x0D
	idEmptyStream          = 0x0E
	idEmptyFile            = 0x0F
	idAnti                 = 0x10
	idName                 = 0x11
	idCTime                = 0x12
	idATime                = 0x13
	idMTime                = 0x14
	idWinAttributes        = 0x15
	idEncodedHeader        = 0x17
	idStartPos             = 0x18
	idDummy                = 0x19
)

// signature is the fixed 6-byte magic at the start of every 7z file.
var signature = [6]byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}

// Signature returns the 6-byte magic every 7z file starts with, for callers
// (the writer package) building a signature header from scratch.
func Signature() [6]byte { return signature }

// ntEpochOffsetSeconds is the number of seconds between the Windows
// FILETIME epoch (1601-01-01) and the Unix epoch (1970-01-01), used to
// convert the header's 100ns NT timestamps to time.Time.
const ntEpochOffsetSeconds = 11644473600
