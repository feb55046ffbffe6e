// Package encoder implements QR code symbol encoding.
package encoder

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/charset"
	"github.com/qrstack/qrstack/reedsolomon"
	"github.com/qrstack/qrstack/symbol"
)

// ErrWriter is returned when contents cannot be encoded.
var ErrWriter = errors.New("writer error")

// StructuredAppend describes one symbol's place in a structured append
// sequence. Index is 1-based; the zero value (Total == 0) means the symbol
// stands alone.
type StructuredAppend struct {
	Index  int
	Total  int
	Parity int
}

// alphanumericTable maps ASCII values to alphanumeric codes.
var alphanumericTable = [128]int{
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	36, -1, -1, -1, 37, 38, -1, -1, -1, -1, 39, 40, -1, 41, 42, 43,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 44, -1, -1, -1, -1, -1,
	-1, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24,
	25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
}

// GetAlphanumericCode returns the alphanumeric code for a character.
func GetAlphanumericCode(code int) int {
	if code >= 0 && code < 128 {
		return alphanumericTable[code]
	}
	return -1
}

// ChooseMode determines the best encoding mode for the content. Kanji mode
// is only chosen when the character set is Shift_JIS and every character is
// a double-byte form.
func ChooseMode(content string, eci *charset.ECI) symbol.Mode {
	if eci == charset.ECISJIS && isOnlyDoubleByteKanji(content) {
		return symbol.ModeKanji
	}
	hasNumeric := false
	hasAlphanumeric := false
	for _, c := range content {
		if c >= '0' && c <= '9' {
			hasNumeric = true
		} else if GetAlphanumericCode(int(c)) != -1 {
			hasAlphanumeric = true
		} else {
			return symbol.ModeByte
		}
	}
	if hasAlphanumeric {
		return symbol.ModeAlphanumeric
	}
	if hasNumeric {
		return symbol.ModeNumeric
	}
	return symbol.ModeByte
}

func isOnlyDoubleByteKanji(content string) bool {
	bytes := charset.ECISJIS.Encode(content)
	if len(bytes)%2 != 0 {
		return false
	}
	for i := 0; i < len(bytes); i += 2 {
		b := bytes[i]
		if (b < 0x81 || b > 0x9F) && (b < 0xE0 || b > 0xEB) {
			return false
		}
	}
	return true
}

// Encode encodes content into a QRCode, choosing the densest mode its
// characters allow. A nil eci encodes byte mode data as ISO-8859-1; any
// other character set is announced with an ECI header. qrVersion 0 selects
// the smallest version that fits, maskPattern -1 selects the best mask.
func Encode(content string, ecLevel symbol.ECLevel, qrVersion, maskPattern int, eci *charset.ECI) (*QRCode, error) {
	mode := ChooseMode(content, eci)

	headerBits := bitutil.NewBitArray(0)
	if mode == symbol.ModeByte && eci != nil {
		appendECI(eci, headerBits)
	}
	headerBits.AppendBits(uint32(mode.Bits()), 4)

	dataBits := bitutil.NewBitArray(0)
	if err := appendBytes(content, mode, eci, dataBits); err != nil {
		return nil, err
	}

	return encodeSegment(mode, headerBits, dataBits, segmentLength(mode, content, dataBits),
		ecLevel, qrVersion, maskPattern)
}

// EncodeBytes encodes data as a single byte mode segment. A structured
// append header is emitted first when sa.Total is set, then the ECI header
// when eci is non-nil. The caller is responsible for having converted text
// into the eci character set.
func EncodeBytes(data []byte, ecLevel symbol.ECLevel, qrVersion, maskPattern int, eci *charset.ECI, sa StructuredAppend) (*QRCode, error) {
	headerBits := bitutil.NewBitArray(0)
	if sa.Total > 0 {
		headerBits.AppendBits(uint32(symbol.ModeStructuredAppend.Bits()), 4)
		headerBits.AppendBits(uint32((sa.Index-1)<<4|(sa.Total-1)), 8)
		headerBits.AppendBits(uint32(sa.Parity&0xFF), 8)
	}
	if eci != nil {
		appendECI(eci, headerBits)
	}
	headerBits.AppendBits(uint32(symbol.ModeByte.Bits()), 4)

	dataBits := bitutil.NewBitArray(0)
	for _, b := range data {
		dataBits.AppendBits(uint32(b), 8)
	}

	return encodeSegment(symbol.ModeByte, headerBits, dataBits, len(data),
		ecLevel, qrVersion, maskPattern)
}

// segmentLength is the value of the character count field: bytes for byte
// mode, characters otherwise.
func segmentLength(mode symbol.Mode, content string, dataBits *bitutil.BitArray) int {
	if mode == symbol.ModeByte {
		return dataBits.SizeInBytes()
	}
	return utf8.RuneCountInString(content)
}

func encodeSegment(mode symbol.Mode, headerBits, dataBits *bitutil.BitArray, numLetters int,
	ecLevel symbol.ECLevel, qrVersion, maskPattern int) (*QRCode, error) {

	var version *symbol.Version
	var err error
	if qrVersion > 0 {
		version, err = symbol.VersionForNumber(qrVersion)
		if err != nil {
			return nil, err
		}
	} else {
		version, err = chooseVersion(mode, headerBits, dataBits, ecLevel)
		if err != nil {
			return nil, err
		}
	}

	// Complete header with character count
	countBits := mode.CharacterCountBits(version)
	headerBits.AppendBits(uint32(numLetters), countBits)

	// Combine header and data
	headerBits.AppendBitArray(dataBits)

	ecBlocks := version.ECBlocksForLevel(ecLevel)
	totalBytes := version.TotalCodewords
	numDataBytes := totalBytes - ecBlocks.TotalECCodewords()

	// Terminate and pad
	if err := terminateBits(numDataBytes, headerBits); err != nil {
		return nil, err
	}

	// Interleave with EC bytes
	numRSBlocks := ecBlocks.NumBlocks()
	finalBits, err := interleaveWithECBytes(headerBits, totalBytes, numDataBytes, numRSBlocks)
	if err != nil {
		return nil, err
	}

	qr := &QRCode{
		Mode:        mode,
		ECLevel:     ecLevel,
		Version:     version,
		MaskPattern: -1,
	}

	dimension := version.Dimension()
	matrix := NewByteMatrix(dimension, dimension)

	// Choose best mask pattern
	if maskPattern >= 0 && maskPattern < numMaskPatterns {
		qr.MaskPattern = maskPattern
	} else {
		qr.MaskPattern = chooseMaskPattern(finalBits, ecLevel, version, matrix)
	}

	qr.Matrix = matrix
	buildMatrix(finalBits, ecLevel, version, qr.MaskPattern, matrix)

	return qr, nil
}

func appendECI(eci *charset.ECI, bits *bitutil.BitArray) {
	bits.AppendBits(uint32(symbol.ModeECI.Bits()), 4)
	value := uint32(eci.Value)
	switch {
	case value < 1<<7:
		bits.AppendBits(value, 8)
	case value < 1<<14:
		bits.AppendBits(0x8000|value, 16)
	default:
		bits.AppendBits(0xC00000|value, 24)
	}
}

func chooseVersion(mode symbol.Mode, headerBits, dataBits *bitutil.BitArray, ecLevel symbol.ECLevel) (*symbol.Version, error) {
	for versionNum := 1; versionNum <= 40; versionNum++ {
		version, _ := symbol.VersionForNumber(versionNum)
		totalBits := headerBits.Size() + mode.CharacterCountBits(version) + dataBits.Size()
		ecBlocks := version.ECBlocksForLevel(ecLevel)
		numDataBytes := version.TotalCodewords - ecBlocks.TotalECCodewords()
		if totalBits <= numDataBytes*8 {
			return version, nil
		}
	}
	return nil, fmt.Errorf("%w: data too large", ErrWriter)
}

func terminateBits(numDataBytes int, bits *bitutil.BitArray) error {
	capacity := numDataBytes * 8
	if bits.Size() > capacity {
		return fmt.Errorf("%w: data bits exceed capacity", ErrWriter)
	}

	// Terminator mode
	for i := 0; i < 4 && bits.Size() < capacity; i++ {
		bits.AppendBit(false)
	}

	// Pad to byte boundary
	numBitsInLastByte := bits.Size() & 0x07
	if numBitsInLastByte > 0 {
		for i := numBitsInLastByte; i < 8; i++ {
			bits.AppendBit(false)
		}
	}

	// Pad with alternating bytes
	numPaddingBytes := numDataBytes - bits.SizeInBytes()
	for i := 0; i < numPaddingBytes; i++ {
		if i%2 == 0 {
			bits.AppendBits(0xEC, 8)
		} else {
			bits.AppendBits(0x11, 8)
		}
	}
	return nil
}

func appendBytes(content string, mode symbol.Mode, eci *charset.ECI, bits *bitutil.BitArray) error {
	switch mode {
	case symbol.ModeNumeric:
		appendNumericBytes(content, bits)
		return nil
	case symbol.ModeAlphanumeric:
		return appendAlphanumericBytes(content, bits)
	case symbol.ModeByte:
		append8BitBytes(content, eci, bits)
		return nil
	case symbol.ModeKanji:
		return appendKanjiBytes(content, bits)
	default:
		return fmt.Errorf("%w: unsupported mode", ErrWriter)
	}
}

func appendNumericBytes(content string, bits *bitutil.BitArray) {
	length := len(content)
	i := 0
	for i < length {
		num1 := int(content[i] - '0')
		if i+2 < length {
			num2 := int(content[i+1] - '0')
			num3 := int(content[i+2] - '0')
			bits.AppendBits(uint32(num1*100+num2*10+num3), 10)
			i += 3
		} else if i+1 < length {
			num2 := int(content[i+1] - '0')
			bits.AppendBits(uint32(num1*10+num2), 7)
			i += 2
		} else {
			bits.AppendBits(uint32(num1), 4)
			i++
		}
	}
}

func appendAlphanumericBytes(content string, bits *bitutil.BitArray) error {
	length := len(content)
	i := 0
	for i < length {
		code1 := GetAlphanumericCode(int(content[i]))
		if code1 == -1 {
			return fmt.Errorf("%w: invalid alphanumeric character", ErrWriter)
		}
		if i+1 < length {
			code2 := GetAlphanumericCode(int(content[i+1]))
			if code2 == -1 {
				return fmt.Errorf("%w: invalid alphanumeric character", ErrWriter)
			}
			bits.AppendBits(uint32(code1*45+code2), 11)
			i += 2
		} else {
			bits.AppendBits(uint32(code1), 6)
			i++
		}
	}
	return nil
}

func append8BitBytes(content string, eci *charset.ECI, bits *bitutil.BitArray) {
	if eci == nil {
		eci = charset.ECIISO8859_1
	}
	for _, b := range eci.Encode(content) {
		bits.AppendBits(uint32(b), 8)
	}
}

func appendKanjiBytes(content string, bits *bitutil.BitArray) error {
	bytes := charset.ECISJIS.Encode(content)
	if len(bytes)%2 != 0 {
		return fmt.Errorf("%w: kanji byte size not even", ErrWriter)
	}
	maxI := len(bytes) - 1
	for i := 0; i < maxI; i += 2 {
		byte1 := int(bytes[i]) & 0xFF
		byte2 := int(bytes[i+1]) & 0xFF
		code := (byte1 << 8) | byte2
		subtracted := -1
		if code >= 0x8140 && code <= 0x9FFC {
			subtracted = code - 0x8140
		} else if code >= 0xE040 && code <= 0xEBBF {
			subtracted = code - 0xC140
		}
		if subtracted == -1 {
			return fmt.Errorf("%w: invalid kanji byte sequence", ErrWriter)
		}
		encoded := (subtracted>>8)*0xC0 + (subtracted & 0xFF)
		bits.AppendBits(uint32(encoded), 13)
	}
	return nil
}

func interleaveWithECBytes(bits *bitutil.BitArray, numTotalBytes, numDataBytes, numRSBlocks int) (*bitutil.BitArray, error) {
	if bits.SizeInBytes() != numDataBytes {
		return nil, fmt.Errorf("%w: data bytes mismatch", ErrWriter)
	}

	// Split data into blocks
	dataBytesOffset := 0
	maxNumDataBytes := 0
	maxNumEcBytes := 0

	type blockPair struct {
		dataBytes []byte
		ecBytes   []byte
	}
	blocks := make([]blockPair, numRSBlocks)

	for i := 0; i < numRSBlocks; i++ {
		numDataBytesInBlock, numEcBytesInBlock := getNumDataBytesAndNumECBytesForBlockID(
			numTotalBytes, numDataBytes, numRSBlocks, i)

		dataBytes := make([]byte, numDataBytesInBlock)
		bits.ToBytes(8*dataBytesOffset, dataBytes, 0, numDataBytesInBlock)
		ecBytes := generateECBytes(dataBytes, numEcBytesInBlock)
		blocks[i] = blockPair{dataBytes: dataBytes, ecBytes: ecBytes}

		if numDataBytesInBlock > maxNumDataBytes {
			maxNumDataBytes = numDataBytesInBlock
		}
		if numEcBytesInBlock > maxNumEcBytes {
			maxNumEcBytes = numEcBytesInBlock
		}
		dataBytesOffset += numDataBytesInBlock
	}

	result := bitutil.NewBitArray(0)

	// Interleave data bytes
	for i := 0; i < maxNumDataBytes; i++ {
		for _, block := range blocks {
			if i < len(block.dataBytes) {
				result.AppendBits(uint32(block.dataBytes[i]), 8)
			}
		}
	}
	// Interleave EC bytes
	for i := 0; i < maxNumEcBytes; i++ {
		for _, block := range blocks {
			if i < len(block.ecBytes) {
				result.AppendBits(uint32(block.ecBytes[i]), 8)
			}
		}
	}

	if result.SizeInBytes() != numTotalBytes {
		return nil, fmt.Errorf("%w: interleaved size mismatch", ErrWriter)
	}
	return result, nil
}

func getNumDataBytesAndNumECBytesForBlockID(numTotalBytes, numDataBytes, numRSBlocks, blockID int) (int, int) {
	if blockID >= numRSBlocks {
		return 0, 0
	}
	numRsBlocksInGroup2 := numTotalBytes % numRSBlocks
	numRsBlocksInGroup1 := numRSBlocks - numRsBlocksInGroup2
	numTotalBytesInGroup1 := numTotalBytes / numRSBlocks
	numTotalBytesInGroup2 := numTotalBytesInGroup1 + 1
	numDataBytesInGroup1 := numDataBytes / numRSBlocks
	numDataBytesInGroup2 := numDataBytesInGroup1 + 1
	numEcBytesInGroup1 := numTotalBytesInGroup1 - numDataBytesInGroup1
	numEcBytesInGroup2 := numTotalBytesInGroup2 - numDataBytesInGroup2

	if blockID < numRsBlocksInGroup1 {
		return numDataBytesInGroup1, numEcBytesInGroup1
	}
	return numDataBytesInGroup2, numEcBytesInGroup2
}

func generateECBytes(dataBytes []byte, numEcBytesInBlock int) []byte {
	numDataBytes := len(dataBytes)
	toEncode := make([]int, numDataBytes+numEcBytesInBlock)
	for i, b := range dataBytes {
		toEncode[i] = int(b) & 0xFF
	}
	enc := reedsolomon.NewEncoder(reedsolomon.QRCodeField)
	enc.Encode(toEncode, numEcBytesInBlock)
	ecBytes := make([]byte, numEcBytesInBlock)
	for i := 0; i < numEcBytesInBlock; i++ {
		ecBytes[i] = byte(toEncode[numDataBytes+i])
	}
	return ecBytes
}
