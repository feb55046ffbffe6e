package decoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/charset"
	"github.com/qrstack/qrstack/encoder"
	"github.com/qrstack/qrstack/symbol"
)

func encodeToMatrix(t *testing.T, content string, ecLevel symbol.ECLevel, version int, eci *charset.ECI) *bitutil.BitMatrix {
	t.Helper()
	code, err := encoder.Encode(content, ecLevel, version, -1, eci)
	if err != nil {
		t.Fatalf("Encode(%q) failed: %v", content, err)
	}
	return code.ToBitMatrix()
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ecLevel symbol.ECLevel
		eci     *charset.ECI
	}{
		{"numeric", "0123456789", symbol.ECLevelM, nil},
		{"alphanumeric", "HELLO WORLD $+-./:", symbol.ECLevelL, nil},
		{"byte", "Hello, World! lowercase too", symbol.ECLevelQ, nil},
		{"latin1", "café naïve", symbol.ECLevelM, nil},
		{"utf8 eci", "héllo wörld ✓", symbol.ECLevelM, charset.ECIUTF8},
		{"kanji", "テスト", symbol.ECLevelM, charset.ECISJIS},
		{"high ec", "REDUNDANT", symbol.ECLevelH, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matrix := encodeToMatrix(t, tt.content, tt.ecLevel, 0, tt.eci)
			result, err := NewDecoder().Decode(matrix, "")
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if result.Text != tt.content {
				t.Errorf("Text = %q, want %q", result.Text, tt.content)
			}
			if result.ECLevel != tt.ecLevel.String() {
				t.Errorf("ECLevel = %q, want %q", result.ECLevel, tt.ecLevel.String())
			}
			if result.HasStructuredAppend() {
				t.Error("unexpected structured append flag on single symbol")
			}
		})
	}
}

func TestDecodeRoundTripVersions(t *testing.T) {
	content := "version round trip with enough text to be interesting"
	for _, version := range []int{4, 7, 10, 27} {
		matrix := encodeToMatrix(t, content, symbol.ECLevelM, version, nil)
		result, err := NewDecoder().Decode(matrix, "")
		if err != nil {
			t.Fatalf("Decode at version %d failed: %v", version, err)
		}
		if result.Text != content {
			t.Errorf("version %d: Text = %q, want %q", version, result.Text, content)
		}
	}
}

func TestDecodeMirrored(t *testing.T) {
	content := "MIRROR TEST 123"
	matrix := encodeToMatrix(t, content, symbol.ECLevelM, 0, nil)

	// Transpose the matrix, as a mirrored capture would produce.
	dim := matrix.Height()
	mirrored := bitutil.NewBitMatrix(dim)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			if matrix.Get(x, y) {
				mirrored.Set(y, x)
			}
		}
	}

	result, err := NewDecoder().Decode(mirrored, "")
	if err != nil {
		t.Fatalf("Decode of mirrored matrix failed: %v", err)
	}
	if result.Text != content {
		t.Errorf("Text = %q, want %q", result.Text, content)
	}
}

func TestDecodeCorrectsDamage(t *testing.T) {
	content := "DAMAGE"
	matrix := encodeToMatrix(t, content, symbol.ECLevelH, 1, nil)

	// Flip a few data modules, well within H-level correction capacity.
	for _, p := range [][2]int{{10, 10}, {12, 15}, {15, 12}} {
		matrix.Flip(p[0], p[1])
	}

	result, err := NewDecoder().Decode(matrix, "")
	if err != nil {
		t.Fatalf("Decode of damaged matrix failed: %v", err)
	}
	if result.Text != content {
		t.Errorf("Text = %q, want %q", result.Text, content)
	}
	if result.ErrorsCorrected == 0 {
		t.Error("ErrorsCorrected = 0, want damage reported")
	}
}

func TestDecodeBadDimension(t *testing.T) {
	for _, dim := range []int{17, 20, 22} {
		_, err := NewBitMatrixParser(bitutil.NewBitMatrix(dim))
		if !errors.Is(err, ErrFormat) {
			t.Errorf("dimension %d: err = %v, want ErrFormat", dim, err)
		}
	}
	if _, err := NewBitMatrixParser(bitutil.NewBitMatrix(25)); err != nil {
		t.Errorf("dimension 25 rejected: %v", err)
	}
}

func TestDecodeGarbageMatrix(t *testing.T) {
	if _, err := NewDecoder().Decode(bitutil.NewBitMatrix(21), ""); err == nil {
		t.Fatal("expected error decoding an empty matrix")
	}
}

func TestDecodeBitStreamStructuredAppend(t *testing.T) {
	version, _ := symbol.VersionForNumber(1)
	// Structured append header (2 of 3, parity 0x42), then byte segment "AB".
	stream := []byte{0x31, 0x24, 0x24, 0x02, 0x41, 0x42}
	result, err := DecodeBitStream(stream, version, symbol.ECLevelL, "")
	if err != nil {
		t.Fatalf("DecodeBitStream failed: %v", err)
	}
	if result.Text != "AB" {
		t.Errorf("Text = %q, want %q", result.Text, "AB")
	}
	if !result.HasStructuredAppend() {
		t.Fatal("structured append header not recognized")
	}
	if result.SAIndex != 2 || result.SATotal != 3 || result.SAParity != 0x42 {
		t.Errorf("structured append = %d/%d parity 0x%02x, want 2/3 parity 0x42",
			result.SAIndex, result.SATotal, result.SAParity)
	}
	if !bytes.Equal(result.Data, []byte("AB")) {
		t.Errorf("Data = %v, want %v", result.Data, []byte("AB"))
	}
	if len(result.ByteSegments) != 1 {
		t.Errorf("got %d byte segments, want 1", len(result.ByteSegments))
	}
}

func TestDecodeBitStreamECI(t *testing.T) {
	version, _ := symbol.VersionForNumber(1)
	// ECI 26 (UTF-8), then the two UTF-8 bytes of e-acute.
	stream := []byte{0x71, 0xA4, 0x02, 0xC3, 0xA9}
	result, err := DecodeBitStream(stream, version, symbol.ECLevelM, "")
	if err != nil {
		t.Fatalf("DecodeBitStream failed: %v", err)
	}
	if result.Text != "é" {
		t.Errorf("Text = %q, want %q", result.Text, "é")
	}
}

func TestDecodeBitStreamNumeric(t *testing.T) {
	version, _ := symbol.VersionForNumber(1)
	stream := []byte{0x10, 0x20, 0x0C, 0x56, 0x61, 0x80}
	result, err := DecodeBitStream(stream, version, symbol.ECLevelM, "")
	if err != nil {
		t.Fatalf("DecodeBitStream failed: %v", err)
	}
	if result.Text != "01234567" {
		t.Errorf("Text = %q, want %q", result.Text, "01234567")
	}
	if result.Data != nil {
		t.Errorf("Data = %v, want nil for a symbol without byte segments", result.Data)
	}
}

func TestDecodeBitStreamKanji(t *testing.T) {
	version, _ := symbol.VersionForNumber(1)
	// One kanji character, 0x935F in Shift_JIS.
	stream := []byte{0x80, 0x16, 0xCF, 0x80}
	result, err := DecodeBitStream(stream, version, symbol.ECLevelM, "")
	if err != nil {
		t.Fatalf("DecodeBitStream failed: %v", err)
	}
	if result.Text != "点" {
		t.Errorf("Text = %q, want %q", result.Text, "点")
	}
}

func TestDecodeBitStreamInvalidAlphanumeric(t *testing.T) {
	version, _ := symbol.VersionForNumber(1)
	// Count 2 with an 11-bit value of 2047, whose high code is out of range.
	stream := []byte{0x20, 0x17, 0xFF}
	_, err := DecodeBitStream(stream, version, symbol.ECLevelM, "")
	if !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}

func TestDecodeBitStreamTruncatedByteSegment(t *testing.T) {
	version, _ := symbol.VersionForNumber(1)
	// Byte mode claiming 255 bytes with almost nothing following.
	stream := []byte{0x4F, 0xF0}
	_, err := DecodeBitStream(stream, version, symbol.ECLevelM, "")
	if !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}

func TestDecodeFormatInformation(t *testing.T) {
	// (M, mask 5) encodes to the masked word 0x40CE.
	fi := DecodeFormatInformation(0x40CE, 0x40CE)
	if fi == nil {
		t.Fatal("format info did not decode")
	}
	if fi.ECLevel != symbol.ECLevelM || fi.DataMask != 5 {
		t.Errorf("got %v mask %d, want M mask 5", fi.ECLevel, fi.DataMask)
	}

	// Up to three flipped bits are repaired.
	fi = DecodeFormatInformation(0x40CE^0x07, 0x40CE^0x07)
	if fi == nil {
		t.Fatal("format info with three bad bits did not decode")
	}
	if fi.ECLevel != symbol.ECLevelM || fi.DataMask != 5 {
		t.Errorf("got %v mask %d after bit damage, want M mask 5", fi.ECLevel, fi.DataMask)
	}

	// Four flipped bits in both copies is unrecoverable.
	if fi := DecodeFormatInformation(0x40CE^0x0F, 0x40CE^0x0F); fi != nil {
		t.Errorf("expected nil for four flipped bits, got %+v", fi)
	}
}

func TestDecodeFormatInformationUnmasked(t *testing.T) {
	// Some producers forget the format mask; the lookup retries without it.
	fi := DecodeFormatInformation(0x40CE^formatInfoMaskQR, 0x40CE^formatInfoMaskQR)
	if fi == nil {
		t.Fatal("unmasked format info did not decode")
	}
	if fi.ECLevel != symbol.ECLevelM || fi.DataMask != 5 {
		t.Errorf("got %v mask %d, want M mask 5", fi.ECLevel, fi.DataMask)
	}
}

func TestGetDataBlocksSingleBlock(t *testing.T) {
	version, _ := symbol.VersionForNumber(1)
	raw := make([]byte, 26)
	for i := range raw {
		raw[i] = byte(i)
	}
	blocks := GetDataBlocks(raw, version, symbol.ECLevelM)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].NumDataCodewords != 16 {
		t.Errorf("NumDataCodewords = %d, want 16", blocks[0].NumDataCodewords)
	}
	if !bytes.Equal(blocks[0].Codewords, raw) {
		t.Error("single block should pass codewords through unchanged")
	}
}

func TestGetDataBlocksUneven(t *testing.T) {
	version, _ := symbol.VersionForNumber(7)
	// 7-H: four blocks of 13 data codewords and one of 14, 26 EC each.
	dataSizes := []int{13, 13, 13, 13, 14}
	const ecSize = 26

	blockData := make([][]byte, len(dataSizes))
	blockEC := make([][]byte, len(dataSizes))
	for j, size := range dataSizes {
		blockData[j] = make([]byte, size)
		for i := range blockData[j] {
			blockData[j][i] = byte(j*14 + i)
		}
		blockEC[j] = make([]byte, ecSize)
		for i := range blockEC[j] {
			blockEC[j][i] = byte(250 - j*ecSize - i)
		}
	}

	// Interleave the way the encoder transmits: data round-robin, then EC.
	var raw []byte
	for i := 0; i < 14; i++ {
		for j := range blockData {
			if i < len(blockData[j]) {
				raw = append(raw, blockData[j][i])
			}
		}
	}
	for i := 0; i < ecSize; i++ {
		for j := range blockEC {
			raw = append(raw, blockEC[j][i])
		}
	}
	if len(raw) != version.TotalCodewords {
		t.Fatalf("test setup produced %d codewords, want %d", len(raw), version.TotalCodewords)
	}

	blocks := GetDataBlocks(raw, version, symbol.ECLevelH)
	if len(blocks) != len(dataSizes) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(dataSizes))
	}
	for j, block := range blocks {
		if block.NumDataCodewords != dataSizes[j] {
			t.Errorf("block %d NumDataCodewords = %d, want %d", j, block.NumDataCodewords, dataSizes[j])
		}
		if !bytes.Equal(block.Codewords[:dataSizes[j]], blockData[j]) {
			t.Errorf("block %d data not de-interleaved correctly", j)
		}
		if !bytes.Equal(block.Codewords[dataSizes[j]:], blockEC[j]) {
			t.Errorf("block %d EC not de-interleaved correctly", j)
		}
	}
}
