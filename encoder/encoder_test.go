package encoder

import (
	"testing"

	"github.com/qrstack/qrstack/bitutil"
	"github.com/qrstack/qrstack/charset"
	"github.com/qrstack/qrstack/symbol"
)

func TestGetAlphanumericCode(t *testing.T) {
	// The first ten code points are digits.
	for i := '0'; i <= '9'; i++ {
		if got := GetAlphanumericCode(int(i)); got != int(i-'0') {
			t.Errorf("GetAlphanumericCode(%q) = %d, want %d", i, got, i-'0')
		}
	}
	for i := 'A'; i <= 'Z'; i++ {
		if got := GetAlphanumericCode(int(i)); got != int(i-'A'+10) {
			t.Errorf("GetAlphanumericCode(%q) = %d, want %d", i, got, i-'A'+10)
		}
	}
	if got := GetAlphanumericCode(' '); got != 36 {
		t.Errorf("GetAlphanumericCode(' ') = %d, want 36", got)
	}
	if got := GetAlphanumericCode(':'); got != 44 {
		t.Errorf("GetAlphanumericCode(':') = %d, want 44", got)
	}
	if got := GetAlphanumericCode('a'); got != -1 {
		t.Errorf("GetAlphanumericCode('a') = %d, want -1", got)
	}
	if got := GetAlphanumericCode(256); got != -1 {
		t.Errorf("GetAlphanumericCode(256) = %d, want -1", got)
	}
}

func TestChooseMode(t *testing.T) {
	tests := []struct {
		content string
		eci     *charset.ECI
		want    symbol.Mode
	}{
		{"0", nil, symbol.ModeNumeric},
		{"0123456789", nil, symbol.ModeNumeric},
		{"A", nil, symbol.ModeAlphanumeric},
		{"0A", nil, symbol.ModeAlphanumeric},
		{"HELLO WORLD $%*+-./:", nil, symbol.ModeAlphanumeric},
		{"a", nil, symbol.ModeByte},
		{"0a", nil, symbol.ModeByte},
		{"", nil, symbol.ModeByte},
		// Double-byte Shift_JIS characters select Kanji mode only with the
		// matching character set.
		{"点", charset.ECISJIS, symbol.ModeKanji},
		{"点茶", charset.ECISJIS, symbol.ModeKanji},
		{"点", nil, symbol.ModeByte},
		// Half-width katakana is single-byte in Shift_JIS.
		{"ｱ", charset.ECISJIS, symbol.ModeByte},
		// A mix of double-byte and ASCII falls back to byte mode.
		{"点A", charset.ECISJIS, symbol.ModeByte},
	}
	for _, tt := range tests {
		if got := ChooseMode(tt.content, tt.eci); got != tt.want {
			t.Errorf("ChooseMode(%q, %v) = %v, want %v", tt.content, tt.eci, got, tt.want)
		}
	}
}

func TestAppendNumericBytes(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	appendNumericBytes("01234567", bits)
	// 012 -> 12 in 10 bits, 345 in 10 bits, 67 in 7 bits.
	want := " ......XX ...X.X.X X..XX... .XX"
	if got := bits.String(); got != want {
		t.Errorf("appendNumericBytes = %q, want %q", got, want)
	}

	bits = bitutil.NewBitArray(0)
	appendNumericBytes("8", bits)
	if got := bits.String(); got != " X..." {
		t.Errorf("appendNumericBytes single digit = %q, want %q", got, " X...")
	}
}

func TestAppendAlphanumericBytes(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	if err := appendAlphanumericBytes("AC-42", bits); err != nil {
		t.Fatalf("appendAlphanumericBytes failed: %v", err)
	}
	want := " ..XXX..X XX.XXX.. XXX..X.. ..X."
	if got := bits.String(); got != want {
		t.Errorf("appendAlphanumericBytes = %q, want %q", got, want)
	}

	bits = bitutil.NewBitArray(0)
	if err := appendAlphanumericBytes("abc", bits); err == nil {
		t.Error("expected error for lowercase input")
	}
}

func TestAppend8BitBytes(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	append8BitBytes("abc", nil, bits)
	want := " .XX....X .XX...X. .XX...XX"
	if got := bits.String(); got != want {
		t.Errorf("append8BitBytes = %q, want %q", got, want)
	}

	// Default ISO-8859-1 keeps Latin-1 characters to one byte each.
	bits = bitutil.NewBitArray(0)
	append8BitBytes("é", nil, bits)
	if bits.SizeInBytes() != 1 {
		t.Errorf("Latin-1 e-acute encoded as %d bytes, want 1", bits.SizeInBytes())
	}

	// UTF-8 keeps it multi-byte.
	bits = bitutil.NewBitArray(0)
	append8BitBytes("é", charset.ECIUTF8, bits)
	if bits.SizeInBytes() != 2 {
		t.Errorf("UTF-8 e-acute encoded as %d bytes, want 2", bits.SizeInBytes())
	}
}

func TestAppendKanjiBytes(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	// U+70B9 is 0x935F in Shift_JIS.
	if err := appendKanjiBytes("点", bits); err != nil {
		t.Fatalf("appendKanjiBytes failed: %v", err)
	}
	want := " .XX.XX.. XXXXX"
	if got := bits.String(); got != want {
		t.Errorf("appendKanjiBytes = %q, want %q", got, want)
	}
}

func TestAppendECI(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	appendECI(charset.ECISJIS, bits)
	// ECI mode indicator 0111, then value 20 in 8 bits.
	want := " .XXX...X .X.."
	if got := bits.String(); got != want {
		t.Errorf("appendECI(SJIS) = %q, want %q", got, want)
	}
}

func TestTerminateBits(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	if err := terminateBits(0, bits); err != nil {
		t.Fatalf("terminateBits failed: %v", err)
	}
	if bits.String() != "" {
		t.Errorf("terminateBits(0) = %q, want empty", bits.String())
	}

	bits = bitutil.NewBitArray(0)
	if err := terminateBits(1, bits); err != nil {
		t.Fatalf("terminateBits failed: %v", err)
	}
	if got := bits.String(); got != " ........" {
		t.Errorf("terminateBits(1) = %q, want %q", got, " ........")
	}

	bits = bitutil.NewBitArray(0)
	bits.AppendBit(false)
	if err := terminateBits(3, bits); err != nil {
		t.Fatalf("terminateBits failed: %v", err)
	}
	want := " ........ XXX.XX.. ...X...X"
	if got := bits.String(); got != want {
		t.Errorf("terminateBits(3) = %q, want %q", got, want)
	}

	bits = bitutil.NewBitArray(0)
	bits.AppendBits(0, 9)
	if err := terminateBits(1, bits); err == nil {
		t.Error("expected error when bits exceed capacity")
	}
}

func TestGetNumDataBytesAndNumECBytesForBlockID(t *testing.T) {
	tests := []struct {
		totalBytes, dataBytes, rsBlocks, blockID int
		wantData, wantEC                         int
	}{
		// Version 1-H
		{26, 9, 1, 0, 9, 17},
		// Version 3-H, 2 blocks
		{70, 26, 2, 0, 13, 22},
		{70, 26, 2, 1, 13, 22},
		// Version 7-H, 4 + 1 blocks
		{196, 66, 5, 0, 13, 26},
		{196, 66, 5, 4, 14, 26},
		// Version 40-H, 20 + 61 blocks
		{3706, 1276, 81, 0, 15, 30},
		{3706, 1276, 81, 20, 16, 30},
		{3706, 1276, 81, 80, 16, 30},
	}
	for _, tt := range tests {
		gotData, gotEC := getNumDataBytesAndNumECBytesForBlockID(
			tt.totalBytes, tt.dataBytes, tt.rsBlocks, tt.blockID)
		if gotData != tt.wantData || gotEC != tt.wantEC {
			t.Errorf("blockID %d of (%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.blockID, tt.totalBytes, tt.dataBytes, tt.rsBlocks,
				gotData, gotEC, tt.wantData, tt.wantEC)
		}
	}
}

func TestInterleaveWithECBytes(t *testing.T) {
	// Numeric "01234567" at version 1-M after termination and padding.
	dataBytes := []byte{16, 32, 12, 86, 97, 128, 236, 17, 236, 17, 236, 17, 236, 17, 236, 17}
	bits := bitutil.NewBitArray(0)
	for _, b := range dataBytes {
		bits.AppendBits(uint32(b), 8)
	}
	out, err := interleaveWithECBytes(bits, 26, 16, 1)
	if err != nil {
		t.Fatalf("interleaveWithECBytes failed: %v", err)
	}
	want := []byte{
		16, 32, 12, 86, 97, 128, 236, 17, 236, 17, 236, 17, 236, 17, 236, 17,
		165, 36, 212, 193, 237, 54, 199, 135, 44, 85,
	}
	if out.SizeInBytes() != len(want) {
		t.Fatalf("interleaved size = %d bytes, want %d", out.SizeInBytes(), len(want))
	}
	got := make([]byte, len(want))
	out.ToBytes(0, got, 0, len(want))
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("codeword %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCalculateBCHCode(t *testing.T) {
	// Type and version information examples from JIS X 0510:2004.
	if got := calculateBCHCode(5, typeInfoPoly); got != 0xdc {
		t.Errorf("calculateBCHCode(5, 0x537) = 0x%x, want 0xdc", got)
	}
	if got := calculateBCHCode(7, versionInfoPoly); got != 0xc94 {
		t.Errorf("calculateBCHCode(7, 0x1f25) = 0x%x, want 0xc94", got)
	}
}

func TestFindMSBSet(t *testing.T) {
	tests := []struct{ value, want int }{
		{0, 0},
		{1, 1},
		{0x80, 8},
		{0x81, 8},
		{0x100, 9},
	}
	for _, tt := range tests {
		if got := findMSBSet(tt.value); got != tt.want {
			t.Errorf("findMSBSet(0x%x) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestChooseVersion(t *testing.T) {
	tests := []struct {
		content string
		ecLevel symbol.ECLevel
		want    int
	}{
		{"A", symbol.ECLevelL, 1},
		{"0123456789", symbol.ECLevelM, 1},
		// 26 alphanumeric characters exceed version 1-H (10 max).
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ", symbol.ECLevelH, 3},
	}
	for _, tt := range tests {
		code, err := Encode(tt.content, tt.ecLevel, 0, -1, nil)
		if err != nil {
			t.Fatalf("Encode(%q) failed: %v", tt.content, err)
		}
		if code.Version.Number != tt.want {
			t.Errorf("Encode(%q, %v) chose version %d, want %d",
				tt.content, tt.ecLevel, code.Version.Number, tt.want)
		}
	}
}

func TestEncodeStructure(t *testing.T) {
	code, err := Encode("ABCDEF", symbol.ECLevelH, 0, -1, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if code.Mode != symbol.ModeAlphanumeric {
		t.Errorf("mode = %v, want alphanumeric", code.Mode)
	}
	if code.Version.Number != 1 {
		t.Errorf("version = %d, want 1", code.Version.Number)
	}
	if code.MaskPattern < 0 || code.MaskPattern >= numMaskPatterns {
		t.Errorf("mask pattern %d out of range", code.MaskPattern)
	}
	m := code.Matrix
	if m.Width != 21 || m.Height != 21 {
		t.Fatalf("matrix is %dx%d, want 21x21", m.Width, m.Height)
	}
	// Every cell must have been decided.
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if v := m.Get(x, y); v != 0 && v != 1 {
				t.Fatalf("undecided cell at (%d,%d): %d", x, y, v)
			}
		}
	}
	// Finder pattern corners.
	for _, c := range [][2]int{{0, 0}, {6, 0}, {0, 6}, {6, 6}, {20, 0}, {14, 6}, {0, 20}, {6, 14}} {
		if m.Get(c[0], c[1]) != 1 {
			t.Errorf("finder module at (%d,%d) not dark", c[0], c[1])
		}
	}
	// Dark module.
	if m.Get(8, 13) != 1 {
		t.Error("dark module at (8,13) not set")
	}
	// Timing pattern alternates.
	for i := 8; i < 13; i++ {
		want := byte((i + 1) % 2)
		if m.Get(i, 6) != want {
			t.Errorf("horizontal timing at (%d,6) = %d, want %d", i, m.Get(i, 6), want)
		}
		if m.Get(6, i) != want {
			t.Errorf("vertical timing at (6,%d) = %d, want %d", i, m.Get(6, i), want)
		}
	}
}

func TestEncodeForcedVersionAndMask(t *testing.T) {
	code, err := Encode("HELLO", symbol.ECLevelL, 7, 3, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if code.Version.Number != 7 {
		t.Errorf("version = %d, want 7", code.Version.Number)
	}
	if code.MaskPattern != 3 {
		t.Errorf("mask pattern = %d, want 3", code.MaskPattern)
	}
	if d := code.Matrix.Width; d != 45 {
		t.Errorf("dimension = %d, want 45", d)
	}
}

func TestEncodeTooLargeForForcedVersion(t *testing.T) {
	content := make([]byte, 0, 30)
	for i := 0; i < 30; i++ {
		content = append(content, 'a')
	}
	// 30 bytes cannot fit version 1-H (7 data codewords usable).
	_, err := Encode(string(content), symbol.ECLevelH, 1, -1, nil)
	if err == nil {
		t.Fatal("expected overflow error for forced version 1")
	}
}

func TestEncodeBytesStructure(t *testing.T) {
	code, err := EncodeBytes([]byte{0x01, 0x02, 0xFF}, symbol.ECLevelM, 0, -1, nil, StructuredAppend{})
	if err != nil {
		t.Fatalf("EncodeBytes failed: %v", err)
	}
	if code.Mode != symbol.ModeByte {
		t.Errorf("mode = %v, want byte", code.Mode)
	}
	if code.Version.Number != 1 {
		t.Errorf("version = %d, want 1", code.Version.Number)
	}
}

func TestEncodeBytesStructuredAppendGrowth(t *testing.T) {
	// The structured append header costs 20 bits, the ECI header 12 more.
	// 13 bytes fit plain version 1-M but not with both headers.
	data := make([]byte, 13)
	plain, err := EncodeBytes(data, symbol.ECLevelM, 0, -1, nil, StructuredAppend{})
	if err != nil {
		t.Fatalf("EncodeBytes failed: %v", err)
	}
	if plain.Version.Number != 1 {
		t.Fatalf("plain version = %d, want 1", plain.Version.Number)
	}
	withSA, err := EncodeBytes(data, symbol.ECLevelM, 0, -1, charset.ECIUTF8,
		StructuredAppend{Index: 1, Total: 2, Parity: 0x5A})
	if err != nil {
		t.Fatalf("EncodeBytes with headers failed: %v", err)
	}
	if withSA.Version.Number != 2 {
		t.Errorf("version with headers = %d, want 2", withSA.Version.Number)
	}
}

func TestEncodeBytesForcedTooSmall(t *testing.T) {
	data := make([]byte, 20)
	_, err := EncodeBytes(data, symbol.ECLevelH, 1, -1, nil, StructuredAppend{})
	if err == nil {
		t.Fatal("expected overflow error for forced version 1")
	}
}

func TestByteMatrixString(t *testing.T) {
	m := NewByteMatrix(2, 2)
	m.Set(0, 0, 1)
	m.Set(1, 0, 0)
	m.Set(0, 1, 0)
	m.Set(1, 1, 1)
	want := "##  \n  ##\n"
	code := &QRCode{Matrix: m}
	if got := code.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestToBitMatrix(t *testing.T) {
	code, err := Encode("TEST", symbol.ECLevelM, 0, -1, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	bits := code.ToBitMatrix()
	if bits.Width() != code.Matrix.Width || bits.Height() != code.Matrix.Height {
		t.Fatalf("bit matrix is %dx%d, want %dx%d",
			bits.Width(), bits.Height(), code.Matrix.Width, code.Matrix.Height)
	}
	for y := 0; y < code.Matrix.Height; y++ {
		for x := 0; x < code.Matrix.Width; x++ {
			if bits.Get(x, y) != (code.Matrix.Get(x, y) == 1) {
				t.Fatalf("bit mismatch at (%d,%d)", x, y)
			}
		}
	}
}
