package charset

import "testing"

func TestGuessEncoding(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
		want string
	}{
		{"ascii", []byte("hello world"), "ISO-8859-1"},
		{"latin1 accents", []byte{0x63, 0x61, 0x66, 0xE9, 0x20, 0x61, 0x75, 0x20, 0x6C, 0x61, 0x69, 0x74}, "ISO-8859-1"},
		{"utf8 multibyte", []byte("caf\xC3\xA9"), "UTF-8"},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 0x68, 0x69}, "UTF-8"},
		{"utf16 be bom", []byte{0xFE, 0xFF, 0x00, 0x41}, "UTF-16"},
		{"utf16 le bom", []byte{0xFF, 0xFE, 0x41, 0x00}, "UTF-16"},
		{"halfwidth katakana", []byte{0xB1, 0xB2, 0xB3}, "Shift_JIS"},
		{"sjis double byte run", []byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67}, "Shift_JIS"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := GuessEncoding(tc.data, ""); got != tc.want {
				t.Errorf("GuessEncoding(% X) = %q, want %q", tc.data, got, tc.want)
			}
		})
	}
}

func TestGuessEncodingHonorsHint(t *testing.T) {
	if got := GuessEncoding([]byte("hello"), "UTF-8"); got != "UTF-8" {
		t.Errorf("GuessEncoding with hint = %q, want UTF-8", got)
	}
}

func TestDecodeBytes(t *testing.T) {
	for _, tc := range []struct {
		data     []byte
		encoding string
		want     string
	}{
		{[]byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67}, "Shift_JIS", "テスト"},
		{[]byte{0x63, 0x61, 0x66, 0xE9}, "ISO-8859-1", "café"},
		{[]byte{0xFE, 0xFF, 0x00, 0x41}, "UTF-16", "A"},
		{[]byte{0xFF, 0xFE, 0x41, 0x00}, "UTF-16", "A"},
		{[]byte("raw"), "no-such-charset", "raw"},
	} {
		if got := DecodeBytes(tc.data, tc.encoding); got != tc.want {
			t.Errorf("DecodeBytes(% X, %q) = %q, want %q", tc.data, tc.encoding, got, tc.want)
		}
	}
}
