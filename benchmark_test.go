package qrstack_test

import (
	"strings"
	"testing"

	qrstack "github.com/qrstack/qrstack"
	"github.com/qrstack/qrstack/binarizer"
	"github.com/qrstack/qrstack/bitutil"
)

var encodeBenchmarks = []struct {
	name    string
	content string
	width   int
	height  int
}{
	{"Short", "Hello, World!", 200, 200},
	{"Alphanumeric", "STRUCTURED APPEND BENCHMARK 0123456789", 400, 400},
	{"Long", strings.Repeat("QR benchmark payload. ", 20), 400, 400},
}

func BenchmarkEncode(b *testing.B) {
	for _, tc := range encodeBenchmarks {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := qrstack.Encode(tc.content, tc.width, tc.height, nil)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncodeStructuredAppend(b *testing.B) {
	content := strings.Repeat("STRUCTURED APPEND ", 11) + "OK"
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := qrstack.NewWriter().EncodeStructuredAppend(content, 4, 4, nil)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	matrix, err := qrstack.Encode("Hello, World! This is a decode benchmark.", 400, 400, nil)
	if err != nil {
		b.Fatal(err)
	}
	img := qrstack.BitMatrixToImage(matrix)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Fresh binarizer and bitmap each iteration since Hybrid caches
		// its matrix.
		source := qrstack.NewGrayImageLuminanceSource(img)
		bitmap := qrstack.NewBinaryBitmap(binarizer.NewHybrid(source))
		if _, err := qrstack.Decode(bitmap, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeMultiple(b *testing.B) {
	matrices, err := qrstack.NewWriter().EncodeStructuredAppend("MULTI DECODE BENCHMARK", 1, 4, nil)
	if err != nil {
		b.Fatal(err)
	}
	canvas := bitutil.NewBitMatrixWithSize(220, 100)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if matrices[0].Get(x, y) {
				canvas.Set(x, y)
			}
			if matrices[1].Get(x, y) {
				canvas.Set(x+120, y)
			}
		}
	}
	img := qrstack.BitMatrixToImage(canvas)
	opts := &qrstack.DecodeOptions{TryHarder: true}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		source := qrstack.NewGrayImageLuminanceSource(img)
		bitmap := qrstack.NewBinaryBitmap(binarizer.NewHybrid(source))
		results, err := qrstack.NewMultiReader().DecodeMultiple(bitmap, opts)
		if err != nil {
			b.Fatal(err)
		}
		if len(results) != 2 {
			b.Fatalf("decoded %d symbols, want 2", len(results))
		}
	}
}
