package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	qrstack "github.com/qrstack/qrstack"
	"github.com/qrstack/qrstack/binarizer"
)

func main() {
	tryHarder := flag.Bool("try-harder", false, "spend more time looking for symbols")
	pure := flag.Bool("pure", false, "hint that each image is a clean symbol render with minimal border")
	inverted := flag.Bool("inverted", false, "also try decoding with colors inverted")
	noReassemble := flag.Bool("no-reassemble", false, "print symbols as found, without combining structured append sets")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qrscan [flags] <image-file> [image-file...]\n\n")
		fmt.Fprintf(os.Stderr, "Decode QR codes in image files (PNG, JPEG, GIF).\n")
		fmt.Fprintf(os.Stderr, "Structured append sets are reassembled across all given files.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	opts := &qrstack.DecodeOptions{
		TryHarder:    *tryHarder,
		PureBarcode:  *pure,
		AlsoInverted: *inverted,
	}

	exitCode := 0
	var batch []*qrstack.Result
	for _, path := range flag.Args() {
		results, err := scanFile(path, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", path, err)
			exitCode = 1
			continue
		}
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "%s: no qr codes found\n", path)
			exitCode = 1
			continue
		}
		for _, r := range results {
			if flag.NArg() > 1 {
				fmt.Printf("%s: ", path)
			}
			fmt.Println(describe(r))
		}
		batch = append(batch, results...)
	}

	if !*noReassemble {
		var parts []*qrstack.Result
		for _, r := range batch {
			if _, ok := r.Metadata[qrstack.MetadataStructuredAppendIndex]; ok {
				parts = append(parts, r)
			}
		}
		if len(parts) > 0 {
			combined := qrstack.ReassembleStructuredAppend(parts)
			if len(combined) == 0 {
				fmt.Fprintln(os.Stderr, "structured append set incomplete")
				exitCode = 1
			}
			for _, r := range combined {
				fmt.Printf("reassembled: %s\n", r.Text)
			}
		}
	}
	os.Exit(exitCode)
}

func describe(r *qrstack.Result) string {
	index, iok := r.Metadata[qrstack.MetadataStructuredAppendIndex].(int)
	total, tok := r.Metadata[qrstack.MetadataStructuredAppendTotal].(int)
	if iok && tok {
		return fmt.Sprintf("%s (part %d of %d)", r.Text, index, total)
	}
	return r.Text
}

func scanFile(path string, opts *qrstack.DecodeOptions) ([]*qrstack.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	source := qrstack.NewImageLuminanceSource(img)

	if opts.PureBarcode {
		result, err := qrstack.Decode(qrstack.NewBinaryBitmap(binarizer.NewHybrid(source)), opts)
		if errors.Is(err, qrstack.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*qrstack.Result{result}, nil
	}

	reader := qrstack.NewMultiReader()
	seen := map[string]bool{}
	var results []*qrstack.Result

	// Try the global histogram binarizer first (fast, works well for clean
	// images), then the hybrid binarizer (local thresholding, better for
	// photographs with uneven lighting). Symbols found by both count once.
	for _, bitmap := range []*qrstack.BinaryBitmap{
		qrstack.NewBinaryBitmap(binarizer.NewGlobalHistogram(source)),
		qrstack.NewBinaryBitmap(binarizer.NewHybrid(source)),
	} {
		found, err := reader.DecodeMultiple(bitmap, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range found {
			key := fmt.Sprintf("%s\x00%v", r.Text, r.Metadata[qrstack.MetadataStructuredAppendIndex])
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, r)
		}
	}

	if len(results) == 0 && opts.AlsoInverted {
		bitmap := qrstack.NewBinaryBitmap(binarizer.NewHybrid(source))
		matrix, err := bitmap.BlackMatrix()
		if err != nil {
			if errors.Is(err, qrstack.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		matrix.FlipAll()
		return reader.DecodeMultiple(bitmap, opts)
	}
	return results, nil
}
