package main

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"

	qrstack "github.com/qrstack/qrstack"
	"github.com/qrstack/qrstack/bitutil"
)

// The structured append header is a four bit position and a four bit count,
// so a set never exceeds sixteen symbols.
const maxSymbols = 16

var outputFormats = []string{"png", "utf8", "utf8i"}

func main() {
	log.SetFlags(0)

	help := getopt.BoolLong("help", 'h', "show this help")
	binary := getopt.Bool('8', "read raw bytes from standard input instead of text")
	charset := getopt.String('e', "", "character set of the payload; "+
		"anything but ISO-8859-1 is announced with an ECI segment", "name")
	out := getopt.String('o', "", `output file; "-01", "-02" and so on `+
		"are appended before the suffix", "file")
	lev := getopt.Enum('l',
		[]string{"l", "m", "q", "h", "L", "M", "Q", "H"}, "l",
		"error correction level, lowest to highest", "l|m|q|h")
	ver := getopt.Unsigned('v', 4, &getopt.UnsignedLimit{Base: 0, Bits: 8, Min: 1, Max: 40},
		"version of every symbol in the set", "ver")
	scale := getopt.Unsigned('s', 4, &getopt.UnsignedLimit{Base: 0, Bits: 16, Min: 1, Max: 1 << 12},
		"image pixels per QR module; ignored for types utf8 and utf8i", "scale")
	ff := getopt.Enum('t', outputFormats, "", "output format, one of: "+
		strings.Join(outputFormats, ", ")+
		`; "utf8i" has colours inverted for dark terminals; `+
		"if no -o is given and standard output is a TTY, "+
		"default is utf8, otherwise png", "type")
	getopt.SetParameters("[text ...]")
	getopt.Parse()

	if *help {
		getopt.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	format := *ff
	if format == "" {
		if *out == "" && isatty.IsTerminal(uintptr(syscall.Stdout)) {
			format = "utf8"
		} else {
			format = "png"
		}
	}
	dotsPerModule := int(*scale)
	if format != "png" {
		dotsPerModule = 1
	}

	opts := &qrstack.EncodeOptions{
		ErrorCorrection: strings.ToUpper(*lev),
		CharacterSet:    *charset,
	}

	writer := qrstack.NewWriter()
	var matrices []*bitutil.BitMatrix
	var err error
	if *binary {
		if len(getopt.Args()) != 0 {
			log.Fatalln("-8 reads raw bytes from standard input, not arguments")
		}
		var data []byte
		if data, err = io.ReadAll(os.Stdin); err != nil {
			log.Fatalln(err)
		}
		matrices, err = writer.EncodeStructuredAppendBinary(data, int(*ver), dotsPerModule, opts)
	} else {
		var text string
		if args := getopt.Args(); len(args) != 0 {
			text = strings.Join(args, " ")
		} else {
			var b strings.Builder
			if _, err := io.Copy(&b, os.Stdin); err != nil {
				log.Fatalln(err)
			}
			text, _ = strings.CutSuffix(
				strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
		}
		matrices, err = writer.EncodeStructuredAppend(text, int(*ver), dotsPerModule, opts)
	}
	if err != nil {
		log.Fatalln(err)
	}
	if len(matrices) > maxSymbols {
		log.Fatalf("payload needs %d symbols at version %d; structured append allows %d",
			len(matrices), *ver, maxSymbols)
	}

	base := *out
	ext := path.Ext(base)
	base = base[:len(base)-len(ext)]
	for i, matrix := range matrices {
		write(matrix, base, ext, format, i)
	}
}

// write emits one symbol of the set, numbered into its own file when an
// output name was given.
func write(matrix *bitutil.BitMatrix, base, ext, format string, i int) {
	w := os.Stdout
	if base != "" || ext != "" {
		fn := fmt.Sprintf("%s-%02d%s", base, i+1, ext)
		var err error
		if w, err = os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666); err != nil {
			log.Fatalln(err)
		}
	}

	var err error
	switch format {
	case "png":
		err = png.Encode(w, qrstack.BitMatrixToImage(matrix))
	case "utf8":
		_, err = io.WriteString(w, terminalArt(matrix, false))
	case "utf8i":
		_, err = io.WriteString(w, terminalArt(matrix, true))
	}
	if err == nil && (base != "" || ext != "") {
		err = w.Close()
	}
	if err != nil {
		log.Fatalln(err)
	}
}

// terminalArt renders the matrix with half block characters, two matrix
// rows per text line. invert swaps colours for light-on-dark terminals.
func terminalArt(matrix *bitutil.BitMatrix, invert bool) string {
	var b strings.Builder
	for y := 0; y < matrix.Height(); y += 2 {
		for x := 0; x < matrix.Width(); x++ {
			upper := matrix.Get(x, y) != invert
			lower := invert
			if y+1 < matrix.Height() {
				lower = matrix.Get(x, y+1) != invert
			}
			switch {
			case upper && lower:
				b.WriteRune('█')
			case upper:
				b.WriteRune('▀')
			case lower:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
