// Package split chunks payloads for structured append encoding.
//
// A structured append set carries one payload across up to sixteen QR
// symbols. The functions here produce the per-symbol chunks and the parity
// byte shared by every symbol header; the per-chunk byte budget comes from
// symbol.PlanStructuredAppend.
package split

import (
	"github.com/qrstack/qrstack/charset"
)

// Chunk is one symbol's share of a split payload. Index is the 1-based
// position in the sequence; Data holds the chunk's encoded payload bytes.
type Chunk struct {
	Index int
	Data  []byte
}

// Text splits content into chunks whose encoded length under the given
// character set is at most capacity bytes. Chunks break on character
// boundaries: each starts with up to capacity characters and shrinks until
// its encoding fits. A nil eci encodes as ISO-8859-1.
func Text(content string, eci *charset.ECI, capacity int) []Chunk {
	if eci == nil {
		eci = charset.ECIISO8859_1
	}
	runes := []rune(content)
	var chunks []Chunk
	pos := 0
	for pos < len(runes) {
		take := capacity
		if remaining := len(runes) - pos; remaining < take {
			take = remaining
		}
		encoded := eci.Encode(string(runes[pos : pos+take]))
		// A single character can exceed the capacity in a multi-byte
		// charset; keep it whole and let the encoder reject the chunk.
		for take > 1 && len(encoded) > capacity {
			take--
			encoded = eci.Encode(string(runes[pos : pos+take]))
		}
		chunks = append(chunks, Chunk{Index: len(chunks) + 1, Data: encoded})
		pos += take
	}
	return chunks
}

// Binary splits data into capacity-sized chunks, the last one short.
func Binary(data []byte, capacity int) []Chunk {
	total := (len(data) + capacity - 1) / capacity
	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		start := i * capacity
		end := start + capacity
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, Chunk{Index: i + 1, Data: data[start:end]})
	}
	return chunks
}

// Parity folds the encoded payload into the single parity byte carried by
// every structured append header. The fold runs over the whole original
// payload, so readers can verify it against the reassembled bytes.
func Parity(data []byte) byte {
	var parity byte
	for _, b := range data {
		parity ^= b
	}
	return parity
}
