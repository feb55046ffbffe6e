package qrstack

import (
	"bytes"
	"testing"
)

// saResult builds a decode result carrying a structured append header.
func saResult(text string, index, total, parity int) *Result {
	result := NewResult(text, []byte(text), []byte(text), []ResultPoint{{X: 1, Y: 2}})
	result.PutMetadata(MetadataStructuredAppendIndex, index)
	result.PutMetadata(MetadataStructuredAppendTotal, total)
	result.PutMetadata(MetadataStructuredAppendParity, parity)
	return result
}

func TestReassembleShuffledSet(t *testing.T) {
	// Input order differs from index order; the combination follows the
	// indices.
	results := []*Result{
		saResult("DEF", 2, 3, 7),
		saResult("GHI", 3, 3, 7),
		saResult("ABC", 1, 3, 7),
	}
	combined := ReassembleStructuredAppend(results)
	if len(combined) != 1 {
		t.Fatalf("combined count: got %d, want 1", len(combined))
	}
	r := combined[0]
	if r.Text != "ABCDEFGHI" {
		t.Errorf("text: got %q, want %q", r.Text, "ABCDEFGHI")
	}
	if !bytes.Equal(r.Data, []byte("ABCDEFGHI")) {
		t.Errorf("data: got %q", r.Data)
	}
	if !bytes.Equal(r.RawBytes, []byte("ABCDEFGHI")) {
		t.Errorf("raw bytes: got %q", r.RawBytes)
	}
	if r.Points != nil {
		t.Errorf("combined result should carry no points, got %v", r.Points)
	}
	if len(r.Metadata) != 0 {
		t.Errorf("combined result should carry no metadata, got %v", r.Metadata)
	}
}

func TestReassembleMissingMember(t *testing.T) {
	results := []*Result{
		saResult("ABC", 1, 3, 7),
		saResult("GHI", 3, 3, 7),
	}
	combined := ReassembleStructuredAppend(results)
	if len(combined) != 0 {
		t.Errorf("incomplete group should be dropped, got %v", combined)
	}
}

func TestReassembleParityMismatch(t *testing.T) {
	// The second symbol's parity disagrees, so it cannot join the group.
	results := []*Result{
		saResult("ABC", 1, 2, 7),
		saResult("DEF", 2, 2, 8),
	}
	combined := ReassembleStructuredAppend(results)
	if len(combined) != 0 {
		t.Errorf("mismatched parity should drop the group, got %v", combined)
	}
}

func TestReassemblePassthrough(t *testing.T) {
	plainA := NewResult("PLAIN A", nil, []byte{1}, nil)
	plainB := NewResult("PLAIN B", nil, []byte{2}, nil)
	results := []*Result{
		plainA,
		saResult("DEF", 2, 2, 3),
		plainB,
		saResult("ABC", 1, 2, 3),
	}
	combined := ReassembleStructuredAppend(results)
	if len(combined) != 3 {
		t.Fatalf("combined count: got %d, want 3", len(combined))
	}
	// Results without headers pass through first, unchanged and in input
	// order; combinations follow.
	if combined[0] != plainA || combined[1] != plainB {
		t.Error("plain results should pass through in input order")
	}
	if combined[2].Text != "ABCDEF" {
		t.Errorf("combined text: got %q, want %q", combined[2].Text, "ABCDEF")
	}
}

func TestReassembleTwoGroups(t *testing.T) {
	results := []*Result{
		saResult("B2", 2, 2, 9),
		saResult("A1", 1, 2, 5),
		saResult("B1", 1, 2, 9),
		saResult("A2", 2, 2, 5),
	}
	combined := ReassembleStructuredAppend(results)
	if len(combined) != 2 {
		t.Fatalf("combined count: got %d, want 2", len(combined))
	}
	// Groups form in starter input order.
	if combined[0].Text != "A1A2" || combined[1].Text != "B1B2" {
		t.Errorf("texts: got %q, %q", combined[0].Text, combined[1].Text)
	}
}

func TestReassembleSingleSymbolSet(t *testing.T) {
	original := saResult("WHOLE", 1, 1, 4)
	combined := ReassembleStructuredAppend([]*Result{original})
	if len(combined) != 1 {
		t.Fatalf("combined count: got %d, want 1", len(combined))
	}
	r := combined[0]
	if r == original {
		t.Error("a one-symbol set should still produce a fresh result")
	}
	if r.Text != "WHOLE" {
		t.Errorf("text: got %q, want %q", r.Text, "WHOLE")
	}
	if len(r.Metadata) != 0 || r.Points != nil {
		t.Error("combined result should carry no metadata and no points")
	}
}

func TestReassembleDuplicateStarters(t *testing.T) {
	// Two symbols both claiming position one each seed their own group
	// against the rest of the batch.
	results := []*Result{
		saResult("X1", 1, 2, 6),
		saResult("Y1", 1, 2, 6),
		saResult("Z2", 2, 2, 6),
	}
	combined := ReassembleStructuredAppend(results)
	if len(combined) != 2 {
		t.Fatalf("combined count: got %d, want 2", len(combined))
	}
	if combined[0].Text != "X1Z2" || combined[1].Text != "Y1Z2" {
		t.Errorf("texts: got %q, %q", combined[0].Text, combined[1].Text)
	}
}

func TestReassembleNilData(t *testing.T) {
	// Members that decoded without byte segments leave the combined Data
	// nil rather than empty.
	first := saResult("AB", 1, 2, 3)
	first.Data = nil
	second := saResult("CD", 2, 2, 3)
	second.Data = nil
	combined := ReassembleStructuredAppend([]*Result{first, second})
	if len(combined) != 1 {
		t.Fatalf("combined count: got %d, want 1", len(combined))
	}
	if combined[0].Data != nil {
		t.Errorf("data: got %v, want nil", combined[0].Data)
	}
	if combined[0].Text != "ABCD" {
		t.Errorf("text: got %q, want %q", combined[0].Text, "ABCD")
	}
}

func TestReassembleEmptyBatch(t *testing.T) {
	combined := ReassembleStructuredAppend(nil)
	if combined == nil || len(combined) != 0 {
		t.Errorf("got %v, want an empty slice", combined)
	}
}
