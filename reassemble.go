package qrstack

// ReassembleStructuredAppend combines the structured append symbols in a
// batch of decode results into whole-payload results. The batch may come
// from one image or from many; order does not matter.
//
// Results without structured append metadata pass through unchanged, in
// input order. Every result with index 1 starts a group, whose remaining
// members are found by matching (index, total, parity) against the whole
// batch; the first index with no match abandons the group. Only complete
// groups produce a combined result: Text and Data are the members'
// concatenations in index order (Data stays nil when no member carried
// bytes), RawBytes concatenates every member's, and the combination carries
// no points and no metadata. Incomplete groups are dropped silently.
//
// Matching uses nothing but the header triple, so two sequences that happen
// to share total and parity can combine incorrectly. The header carries no
// stronger identity; callers needing one must keep such batches apart.
func ReassembleStructuredAppend(results []*Result) []*Result {
	reassembled := []*Result{}
	var starters []*Result
	for _, result := range results {
		index, ok := saMetadataInt(result, MetadataStructuredAppendIndex)
		if !ok {
			reassembled = append(reassembled, result)
		} else if index == 1 {
			starters = append(starters, result)
		}
	}

	for _, starter := range starters {
		total, _ := saMetadataInt(starter, MetadataStructuredAppendTotal)
		parity, _ := saMetadataInt(starter, MetadataStructuredAppendParity)
		members := []*Result{starter}
		for i := 2; i <= total; i++ {
			next := findSymbol(results, i, total, parity)
			if next == nil {
				break
			}
			members = append(members, next)
		}
		if len(members) != total {
			continue
		}

		var text string
		var data []byte
		var rawBytes []byte
		for _, member := range members {
			text += member.Text
			if member.Data != nil {
				data = append(data, member.Data...)
			}
			rawBytes = append(rawBytes, member.RawBytes...)
		}
		reassembled = append(reassembled, NewResult(text, data, rawBytes, nil))
	}
	return reassembled
}

// findSymbol returns the first result in the batch whose structured append
// header is exactly (index, total, parity), or nil.
func findSymbol(results []*Result, index, total, parity int) *Result {
	for _, result := range results {
		i, ok := saMetadataInt(result, MetadataStructuredAppendIndex)
		if !ok || i != index {
			continue
		}
		t, _ := saMetadataInt(result, MetadataStructuredAppendTotal)
		p, _ := saMetadataInt(result, MetadataStructuredAppendParity)
		if t == total && p == parity {
			return result
		}
	}
	return nil
}

func saMetadataInt(result *Result, key ResultMetadataKey) (int, bool) {
	value, ok := result.Metadata[key].(int)
	return value, ok
}
