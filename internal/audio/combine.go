// Package audio provides combination of synthesized audio segments.
package audio

// Combine merges ordered audio buffers into a single buffer.
//
// Zero buffers yield an empty buffer, a single buffer is returned as-is
// without copying, and multiple buffers are concatenated in sequence order
// with no re-encoding. Byte-level concatenation is only valid for
// frame-based containers (such as MP3) where successive same-format frames
// remain independently decodable.
func Combine(buffers [][]byte) []byte {
	switch len(buffers) {
	case 0:
		return []byte{}
	case 1:
		return buffers[0]
	}

	total := 0
	for _, b := range buffers {
		total += len(b)
	}

	out := make([]byte, 0, total)
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out
}
