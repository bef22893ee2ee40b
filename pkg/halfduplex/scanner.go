package halfduplex

import "bytes"

// Scan re-anchors a raw reply on the expected header.
// The leftmost occurrence wins and everything from it to the end of buf is
// the reply. A buffer without the header yields NoMatch; callers handle an
// empty buffer as Empty before scanning.
func Scan(buf, header []byte) Result {
	for data := buf; len(data) > 0; data = data[1:] {
		if bytes.HasPrefix(data, header) {
			return Matched(data)
		}
	}
	return NoMatch
}
