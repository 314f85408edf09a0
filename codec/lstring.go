package codec

// likelyString reports if b, the bytes from an LString's offset to the end of the data,
// look like inline text rather than a 4 byte string id. The bytes must end with the only
// zero byte in b and every other byte must be printable in an 8 bit code page, meaning
// at least 0x20 and not DEL, or a tab, carriage return or line feed.
//
// A string id whose high byte is zero and whose other bytes are printable looks like
// text. Encode refuses to write such an id in the final position so the decision made
// here is stable across a round trip.
func likelyString(b []byte) bool {
	if len(b) == 0 || b[len(b)-1] != 0 {
		return false
	}
	for _, c := range b[:len(b)-1] {
		if !printable(c) {
			return false
		}
	}
	return true
}

func printable(c byte) bool {
	switch c {
	case '\t', '\r', '\n':
		return true
	case 0x7F:
		return false
	}
	return c >= 0x20
}
