package heapslice

import "unicode/utf8"

// validateUTF8 returns nil if p is well-formed UTF-8. Otherwise it returns
// an *InvalidUTF8Error describing the first violation.
func validateUTF8(p []byte) *InvalidUTF8Error {
	if utf8.Valid(p) {
		return nil
	}
	for i := 0; i < len(p); {
		if p[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size == 1 {
			return &InvalidUTF8Error{Offset: i, Length: invalidLength(p[i:])}
		}
		i += size
	}
	return nil
}

// invalidLength returns how many bytes of p, which starts with an invalid
// sequence, belong to that sequence. It returns 0 if p ends before the
// sequence could be completed.
func invalidLength(p []byte) int {
	lo, hi := byte(0x80), byte(0xBF)
	var need int

	switch lead := p[0]; {
	case lead < 0xC2:
		return 1
	case lead < 0xE0:
		need = 1
	case lead < 0xF0:
		need = 2
		switch lead {
		case 0xE0:
			lo = 0xA0
		case 0xED:
			hi = 0x9F
		}
	case lead < 0xF5:
		need = 3
		switch lead {
		case 0xF0:
			lo = 0x90
		case 0xF4:
			hi = 0x8F
		}
	default:
		return 1
	}

	for k := 1; k <= need; k++ {
		if k >= len(p) {
			return 0
		}
		if p[k] < lo || p[k] > hi {
			return k
		}
		lo, hi = 0x80, 0xBF
	}
	return need + 1
}
