// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package descriptor

// scanner walks the comma separated fields of one descriptor line. Parsing
// is permissive by design: a missing or garbled numeric token yields 0, the
// way the descriptor language has always behaved. Strictness here would
// break existing descriptor files that rely on sloppy fields.
type scanner struct {
	s string
}

// next returns the next comma separated token. ok is false once the line is
// exhausted.
func (sc *scanner) next() (tok string, ok bool) {
	if sc.s == "" {
		return "", false
	}
	for i := 0; i < len(sc.s); i++ {
		if sc.s[i] == ',' {
			tok, sc.s = sc.s[:i], sc.s[i+1:]
			return tok, true
		}
	}
	tok, sc.s = sc.s, ""
	return tok, true
}

// val consumes one token as a signed decimal number.
func (sc *scanner) val() int {
	tok, _ := sc.next()
	return parseDec(tok)
}

// hex consumes one token as a hexadecimal number.
func (sc *scanner) hex() int {
	tok, _ := sc.next()
	return parseHex(tok)
}

// hexByte consumes one token as a hexadecimal command byte.
func (sc *scanner) hexByte() byte {
	return byte(sc.hex())
}

// parseDec mimics atoi: optional sign, leading digits, everything else 0.
func parseDec(s string) int {
	s = trimSpace(s)
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			break
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// parseHex mimics strtol(s, 0, 16): optional 0x prefix, leading hex digits,
// everything else 0.
func parseHex(s string) int {
	s = trimSpace(s)
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	n := 0
	for i := 0; i < len(s); i++ {
		var d int
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			return n
		}
		n = n<<4 | d
	}
	return n
}

func trimSpace(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
