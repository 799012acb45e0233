package api

const upperhex = "0123456789ABCDEF"

// SmartEscape percent-encodes everything outside the characters the
// CDN accepts verbatim in a public ID or remote URL.  "/" and ":"
// stay unescaped so path separators and protocol prefixes survive,
// and "%" is escaped, which makes the escape idempotent only on
// already-clean input: callers decode once before escaping.
func SmartEscape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !urlSafe(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if urlSafe(c) {
			buf = append(buf, c)
		} else {
			buf = append(buf, '%', upperhex[c>>4], upperhex[c&15])
		}
	}
	return string(buf)
}

func urlSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '/', c == ':':
		return true
	}
	return false
}
