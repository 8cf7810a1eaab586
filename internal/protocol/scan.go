package protocol

import (
	"math"
	"strconv"
	"strings"
)

// The field scans below are deliberately presence-based: a field either
// appears with a parseable value or it is treated as absent. Malformed
// values never fail the whole line.

// scanValue returns the raw text between key and the next ',' or '}'.
func scanValue(line, key string) (string, bool) {
	i := strings.Index(line, key)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(key):]
	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// scanInt extracts an integer field value.
func scanInt(line, key string) (int, bool) {
	raw, ok := scanValue(line, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// scanFloat extracts a floating point field value.
func scanFloat(line, key string) (float64, bool) {
	raw, ok := scanValue(line, key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// scanString extracts a quoted string field value.
func scanString(line, key string) (string, bool) {
	i := strings.Index(line, key)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(key):]
	start := strings.IndexByte(rest, '"')
	if start < 0 {
		return "", false
	}
	rest = rest[start+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// scanIntArray extracts a bracketed comma-separated integer list. The key
// must include the opening bracket. Malformed tokens are skipped and the
// scan continues past them. An empty array is present with zero values.
func scanIntArray(line, key string) ([]int32, bool) {
	i := strings.Index(line, key)
	if i < 0 {
		return nil, false
	}
	rest := line[i+len(key):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return nil, false
	}
	body := rest[:end]
	if body == "" {
		return []int32{}, true
	}

	tokens := strings.Split(body, ",")
	values := make([]int32, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil {
			continue
		}
		values = append(values, saturateInt32(n))
	}
	return values, true
}

// saturateInt32 clamps oversized wire values. Audio samples are clamped
// to 16 bits later anyway, so saturation here only keeps the decode total.
func saturateInt32(n int64) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int32(n)
}
