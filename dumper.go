package velocypack

import (
	"math"
	"strconv"
)

// DumpJSON appends the JSON rendering of s to out and returns the
// extended buffer, like append.  Objects are dumped in index-table
// order, so a sorted object produces keys in lexicographic order.
// Doubles that are NaN or infinite have no JSON form and are an error.
func DumpJSON(s Slice, out []byte) ([]byte, error) {
	if out == nil {
		out = make([]byte, 0, len(s)*2)
	}
	return dumpValue(s, out)
}

func dumpValue(s Slice, out []byte) ([]byte, error) {
	switch s.Type() {
	case Null:
		return append(out, "null"...), nil
	case Bool:
		if s.IsTrue() {
			return append(out, "true"...), nil
		}
		return append(out, "false"...), nil
	case Double:
		v, err := s.GetDouble()
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &SliceError{msg: "cannot dump NaN or Infinity"}
		}
		return appendDouble(out, v), nil
	case Int, SmallInt:
		v, err := s.GetInt()
		if err != nil {
			return nil, err
		}
		return strconv.AppendInt(out, v, 10), nil
	case UInt:
		v, err := s.GetUInt()
		if err != nil {
			return nil, err
		}
		return strconv.AppendUint(out, v, 10), nil
	case String:
		b, err := s.GetStringBytes()
		if err != nil {
			return nil, err
		}
		return appendQuoted(out, b), nil
	case Array:
		return dumpArray(s, out)
	case Object:
		return dumpObject(s, out)
	default:
		return nil, &SliceError{msg: "cannot dump value of type " + s.Type().String()}
	}
}

func dumpArray(s Slice, out []byte) ([]byte, error) {
	n, err := s.Length()
	if err != nil {
		return nil, err
	}
	out = append(out, '[')
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		child, err := s.At(i)
		if err != nil {
			return nil, err
		}
		out, err = dumpValue(child, out)
		if err != nil {
			return nil, err
		}
	}
	return append(out, ']'), nil
}

func dumpObject(s Slice, out []byte) ([]byte, error) {
	n, err := s.Length()
	if err != nil {
		return nil, err
	}
	out = append(out, '{')
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := s.KeyAt(i)
		if err != nil {
			return nil, err
		}
		kb, err := key.GetStringBytes()
		if err != nil {
			return nil, err
		}
		out = appendQuoted(out, kb)
		out = append(out, ':')
		value, err := s.ValueAt(i)
		if err != nil {
			return nil, err
		}
		out, err = dumpValue(value, out)
		if err != nil {
			return nil, err
		}
	}
	return append(out, '}'), nil
}

// appendDouble writes the shortest representation that round-trips,
// forcing a ".0" onto integral values so they reparse as doubles.
func appendDouble(out []byte, v float64) []byte {
	start := len(out)
	out = strconv.AppendFloat(out, v, 'g', -1, 64)
	for i := start; i < len(out); i++ {
		switch out[i] {
		case '.', 'e', 'E':
			return out
		}
	}
	return append(out, ".0"...)
}

const hexDigits = "0123456789abcdef"

// appendQuoted writes b as a JSON string literal.  The payload is
// already valid UTF-8 (possibly with NUL bytes from \u0000 escapes), so
// only quote, backslash and control characters need escaping.
func appendQuoted(out []byte, b []byte) []byte {
	out = append(out, '"')
	for _, c := range b {
		switch {
		case c == '"':
			out = append(out, '\\', '"')
		case c == '\\':
			out = append(out, '\\', '\\')
		case c == '\b':
			out = append(out, '\\', 'b')
		case c == '\f':
			out = append(out, '\\', 'f')
		case c == '\n':
			out = append(out, '\\', 'n')
		case c == '\r':
			out = append(out, '\\', 'r')
		case c == '\t':
			out = append(out, '\\', 't')
		case c < 0x20:
			out = append(out, '\\', 'u', '0', '0',
				hexDigits[c>>4], hexDigits[c&0xf])
		default:
			out = append(out, c)
		}
	}
	return append(out, '"')
}
