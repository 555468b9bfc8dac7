package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Marshal encodes a node as compact JSON. Object members are written in
// order; HTML characters are not escaped.
func Marshal(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, n, encoder{}, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like Marshal but indents nested values by indent.
func MarshalIndent(n Node, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, n, encoder{indent: indent}, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalCanonical produces the byte form used for content addressing.
//
// Differences from Marshal:
//  1. Strings (including keys) are NFC normalized
//  2. U+2028 and U+2029 are written unescaped
//
// Member order is preserved, not sorted: ordered configuration such as
// matcher patterns hashes differently when reordered.
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, n, encoder{canonical: true}, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	indent    string
	canonical bool
}

func (e encoder) newline(buf *bytes.Buffer, depth int) {
	if e.indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(e.indent, depth))
}

func encode(buf *bytes.Buffer, n Node, e encoder, depth int) error {
	switch val := n.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		return e.writeString(buf, string(val))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Array:
		if len(val) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			e.newline(buf, depth+1)
			if err := encode(buf, elem, e, depth+1); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		e.newline(buf, depth)
		buf.WriteByte(']')
	case Object:
		if len(val) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, m := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			e.newline(buf, depth+1)
			if err := e.writeString(buf, m.Key); err != nil {
				return fmt.Errorf("marshal key %q: %w", m.Key, err)
			}
			buf.WriteByte(':')
			if e.indent != "" {
				buf.WriteByte(' ')
			}
			if err := encode(buf, m.Value, e, depth+1); err != nil {
				return fmt.Errorf("object[%q]: %w", m.Key, err)
			}
		}
		e.newline(buf, depth)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown Node type: %T", n)
	}
	return nil
}

func (e encoder) writeString(buf *bytes.Buffer, s string) error {
	if e.canonical {
		s = norm.NFC.String(s)
	}

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})

	if e.canonical {
		out = unescapeLineSeparators(out)
	}
	buf.Write(out)
	return nil
}

// unescapeLineSeparators writes the \u2028 and \u2029 escapes produced by
// json.Encoder as raw characters. Escapes are consumed in pairs, so an escaped
// backslash followed by the text "u2028" is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if esc := data[i:]; bytes.HasPrefix(esc, []byte(`\u2028`)) || bytes.HasPrefix(esc, []byte(`\u2029`)) {
			if esc[5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
