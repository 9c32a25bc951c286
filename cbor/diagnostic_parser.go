package cbor

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// DefaultDiagnosticPrefix is the trigger prefix DiagnosticParser strips
// before parsing, per spec.md §6's optional diagnostic-notation plug-in.
const DefaultDiagnosticPrefix = "cbor:"

// DiagnosticParser parses RFC 8949 §8 diagnostic notation text back into an
// Item tree. It parses integers, h'..' byte strings, quoted text strings,
// arrays, maps, n(...) tag wrappers, true/false/null/undefined, and
// simple(n). Floats (including NaN/Infinity) and the <<...>> form that
// Diagnose emits for tag-24 byte strings are not parsed.
type DiagnosticParser struct {
	Prefix string
}

// NewDiagnosticParser returns a parser using DefaultDiagnosticPrefix.
func NewDiagnosticParser() *DiagnosticParser {
	return &DiagnosticParser{Prefix: DefaultDiagnosticPrefix}
}

// Parse strips p.Prefix (if present) from s and parses the remainder as one
// diagnostic-notation value.
func (p *DiagnosticParser) Parse(s string) (Item, error) {
	s = strings.TrimSpace(s)
	if p.Prefix != "" {
		s = strings.TrimPrefix(s, p.Prefix)
	}
	ps := &diagState{src: s}
	ps.skipSpace()
	item, err := ps.parseValue()
	if err != nil {
		return nil, err
	}
	ps.skipSpace()
	if !ps.atEnd() {
		return nil, fmt.Errorf("cbor: trailing data in diagnostic notation at %d", ps.pos)
	}
	return item, nil
}

type diagState struct {
	src string
	pos int
}

func (s *diagState) atEnd() bool { return s.pos >= len(s.src) }

func (s *diagState) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *diagState) skipSpace() {
	for !s.atEnd() {
		c := s.peek()
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			s.pos++
			continue
		}
		break
	}
}

func (s *diagState) expect(c byte) error {
	if s.atEnd() || s.peek() != c {
		return fmt.Errorf("cbor: expected %q at offset %d", c, s.pos)
	}
	s.pos++
	return nil
}

func (s *diagState) parseValue() (Item, error) {
	s.skipSpace()
	if s.atEnd() {
		return nil, fmt.Errorf("cbor: unexpected end of diagnostic notation")
	}
	switch c := s.peek(); {
	case c == '"':
		return s.parseText()
	case c == '[':
		return s.parseArray()
	case c == '{':
		return s.parseMap()
	case c == 'h' && s.hasPrefix("h'"):
		return s.parseHexBytes()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.parseNumberOrTag()
	case s.hasPrefix("true"):
		s.pos += 4
		return NewBoolItem(true), nil
	case s.hasPrefix("false"):
		s.pos += 5
		return NewBoolItem(false), nil
	case s.hasPrefix("null"):
		s.pos += 4
		return NewNullItem(), nil
	case s.hasPrefix("undefined"):
		s.pos += 9
		return NewUndefinedItem(), nil
	case s.hasPrefix("simple("):
		return s.parseSimple()
	default:
		return nil, fmt.Errorf("cbor: unrecognized diagnostic notation at offset %d", s.pos)
	}
}

func (s *diagState) hasPrefix(p string) bool {
	return strings.HasPrefix(s.src[s.pos:], p)
}

func (s *diagState) parseText() (Item, error) {
	if err := s.expect('"'); err != nil {
		return nil, err
	}
	var b strings.Builder
	for {
		if s.atEnd() {
			return nil, fmt.Errorf("cbor: unterminated text string in diagnostic notation")
		}
		c := s.src[s.pos]
		if c == '"' {
			s.pos++
			break
		}
		if c == '\\' && s.pos+1 < len(s.src) {
			s.pos++
			b.WriteByte(s.src[s.pos])
			s.pos++
			continue
		}
		b.WriteByte(c)
		s.pos++
	}
	return NewTextStringItem(b.String()), nil
}

func (s *diagState) parseHexBytes() (Item, error) {
	s.pos += 2 // consume "h'"
	start := s.pos
	for !s.atEnd() && s.peek() != '\'' {
		s.pos++
	}
	if err := s.expect('\''); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(s.src[start : s.pos-1])
	if err != nil {
		return nil, fmt.Errorf("cbor: invalid hex in diagnostic notation: %w", err)
	}
	return NewByteStringItem(raw), nil
}

func (s *diagState) parseArray() (Item, error) {
	if err := s.expect('['); err != nil {
		return nil, err
	}
	arr := &ArrayItem{}
	s.skipSpace()
	if s.peek() == ']' {
		s.pos++
		return arr, nil
	}
	for {
		item, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)
		s.skipSpace()
		if s.peek() == ',' {
			s.pos++
			continue
		}
		break
	}
	if err := s.expect(']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func (s *diagState) parseMap() (Item, error) {
	if err := s.expect('{'); err != nil {
		return nil, err
	}
	m := &MapItem{}
	s.skipSpace()
	if s.peek() == '}' {
		s.pos++
		return m, nil
	}
	for {
		key, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		if err := s.expect(':'); err != nil {
			return nil, err
		}
		val, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, MapPair{Key: key, Value: val})
		s.skipSpace()
		if s.peek() == ',' {
			s.pos++
			continue
		}
		break
	}
	if err := s.expect('}'); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *diagState) parseSimple() (Item, error) {
	s.pos += len("simple(")
	start := s.pos
	for !s.atEnd() && s.peek() != ')' {
		s.pos++
	}
	n, err := strconv.ParseUint(s.src[start:s.pos], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("cbor: invalid simple(...) in diagnostic notation: %w", err)
	}
	if err := s.expect(')'); err != nil {
		return nil, err
	}
	return NewSimpleValueItem(byte(n))
}

// parseNumberOrTag parses a decimal integer, then checks whether it is
// immediately followed by "(" — in which case it is a tag number wrapping a
// parenthesized child value, per RFC 8949 §8's tag notation "n(...)".
func (s *diagState) parseNumberOrTag() (Item, error) {
	start := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	for !s.atEnd() && s.peek() >= '0' && s.peek() <= '9' {
		s.pos++
	}
	numText := s.src[start:s.pos]

	if !s.atEnd() && s.peek() == '(' {
		tag, err := strconv.ParseUint(numText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cbor: invalid tag number in diagnostic notation: %w", err)
		}
		s.pos++ // consume '('
		child, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		if err := s.expect(')'); err != nil {
			return nil, err
		}
		return NewTaggedItem(NewNumberFromUint64(tag), child), nil
	}

	n, ok := new(big.Int).SetString(numText, 10)
	if !ok {
		return nil, fmt.Errorf("cbor: invalid integer %q in diagnostic notation", numText)
	}
	return NewIntItem(NewNumberFromBigInt(n)), nil
}
