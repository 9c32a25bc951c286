package cbor

import "encoding/binary"

// DefaultMaxNestingDepth bounds recursive array/map/tag descent so malformed
// or adversarial input cannot exhaust the stack (spec §5 resource model).
const DefaultMaxNestingDepth = 64

// Tokenizer is the low-level byte-cursor reader (component A): it knows how
// to split CBOR bytes into heads and raw payloads, but has no notion of an
// Item value tree — that assembly is Decoder's job (component B). Adapted
// from the teacher's CborReader, stripped of its conformance-mode machinery:
// spec.md's decoder accepts any legally-encoded head and leaves canonical
// shaping to the encoder, so there is nothing left for a reader-side
// strictness switch to enforce.
type Tokenizer struct {
	data   []byte
	offset int
	depth  int
	maxDepth int
}

// NewTokenizer wraps data for sequential reading, starting at offset 0.
func NewTokenizer(data []byte) *Tokenizer {
	return &Tokenizer{data: data, maxDepth: DefaultMaxNestingDepth}
}

// Offset reports the current byte position, for error reporting.
func (t *Tokenizer) Offset() int { return t.offset }

// AtEnd reports whether every byte has been consumed.
func (t *Tokenizer) AtEnd() bool { return t.offset >= len(t.data) }

func (t *Tokenizer) errorf(err error, context string) error {
	return newError(err, t.offset, context)
}

func (t *Tokenizer) requireBytes(n int) ([]byte, error) {
	if n < 0 || t.offset+n > len(t.data) {
		return nil, t.errorf(ErrUnexpectedEndOfData, "")
	}
	b := t.data[t.offset : t.offset+n]
	t.offset += n
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (t *Tokenizer) PeekByte() (byte, error) {
	if t.offset >= len(t.data) {
		return 0, t.errorf(ErrUnexpectedEndOfData, "")
	}
	return t.data[t.offset], nil
}

// IsBreak reports whether the next byte is the indefinite-length break
// marker, without consuming anything.
func (t *Tokenizer) IsBreak() (bool, error) {
	b, err := t.PeekByte()
	if err != nil {
		return false, err
	}
	return b == breakByte, nil
}

// ConsumeBreak consumes the break byte, failing if it isn't present.
func (t *Tokenizer) ConsumeBreak() error {
	b, err := t.requireBytes(1)
	if err != nil {
		return err
	}
	if b[0] != breakByte {
		return t.errorf(ErrUnexpectedToken, "expecting a break")
	}
	return nil
}

// Head is a decoded CBOR head byte plus its resolved argument. AI retains
// the raw additional-info value (0-31) so major-7 decoding can distinguish
// a simple-value code from a float width, which both resolve through the
// same Argument field.
type Head struct {
	Major      MajorType
	AI         byte
	Indefinite bool
	Argument   uint64 // meaningless when Indefinite is true
}

// ReadHead reads and fully resolves one head (initial byte plus any
// following argument bytes), per RFC 8949 §3 Table 5.
func (t *Tokenizer) ReadHead() (Head, error) {
	b, err := t.requireBytes(1)
	if err != nil {
		return Head{}, err
	}
	major, ai := splitInitialByte(b[0])

	switch {
	case ai < aiOneByte:
		return Head{Major: major, AI: ai, Argument: uint64(ai)}, nil
	case ai == aiOneByte:
		raw, err := t.requireBytes(1)
		if err != nil {
			return Head{}, err
		}
		return Head{Major: major, AI: ai, Argument: uint64(raw[0])}, nil
	case ai == aiTwoByte:
		raw, err := t.requireBytes(2)
		if err != nil {
			return Head{}, err
		}
		return Head{Major: major, AI: ai, Argument: uint64(binary.BigEndian.Uint16(raw))}, nil
	case ai == aiFourByte:
		raw, err := t.requireBytes(4)
		if err != nil {
			return Head{}, err
		}
		return Head{Major: major, AI: ai, Argument: uint64(binary.BigEndian.Uint32(raw))}, nil
	case ai == aiEightByte:
		raw, err := t.requireBytes(8)
		if err != nil {
			return Head{}, err
		}
		return Head{Major: major, AI: ai, Argument: binary.BigEndian.Uint64(raw)}, nil
	case ai == aiIndefinite:
		if major != MajorByteString && major != MajorTextString && major != MajorArray && major != MajorMap {
			return Head{}, t.errorf(ErrReservedHeadByte, "indefinite length on this major type")
		}
		return Head{Major: major, AI: ai, Indefinite: true}, nil
	default: // 28-30, reserved
		return Head{}, t.errorf(ErrReservedHeadByte, "")
	}
}

// ReadRawBytes consumes and returns exactly n bytes, e.g. the payload of a
// definite-length byte/text string chunk.
func (t *Tokenizer) ReadRawBytes(n uint64) ([]byte, error) {
	if n > uint64(len(t.data)) {
		return nil, t.errorf(ErrTooLong, "")
	}
	return t.requireBytes(int(n))
}

// EnterNesting increments the recursion depth counter, failing once
// maxDepth is exceeded.
func (t *Tokenizer) EnterNesting() error {
	t.depth++
	if t.depth > t.maxDepth {
		return t.errorf(ErrNestingTooDeep, "")
	}
	return nil
}

// ExitNesting decrements the recursion depth counter.
func (t *Tokenizer) ExitNesting() {
	t.depth--
}
