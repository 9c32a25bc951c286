package cbor

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"github.com/x448/float16"
)

// Encoder writes Items as canonical CBOR (component D): every head is
// written in its shortest legal form and, since the Item tree carries no
// indefinite-length state (Decoder always collapses indefinite-length
// strings/arrays/maps into their definite-length representation), every
// string/array/map is always emitted definite-length. This mirrors the
// teacher's writer in spirit but operates on an already-built tree instead
// of a stateful nesting stack, since the value no longer needs to be
// streamed incrementally by the caller.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps w for writing.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes item's canonical CBOR encoding.
func (e *Encoder) Encode(item Item) error {
	return item.Encode(e)
}

// EncodeToBytes is a convenience wrapper returning the encoded bytes of a
// single item.
func EncodeToBytes(item Item) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(item); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Encoder) writeRaw(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

// writeHead emits the head for mt with argument arg in its shortest legal
// encoding (RFC 8949 §4.2's "preferred serialization" for the head form;
// this package does not otherwise enforce canonical ordering of map keys).
func (e *Encoder) writeHead(mt MajorType, arg uint64) error {
	switch {
	case arg < uint64(aiOneByte):
		return e.writeRaw([]byte{initialByte(mt, byte(arg))})
	case arg <= math.MaxUint8:
		return e.writeRaw([]byte{initialByte(mt, aiOneByte), byte(arg)})
	case arg <= math.MaxUint16:
		b := make([]byte, 3)
		b[0] = initialByte(mt, aiTwoByte)
		binary.BigEndian.PutUint16(b[1:], uint16(arg))
		return e.writeRaw(b)
	case arg <= math.MaxUint32:
		b := make([]byte, 5)
		b[0] = initialByte(mt, aiFourByte)
		binary.BigEndian.PutUint32(b[1:], uint32(arg))
		return e.writeRaw(b)
	default:
		b := make([]byte, 9)
		b[0] = initialByte(mt, aiEightByte)
		binary.BigEndian.PutUint64(b[1:], arg)
		return e.writeRaw(b)
	}
}

func bignumTagAndBytes(v *big.Int) (uint64, []byte) {
	if v.Sign() >= 0 {
		return TagUnsignedBignum, v.Bytes()
	}
	n := new(big.Int).Neg(v)
	n.Sub(n, big.NewInt(1))
	return TagNegativeBignum, n.Bytes()
}

func (e *Encoder) writeBignum(v *big.Int) error {
	tag, magnitude := bignumTagAndBytes(v)
	if err := e.writeHead(MajorTag, tag); err != nil {
		return err
	}
	if err := e.writeHead(MajorByteString, uint64(len(magnitude))); err != nil {
		return err
	}
	return e.writeRaw(magnitude)
}

func (i *IntItem) Encode(e *Encoder) error {
	if i.Value.Sign() >= 0 {
		if u, ok := i.Value.Uint64(); ok {
			return e.writeHead(MajorUnsignedInt, u)
		}
		return e.writeBignum(i.Value.BigInt())
	}
	mag := new(big.Int).Neg(i.Value.BigInt())
	mag.Sub(mag, big.NewInt(1))
	if mag.IsUint64() {
		return e.writeHead(MajorNegativeInt, mag.Uint64())
	}
	return e.writeBignum(i.Value.BigInt())
}

func (f *FloatItem) Encode(e *Encoder) error {
	switch f.Bitwidth {
	case 16:
		bits := float16.Fromfloat32(float32(f.Value)).Bits()
		return e.writeRaw([]byte{initialByte(MajorSimpleOrFloat, aiTwoByte), byte(bits >> 8), byte(bits)})
	case 32:
		b := make([]byte, 5)
		b[0] = initialByte(MajorSimpleOrFloat, aiFourByte)
		binary.BigEndian.PutUint32(b[1:], math.Float32bits(float32(f.Value)))
		return e.writeRaw(b)
	default:
		b := make([]byte, 9)
		b[0] = initialByte(MajorSimpleOrFloat, aiEightByte)
		binary.BigEndian.PutUint64(b[1:], math.Float64bits(f.Value))
		return e.writeRaw(b)
	}
}

func (b *ByteStringItem) Encode(e *Encoder) error {
	if b.encodingTag != nil {
		if err := e.writeHead(MajorTag, *b.encodingTag); err != nil {
			return err
		}
	}
	if err := e.writeHead(MajorByteString, uint64(len(b.Bytes))); err != nil {
		return err
	}
	return e.writeRaw(b.Bytes)
}

func (t *TextStringItem) Encode(e *Encoder) error {
	raw := []byte(t.Value)
	if err := e.writeHead(MajorTextString, uint64(len(raw))); err != nil {
		return err
	}
	return e.writeRaw(raw)
}

func (u *URIItem) Encode(e *Encoder) error {
	if err := e.writeHead(MajorTag, TagURI); err != nil {
		return err
	}
	raw := []byte(u.Value)
	if err := e.writeHead(MajorTextString, uint64(len(raw))); err != nil {
		return err
	}
	return e.writeRaw(raw)
}

func (a *ArrayItem) Encode(e *Encoder) error {
	if err := e.writeHead(MajorArray, uint64(len(a.Items))); err != nil {
		return err
	}
	for _, item := range a.Items {
		if err := item.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *MapItem) Encode(e *Encoder) error {
	if err := e.writeHead(MajorMap, uint64(len(m.Pairs))); err != nil {
		return err
	}
	for _, p := range m.Pairs {
		if err := p.Key.Encode(e); err != nil {
			return err
		}
		if err := p.Value.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func (b *BoolItem) Encode(e *Encoder) error {
	code := byte(simpleFalse)
	if b.Value {
		code = simpleTrue
	}
	return e.writeHead(MajorSimpleOrFloat, uint64(code))
}

func (n *NullItem) Encode(e *Encoder) error {
	return e.writeHead(MajorSimpleOrFloat, uint64(simpleNull))
}

func (u *UndefinedItem) Encode(e *Encoder) error {
	return e.writeHead(MajorSimpleOrFloat, uint64(simpleUndefined))
}

func (s *SimpleValueItem) Encode(e *Encoder) error {
	return e.writeHead(MajorSimpleOrFloat, uint64(s.Code))
}

func (t *TaggedItem) Encode(e *Encoder) error {
	tag, ok := t.Tag.Uint64()
	if !ok {
		return ErrTooLong
	}
	if err := e.writeHead(MajorTag, tag); err != nil {
		return err
	}
	return t.Child.Encode(e)
}
