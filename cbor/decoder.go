package cbor

import (
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/x448/float16"
)

// Decoder assembles a Tokenizer's head/byte stream into an Item tree
// (component B). Tag dispatch is driven by a TagRegistry; an unregistered
// tag number falls back to a generic *TaggedItem wrapping its child.
type Decoder struct {
	tok *Tokenizer
	reg *TagRegistry
}

// NewDecoder returns a Decoder reading data, dispatching tags through reg.
// Pass DefaultTagRegistry() for the spec's default registrations, or nil to
// disable all tag processing (every tag becomes a *TaggedItem).
func NewDecoder(data []byte, reg *TagRegistry) *Decoder {
	if reg == nil {
		reg = NewTagRegistry()
	}
	return &Decoder{tok: NewTokenizer(data), reg: reg}
}

// Offset reports the current byte position, for error reporting by callers
// iterating multiple top-level items.
func (d *Decoder) Offset() int { return d.tok.Offset() }

// More reports whether further top-level items remain.
func (d *Decoder) More() bool { return !d.tok.AtEnd() }

// Next decodes exactly one top-level Item (spec §4.B: "assembles tokens from
// the tokenizer into a single Item tree per call").
func (d *Decoder) Next() (Item, error) {
	return d.readItem()
}

func (d *Decoder) readItem() (Item, error) {
	head, err := d.tok.ReadHead()
	if err != nil {
		return nil, err
	}

	switch head.Major {
	case MajorUnsignedInt:
		return NewIntItem(NewNumberFromUint64(head.Argument)), nil

	case MajorNegativeInt:
		// CBOR negative-int argument n encodes value -1-n; n can reach
		// 2^64-1, which overflows int64, so go through big.Int.
		if head.Argument > math.MaxInt64 {
			n := new(big.Int).SetUint64(head.Argument)
			n.Neg(n)
			n.Sub(n, big.NewInt(1))
			return NewIntItem(NewNumberFromBigInt(n)), nil
		}
		return NewIntItem(NewNumberFromInt64(-1 - int64(head.Argument))), nil

	case MajorByteString:
		return d.readByteString(head)

	case MajorTextString:
		return d.readTextString(head)

	case MajorArray:
		return d.readArray(head)

	case MajorMap:
		return d.readMap(head)

	case MajorTag:
		return d.readTag(head)

	case MajorSimpleOrFloat:
		return d.readSimpleOrFloat(head)

	default:
		return nil, d.tok.errorf(ErrUnexpectedToken, "")
	}
}

func (d *Decoder) readByteString(head Head) (Item, error) {
	if !head.Indefinite {
		raw, err := d.tok.ReadRawBytes(head.Argument)
		if err != nil {
			return nil, err
		}
		return NewByteStringItem(raw), nil
	}
	var acc []byte
	for {
		isBreak, err := d.tok.IsBreak()
		if err != nil {
			return nil, err
		}
		if isBreak {
			_ = d.tok.ConsumeBreak()
			break
		}
		chunkHead, err := d.tok.ReadHead()
		if err != nil {
			return nil, err
		}
		if chunkHead.Major != MajorByteString || chunkHead.Indefinite {
			return nil, d.tok.errorf(ErrUnexpectedToken, "indefinite byte string chunk")
		}
		raw, err := d.tok.ReadRawBytes(chunkHead.Argument)
		if err != nil {
			return nil, err
		}
		acc = append(acc, raw...)
	}
	return NewByteStringItem(acc), nil
}

func (d *Decoder) readTextString(head Head) (Item, error) {
	if !head.Indefinite {
		raw, err := d.tok.ReadRawBytes(head.Argument)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, d.tok.errorf(ErrMalformedUTF8, "")
		}
		return NewTextStringItem(string(raw)), nil
	}
	var acc []byte
	for {
		isBreak, err := d.tok.IsBreak()
		if err != nil {
			return nil, err
		}
		if isBreak {
			_ = d.tok.ConsumeBreak()
			break
		}
		chunkHead, err := d.tok.ReadHead()
		if err != nil {
			return nil, err
		}
		if chunkHead.Major != MajorTextString || chunkHead.Indefinite {
			return nil, d.tok.errorf(ErrUnexpectedToken, "indefinite text string chunk")
		}
		raw, err := d.tok.ReadRawBytes(chunkHead.Argument)
		if err != nil {
			return nil, err
		}
		acc = append(acc, raw...)
	}
	if !utf8.Valid(acc) {
		return nil, d.tok.errorf(ErrMalformedUTF8, "")
	}
	return NewTextStringItem(string(acc)), nil
}

func (d *Decoder) readArray(head Head) (Item, error) {
	if err := d.tok.EnterNesting(); err != nil {
		return nil, err
	}
	defer d.tok.ExitNesting()

	arr := &ArrayItem{}
	if !head.Indefinite {
		arr.Items = make([]Item, 0, head.Argument)
		for i := uint64(0); i < head.Argument; i++ {
			item, err := d.readItem()
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, item)
		}
		return arr, nil
	}
	for {
		isBreak, err := d.tok.IsBreak()
		if err != nil {
			return nil, err
		}
		if isBreak {
			_ = d.tok.ConsumeBreak()
			break
		}
		item, err := d.readItem()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)
	}
	return arr, nil
}

func (d *Decoder) readMap(head Head) (Item, error) {
	if err := d.tok.EnterNesting(); err != nil {
		return nil, err
	}
	defer d.tok.ExitNesting()

	m := &MapItem{}
	readPair := func() (MapPair, error) {
		isBreak, err := d.tok.IsBreak()
		if err == nil && isBreak {
			return MapPair{}, d.tok.errorf(ErrUnexpectedBreak, "break in key position")
		}
		key, err := d.readItem()
		if err != nil {
			return MapPair{}, err
		}
		val, err := d.readItem()
		if err != nil {
			return MapPair{}, err
		}
		return MapPair{Key: key, Value: val}, nil
	}

	if !head.Indefinite {
		m.Pairs = make([]MapPair, 0, head.Argument)
		for i := uint64(0); i < head.Argument; i++ {
			p, err := readPair()
			if err != nil {
				return nil, err
			}
			m.Pairs = append(m.Pairs, p)
		}
		return m, nil
	}
	for {
		isBreak, err := d.tok.IsBreak()
		if err != nil {
			return nil, err
		}
		if isBreak {
			_ = d.tok.ConsumeBreak()
			break
		}
		p, err := readPair()
		if err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, p)
	}
	return m, nil
}

func (d *Decoder) readTag(head Head) (Item, error) {
	if head.Indefinite {
		return nil, d.tok.errorf(ErrReservedHeadByte, "indefinite-length tag")
	}
	if err := d.tok.EnterNesting(); err != nil {
		return nil, err
	}
	defer d.tok.ExitNesting()

	child, err := d.readItem()
	if err != nil {
		return nil, err
	}
	if proc, ok := d.reg.Lookup(head.Argument); ok {
		return proc(head.Argument, child)
	}
	return NewTaggedItem(NewNumberFromUint64(head.Argument), child), nil
}

func (d *Decoder) readSimpleOrFloat(head Head) (Item, error) {
	if head.Indefinite {
		return nil, d.tok.errorf(ErrReservedHeadByte, "")
	}

	switch head.AI {
	case aiTwoByte:
		// Half-precision is expanded to single on decode (spec §3, §4.A):
		// callers never see a Bitwidth-16 FloatItem from the decoder.
		f := float16.Frombits(uint16(head.Argument))
		return NewFloatItem(float64(f.Float32()), 32), nil
	case aiFourByte:
		return NewFloatItem(float64(math.Float32frombits(uint32(head.Argument))), 32), nil
	case aiEightByte:
		return NewFloatItem(math.Float64frombits(head.Argument), 64), nil
	}

	switch head.Argument {
	case simpleFalse:
		return NewBoolItem(false), nil
	case simpleTrue:
		return NewBoolItem(true), nil
	case simpleNull:
		return NewNullItem(), nil
	case simpleUndefined:
		return NewUndefinedItem(), nil
	}

	code := byte(head.Argument)
	item, err := NewSimpleValueItem(code)
	if err != nil {
		return nil, d.tok.errorf(err, "")
	}
	return item, nil
}
