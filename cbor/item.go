package cbor

// Item is a decoded CBOR data item: the immutable value-tree node produced
// by Decoder and consumed by Encoder (spec §3, component C). Every variant
// embeds itemBase, whose only mutable field is an attached comment — the
// value itself never changes after construction.
type Item interface {
	// MajorType reports the RFC 8949 major type this item serializes as.
	MajorType() MajorType
	// Comment returns the free-text annotation attached to this item, if any.
	Comment() string
	// SetComment attaches or clears a free-text annotation on this item.
	SetComment(string)
	// Encode writes the canonical CBOR encoding of this item to e.
	Encode(e *Encoder) error
}

// itemBase is embedded by every Item implementation to provide the shared
// comment field without repeating its accessors on each variant.
type itemBase struct {
	comment string
}

func (b *itemBase) Comment() string     { return b.comment }
func (b *itemBase) SetComment(c string) { b.comment = c }

// IntItem is a decoded major-0/1 integer or tag-2/3 bignum, narrowed to the
// smallest Number representation that holds it exactly.
type IntItem struct {
	itemBase
	Value Number
}

func NewIntItem(n Number) *IntItem { return &IntItem{Value: n} }

func (i *IntItem) MajorType() MajorType {
	if i.Value.Sign() < 0 {
		return MajorNegativeInt
	}
	return MajorUnsignedInt
}

// FloatItem is a decoded major-7 half/single/double-precision float.
type FloatItem struct {
	itemBase
	Value    float64
	Bitwidth int // 16, 32, or 64 — the width this value was (or will be) encoded at
}

func NewFloatItem(v float64, bitwidth int) *FloatItem {
	return &FloatItem{Value: v, Bitwidth: bitwidth}
}

func (f *FloatItem) MajorType() MajorType { return MajorSimpleOrFloat }
