package cbor

// BoolItem is a decoded simple value 20 or 21.
type BoolItem struct {
	itemBase
	Value bool
}

func NewBoolItem(v bool) *BoolItem    { return &BoolItem{Value: v} }
func (b *BoolItem) MajorType() MajorType { return MajorSimpleOrFloat }

// NullItem is a decoded simple value 22 (CBOR "null").
type NullItem struct{ itemBase }

func NewNullItem() *NullItem            { return &NullItem{} }
func (n *NullItem) MajorType() MajorType { return MajorSimpleOrFloat }

// UndefinedItem is a decoded simple value 23 (CBOR "undefined").
type UndefinedItem struct{ itemBase }

func NewUndefinedItem() *UndefinedItem   { return &UndefinedItem{} }
func (u *UndefinedItem) MajorType() MajorType { return MajorSimpleOrFloat }

// SimpleValueItem is any other simple value (0-19, 32-255) with no dedicated
// meaning in this package. Codes 20-23 and the float widths are always
// represented by BoolItem/NullItem/UndefinedItem/FloatItem instead; the
// break byte (0xFF) is never exposed as an Item — it is consumed internally
// by the tokenizer/decoder to end indefinite-length containers and strings.
type SimpleValueItem struct {
	itemBase
	Code byte
}

func NewSimpleValueItem(code byte) (*SimpleValueItem, error) {
	if !simpleValueValid(code) {
		return nil, ErrInvalidSimpleValue
	}
	return &SimpleValueItem{Code: code}, nil
}

func (s *SimpleValueItem) MajorType() MajorType { return MajorSimpleOrFloat }
