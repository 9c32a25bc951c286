package cbor

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Diagnose renders item in RFC 8949 §8 diagnostic notation (component F).
// Rendering never fails: a byte string whose tag-24 content does not parse
// as embedded CBOR falls back to its hex form instead of returning an error,
// matching spec.md's "must never throw" requirement for this component.
func Diagnose(item Item) string {
	var b strings.Builder
	writeDiagnostic(&b, item)
	return b.String()
}

func writeDiagnostic(b *strings.Builder, item Item) {
	switch v := item.(type) {
	case *IntItem:
		b.WriteString(v.Value.String())

	case *FloatItem:
		writeFloatDiagnostic(b, v.Value)

	case *ByteStringItem:
		writeByteStringDiagnostic(b, v)

	case *TextStringItem:
		writeQuotedText(b, v.Value)

	case *URIItem:
		writeQuotedText(b, v.Value)

	case *ArrayItem:
		b.WriteByte('[')
		for i, child := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiagnostic(b, child)
		}
		b.WriteByte(']')

	case *MapItem:
		b.WriteByte('{')
		for i, p := range v.Pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiagnostic(b, p.Key)
			b.WriteString(": ")
			writeDiagnostic(b, p.Value)
		}
		b.WriteByte('}')

	case *TaggedItem:
		tag, ok := v.Tag.Uint64()
		if !ok {
			tag = 0
		}
		fmt.Fprintf(b, "%d(", tag)
		writeDiagnostic(b, v.Child)
		b.WriteByte(')')

	case *BoolItem:
		if v.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}

	case *NullItem:
		b.WriteString("null")

	case *UndefinedItem:
		b.WriteString("undefined")

	case *SimpleValueItem:
		fmt.Fprintf(b, "simple(%d)", v.Code)

	default:
		b.WriteString("?")
	}
}

func writeFloatDiagnostic(b *strings.Builder, v float64) {
	switch {
	case math.IsNaN(v):
		b.WriteString("NaN")
	case math.IsInf(v, 1):
		b.WriteString("Infinity")
	case math.IsInf(v, -1):
		b.WriteString("-Infinity")
	default:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
}

func writeByteStringDiagnostic(b *strings.Builder, bs *ByteStringItem) {
	if bs.IsEncodedCBOR() {
		if decoded, err := bs.Decoded(); err == nil {
			b.WriteString("<<")
			writeDiagnostic(b, decoded)
			b.WriteString(">>")
			return
		}
	}
	b.WriteString("h'")
	b.WriteString(hex.EncodeToString(bs.Bytes))
	b.WriteByte('\'')
}

func writeQuotedText(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
