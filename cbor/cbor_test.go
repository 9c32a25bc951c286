package cbor

import (
	"encoding/hex"
	"testing"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad test fixture hex %q: %v", s, err)
	}
	return b
}

func decodeOne(t *testing.T, hexStr string) Item {
	t.Helper()
	dec := NewDecoder(mustDecodeHex(t, hexStr), DefaultTagRegistry())
	item, err := dec.Next()
	if err != nil {
		t.Fatalf("decode %q: %v", hexStr, err)
	}
	return item
}

func TestDecodeRoundTrip(t *testing.T) {
	cases := []string{
		"00",                 // unsigned 0
		"17",                 // unsigned 23
		"1818",               // unsigned 24
		"190100",             // unsigned 256
		"1a00010000",         // unsigned 65536
		"1b0000000100000000", // unsigned 2^32
		"20",                 // -1
		"37",                 // -24
		"3863",               // -100
		"40",                 // empty byte string
		"4401020304",         // byte string
		"60",                 // empty text string
		"6161",               // "a"
		"80",                 // empty array
		"83010203",           // [1,2,3]
		"a0",                 // empty map
		"a161616161",         // {"a":"a"}
		"f4",                 // false
		"f5",                 // true
		"f6",                 // null
		"f7",                 // undefined
		"c249010000000000000000", // tag(2) bignum 2^64
	}

	for _, hexStr := range cases {
		t.Run(hexStr, func(t *testing.T) {
			item := decodeOne(t, hexStr)
			out, err := EncodeToBytes(item)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if hex.EncodeToString(out) != hexStr {
				t.Fatalf("round trip mismatch: got %s want %s", hex.EncodeToString(out), hexStr)
			}
		})
	}
}

func TestDecodeInt65536(t *testing.T) {
	item := decodeOne(t, "1a00010000")
	i, ok := item.(*IntItem)
	if !ok {
		t.Fatalf("expected *IntItem, got %T", item)
	}
	v, ok := i.Value.Int64()
	if !ok || v != 65536 {
		t.Fatalf("got %v, want 65536", v)
	}
}

func TestDecodeArrayOfOne(t *testing.T) {
	item := decodeOne(t, "8101")
	arr, ok := item.(*ArrayItem)
	if !ok {
		t.Fatalf("expected *ArrayItem, got %T", item)
	}
	if len(arr.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(arr.Items))
	}
	n, ok := arr.Items[0].(*IntItem).Value.Int64()
	if !ok || n != 1 {
		t.Fatalf("got %v, want 1", n)
	}
}

func TestDecodeMapStringToInt(t *testing.T) {
	item := decodeOne(t, "a1616101") // {"a": 1}
	m, ok := item.(*MapItem)
	if !ok {
		t.Fatalf("expected *MapItem, got %T", item)
	}
	if len(m.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(m.Pairs))
	}
	key, ok := m.Pairs[0].Key.(*TextStringItem)
	if !ok || key.Value != "a" {
		t.Fatalf("unexpected key %#v", m.Pairs[0].Key)
	}
}

func TestDecodeBignum(t *testing.T) {
	// tag(2) h'010000000000000000' == 2^64
	item := decodeOne(t, "c249010000000000000000")
	i, ok := item.(*IntItem)
	if !ok {
		t.Fatalf("expected *IntItem, got %T", item)
	}
	if i.Value.Kind() != KindBig {
		t.Fatalf("expected KindBig, got %v", i.Value.Kind())
	}
	want := "18446744073709551616" // 2^64
	if i.Value.String() != want {
		t.Fatalf("got %s want %s", i.Value.String(), want)
	}
}

func TestEncodedCBORDataNeverPanicsOnBadEmbeddedContent(t *testing.T) {
	// tag(24) h'ff' -- a lone break byte is not valid top-level CBOR.
	item := decodeOne(t, "d81841ff")
	bs, ok := item.(*ByteStringItem)
	if !ok {
		t.Fatalf("expected *ByteStringItem, got %T", item)
	}
	if !bs.IsEncodedCBOR() {
		t.Fatalf("expected tag-24 marked byte string")
	}
	if _, err := bs.Decoded(); err == nil {
		t.Fatalf("expected decode of embedded garbage to fail")
	}
	// Diagnose must still succeed by falling back to hex.
	_ = Diagnose(item)
}

func TestDiagnosticNeverPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Diagnose panicked: %v", r)
		}
	}()
	items := []Item{
		NewIntItem(NewNumberFromInt64(-100)),
		NewTextStringItem("hello"),
		NewByteStringItem([]byte{1, 2, 3}),
		NewArrayItem(NewIntItem(NewNumberFromInt64(1)), NewBoolItem(true)),
		NewMapItem(MapPair{Key: NewTextStringItem("k"), Value: NewNullItem()}),
		NewTaggedItem(NewNumberFromUint64(32), NewTextStringItem("http://example.com")),
	}
	for _, it := range items {
		_ = Diagnose(it)
	}
}

func TestDiagnosticParserRoundTrip(t *testing.T) {
	p := NewDiagnosticParser()
	item, err := p.Parse(`cbor:{"a": 1, "b": [1, 2, 3]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, ok := item.(*MapItem)
	if !ok || len(m.Pairs) != 2 {
		t.Fatalf("unexpected parse result %#v", item)
	}
	if got := Diagnose(item); got != `{"a": 1, "b": [1, 2, 3]}` {
		t.Fatalf("round trip mismatch: got %s", got)
	}
}
