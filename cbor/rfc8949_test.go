package cbor

import (
	"encoding/hex"
	"math"
	"testing"
)

// Fixtures drawn from RFC 8949 Appendix A.

func TestRFC8949AppendixAFloats(t *testing.T) {
	cases := []struct {
		hexStr string
		want   float64
	}{
		{"f90000", 0.0},
		{"f93c00", 1.0},
		{"fb3ff199999999999a", 1.1},
		{"fa47c35000", 100000.0},
		{"f97e00", math.NaN()},
		{"f97c00", math.Inf(1)},
		{"f9fc00", math.Inf(-1)},
	}
	for _, c := range cases {
		t.Run(c.hexStr, func(t *testing.T) {
			item := decodeOne(t, c.hexStr)
			f, ok := item.(*FloatItem)
			if !ok {
				t.Fatalf("expected *FloatItem, got %T", item)
			}
			if math.IsNaN(c.want) {
				if !math.IsNaN(f.Value) {
					t.Fatalf("expected NaN, got %v", f.Value)
				}
				return
			}
			if f.Value != c.want {
				t.Fatalf("got %v want %v", f.Value, c.want)
			}
		})
	}
}

func TestHalfPrecisionIsExpandedToSingleOnDecode(t *testing.T) {
	// f93c00 == half-precision 1.0
	item := decodeOne(t, "f93c00")
	f, ok := item.(*FloatItem)
	if !ok {
		t.Fatalf("expected *FloatItem, got %T", item)
	}
	if f.Bitwidth != 32 {
		t.Fatalf("expected half-precision to expand to Bitwidth 32, got %d", f.Bitwidth)
	}
	if f.Value != 1.0 {
		t.Fatalf("got %v want 1.0", f.Value)
	}
}

func TestMalformedURIFailsToDecode(t *testing.T) {
	// NewURIItem backs the tag-32 processor; "http://[::1" (unclosed IPv6
	// host) is not a valid URI.
	_, err := NewURIItem("http://[::1")
	if err == nil {
		t.Fatalf("expected malformed URI to fail")
	}
}

func TestRFC8949AppendixANegativeBignum(t *testing.T) {
	// tag(3) h'010000000000000000' == -18446744073709551617 (-2^64-1)
	item := decodeOne(t, "c349010000000000000000")
	i, ok := item.(*IntItem)
	if !ok {
		t.Fatalf("expected *IntItem, got %T", item)
	}
	want := "-18446744073709551617"
	if i.Value.String() != want {
		t.Fatalf("got %s want %s", i.Value.String(), want)
	}
	out, err := EncodeToBytes(item)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if hex.EncodeToString(out) != "c349010000000000000000" {
		t.Fatalf("round trip mismatch: %s", hex.EncodeToString(out))
	}
}

func TestRFC8949AppendixAIndefiniteLengthArray(t *testing.T) {
	// [_ 1, [2, 3], [_ 4, 5]]
	item := decodeOne(t, "9f018202039f0405ffff")
	arr, ok := item.(*ArrayItem)
	if !ok || len(arr.Items) != 3 {
		t.Fatalf("unexpected decode result %#v", item)
	}
	inner, ok := arr.Items[2].(*ArrayItem)
	if !ok || len(inner.Items) != 2 {
		t.Fatalf("unexpected nested array %#v", arr.Items[2])
	}
}

func TestRFC8949AppendixAIndefiniteLengthTextString(t *testing.T) {
	// (_ "strea", "ming")
	item := decodeOne(t, "7f657374726561646d696e67ff")
	ts, ok := item.(*TextStringItem)
	if !ok {
		t.Fatalf("expected *TextStringItem, got %T", item)
	}
	if ts.Value != "streaming" {
		t.Fatalf("got %q want %q", ts.Value, "streaming")
	}
}

func TestRFC8949AppendixAIndefiniteLengthMap(t *testing.T) {
	// {_ "a": 1, "b": [_ 2, 3]}
	item := decodeOne(t, "bf61610161629f0203ffff")
	m, ok := item.(*MapItem)
	if !ok || len(m.Pairs) != 2 {
		t.Fatalf("unexpected decode result %#v", item)
	}
}

func TestURITagRoundTrip(t *testing.T) {
	// tag(32) "http://www.example.com"
	item := decodeOne(t, "d82076687474703a2f2f7777772e6578616d706c652e636f6d")
	u, ok := item.(*URIItem)
	if !ok {
		t.Fatalf("expected *URIItem, got %T", item)
	}
	if u.URL == nil || u.URL.Host != "www.example.com" {
		t.Fatalf("unexpected URL parse: %#v", u.URL)
	}
	out, err := EncodeToBytes(item)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if hex.EncodeToString(out) != "d82076687474703a2f2f7777772e6578616d706c652e636f6d" {
		t.Fatalf("round trip mismatch")
	}
}

func TestTagRegistryUnregisteredTagFallsBackToTaggedItem(t *testing.T) {
	reg := NewTagRegistry() // empty: nothing registered, including bignums
	dec := NewDecoder(mustDecodeHex(t, "c249010000000000000000"), reg)
	item, err := dec.Next()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tagged, ok := item.(*TaggedItem)
	if !ok {
		t.Fatalf("expected *TaggedItem with empty registry, got %T", item)
	}
	tag, _ := tagged.Tag.Uint64()
	if tag != 2 {
		t.Fatalf("got tag %d want 2", tag)
	}
}

func TestMaxNestingDepthEnforced(t *testing.T) {
	tok := NewTokenizer(nil)
	tok.maxDepth = 2
	if err := tok.EnterNesting(); err != nil {
		t.Fatalf("unexpected error at depth 1: %v", err)
	}
	if err := tok.EnterNesting(); err != nil {
		t.Fatalf("unexpected error at depth 2: %v", err)
	}
	if err := tok.EnterNesting(); err == nil {
		t.Fatalf("expected nesting-too-deep error at depth 3")
	}
}
