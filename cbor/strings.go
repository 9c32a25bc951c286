package cbor

import "net/url"

// ByteStringItem is a decoded major-2 byte string. When encodingTag is
// non-nil the item was (or should be, on re-encode) wrapped in that tag —
// used for tag 24 "encoded CBOR data item" so the wrapper and its decoded
// child travel together as one value instead of a separate TaggedItem
// duplicating the relationship (spec §3 "optional cached decoded content").
type ByteStringItem struct {
	itemBase
	Bytes []byte

	encodingTag *uint64
	decoded     Item   // lazily populated by Decoded()
	decodeErr   error  // sticky: Decoded() failed once, keep returning it
	decodeTried bool
}

func NewByteStringItem(b []byte) *ByteStringItem {
	return &ByteStringItem{Bytes: b}
}

// NewEncodedCBORItem wraps already-serialized CBOR bytes as a tag-24 byte
// string, the inverse of Decoded().
func NewEncodedCBORItem(b []byte) *ByteStringItem {
	tag := TagEncodedCBORData
	return &ByteStringItem{Bytes: b, encodingTag: &tag}
}

func (b *ByteStringItem) MajorType() MajorType { return MajorByteString }

// IsEncodedCBOR reports whether this byte string carries a tag-24 wrapper.
func (b *ByteStringItem) IsEncodedCBOR() bool { return b.encodingTag != nil }

// Decoded lazily decodes Bytes as an embedded CBOR item (tag 24 content).
// It never panics: a parse failure is cached and returned on every call,
// leaving Bytes itself as the fallback representation (spec §4.F: diagnostic
// rendering must fall back to hex rather than fail).
func (b *ByteStringItem) Decoded() (Item, error) {
	if b.decodeTried {
		return b.decoded, b.decodeErr
	}
	b.decodeTried = true
	dec := NewDecoder(b.Bytes, DefaultTagRegistry())
	item, err := dec.Next()
	if err != nil {
		b.decodeErr = err
		return nil, err
	}
	b.decoded = item
	return item, nil
}

// TextStringItem is a decoded major-3 UTF-8 text string.
type TextStringItem struct {
	itemBase
	Value string
}

func NewTextStringItem(s string) *TextStringItem { return &TextStringItem{Value: s} }

func (t *TextStringItem) MajorType() MajorType { return MajorTextString }

// URIItem is a text string tagged 32, carrying both the raw text and (when
// it parses) the decoded *url.URL, per spec §3's "text item with a decoded
// URI attached". A text string that fails url.Parse never becomes a URIItem:
// NewURIItem returns an error instead, so URL is always non-nil.
type URIItem struct {
	itemBase
	Value string
	URL   *url.URL
}

// NewURIItem parses s as a URI, failing per spec §6 tag 32: "malformed URI
// fails" rather than round-tripping the raw text with a nil URL.
func NewURIItem(s string) (*URIItem, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, &Error{Err: ErrInvalidURI, Context: s}
	}
	return &URIItem{Value: s, URL: u}, nil
}

func (u *URIItem) MajorType() MajorType { return MajorTextString }
