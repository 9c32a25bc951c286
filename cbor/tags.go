package cbor

// TagProcessor reconstructs a higher-level Item from a decoded tag number
// and its already-decoded child. Returning the child wrapped in a
// *TaggedItem is a legitimate "pass through structurally" result (this is
// what the default tag-61/CWT registration does).
type TagProcessor func(tag uint64, child Item) (Item, error)

// TagRegistry maps tag numbers to TagProcessors. Per spec.md's flagged open
// question, keys are always normalized uint64 values — never a textual
// rendering of the tag — so that `2` encoded with a short head and `2`
// encoded with an over-long head resolve to the same processor.
type TagRegistry struct {
	processors map[uint64]TagProcessor
}

// NewTagRegistry returns an empty registry (every tag falls back to a
// generic TaggedItem).
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{processors: make(map[uint64]TagProcessor)}
}

// Register installs proc as the processor for tag, replacing any prior
// registration.
func (r *TagRegistry) Register(tag uint64, proc TagProcessor) {
	r.processors[tag] = proc
}

// Lookup returns the processor registered for tag, if any.
func (r *TagRegistry) Lookup(tag uint64) (TagProcessor, bool) {
	p, ok := r.processors[tag]
	return p, ok
}

// Clone returns an independent copy of r, for callers that want to start
// from the defaults and add or override a handful of tags.
func (r *TagRegistry) Clone() *TagRegistry {
	out := NewTagRegistry()
	for k, v := range r.processors {
		out.processors[k] = v
	}
	return out
}

// DefaultTagRegistry returns the pre-registered set from spec.md §6: bignums
// (2, 3), encoded-CBOR-data (24), URI (32), and CWT (61) as an explicit
// identity passthrough. Tags 16/17/18/96/97/98 (the COSE message tags) are
// deliberately left unregistered here: cose depends on cbor, so cbor cannot
// reference cose's message types without an import cycle. Those tags fall
// through to a generic *TaggedItem, exactly as any other unrecognized tag
// would, and the cose package's own Decode methods do the tag-24-style
// inspect/unwrap themselves on top of a plain Decoder.Next result.
func DefaultTagRegistry() *TagRegistry {
	r := NewTagRegistry()

	r.Register(TagUnsignedBignum, func(tag uint64, child Item) (Item, error) {
		bs, ok := child.(*ByteStringItem)
		if !ok {
			return nil, ErrTagContentMismatch
		}
		return NewIntItem(NewNumberFromBigInt(bigIntFromBytes(bs.Bytes, false))), nil
	})
	r.Register(TagNegativeBignum, func(tag uint64, child Item) (Item, error) {
		bs, ok := child.(*ByteStringItem)
		if !ok {
			return nil, ErrTagContentMismatch
		}
		return NewIntItem(NewNumberFromBigInt(bigIntFromBytes(bs.Bytes, true))), nil
	})
	r.Register(TagEncodedCBORData, func(tag uint64, child Item) (Item, error) {
		bs, ok := child.(*ByteStringItem)
		if !ok {
			return nil, ErrTagContentMismatch
		}
		t := tag
		bs.encodingTag = &t
		return bs, nil
	})
	r.Register(TagURI, func(tag uint64, child Item) (Item, error) {
		ts, ok := child.(*TextStringItem)
		if !ok {
			return nil, ErrTagContentMismatch
		}
		return NewURIItem(ts.Value)
	})
	r.Register(TagCWT, func(tag uint64, child Item) (Item, error) {
		return NewTaggedItem(NewNumberFromUint64(tag), child), nil
	})

	return r
}
