package cbor

// ArrayItem is a decoded major-4 array. Indefinite-length arrays are
// concatenated into the same ordered slice as definite-length ones; the
// distinction does not survive decode (spec §3: "length-form is an encoding
// detail, not part of the value").
type ArrayItem struct {
	itemBase
	Items []Item
}

func NewArrayItem(items ...Item) *ArrayItem { return &ArrayItem{Items: items} }

func (a *ArrayItem) MajorType() MajorType { return MajorArray }

// MapPair is one key/value entry of a MapItem, in encounter order. Either
// side may carry its own comment independent of the pair's neighbors.
type MapPair struct {
	Key   Item
	Value Item
}

// MapItem is a decoded major-5 map. Pairs preserve insertion (decode) order;
// duplicate keys are tolerated at this layer exactly as encountered, per
// spec §3 — rejecting duplicates is a caller-level policy, not this type's.
type MapItem struct {
	itemBase
	Pairs []MapPair
}

func NewMapItem(pairs ...MapPair) *MapItem { return &MapItem{Pairs: pairs} }

func (m *MapItem) MajorType() MajorType { return MajorMap }

// Get returns the value of the first pair whose key Encode()s identically to
// key's canonical bytes, or nil if none matches. This is a convenience
// lookup, not an index — callers needing repeated lookups should build their
// own map from the canonical encoding of interest.
func (m *MapItem) Get(key Item) (Item, bool) {
	kb, err := EncodeToBytes(key)
	if err != nil {
		return nil, false
	}
	for _, p := range m.Pairs {
		pb, err := EncodeToBytes(p.Key)
		if err != nil {
			continue
		}
		if string(pb) == string(kb) {
			return p.Value, true
		}
	}
	return nil, false
}
