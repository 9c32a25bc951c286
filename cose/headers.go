package cose

import (
	"fmt"

	"github.com/argon-chat/cbor-cose.go/cbor"
)

// Common header parameter labels (RFC 9052 §3.1, RFC 9360 §2 for x5chain).
const (
	HeaderLabelAlg         int64 = 1
	HeaderLabelCrit        int64 = 2
	HeaderLabelContentType int64 = 3
	HeaderLabelKID         int64 = 4
	HeaderLabelIV          int64 = 5
	HeaderLabelPartialIV   int64 = 6
	HeaderLabelX5Chain     int64 = 33
)

// Algorithm identifiers (RFC 9053 §2 and §8).
const (
	AlgES256 int64 = -7
	AlgES384 int64 = -35
	AlgES512 int64 = -36
	AlgEdDSA int64 = -8
)

// X5ChainDecoder is the external certificate decoder header validation uses
// to parse x5chain DER blobs (spec.md §4.G: "each x5chain DER blob is parsed
// via the external certificate decoder"). Callers that need chain
// validation against a trust root may replace it with their own
// CertificateDecoder; the zero value uses crypto/x509 only.
var X5ChainDecoder CertificateDecoder = DefaultCertificateDecoder{}

// Headers holds the protected and unprotected header buckets shared by
// every COSE message type (spec.md component G). Protected headers are kept
// both as their already-serialized bytes (exactly what gets signed/MACed,
// per RFC 9052 §4.4) and as a parsed view for convenient lookup.
type Headers struct {
	ProtectedBytes []byte // the serialized protected header map, never re-encoded
	Protected      *cbor.MapItem
	Unprotected    *cbor.MapItem
}

// NewHeaders builds a Headers from already-constructed protected and
// unprotected maps, serializing the protected map immediately so
// ProtectedBytes reflects exactly these field's values — callers who need a
// specific serialization quirk preserved should decode it instead of
// constructing it.
func NewHeaders(protected, unprotected *cbor.MapItem) (*Headers, error) {
	if protected == nil {
		protected = cbor.NewMapItem()
	}
	if unprotected == nil {
		unprotected = cbor.NewMapItem()
	}
	raw, err := cbor.EncodeToBytes(protected)
	if err != nil {
		return nil, structuralError("encoding protected headers", err)
	}
	h := &Headers{ProtectedBytes: raw, Protected: protected, Unprotected: unprotected}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// decodeHeaders parses protectedBytes (an encoded CBOR map, empty-string
// bstr allowed per RFC 9052) and takes ownership of an already-decoded
// unprotected map.
func decodeHeaders(protectedBytes []byte, unprotected *cbor.MapItem) (*Headers, error) {
	var protected *cbor.MapItem
	if len(protectedBytes) == 0 {
		protected = cbor.NewMapItem()
	} else {
		dec := cbor.NewDecoder(protectedBytes, cbor.DefaultTagRegistry())
		item, err := dec.Next()
		if err != nil {
			return nil, structuralError("decoding protected headers", err)
		}
		m, ok := item.(*cbor.MapItem)
		if !ok {
			return nil, structuralError("protected headers are not a map", nil)
		}
		protected = m
	}
	if unprotected == nil {
		unprotected = cbor.NewMapItem()
	}
	h := &Headers{ProtectedBytes: protectedBytes, Protected: protected, Unprotected: unprotected}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// validate enforces spec §4.G's full header-validation contract: no label
// repeated within a single bucket, no label shared across both buckets, the
// per-label type each common parameter requires, crit confined to the
// protected bucket, and x5chain DER parsed through the external certificate
// decoder.
func (h *Headers) validate() error {
	protectedLabels, err := h.checkBucket(h.Protected, true)
	if err != nil {
		return err
	}
	unprotectedLabels, err := h.checkBucket(h.Unprotected, false)
	if err != nil {
		return err
	}
	for label := range unprotectedLabels {
		if _, dup := protectedLabels[label]; dup {
			return structuralError("header label present in both protected and unprotected buckets", nil)
		}
	}
	return h.validateX5Chain()
}

// checkBucket rejects a label repeated within bucket and validates the
// per-label type of every common parameter it recognizes, returning the set
// of canonical key encodings seen (for the caller's cross-bucket check).
func (h *Headers) checkBucket(bucket *cbor.MapItem, isProtected bool) (map[string]struct{}, error) {
	seen := make(map[string]struct{}, len(bucket.Pairs))
	for _, p := range bucket.Pairs {
		kb, err := cbor.EncodeToBytes(p.Key)
		if err != nil {
			return nil, structuralError("encoding header label", err)
		}
		if _, dup := seen[string(kb)]; dup {
			return nil, structuralError("duplicate header label within a single bucket", nil)
		}
		seen[string(kb)] = struct{}{}

		label, ok := intLabel(p.Key)
		if !ok {
			continue // private/text labels carry no type contract here
		}
		if err := checkLabelType(label, p.Value, isProtected); err != nil {
			return nil, err
		}
	}
	return seen, nil
}

func intLabel(item cbor.Item) (int64, bool) {
	i, ok := item.(*cbor.IntItem)
	if !ok {
		return 0, false
	}
	return i.Value.Int64()
}

// checkLabelType applies spec §4.G's per-label type rules to value. Labels
// this function doesn't recognize (private/custom extensions) are left
// unchecked.
func checkLabelType(label int64, value cbor.Item, isProtected bool) error {
	switch label {
	case HeaderLabelAlg:
		switch value.(type) {
		case *cbor.IntItem, *cbor.TextStringItem:
		default:
			return structuralError("alg header must be an int or text string", nil)
		}
	case HeaderLabelCrit:
		if !isProtected {
			return structuralError("crit header is not permitted in the unprotected bucket", nil)
		}
		arr, ok := value.(*cbor.ArrayItem)
		if !ok || len(arr.Items) == 0 {
			return structuralError("crit header must be a non-empty array", nil)
		}
		for _, it := range arr.Items {
			switch it.(type) {
			case *cbor.IntItem, *cbor.TextStringItem:
			default:
				return structuralError("crit header entries must be int or text string labels", nil)
			}
		}
	case HeaderLabelContentType:
		switch v := value.(type) {
		case *cbor.TextStringItem:
		case *cbor.IntItem:
			if v.Value.Sign() < 0 {
				return structuralError("content-type integer form must be non-negative", nil)
			}
		default:
			return structuralError("content-type header must be a text string or non-negative int", nil)
		}
	case HeaderLabelKID, HeaderLabelIV, HeaderLabelPartialIV:
		if _, ok := value.(*cbor.ByteStringItem); !ok {
			return structuralError(fmt.Sprintf("header label %d must be a byte string", label), nil)
		}
	case HeaderLabelX5Chain:
		if err := checkX5ChainShape(value); err != nil {
			return err
		}
	}
	return nil
}

// checkX5ChainShape validates the RFC 9360 §2 x5chain shape: a single byte
// string, or a non-empty array of byte strings.
func checkX5ChainShape(value cbor.Item) error {
	switch v := value.(type) {
	case *cbor.ByteStringItem:
		return nil
	case *cbor.ArrayItem:
		if len(v.Items) == 0 {
			return structuralError("x5chain array form must not be empty", nil)
		}
		for _, it := range v.Items {
			if _, ok := it.(*cbor.ByteStringItem); !ok {
				return structuralError("x5chain array entries must be byte strings", nil)
			}
		}
		return nil
	default:
		return structuralError("x5chain must be a byte string or an array of byte strings", nil)
	}
}

// validateX5Chain parses every certificate in an x5chain header, if present,
// through X5ChainDecoder, surfacing a malformed chain as a structural error
// (spec §4.G) rather than the crypto-kind error DefaultCertificateDecoder
// itself raises.
func (h *Headers) validateX5Chain() error {
	chain, ok := h.X5Chain()
	if !ok {
		return nil
	}
	if _, err := DecodeX5Chain(X5ChainDecoder, chain); err != nil {
		return structuralError("x5chain contains an unparseable certificate", err)
	}
	return nil
}

// lookupInt looks up label in protected first, then unprotected, returning
// the integer value of the first match.
func (h *Headers) lookupInt(label int64) (int64, bool) {
	key := cbor.NewIntItem(cbor.NewNumberFromInt64(label))
	if v, ok := h.Protected.Get(key); ok {
		if i, ok := v.(*cbor.IntItem); ok {
			if n, ok := i.Value.Int64(); ok {
				return n, true
			}
		}
	}
	if v, ok := h.Unprotected.Get(key); ok {
		if i, ok := v.(*cbor.IntItem); ok {
			if n, ok := i.Value.Int64(); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func (h *Headers) lookupBytes(label int64) ([]byte, bool) {
	key := cbor.NewIntItem(cbor.NewNumberFromInt64(label))
	if v, ok := h.Protected.Get(key); ok {
		if b, ok := v.(*cbor.ByteStringItem); ok {
			return b.Bytes, true
		}
	}
	if v, ok := h.Unprotected.Get(key); ok {
		if b, ok := v.(*cbor.ByteStringItem); ok {
			return b.Bytes, true
		}
	}
	return nil, false
}

// Algorithm returns the alg header value, checking protected then
// unprotected, per spec.md's "algorithm discovery" rule.
func (h *Headers) Algorithm() (int64, bool) { return h.lookupInt(HeaderLabelAlg) }

// KeyID returns the kid header value, if present.
func (h *Headers) KeyID() ([]byte, bool) { return h.lookupBytes(HeaderLabelKID) }

// X5Chain returns the raw DER certificates from the x5chain header, if
// present. A single certificate is represented as one byte string rather
// than an array of one, per RFC 9360 §2; both forms are accepted here.
func (h *Headers) X5Chain() ([][]byte, bool) {
	key := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelX5Chain))
	var val cbor.Item
	if v, ok := h.Unprotected.Get(key); ok {
		val = v
	} else if v, ok := h.Protected.Get(key); ok {
		val = v
	} else {
		return nil, false
	}
	switch v := val.(type) {
	case *cbor.ByteStringItem:
		return [][]byte{v.Bytes}, true
	case *cbor.ArrayItem:
		out := make([][]byte, 0, len(v.Items))
		for _, item := range v.Items {
			bs, ok := item.(*cbor.ByteStringItem)
			if !ok {
				return nil, false
			}
			out = append(out, bs.Bytes)
		}
		return out, true
	default:
		return nil, false
	}
}
