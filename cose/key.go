package cose

import (
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"sort"
	"unicode/utf8"

	"github.com/argon-chat/cbor-cose.go/cbor"
)

// COSE Key type values (RFC 9053 §7.1 and the IANA COSE Key Types
// registry). RSA, HSS-LMS, and WalnutDSA have no field-level model here;
// their parameters are preserved in Key.Raw instead (see keyFromMap).
const (
	KeyTypeOKP        int64 = 1
	KeyTypeEC2        int64 = 2
	KeyTypeRSA        int64 = 3
	KeyTypeSymmetric  int64 = 4
	KeyTypeHSSLMS     int64 = 5
	KeyTypeWalnutDSA  int64 = 6
)

// COSE Key common parameter labels (RFC 9052 §7).
const (
	KeyLabelKty    int64 = 1
	KeyLabelKid    int64 = 2
	KeyLabelAlg    int64 = 3
	KeyLabelKeyOps int64 = 4
)

// EC2/OKP key-specific parameter labels (RFC 9053 §7.1).
const (
	KeyLabelCrv int64 = -1
	KeyLabelX   int64 = -2
	KeyLabelY   int64 = -3
	KeyLabelD   int64 = -4
)

// Symmetric key-specific parameter label.
const KeyLabelK int64 = -1

// Curve identifiers (RFC 9053 §7.1).
const (
	CurveP256   int64 = 1
	CurveP384   int64 = 2
	CurveP521   int64 = 3
	CurveX25519 int64 = 4
	CurveEd25519 int64 = 6
)

// Key is the decoded COSE Key model (component J): a thin typed view over
// the underlying map, exposing only the fields a given key type defines.
// Kty discriminates which of EC2/OKP/RSA/Symmetric-specific fields are
// populated; the rest are left at their zero value.
type Key struct {
	Kty int64
	Kid []byte
	Alg int64

	// EC2 / OKP
	Curve int64
	X     []byte
	Y     []byte // EC2 only; may be derived from a compressed-point bool
	D     []byte // private scalar, when present

	// Symmetric
	K []byte

	// Raw holds every label/value pair for a key type this package doesn't
	// model field-by-field (RSA, HSS-LMS, WalnutDSA), keyed by the COSE
	// label, so Encode round-trips material it doesn't otherwise understand
	// instead of silently dropping it (spec §4.J).
	Raw map[int64]cbor.Item
}

// DecodeKey parses a COSE_Key CBOR map into a Key.
func DecodeKey(data []byte) (*Key, error) {
	dec := cbor.NewDecoder(data, cbor.DefaultTagRegistry())
	item, err := dec.Next()
	if err != nil {
		return nil, structuralError("decoding COSE key", err)
	}
	m, ok := item.(*cbor.MapItem)
	if !ok {
		return nil, structuralError("COSE key is not a map", nil)
	}
	return keyFromMap(m)
}

func keyFromMap(m *cbor.MapItem) (*Key, error) {
	k := &Key{}
	getInt := func(label int64) (int64, bool) {
		v, ok := m.Get(cbor.NewIntItem(cbor.NewNumberFromInt64(label)))
		if !ok {
			return 0, false
		}
		i, ok := v.(*cbor.IntItem)
		if !ok {
			return 0, false
		}
		n, ok := i.Value.Int64()
		return n, ok
	}
	getBytes := func(label int64) ([]byte, bool) {
		v, ok := m.Get(cbor.NewIntItem(cbor.NewNumberFromInt64(label)))
		if !ok {
			return nil, false
		}
		b, ok := v.(*cbor.ByteStringItem)
		if !ok {
			return nil, false
		}
		return b.Bytes, true
	}

	kty, ok := getInt(KeyLabelKty)
	if !ok {
		return nil, structuralError("COSE key missing kty", nil)
	}
	k.Kty = kty
	if kid, ok := getBytes(KeyLabelKid); ok {
		k.Kid = kid
	}
	if alg, ok := getInt(KeyLabelAlg); ok {
		k.Alg = alg
	}

	switch kty {
	case KeyTypeEC2, KeyTypeOKP:
		if crv, ok := getInt(KeyLabelCrv); ok {
			k.Curve = crv
		}
		if x, ok := getBytes(KeyLabelX); ok {
			k.X = x
		}
		if d, ok := getBytes(KeyLabelD); ok {
			k.D = d
		}
		if kty == KeyTypeEC2 {
			if err := k.resolveY(m); err != nil {
				return nil, err
			}
		}
	case KeyTypeSymmetric:
		if kk, ok := getBytes(KeyLabelK); ok {
			k.K = kk
		}
	default:
		raw := make(map[int64]cbor.Item)
		for _, p := range m.Pairs {
			label, ok := intLabel(p.Key)
			if !ok || label == KeyLabelKty {
				continue
			}
			raw[label] = p.Value
		}
		k.Raw = raw
	}
	return k, nil
}

// resolveY fills in Y, decompressing it from a sign-bit boolean when the
// encoder chose the compressed point form (RFC 9053 §7.1.1): "If Y is a
// boolean, then it represents the low-order bit of the Y coordinate".
func (k *Key) resolveY(m *cbor.MapItem) error {
	v, ok := m.Get(cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelY)))
	if !ok {
		return nil
	}
	switch y := v.(type) {
	case *cbor.ByteStringItem:
		k.Y = y.Bytes
		return nil
	case *cbor.BoolItem:
		curve, err := curveForID(k.Curve)
		if err != nil {
			return err
		}
		yCoord, err := decompressY(curve, k.X, y.Value)
		if err != nil {
			return cryptoError("decompressing EC2 Y coordinate", err)
		}
		k.Y = yCoord
		return nil
	default:
		return structuralError("EC2 key Y is neither a byte string nor a boolean", nil)
	}
}

func curveForID(id int64) (elliptic.Curve, error) {
	switch id {
	case CurveP256:
		return elliptic.P256(), nil
	case CurveP384:
		return elliptic.P384(), nil
	case CurveP521:
		return elliptic.P521(), nil
	default:
		return nil, structuralError("unsupported EC2 curve identifier", nil)
	}
}

// decompressY recovers the full Y coordinate from X and its low-order bit,
// using the p ≡ 3 (mod 4) square-root shortcut y = a^((p+1)/4) mod p — valid
// for P-256/384/521 since all three primes satisfy that congruence, so a
// general Tonelli-Shanks implementation is unnecessary here (see DESIGN.md
// Open Question decision).
func decompressY(curve elliptic.Curve, xBytes []byte, yBit bool) ([]byte, error) {
	params := curve.Params()
	x := new(big.Int).SetBytes(xBytes)

	// a = x^3 - 3x + b (mod p), the right-hand side of the Weierstrass
	// equation y^2 = x^3 - 3x + b used by all NIST P-curves.
	a := new(big.Int).Exp(x, big.NewInt(3), params.P)
	threeX := new(big.Int).Mul(x, big.NewInt(3))
	a.Sub(a, threeX)
	a.Add(a, params.B)
	a.Mod(a, params.P)

	exp := new(big.Int).Add(params.P, big.NewInt(1))
	exp.Rsh(exp, 2)
	y := new(big.Int).Exp(a, exp, params.P)

	if y.Bit(0) == 1 != yBit {
		y.Sub(params.P, y)
	}

	out := make([]byte, (params.BitSize+7)/8)
	yb := y.Bytes()
	copy(out[len(out)-len(yb):], yb)
	return out, nil
}

// jwk is the JSON Web Key wire shape used by ToJWK/KeyFromJWK (RFC 7517 +
// RFC 7518 §6 for EC/OKP/oct key types).
type jwk struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	D   string `json:"d,omitempty"`
	K   string `json:"k,omitempty"`
	Kid string `json:"kid,omitempty"`
}

func b64url(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func b64urlDecode(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) }

var curveNames = map[int64]string{
	CurveP256:    "P-256",
	CurveP384:    "P-384",
	CurveP521:    "P-521",
	CurveEd25519: "Ed25519",
	CurveX25519:  "X25519",
}

var curveNamesReverse = map[string]int64{
	"P-256":   CurveP256,
	"P-384":   CurveP384,
	"P-521":   CurveP521,
	"Ed25519": CurveEd25519,
	"X25519":  CurveX25519,
}

// ToJWK renders k as a JSON Web Key, the encode direction of the
// bidirectional bridge spec.md §4.J calls for.
func (k *Key) ToJWK() ([]byte, error) {
	out := jwk{}
	if len(k.Kid) > 0 {
		if utf8.Valid(k.Kid) {
			out.Kid = string(k.Kid)
		} else {
			out.Kid = b64url(k.Kid)
		}
	}
	switch k.Kty {
	case KeyTypeEC2:
		out.Kty = "EC"
		out.Crv = curveNames[k.Curve]
		out.X = b64url(k.X)
		out.Y = b64url(k.Y)
		if len(k.D) > 0 {
			out.D = b64url(k.D)
		}
	case KeyTypeOKP:
		out.Kty = "OKP"
		out.Crv = curveNames[k.Curve]
		out.X = b64url(k.X)
		if len(k.D) > 0 {
			out.D = b64url(k.D)
		}
	case KeyTypeSymmetric:
		out.Kty = "oct"
		out.K = b64url(k.K)
	default:
		return nil, structuralError("unsupported key type for JWK export", nil)
	}
	return json.Marshal(out)
}

// KeyFromJWK parses a JSON Web Key into a Key, the decode direction of the
// bidirectional bridge.
func KeyFromJWK(data []byte) (*Key, error) {
	var in jwk
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, structuralError("parsing JWK", err)
	}
	k := &Key{}
	if in.Kid != "" {
		k.Kid = []byte(in.Kid)
	}
	switch in.Kty {
	case "EC":
		k.Kty = KeyTypeEC2
		k.Curve = curveNamesReverse[in.Crv]
		if x, err := b64urlDecode(in.X); err == nil {
			k.X = x
		}
		if y, err := b64urlDecode(in.Y); err == nil {
			k.Y = y
		}
		if in.D != "" {
			if d, err := b64urlDecode(in.D); err == nil {
				k.D = d
			}
		}
	case "OKP":
		k.Kty = KeyTypeOKP
		k.Curve = curveNamesReverse[in.Crv]
		if x, err := b64urlDecode(in.X); err == nil {
			k.X = x
		}
		if in.D != "" {
			if d, err := b64urlDecode(in.D); err == nil {
				k.D = d
			}
		}
	case "oct":
		k.Kty = KeyTypeSymmetric
		if kk, err := b64urlDecode(in.K); err == nil {
			k.K = kk
		}
	default:
		return nil, structuralError("unsupported JWK kty", nil)
	}
	return k, nil
}

// Encode serializes k back to a COSE_Key CBOR map.
func (k *Key) Encode() ([]byte, error) {
	pairs := []cbor.MapPair{
		{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelKty)), Value: cbor.NewIntItem(cbor.NewNumberFromInt64(k.Kty))},
	}
	if len(k.Kid) > 0 {
		pairs = append(pairs, cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelKid)), Value: cbor.NewByteStringItem(k.Kid)})
	}
	switch k.Kty {
	case KeyTypeEC2, KeyTypeOKP:
		pairs = append(pairs,
			cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelCrv)), Value: cbor.NewIntItem(cbor.NewNumberFromInt64(k.Curve))},
			cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelX)), Value: cbor.NewByteStringItem(k.X)},
		)
		if k.Kty == KeyTypeEC2 && len(k.Y) > 0 {
			pairs = append(pairs, cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelY)), Value: cbor.NewByteStringItem(k.Y)})
		}
		if len(k.D) > 0 {
			pairs = append(pairs, cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelD)), Value: cbor.NewByteStringItem(k.D)})
		}
	case KeyTypeSymmetric:
		pairs = append(pairs, cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelK)), Value: cbor.NewByteStringItem(k.K)})
	default:
		labels := make([]int64, 0, len(k.Raw))
		for label := range k.Raw {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
		for _, label := range labels {
			pairs = append(pairs, cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(label)), Value: k.Raw[label]})
		}
	}
	return cbor.EncodeToBytes(cbor.NewMapItem(pairs...))
}
