package cose

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/argon-chat/cbor-cose.go/cbor"
)

func TestKeyEncodeDecodeRoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	xb := make([]byte, 32)
	yb := make([]byte, 32)
	priv.X.FillBytes(xb)
	priv.Y.FillBytes(yb)

	key := &Key{Kty: KeyTypeEC2, Curve: CurveP256, X: xb, Y: yb, Kid: []byte("k1")}
	encoded, err := key.Encode()
	require.NoError(t, err)

	decoded, err := DecodeKey(encoded)
	require.NoError(t, err)
	require.Equal(t, key.X, decoded.X)
	require.Equal(t, key.Y, decoded.Y)
	require.Equal(t, key.Kid, decoded.Kid)
}

func TestKeyYDecompression(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	xb := make([]byte, 32)
	priv.X.FillBytes(xb)
	yBit := priv.Y.Bit(0) == 1

	yFull, err := decompressY(elliptic.P256(), xb, yBit)
	require.NoError(t, err)

	yb := make([]byte, 32)
	priv.Y.FillBytes(yb)
	require.Equal(t, yb, yFull)
}

func TestKeyJWKRoundTrip(t *testing.T) {
	key := &Key{
		Kty:   KeyTypeEC2,
		Curve: CurveP256,
		X:     []byte{1, 2, 3, 4},
		Y:     []byte{5, 6, 7, 8},
		Kid:   []byte("kid-1"),
	}
	jwkBytes, err := key.ToJWK()
	require.NoError(t, err)

	back, err := KeyFromJWK(jwkBytes)
	require.NoError(t, err)
	require.Equal(t, key.X, back.X)
	require.Equal(t, key.Y, back.Y)
	require.Equal(t, key.Curve, back.Curve)
}

func TestUnsupportedKeyTypeRoundTripsViaRawPairs(t *testing.T) {
	original, err := cbor.EncodeToBytes(cbor.NewMapItem(
		cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyLabelKty)), Value: cbor.NewIntItem(cbor.NewNumberFromInt64(KeyTypeRSA))},
		cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(-1)), Value: cbor.NewByteStringItem([]byte{1, 2, 3})}, // n
		cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(-2)), Value: cbor.NewByteStringItem([]byte{4, 5})},    // e
	))
	require.NoError(t, err)

	key, err := DecodeKey(original)
	require.NoError(t, err)
	require.Equal(t, KeyTypeRSA, key.Kty)
	require.Len(t, key.Raw, 2)

	reencoded, err := key.Encode()
	require.NoError(t, err)

	back, err := DecodeKey(reencoded)
	require.NoError(t, err)
	require.Equal(t, key.Raw, back.Raw)
}

func TestJWKKidFallsBackToBase64URLForNonUTF8(t *testing.T) {
	key := &Key{Kty: KeyTypeSymmetric, K: []byte("k"), Kid: []byte{0xff, 0xfe, 0x00}}
	out, err := key.ToJWK()
	require.NoError(t, err)
	require.Contains(t, string(out), `"kid":"__4A"`)

	back, err := KeyFromJWK(out)
	require.NoError(t, err)
	require.Equal(t, KeyTypeSymmetric, back.Kty)
}

func TestSymmetricKeyJWKRoundTrip(t *testing.T) {
	key := &Key{Kty: KeyTypeSymmetric, K: []byte("super-secret-key")}
	jwkBytes, err := key.ToJWK()
	require.NoError(t, err)

	back, err := KeyFromJWK(jwkBytes)
	require.NoError(t, err)
	require.Equal(t, key.K, back.K)
	require.Equal(t, KeyTypeSymmetric, back.Kty)
}
