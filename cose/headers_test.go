package cose

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/argon-chat/cbor-cose.go/cbor"
)

func TestHeadersRejectsDuplicateLabelAcrossBuckets(t *testing.T) {
	algKey := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelAlg))
	protected := cbor.NewMapItem(cbor.MapPair{Key: algKey, Value: cbor.NewIntItem(cbor.NewNumberFromInt64(AlgES256))})
	unprotected := cbor.NewMapItem(cbor.MapPair{Key: algKey, Value: cbor.NewIntItem(cbor.NewNumberFromInt64(AlgES256))})

	_, err := NewHeaders(protected, unprotected)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, KindStructural, cerr.Kind)
}

func TestHeadersRejectsDuplicateLabelWithinSameBucket(t *testing.T) {
	algKey := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelAlg))
	protected := cbor.NewMapItem(
		cbor.MapPair{Key: algKey, Value: cbor.NewIntItem(cbor.NewNumberFromInt64(AlgES256))},
		cbor.MapPair{Key: algKey, Value: cbor.NewIntItem(cbor.NewNumberFromInt64(AlgES384))},
	)

	_, err := NewHeaders(protected, nil)
	require.Error(t, err)
}

func TestHeadersRejectsCritInUnprotectedBucket(t *testing.T) {
	critKey := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelCrit))
	crit := cbor.NewArrayItem(cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelAlg)))
	unprotected := cbor.NewMapItem(cbor.MapPair{Key: critKey, Value: crit})

	_, err := NewHeaders(nil, unprotected)
	require.Error(t, err)
}

func TestHeadersRejectsEmptyCrit(t *testing.T) {
	critKey := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelCrit))
	protected := cbor.NewMapItem(cbor.MapPair{Key: critKey, Value: cbor.NewArrayItem()})

	_, err := NewHeaders(protected, nil)
	require.Error(t, err)
}

func TestHeadersRejectsWrongTypeForKID(t *testing.T) {
	kidKey := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelKID))
	protected := cbor.NewMapItem(cbor.MapPair{Key: kidKey, Value: cbor.NewTextStringItem("not-bytes")})

	_, err := NewHeaders(protected, nil)
	require.Error(t, err)
}

func TestHeadersRejectsEmptyX5ChainArray(t *testing.T) {
	x5Key := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelX5Chain))
	unprotected := cbor.NewMapItem(cbor.MapPair{Key: x5Key, Value: cbor.NewArrayItem()})

	_, err := NewHeaders(nil, unprotected)
	require.Error(t, err)
}

func TestHeadersRejectsMalformedX5ChainCertificate(t *testing.T) {
	x5Key := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelX5Chain))
	unprotected := cbor.NewMapItem(cbor.MapPair{Key: x5Key, Value: cbor.NewByteStringItem([]byte("not a certificate"))})

	_, err := NewHeaders(nil, unprotected)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, KindStructural, cerr.Kind)
}

func TestHeadersAlgorithmAndKeyIDLookup(t *testing.T) {
	protected := cbor.NewMapItem(
		cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelAlg)), Value: cbor.NewIntItem(cbor.NewNumberFromInt64(AlgES256))},
	)
	unprotected := cbor.NewMapItem(
		cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelKID)), Value: cbor.NewByteStringItem([]byte("key-1"))},
	)

	h, err := NewHeaders(protected, unprotected)
	require.NoError(t, err)

	alg, ok := h.Algorithm()
	require.True(t, ok)
	require.Equal(t, AlgES256, alg)

	kid, ok := h.KeyID()
	require.True(t, ok)
	require.Equal(t, []byte("key-1"), kid)
}

func TestHeadersRoundTripThroughBytes(t *testing.T) {
	protected := cbor.NewMapItem(
		cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelAlg)), Value: cbor.NewIntItem(cbor.NewNumberFromInt64(AlgES256))},
	)
	h, err := NewHeaders(protected, nil)
	require.NoError(t, err)

	decoded, err := decodeHeaders(h.ProtectedBytes, cbor.NewMapItem())
	require.NoError(t, err)
	alg, ok := decoded.Algorithm()
	require.True(t, ok)
	require.Equal(t, AlgES256, alg)
}
