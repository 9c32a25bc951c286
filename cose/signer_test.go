package cose

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/argon-chat/cbor-cose.go/internal/cryptoprov"
)

func TestSign1VerifyRoundTripES256(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	provider := cryptoprov.NewECDSAProvider(priv, nil)

	signer := NewSigner(provider, []byte("kid-1"))
	msg, err := signer.Sign1(AlgES256, []byte("payload to sign"), nil)
	require.NoError(t, err)

	verifier := NewFixedVerifier(provider)
	require.NoError(t, verifier.VerifySign1(msg, nil, nil))
}

func TestSign1VerifyFailsOnTamperedPayload(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	provider := cryptoprov.NewECDSAProvider(priv, nil)

	signer := NewSigner(provider, nil)
	msg, err := signer.Sign1(AlgES256, []byte("original"), nil)
	require.NoError(t, err)

	msg.Payload = []byte("tampered")
	verifier := NewFixedVerifier(provider)
	require.Error(t, verifier.VerifySign1(msg, nil, nil))
}

func TestVerifySignSucceedsIfAnySignatureVerifies(t *testing.T) {
	goodPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	goodProvider := cryptoprov.NewECDSAProvider(goodPriv, nil)

	otherPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	otherProvider := cryptoprov.NewECDSAProvider(otherPriv, nil)

	h1 := testHeaders(t, AlgES256)
	tbs, err := BuildSigStructure(true, []byte{0xa0}, h1.ProtectedBytes, nil, []byte("body"))
	require.NoError(t, err)
	badSig, err := otherProvider.Sign(AlgES256, tbs) // signed with the wrong key
	require.NoError(t, err)

	h2 := testHeaders(t, AlgES256)
	tbs2, err := BuildSigStructure(true, []byte{0xa0}, h2.ProtectedBytes, nil, []byte("body"))
	require.NoError(t, err)
	goodSig, err := goodProvider.Sign(AlgES256, tbs2)
	require.NoError(t, err)

	bodyHeaders, err := decodeHeaders([]byte{0xa0}, nil)
	require.NoError(t, err)
	msg := &SignMessage{
		Headers: bodyHeaders,
		Payload: []byte("body"),
		Signatures: []*Signature{
			{Headers: h1, Signature: badSig},
			{Headers: h2, Signature: goodSig},
		},
	}

	verifier := NewFixedVerifier(goodProvider)
	require.NoError(t, verifier.VerifySign(msg, nil, nil))
}

func TestSign1KeyGetterResolvesByKid(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	provider := cryptoprov.NewECDSAProvider(priv, nil)

	signer := NewSigner(provider, []byte("kid-42"))
	msg, err := signer.Sign1(AlgES256, []byte("payload"), nil)
	require.NoError(t, err)

	resolved := false
	verifier := NewKeyGetterVerifier(func(kid []byte) (SignVerifier, error) {
		require.Equal(t, []byte("kid-42"), kid)
		resolved = true
		return provider, nil
	})
	require.NoError(t, verifier.VerifySign1(msg, nil, nil))
	require.True(t, resolved)
}
