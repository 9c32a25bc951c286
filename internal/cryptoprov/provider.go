// Package cryptoprov supplies the default, concrete cose.SignVerifier
// implementation: stdlib ECDSA (P-256/384/521) and Ed25519, wired to the
// COSE algorithm identifiers ES256/384/512 and EdDSA. cose itself stays
// crypto-library-agnostic; this package is the boundary a caller can
// replace with an HSM- or KMS-backed implementation of the same interface.
package cryptoprov

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"

	"github.com/argon-chat/cbor-cose.go/cose"
)

// Provider signs and verifies with a single EC or Ed25519 key pair,
// satisfying cose.SignVerifier.
type Provider struct {
	ecKey  *ecdsa.PrivateKey
	ecPub  *ecdsa.PublicKey
	edKey  ed25519.PrivateKey
	edPub  ed25519.PublicKey
}

// NewECDSAProvider wraps an ECDSA key pair for ES256/384/512. priv may be
// nil for a verify-only Provider.
func NewECDSAProvider(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) *Provider {
	if pub == nil && priv != nil {
		pub = &priv.PublicKey
	}
	return &Provider{ecKey: priv, ecPub: pub}
}

// NewEd25519Provider wraps an Ed25519 key pair for EdDSA. priv may be nil
// for a verify-only Provider.
func NewEd25519Provider(priv ed25519.PrivateKey, pub ed25519.PublicKey) *Provider {
	if pub == nil && priv != nil {
		pub = priv.Public().(ed25519.PublicKey)
	}
	return &Provider{edKey: priv, edPub: pub}
}

func hashForAlg(alg int64, data []byte) (crypto.Hash, []byte, error) {
	switch alg {
	case cose.AlgES256:
		sum := sha256.Sum256(data)
		return crypto.SHA256, sum[:], nil
	case cose.AlgES384:
		sum := sha512.Sum384(data)
		return crypto.SHA384, sum[:], nil
	case cose.AlgES512:
		sum := sha512.Sum512(data)
		return crypto.SHA512, sum[:], nil
	default:
		return 0, nil, fmt.Errorf("cryptoprov: unsupported ECDSA algorithm %d", alg)
	}
}

func curveByteLen(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

// Sign implements cose.SignVerifier.
func (p *Provider) Sign(alg int64, toBeSigned []byte) ([]byte, error) {
	if alg == cose.AlgEdDSA {
		if p.edKey == nil {
			return nil, fmt.Errorf("cryptoprov: no Ed25519 private key configured")
		}
		return ed25519.Sign(p.edKey, toBeSigned), nil
	}
	if p.ecKey == nil {
		return nil, fmt.Errorf("cryptoprov: no ECDSA private key configured")
	}
	_, digest, err := hashForAlg(alg, toBeSigned)
	if err != nil {
		return nil, err
	}
	r, s, err := ecdsa.Sign(rand.Reader, p.ecKey, digest)
	if err != nil {
		return nil, err
	}
	// COSE encodes ECDSA signatures as the concatenation of r and s, each
	// left-padded to the curve's coordinate size (RFC 9053 §2.1), not the
	// ASN.1 DER form crypto/ecdsa's Sign historically returned.
	n := curveByteLen(p.ecKey.Curve)
	out := make([]byte, 2*n)
	r.FillBytes(out[:n])
	s.FillBytes(out[n:])
	return out, nil
}

// Verify implements cose.SignVerifier.
func (p *Provider) Verify(alg int64, toBeSigned []byte, sig []byte) error {
	if alg == cose.AlgEdDSA {
		if p.edPub == nil {
			return fmt.Errorf("cryptoprov: no Ed25519 public key configured")
		}
		if !ed25519.Verify(p.edPub, toBeSigned, sig) {
			return fmt.Errorf("cryptoprov: Ed25519 signature verification failed")
		}
		return nil
	}
	if p.ecPub == nil {
		return fmt.Errorf("cryptoprov: no ECDSA public key configured")
	}
	_, digest, err := hashForAlg(alg, toBeSigned)
	if err != nil {
		return err
	}
	n := curveByteLen(p.ecPub.Curve)
	if len(sig) != 2*n {
		return fmt.Errorf("cryptoprov: signature length %d does not match curve size %d", len(sig), 2*n)
	}
	r := new(big.Int).SetBytes(sig[:n])
	s := new(big.Int).SetBytes(sig[n:])
	if !ecdsa.Verify(p.ecPub, digest, r, s) {
		return fmt.Errorf("cryptoprov: ECDSA signature verification failed")
	}
	return nil
}
