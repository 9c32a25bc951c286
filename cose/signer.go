package cose

import "github.com/argon-chat/cbor-cose.go/cbor"

// algNameToID / algIDToName translate between the textual algorithm names
// used by some profiles in the protected header (RFC 9052 §3.1 allows alg
// to be either an int or a tstr) and the registered numeric identifiers.
var algNameToID = map[string]int64{
	"ES256": AlgES256,
	"ES384": AlgES384,
	"ES512": AlgES512,
	"EdDSA": AlgEdDSA,
}

var algIDToName = map[int64]string{
	AlgES256: "ES256",
	AlgES384: "ES384",
	AlgES512: "ES512",
	AlgEdDSA: "EdDSA",
}

// algorithmFromHeaders resolves the signing algorithm, checking the
// protected bucket before the unprotected one (RFC 9052 §3.1: alg SHOULD be
// protected), accepting either the numeric or textual form.
func algorithmFromHeaders(h *Headers) (int64, error) {
	if n, ok := h.Algorithm(); ok {
		return n, nil
	}
	key := cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelAlg))
	for _, bucket := range []*cbor.MapItem{h.Protected, h.Unprotected} {
		if v, ok := bucket.Get(key); ok {
			if ts, ok := v.(*cbor.TextStringItem); ok {
				if id, ok := algNameToID[ts.Value]; ok {
					return id, nil
				}
				return 0, structuralError("unrecognized textual algorithm name", nil)
			}
		}
	}
	return 0, structuralError("no algorithm header present", nil)
}

// SignVerifier is the external collaborator that performs the actual
// signature cryptography (component K): this package builds the
// Sig_structure and message framing, and delegates every private-key/
// public-key operation here, per spec.md's mandate to keep crypto
// primitives out of cose's own scope.
type SignVerifier interface {
	// Sign returns a signature over toBeSigned for the named algorithm.
	Sign(alg int64, toBeSigned []byte) ([]byte, error)
	// Verify reports whether sig is a valid signature over toBeSigned.
	Verify(alg int64, toBeSigned []byte, sig []byte) error
}

// KeyGetter resolves a SignVerifier for a message's key id, for callers
// that verify against a key set rather than one fixed key.
type KeyGetter func(kid []byte) (SignVerifier, error)

// Signer produces COSE_Sign1 messages using a fixed SignVerifier and key id.
// It has no method for producing COSE_Sign (multi-signer) messages.
type Signer struct {
	SV  SignVerifier
	Kid []byte
}

// NewSigner returns a Signer that signs with sv, stamping kid into the
// protected kid header of every message it produces.
func NewSigner(sv SignVerifier, kid []byte) *Signer {
	return &Signer{SV: sv, Kid: kid}
}

func (s *Signer) protectedHeaders(alg int64) (*Headers, error) {
	pairs := []cbor.MapPair{
		{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelAlg)), Value: cbor.NewIntItem(cbor.NewNumberFromInt64(alg))},
	}
	if len(s.Kid) > 0 {
		pairs = append(pairs, cbor.MapPair{Key: cbor.NewIntItem(cbor.NewNumberFromInt64(HeaderLabelKID)), Value: cbor.NewByteStringItem(s.Kid)})
	}
	return NewHeaders(cbor.NewMapItem(pairs...), nil)
}

// Sign1 builds and signs a COSE_Sign1 message over payload, using alg and
// the signer's own Sig_structure construction. externalAAD may be nil.
func (s *Signer) Sign1(alg int64, payload []byte, externalAAD []byte) (*Sign1Message, error) {
	h, err := s.protectedHeaders(alg)
	if err != nil {
		return nil, err
	}
	tbs, err := BuildSigStructure(false, h.ProtectedBytes, nil, externalAAD, payload)
	if err != nil {
		return nil, err
	}
	sig, err := s.SV.Sign(alg, tbs)
	if err != nil {
		return nil, cryptoError("signing COSE_Sign1", err)
	}
	return &Sign1Message{Headers: h, Payload: payload, Signature: sig}, nil
}

// Verifier verifies COSE_Sign1/COSE_Sign messages, resolving a
// per-signature SignVerifier either from a fixed instance or via Keys.
type Verifier struct {
	SV   SignVerifier // used when Keys is nil
	Keys KeyGetter     // used when non-nil; takes precedence over SV
}

// NewFixedVerifier returns a Verifier that always verifies against sv,
// ignoring any kid header.
func NewFixedVerifier(sv SignVerifier) *Verifier {
	return &Verifier{SV: sv}
}

// NewKeyGetterVerifier returns a Verifier that resolves the verifying key
// from the message's kid header via get.
func NewKeyGetterVerifier(get KeyGetter) *Verifier {
	return &Verifier{Keys: get}
}

func (v *Verifier) resolve(kid []byte) (SignVerifier, error) {
	if v.Keys != nil {
		return v.Keys(kid)
	}
	if v.SV != nil {
		return v.SV, nil
	}
	return nil, cryptoError("no key available to verify with", nil)
}

// VerifySign1 checks msg's signature, using externalPayload in place of
// msg.Payload when the payload was transported detached (msg.PayloadIsNil).
func (v *Verifier) VerifySign1(msg *Sign1Message, externalAAD []byte, externalPayload []byte) error {
	alg, err := algorithmFromHeaders(msg.Headers)
	if err != nil {
		return err
	}
	payload := msg.Payload
	if msg.PayloadIsNil {
		payload = externalPayload
	}
	tbs, err := BuildSigStructure(false, msg.Headers.ProtectedBytes, nil, externalAAD, payload)
	if err != nil {
		return err
	}
	kid, _ := msg.Headers.KeyID()
	sv, err := v.resolve(kid)
	if err != nil {
		return err
	}
	if err := sv.Verify(alg, tbs, msg.Signature); err != nil {
		return cryptoError("verifying COSE_Sign1 signature", err)
	}
	return nil
}

// VerifySign checks msg's signer entries, succeeding iff at least one
// embedded COSE_Signature verifies (spec §4.K), not requiring all of them.
func (v *Verifier) VerifySign(msg *SignMessage, externalAAD []byte, externalPayload []byte) error {
	if len(msg.Signatures) == 0 {
		return structuralError("COSE_Sign has no signatures to verify", nil)
	}
	payload := msg.Payload
	if msg.PayloadIsNil {
		payload = externalPayload
	}
	var lastErr error
	for _, sig := range msg.Signatures {
		alg, err := algorithmFromHeaders(sig.Headers)
		if err != nil {
			lastErr = err
			continue
		}
		tbs, err := BuildSigStructure(true, msg.Headers.ProtectedBytes, sig.Headers.ProtectedBytes, externalAAD, payload)
		if err != nil {
			lastErr = err
			continue
		}
		kid, _ := sig.Headers.KeyID()
		sv, err := v.resolve(kid)
		if err != nil {
			lastErr = err
			continue
		}
		if err := sv.Verify(alg, tbs, sig.Signature); err != nil {
			lastErr = cryptoError("verifying COSE_Sign signature", err)
			continue
		}
		return nil
	}
	return lastErr
}
