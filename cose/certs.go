package cose

import "crypto/x509"

// Certificate is the narrow view this package needs of an X.509
// certificate: enough to report who it is for and to pass its public key to
// a Verifier, without depending on crypto/x509 throughout the rest of cose.
type Certificate struct {
	Subject   string
	RawDER    []byte
	PublicKey any
}

// CertificateDecoder decodes DER-encoded certificate bytes from an x5chain
// header, kept as an external-collaborator interface per spec.md's framing
// of X.509 parsing as outside this package's core concern — callers that
// need chain validation against a trust root supply their own.
type CertificateDecoder interface {
	Decode(der []byte) (*Certificate, error)
}

// DefaultCertificateDecoder parses a single DER certificate with
// crypto/x509.ParseCertificate and performs no chain or trust validation;
// it exists so x5chain can be inspected out of the box, not as a substitute
// for a real trust-anchor check.
type DefaultCertificateDecoder struct{}

func (DefaultCertificateDecoder) Decode(der []byte) (*Certificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, cryptoError("parsing x5chain certificate", err)
	}
	return &Certificate{
		Subject:   cert.Subject.String(),
		RawDER:    der,
		PublicKey: cert.PublicKey,
	}, nil
}

// DecodeX5Chain decodes every certificate in an x5chain header value with
// dec, stopping at the first failure.
func DecodeX5Chain(dec CertificateDecoder, chain [][]byte) ([]*Certificate, error) {
	out := make([]*Certificate, 0, len(chain))
	for _, der := range chain {
		cert, err := dec.Decode(der)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	return out, nil
}
