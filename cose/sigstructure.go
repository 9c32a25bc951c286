package cose

import "github.com/argon-chat/cbor-cose.go/cbor"

// Sig_structure contexts (RFC 9052 §4.4).
const (
	sigContextSignature  = "Signature"
	sigContextSignature1 = "Signature1"
)

// BuildSigStructure serializes the Sig_structure that gets signed/verified
// (component I). For COSE_Sign1 it is the 4-element form; for COSE_Sign
// (multi-signer), signerProtected carries that particular signer's own
// protected header bytes and the array grows to 5 elements, per RFC 9052
// §4.4. externalAAD may be nil, in which case an empty byte string is used.
func BuildSigStructure(multi bool, bodyProtected []byte, signerProtected []byte, externalAAD []byte, payload []byte) ([]byte, error) {
	if externalAAD == nil {
		externalAAD = []byte{}
	}
	context := sigContextSignature1
	items := []cbor.Item{
		cbor.NewTextStringItem(context),
		cbor.NewByteStringItem(bodyProtected),
	}
	if multi {
		context = sigContextSignature
		items[0] = cbor.NewTextStringItem(context)
		items = append(items, cbor.NewByteStringItem(signerProtected))
	}
	items = append(items, cbor.NewByteStringItem(externalAAD), cbor.NewByteStringItem(payload))

	arr := cbor.NewArrayItem(items...)
	out, err := cbor.EncodeToBytes(arr)
	if err != nil {
		return nil, structuralError("encoding Sig_structure", err)
	}
	return out, nil
}
