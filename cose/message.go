package cose

import "github.com/argon-chat/cbor-cose.go/cbor"

// Message-identifying CBOR tags (RFC 9052 §2 table 1).
const (
	tagSign1    = 18
	tagSign     = 98
	tagMac0     = 17
	tagMac      = 97
	tagEncrypt0 = 16
	tagEncrypt  = 96
)

// Signature is one signer's contribution to a COSE_Sign message: its own
// protected/unprotected headers plus the signature bytes (RFC 9052 §4.1).
type Signature struct {
	Headers   *Headers
	Signature []byte
}

// Recipient is one COSE_recipient entry inside a COSE_Mac/COSE_Encrypt
// message (RFC 9052 §5.1/§6.1): its own headers plus either a MAC'd/
// encrypted key (ciphertext) or nil when the key is conveyed out of band.
// Recipients holds the optional fourth array element, used for layered key
// wrapping (a recipient's key itself wrapped for further recipients); it is
// nil for the ordinary 3-element COSE_recipient form.
type Recipient struct {
	Headers    *Headers
	Ciphertext []byte // nil when absent
	Recipients []*Recipient
}

func decodeByteStringOrNil(item cbor.Item) ([]byte, bool, error) {
	switch v := item.(type) {
	case *cbor.NullItem:
		return nil, true, nil
	case *cbor.ByteStringItem:
		return v.Bytes, false, nil
	default:
		return nil, false, structuralError("expected a byte string or null", nil)
	}
}

func byteStringOrNilItem(b []byte, isNil bool) cbor.Item {
	if isNil {
		return cbor.NewNullItem()
	}
	return cbor.NewByteStringItem(b)
}

// unwrapMessageArray accepts either a bare COSE_* array or one wrapped in
// its defining tag, per RFC 9052 §2 ("a CBOR tag MAY be used ... When a COSE
// message is preceded by a tag, the tag MUST match"). Untagged is legal for
// embedding inside another structure (e.g. a CWT claim), so both forms
// round-trip through this package.
func unwrapMessageArray(data []byte, expectedTag uint64, expectedLen int) ([]cbor.Item, bool, error) {
	dec := cbor.NewDecoder(data, cbor.DefaultTagRegistry())
	item, err := dec.Next()
	if err != nil {
		return nil, false, structuralError("decoding COSE message", err)
	}
	tagged := false
	var arr *cbor.ArrayItem
	switch v := item.(type) {
	case *cbor.TaggedItem:
		tag, ok := v.Tag.Uint64()
		if !ok || tag != expectedTag {
			return nil, false, structuralError("unexpected CBOR tag wrapping COSE message", nil)
		}
		a, ok := v.Child.(*cbor.ArrayItem)
		if !ok {
			return nil, false, structuralError("tagged COSE message content is not an array", nil)
		}
		arr = a
		tagged = true
	case *cbor.ArrayItem:
		arr = v
	default:
		return nil, false, structuralError("COSE message is neither a tagged item nor an array", nil)
	}
	if len(arr.Items) != expectedLen {
		return nil, false, structuralError("COSE message array has the wrong number of elements", nil)
	}
	return arr.Items, tagged, nil
}

func decodeHeaderPair(protectedItem, unprotectedItem cbor.Item) (*Headers, error) {
	pb, ok := protectedItem.(*cbor.ByteStringItem)
	if !ok {
		return nil, structuralError("protected headers are not a byte string", nil)
	}
	up, ok := unprotectedItem.(*cbor.MapItem)
	if !ok {
		return nil, structuralError("unprotected headers are not a map", nil)
	}
	return decodeHeaders(pb.Bytes, up)
}

func headerItems(h *Headers) (cbor.Item, cbor.Item) {
	return cbor.NewByteStringItem(h.ProtectedBytes), h.Unprotected
}

// --- COSE_Sign1 ---

type Sign1Message struct {
	Headers   *Headers
	Payload   []byte
	PayloadIsNil bool
	Signature []byte
}

func DecodeSign1Message(data []byte) (*Sign1Message, error) {
	items, _, err := unwrapMessageArray(data, tagSign1, 4)
	if err != nil {
		return nil, err
	}
	h, err := decodeHeaderPair(items[0], items[1])
	if err != nil {
		return nil, err
	}
	payload, isNil, err := decodeByteStringOrNil(items[2])
	if err != nil {
		return nil, err
	}
	sig, ok := items[3].(*cbor.ByteStringItem)
	if !ok {
		return nil, structuralError("COSE_Sign1 signature is not a byte string", nil)
	}
	return &Sign1Message{Headers: h, Payload: payload, PayloadIsNil: isNil, Signature: sig.Bytes}, nil
}

func (m *Sign1Message) Encode() ([]byte, error) {
	p, u := headerItems(m.Headers)
	arr := cbor.NewArrayItem(p, u, byteStringOrNilItem(m.Payload, m.PayloadIsNil), cbor.NewByteStringItem(m.Signature))
	return cbor.EncodeToBytes(cbor.NewTaggedItem(cbor.NewNumberFromUint64(tagSign1), arr))
}

// --- COSE_Sign ---

type SignMessage struct {
	Headers    *Headers
	Payload    []byte
	PayloadIsNil bool
	Signatures []*Signature
}

func DecodeSignMessage(data []byte) (*SignMessage, error) {
	items, _, err := unwrapMessageArray(data, tagSign, 4)
	if err != nil {
		return nil, err
	}
	h, err := decodeHeaderPair(items[0], items[1])
	if err != nil {
		return nil, err
	}
	payload, isNil, err := decodeByteStringOrNil(items[2])
	if err != nil {
		return nil, err
	}
	sigsArr, ok := items[3].(*cbor.ArrayItem)
	if !ok {
		return nil, structuralError("COSE_Sign signatures field is not an array", nil)
	}
	if len(sigsArr.Items) == 0 {
		return nil, structuralError("COSE_Sign signatures must not be empty", nil)
	}
	sigs := make([]*Signature, 0, len(sigsArr.Items))
	for _, si := range sigsArr.Items {
		triple, ok := si.(*cbor.ArrayItem)
		if !ok || len(triple.Items) != 3 {
			return nil, structuralError("COSE_Signature is not a 3-element array", nil)
		}
		sh, err := decodeHeaderPair(triple.Items[0], triple.Items[1])
		if err != nil {
			return nil, err
		}
		sb, ok := triple.Items[2].(*cbor.ByteStringItem)
		if !ok {
			return nil, structuralError("COSE_Signature signature is not a byte string", nil)
		}
		sigs = append(sigs, &Signature{Headers: sh, Signature: sb.Bytes})
	}
	return &SignMessage{Headers: h, Payload: payload, PayloadIsNil: isNil, Signatures: sigs}, nil
}

func (m *SignMessage) Encode() ([]byte, error) {
	if len(m.Signatures) == 0 {
		return nil, structuralError("COSE_Sign signatures must not be empty", nil)
	}
	p, u := headerItems(m.Headers)
	sigItems := make([]cbor.Item, 0, len(m.Signatures))
	for _, s := range m.Signatures {
		sp, su := headerItems(s.Headers)
		sigItems = append(sigItems, cbor.NewArrayItem(sp, su, cbor.NewByteStringItem(s.Signature)))
	}
	arr := cbor.NewArrayItem(p, u, byteStringOrNilItem(m.Payload, m.PayloadIsNil), cbor.NewArrayItem(sigItems...))
	return cbor.EncodeToBytes(cbor.NewTaggedItem(cbor.NewNumberFromUint64(tagSign), arr))
}

// --- COSE_Mac0 ---

// Mac0Message and MacMessage are modeled structurally (decode/encode,
// header access) but this package does not compute or verify MAC tags:
// MAC/encryption cryptography is out of scope (see SPEC_FULL.md Non-goals),
// unlike signing, which the Signer/Verifier facade does implement.
type Mac0Message struct {
	Headers *Headers
	Payload []byte
	PayloadIsNil bool
	Tag     []byte
}

func DecodeMac0Message(data []byte) (*Mac0Message, error) {
	items, _, err := unwrapMessageArray(data, tagMac0, 4)
	if err != nil {
		return nil, err
	}
	h, err := decodeHeaderPair(items[0], items[1])
	if err != nil {
		return nil, err
	}
	payload, isNil, err := decodeByteStringOrNil(items[2])
	if err != nil {
		return nil, err
	}
	tag, ok := items[3].(*cbor.ByteStringItem)
	if !ok {
		return nil, structuralError("COSE_Mac0 tag is not a byte string", nil)
	}
	return &Mac0Message{Headers: h, Payload: payload, PayloadIsNil: isNil, Tag: tag.Bytes}, nil
}

func (m *Mac0Message) Encode() ([]byte, error) {
	p, u := headerItems(m.Headers)
	arr := cbor.NewArrayItem(p, u, byteStringOrNilItem(m.Payload, m.PayloadIsNil), cbor.NewByteStringItem(m.Tag))
	return cbor.EncodeToBytes(cbor.NewTaggedItem(cbor.NewNumberFromUint64(tagMac0), arr))
}

// --- COSE_Mac ---

type MacMessage struct {
	Headers    *Headers
	Payload    []byte
	PayloadIsNil bool
	Tag        []byte
	Recipients []*Recipient
}

func DecodeMacMessage(data []byte) (*MacMessage, error) {
	items, _, err := unwrapMessageArray(data, tagMac, 5)
	if err != nil {
		return nil, err
	}
	h, err := decodeHeaderPair(items[0], items[1])
	if err != nil {
		return nil, err
	}
	payload, isNil, err := decodeByteStringOrNil(items[2])
	if err != nil {
		return nil, err
	}
	tag, ok := items[3].(*cbor.ByteStringItem)
	if !ok {
		return nil, structuralError("COSE_Mac tag is not a byte string", nil)
	}
	recipients, err := decodeRecipients(items[4])
	if err != nil {
		return nil, err
	}
	return &MacMessage{Headers: h, Payload: payload, PayloadIsNil: isNil, Tag: tag.Bytes, Recipients: recipients}, nil
}

func (m *MacMessage) Encode() ([]byte, error) {
	if len(m.Recipients) == 0 {
		return nil, structuralError("COSE_Mac recipients must not be empty", nil)
	}
	p, u := headerItems(m.Headers)
	arr := cbor.NewArrayItem(p, u, byteStringOrNilItem(m.Payload, m.PayloadIsNil), cbor.NewByteStringItem(m.Tag), encodeRecipients(m.Recipients))
	return cbor.EncodeToBytes(cbor.NewTaggedItem(cbor.NewNumberFromUint64(tagMac), arr))
}

// --- COSE_Encrypt0 / COSE_Encrypt ---

type Encrypt0Message struct {
	Headers    *Headers
	Ciphertext []byte
	CiphertextIsNil bool
}

func DecodeEncrypt0Message(data []byte) (*Encrypt0Message, error) {
	items, _, err := unwrapMessageArray(data, tagEncrypt0, 3)
	if err != nil {
		return nil, err
	}
	h, err := decodeHeaderPair(items[0], items[1])
	if err != nil {
		return nil, err
	}
	ct, isNil, err := decodeByteStringOrNil(items[2])
	if err != nil {
		return nil, err
	}
	return &Encrypt0Message{Headers: h, Ciphertext: ct, CiphertextIsNil: isNil}, nil
}

func (m *Encrypt0Message) Encode() ([]byte, error) {
	p, u := headerItems(m.Headers)
	arr := cbor.NewArrayItem(p, u, byteStringOrNilItem(m.Ciphertext, m.CiphertextIsNil))
	return cbor.EncodeToBytes(cbor.NewTaggedItem(cbor.NewNumberFromUint64(tagEncrypt0), arr))
}

type EncryptMessage struct {
	Headers    *Headers
	Ciphertext []byte
	CiphertextIsNil bool
	Recipients []*Recipient
}

func DecodeEncryptMessage(data []byte) (*EncryptMessage, error) {
	items, _, err := unwrapMessageArray(data, tagEncrypt, 4)
	if err != nil {
		return nil, err
	}
	h, err := decodeHeaderPair(items[0], items[1])
	if err != nil {
		return nil, err
	}
	ct, isNil, err := decodeByteStringOrNil(items[2])
	if err != nil {
		return nil, err
	}
	recipients, err := decodeRecipients(items[3])
	if err != nil {
		return nil, err
	}
	return &EncryptMessage{Headers: h, Ciphertext: ct, CiphertextIsNil: isNil, Recipients: recipients}, nil
}

func (m *EncryptMessage) Encode() ([]byte, error) {
	if len(m.Recipients) == 0 {
		return nil, structuralError("COSE_Encrypt recipients must not be empty", nil)
	}
	p, u := headerItems(m.Headers)
	arr := cbor.NewArrayItem(p, u, byteStringOrNilItem(m.Ciphertext, m.CiphertextIsNil), encodeRecipients(m.Recipients))
	return cbor.EncodeToBytes(cbor.NewTaggedItem(cbor.NewNumberFromUint64(tagEncrypt), arr))
}

// decodeRecipients parses a COSE recipients array, requiring at least one
// entry (spec §4.H/§7: "empty recipients" is a structural error). Each
// COSE_recipient is a 3-element [protected, unprotected, ciphertext] array,
// or a 4-element array whose last element is its own nested recipients
// array (RFC 9052 §5.1, layered key wrapping).
func decodeRecipients(item cbor.Item) ([]*Recipient, error) {
	arr, ok := item.(*cbor.ArrayItem)
	if !ok {
		return nil, structuralError("COSE recipients field is not an array", nil)
	}
	if len(arr.Items) == 0 {
		return nil, structuralError("COSE recipients must not be empty", nil)
	}
	out := make([]*Recipient, 0, len(arr.Items))
	for _, ri := range arr.Items {
		entry, ok := ri.(*cbor.ArrayItem)
		if !ok || (len(entry.Items) != 3 && len(entry.Items) != 4) {
			return nil, structuralError("COSE_recipient is not a 3- or 4-element array", nil)
		}
		h, err := decodeHeaderPair(entry.Items[0], entry.Items[1])
		if err != nil {
			return nil, err
		}
		ct, isNil, err := decodeByteStringOrNil(entry.Items[2])
		if err != nil {
			return nil, err
		}
		var ctBytes []byte
		if !isNil {
			ctBytes = ct
		}
		rec := &Recipient{Headers: h, Ciphertext: ctBytes}
		if len(entry.Items) == 4 {
			nested, err := decodeRecipients(entry.Items[3])
			if err != nil {
				return nil, err
			}
			rec.Recipients = nested
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeRecipients(recipients []*Recipient) *cbor.ArrayItem {
	items := make([]cbor.Item, 0, len(recipients))
	for _, r := range recipients {
		p, u := headerItems(r.Headers)
		entry := []cbor.Item{p, u, byteStringOrNilItem(r.Ciphertext, r.Ciphertext == nil)}
		if len(r.Recipients) > 0 {
			entry = append(entry, encodeRecipients(r.Recipients))
		}
		items = append(items, cbor.NewArrayItem(entry...))
	}
	return cbor.NewArrayItem(items...)
}
