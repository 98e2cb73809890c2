package ublu

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/pkg/math/curve"
)

// The Empty constructors return values ready to be unmarshalled. Every group
// element carries the name of its group on the wire, so the argument only
// documents which group is expected.

func EmptyPublicKey(curve.Curve) *PublicKey { return &PublicKey{} }

func EmptySecretKey(curve.Curve) *SecretKey { return &SecretKey{} }

func EmptyHint(curve.Curve) *Hint { return &Hint{} }

func EmptyTag(curve.Curve) *Tag { return &Tag{} }

func EmptyEscrow(curve.Curve) *Escrow { return &Escrow{} }

var errMissingField = errors.New("ublu: unmarshal: missing field")

func unwrapPoint(p *curve.MarshallablePoint) (curve.Point, error) {
	if p == nil || p.Point == nil {
		return nil, errMissingField
	}
	return p.Point, nil
}

func checkCiphers(ciphers []*elgamal.Ciphertext) error {
	for _, c := range ciphers {
		if !c.Valid() {
			return errMissingField
		}
	}
	return nil
}

type publicKeyCBOR struct {
	PK     *curve.MarshallablePoint
	ComT   *curve.MarshallablePoint
	Anchor *elgamal.Ciphertext
	Proof  *Proof
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(publicKeyCBOR{
		PK:     curve.NewMarshallablePoint(pk.PK),
		ComT:   curve.NewMarshallablePoint(pk.ComT),
		Anchor: pk.Anchor,
		Proof:  pk.Proof,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKey) UnmarshalBinary(data []byte) (err error) {
	var v publicKeyCBOR
	if err = cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	var out PublicKey
	if out.PK, err = unwrapPoint(v.PK); err != nil {
		return err
	}
	if out.ComT, err = unwrapPoint(v.ComT); err != nil {
		return err
	}
	if !v.Anchor.Valid() {
		return errMissingField
	}
	out.Anchor, out.Proof = v.Anchor, v.Proof
	*pk = out
	return nil
}

type secretKeyCBOR struct {
	SK *curve.MarshallableScalar
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(secretKeyCBOR{SK: curve.NewMarshallableScalar(sk.SK)})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	var v secretKeyCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.SK == nil || v.SK.Scalar == nil {
		return errMissingField
	}
	sk.SK = v.SK.Scalar
	return nil
}

type hintCBOR struct {
	Ciphers []*elgamal.Ciphertext
	ComX    *curve.MarshallablePoint
	Proof   *Proof
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h *Hint) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(hintCBOR{
		Ciphers: h.Ciphers,
		ComX:    curve.NewMarshallablePoint(h.ComX),
		Proof:   h.Proof,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (h *Hint) UnmarshalBinary(data []byte) error {
	var v hintCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	comX, err := unwrapPoint(v.ComX)
	if err != nil {
		return err
	}
	if err = checkCiphers(v.Ciphers); err != nil {
		return err
	}
	proof := v.Proof
	if proof == nil {
		proof = placeholder()
	}
	h.Ciphers, h.ComX, h.Proof = v.Ciphers, comX, proof
	return nil
}

type tagCBOR struct {
	Com    *curve.MarshallablePoint
	Powers []*curve.MarshallablePoint
	Proof  *Proof
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Tag) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(tagCBOR{
		Com:    curve.NewMarshallablePoint(t.Com),
		Powers: curve.MarshallablePoints(t.Powers),
		Proof:  t.Proof,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Tag) UnmarshalBinary(data []byte) error {
	var v tagCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	com, err := unwrapPoint(v.Com)
	if err != nil {
		return err
	}
	powers, err := curve.UnwrapPoints(v.Powers)
	if err != nil {
		return err
	}
	t.Com, t.Powers, t.Proof = com, powers, v.Proof
	return nil
}

type escrowCBOR struct {
	Enc        *elgamal.Ciphertext
	Blinded    []*elgamal.Ciphertext
	ComX       *curve.MarshallablePoint
	ComAlpha   *curve.MarshallablePoint
	ComBeta    *curve.MarshallablePoint
	ProofBlind *Proof
	ProofEval  *Proof
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e *Escrow) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(escrowCBOR{
		Enc:        e.Enc,
		Blinded:    e.Blinded,
		ComX:       curve.NewMarshallablePoint(e.ComX),
		ComAlpha:   curve.NewMarshallablePoint(e.ComAlpha),
		ComBeta:    curve.NewMarshallablePoint(e.ComBeta),
		ProofBlind: e.ProofBlind,
		ProofEval:  e.ProofEval,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Escrow) UnmarshalBinary(data []byte) (err error) {
	var v escrowCBOR
	if err = cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	var out Escrow
	if !v.Enc.Valid() {
		return errMissingField
	}
	if err = checkCiphers(v.Blinded); err != nil {
		return err
	}
	if out.ComX, err = unwrapPoint(v.ComX); err != nil {
		return err
	}
	if out.ComAlpha, err = unwrapPoint(v.ComAlpha); err != nil {
		return err
	}
	if out.ComBeta, err = unwrapPoint(v.ComBeta); err != nil {
		return err
	}
	out.Enc, out.Blinded = v.Enc, v.Blinded
	out.ProofBlind, out.ProofEval = v.ProofBlind, v.ProofEval
	*e = out
	return nil
}
