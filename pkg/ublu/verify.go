package ublu

import (
	"fmt"

	"github.com/taurusgroup/ublu/internal/hash"
	zkalgebraic "github.com/taurusgroup/ublu/pkg/zk/algebraic"
	zksigma "github.com/taurusgroup/ublu/pkg/zk/sigma"
	"golang.org/x/sync/errgroup"
)

// VerifyPublicKey checks the proof binding pk to its threshold commitment.
func (u *Ublu) VerifyPublicKey(pk *PublicKey) error {
	if err := validatePublicKey(pk); err != nil {
		return err
	}
	lang := keyLanguage(u.params, pk.PK, pk.ComT)
	return pk.Proof.check("public key", ProofSigma, func(p *zksigma.Proof) bool {
		return p.Verify(hash.New(u.params), lang, keyStatement(pk))
	})
}

// VerifyHint checks a genesis hint: its running total commitment must be
// Commit(0, 0), its ciphertexts must encrypt the powers of x-t for the t
// committed in pk, and it must start from pk's anchor.
//
// The anchor only fixes (x-t)² = t², so the running total is pinned to zero
// through ComX.
//
// Hints returned by Update carry a placeholder, and are rejected with
// ErrPlaceholderProof; they are checked through their tags instead.
func (u *Ublu) VerifyHint(pk *PublicKey, hint *Hint) error {
	if err := validatePublicKey(pk); err != nil {
		return err
	}
	if err := u.validateHint(hint); err != nil {
		return err
	}
	if !hint.ComX.IsIdentity() {
		return fmt.Errorf("hint: %w: running total commitment is not Commit(0, 0)", ErrInvalidProof)
	}
	if err := hint.Proof.check("hint", ProofAlgebraic, func(p *zksigma.Proof) bool {
		lang := consistencyLanguage{params: u.params, pk: pk.PK}
		return zkalgebraic.Verify(u.params.CRS, lang, consistencyStatement(pk.ComT, hint.ComX, hint.Ciphers), p)
	}); err != nil {
		return err
	}
	if !hint.Ciphers[1].Equal(pk.Anchor) {
		return fmt.Errorf("hint: %w: not anchored to the public key", ErrInvalidProof)
	}
	return nil
}

// VerifyTag checks that next was obtained from old by folding in the
// increment committed in tag.
func (u *Ublu) VerifyTag(pk *PublicKey, old, next *Hint, tag *Tag) error {
	if err := validatePublicKey(pk); err != nil {
		return err
	}
	if err := u.validateHint(old); err != nil {
		return err
	}
	if err := u.validateHint(next); err != nil {
		return err
	}
	if tag == nil || tag.Com == nil {
		return fmt.Errorf("tag: %w", ErrNil)
	}
	if len(tag.Powers) != u.params.Degree-1 {
		return fmt.Errorf("%w: tag has %d power commitments, expected %d", ErrDimension, len(tag.Powers), u.params.Degree-1)
	}
	if !tag.Com.Equal(next.ComX) {
		return fmt.Errorf("tag: %w", ErrLineage)
	}
	return tag.Proof.check("tag", ProofAlgebraic, func(p *zksigma.Proof) bool {
		lang := updateLanguage{params: u.params, pk: pk.PK, old: old.Ciphers}
		return zkalgebraic.Verify(u.params.CRS, lang, updateStatement(old, next, tag), p)
	})
}

// VerifyEscrow checks both proofs of an escrow built from hint. They are
// verified concurrently.
func (u *Ublu) VerifyEscrow(pk *PublicKey, hint *Hint, escrow *Escrow) error {
	if err := validatePublicKey(pk); err != nil {
		return err
	}
	if err := u.validateHint(hint); err != nil {
		return err
	}
	if err := u.validateEscrow(escrow); err != nil {
		return err
	}
	if !escrow.ComX.Equal(hint.ComX) {
		return fmt.Errorf("escrow: %w: running total commitment differs from the hint", ErrInvalidProof)
	}

	var g errgroup.Group
	g.Go(func() error {
		return escrow.ProofBlind.check("escrow blinding", ProofAlgebraic, func(p *zksigma.Proof) bool {
			x := blindStatement(escrow.ComAlpha, hint.Ciphers, escrow.Blinded)
			return zkalgebraic.Verify(u.params.CRS, blindLanguage{params: u.params, pk: pk.PK}, x, p)
		})
	})
	g.Go(func() error {
		return escrow.ProofEval.check("escrow evaluation", ProofAlgebraic, func(p *zksigma.Proof) bool {
			lang := evalLanguage{params: u.params, pk: pk.PK, comAlpha: escrow.ComAlpha, blinded: escrow.Blinded}
			return zkalgebraic.Verify(u.params.CRS, lang, evalStatement(u.params, escrow.ComBeta, escrow.Enc), p)
		})
	})
	return g.Wait()
}

func (u *Ublu) validateEscrow(escrow *Escrow) error {
	if escrow == nil || !escrow.Enc.Valid() || escrow.ComX == nil || escrow.ComAlpha == nil || escrow.ComBeta == nil {
		return fmt.Errorf("escrow: %w", ErrNil)
	}
	if len(escrow.Blinded) != u.params.Degree {
		return fmt.Errorf("%w: escrow has %d blinded ciphertexts, d = %d", ErrDimension, len(escrow.Blinded), u.params.Degree)
	}
	for i, c := range escrow.Blinded {
		if !c.Valid() {
			return fmt.Errorf("escrow ciphertext %d: %w", i, ErrNil)
		}
	}
	return nil
}
