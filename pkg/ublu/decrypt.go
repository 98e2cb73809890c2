package ublu

import (
	"github.com/taurusgroup/ublu/internal/elgamal"
	"go.uber.org/zap"
)

// Decrypt returns true if the running total of the escrow has reached the
// threshold, that is if 0 ≤ x-t < d.
//
// This is a window test, not exact equality: every total in t, t+1, …, t+d-1
// yields true, while totals below t and totals of t+d or more yield false. A
// single increment larger than d may therefore step over the window.
//
// The proofs of the escrow are not checked; callers receiving an escrow from
// another party should call VerifyEscrow first.
func (u *Ublu) Decrypt(sk *SecretKey, escrow *Escrow) bool {
	if sk == nil || sk.SK == nil || escrow == nil || !escrow.Enc.Valid() {
		return false
	}
	reached := elgamal.Decrypt(sk.SK, escrow.Enc).Equal(u.params.G)
	u.log.Debug("decrypt", zap.Bool("reached", reached))
	return reached
}
