package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	// DefaultLambda is the bit strength targeted by the secp256k1 instantiation.
	DefaultLambda = 128

	// MinDegree is the smallest supported degree bound.
	// The public key proof is anchored on the second power ciphertext.
	MinDegree = 2
	// MaxDegree bounds the degree accepted from Setup and decoded parameters.
	// Update proofs are over (4d-1)×(4d-1) matrices.
	MaxDegree = 1 << 8

	// CRSSeedBytes is the length of the seed binding algebraic proofs to a deployment.
	CRSSeedBytes = SecBytes
)
