package crypto

const (
	// KeySize is the size of an AES-256 key in bytes.
	KeySize = 32
	// NonceSize is the size of an AES-GCM nonce in bytes.
	NonceSize = 12
	// TagSize is the size of an AES-GCM authentication tag in bytes.
	TagSize = 16

	// SaltSize is the size of a freshly generated KDF salt in bytes.
	SaltSize = 16
	// MinSaltSize is the smallest salt accepted when deriving a key from
	// stored parameters.
	MinSaltSize = 16

	// DefaultIterations is the PBKDF2 iteration count used for new vaults.
	DefaultIterations = 210_000
)

// AlgsCiphersuite is the canonical string representation of the algorithm
// suite. It is recorded in the stored key parameters so a future suite can
// be told apart from this one.
const AlgsCiphersuite = "PBKDF2-HMAC-SHA-256:AES-256-GCM"
