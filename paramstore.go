package vaultkeep

import "github.com/vaultkeep/client-go/internal/paramstore"

// ParamStore persists the vault key parameters (salt, iteration count and
// wrapped data key) outside the record database. The zero-knowledge property
// depends only on what the parameters contain, not on where they live, so
// any durable store will do.
type ParamStore = paramstore.Store

// NewFileParamStore stores key parameters in a single file at path,
// created with owner-only permissions. Useful where no OS keyring is
// available, such as headless hosts and containers.
func NewFileParamStore(path string) ParamStore {
	return paramstore.NewFileStore(path)
}

// NewKeyringParamStore stores key parameters in the OS keyring under the
// given service name. This is what Open uses by default.
func NewKeyringParamStore(service string) ParamStore {
	return paramstore.NewKeyringStore(service)
}

// NewMemoryParamStore keeps key parameters in memory only. Intended for
// tests; a vault stored this way cannot be unlocked after a restart.
func NewMemoryParamStore() ParamStore {
	return paramstore.NewMemoryStore()
}
