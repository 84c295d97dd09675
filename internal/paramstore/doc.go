// Package paramstore persists the serialized vault key parameters under a
// single well-known entry. Implementations back the entry with the OS
// keyring, a file, or process memory (for tests).
//
// Every implementation's Set is an atomic replace: a reader observes either
// the previous value or the new one, never a torn write.
package paramstore
