// Package overlay implements the passthrough skeleton shared by the mirror,
// cipher, and versioned overlay filesystems: a path mapper (Map), a
// transport-agnostic Engine that forwards every mount-point request to the
// equivalent primitive on the mapped backing path, and a directory filter
// that keeps the hidden history root out of root listings.
//
// Engine is parameterized by two small hook interfaces so the three variants
// share one implementation of the full operation table instead of
// duplicating it: ContentHook transforms file bytes on the data plane
// (identity for mirror, additive shift for cipher), and WriteHook is given
// the opportunity to act around write and unlink (no-op for mirror/cipher,
// snapshot bookkeeping for the versioned variant).
package overlay
