package overlay

// ContentHook transforms file bytes between the mount-point view and the
// backing store (spec §4.6). The mirror variant uses no hook (Engine treats
// a nil ContentHook as identity); the cipher variant plugs in the additive
// byte shift from internal/cipher.
type ContentHook interface {
	// EncodeForStorage transforms bytes arriving from a write(2) into the
	// form that should be persisted in the backing file.
	EncodeForStorage(data []byte) []byte

	// DecodeFromStorage transforms bytes read from the backing file into
	// the form that should be returned to the caller.
	DecodeFromStorage(data []byte) []byte
}

// WriteHook lets a variant observe and veto writes and unlinks around the
// otherwise-identical passthrough path (spec §4.4–§4.5, §4.8). Mirror and
// cipher pass a nil WriteHook (Engine treats that as a no-op); the versioned
// variant wires internal/history.Hook.
type WriteHook interface {
	// BeforeWrite runs after content transformation but before the live
	// file is touched. data is exactly what will be written at offset.
	// Returning an error aborts the write: the live file is left
	// untouched, giving write atomicity with respect to history creation
	// (spec §7).
	BeforeWrite(vpath string, data []byte, offset int64) error

	// AfterUnlink runs after the live file has already been removed
	// successfully. Its error, if any, is still returned to the caller,
	// but the live unlink has already taken effect (spec §4.8: the reaper
	// is best-effort and does not resurrect the live file on failure).
	AfterUnlink(vpath string) error
}
