package adapter

import "unicode/utf16"

// SyntheticInput is the OS's synthetic-input primitive: inject text into
// the focused application by emitting a key-down and key-up per UTF-16
// code unit, as if typed. The concrete implementation (calling into
// SendInput on Windows or the platform equivalent) is an external
// collaborator; the engine depends only on this interface.
type SyntheticInput interface {
	KeyDown(codeUnit uint16)
	KeyUp(codeUnit uint16)
}

// InjectUTF16 encodes text to UTF-16 and emits a key-down/key-up pair per
// code unit through si, returning the count of code units injected.
func InjectUTF16(si SyntheticInput, text string) int {
	units := utf16.Encode([]rune(text))
	for _, u := range units {
		si.KeyDown(u)
		si.KeyUp(u)
	}
	return len(units)
}
