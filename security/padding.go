// Package security implements the ISO 32000 standard and public-key
// security handlers: deriving a document's file encryption key from a
// password or a recipient certificate, and decrypting the strings and
// streams belonging to one indirect object with it. It is spec.md's
// SecurityGate/SecurityHandler, realized (SPEC_FULL.md §4.11).
package security

// pad32 is the fixed padding string Algorithm 2 appends to a password
// shorter than 32 bytes (ISO 32000-1 §7.6.3.3, Table 21 note).
var pad32 = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// padPassword pads or truncates pw to exactly 32 bytes per Algorithm 2
// step (a).
func padPassword(pw []byte) []byte {
	out := make([]byte, 0, 32)
	if len(pw) > 32 {
		pw = pw[:32]
	}
	out = append(out, pw...)
	out = append(out, pad32[:32-len(out)]...)
	return out
}
