package servers

import "encoding/base64"

// Embed endpoints and unlock passwords are stored reversed and
// base64-encoded so they do not show up in a casual strings dump of the
// binary. This is deterrence only, not a security boundary: the encoding
// is trivially reversible by design.

// Obfuscate encodes a plaintext string for storage in the catalog
func Obfuscate(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(reverse(s)))
}

// Deobfuscate decodes a catalog string back to plaintext. Invalid input
// decodes to the empty string.
func Deobfuscate(s string) string {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return reverse(string(raw))
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
