package sig

// Secret is a shared MAC key. It is kept as a byte slice since the key
// length is not fixed. As it contains secret material care must be taken
// when using it; the redacting String and MarshalJSON implementations
// keep it out of logs and encoded output.
type Secret []byte

func (s Secret) String() string {
	return "[redacted]"
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[redacted]"`), nil
}
