package protocol

// Checksum returns the sum of all bytes modulo 256.
// The checksum of an empty slice is 0.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// AppendChecksum returns a new slice holding data followed by its checksum.
// The input slice is never modified or aliased.
func AppendChecksum(data []byte) []byte {
	out := make([]byte, len(data)+1)
	copy(out, data)
	out[len(data)] = Checksum(data)
	return out
}

// VerifyChecksum reports whether the last byte of frame is the checksum of
// the bytes before it. Empty input never verifies.
func VerifyChecksum(frame []byte) bool {
	if len(frame) == 0 {
		return false
	}
	last := len(frame) - 1
	return frame[last] == Checksum(frame[:last])
}
