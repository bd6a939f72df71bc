package classgroup

// signExtend pads buf on the left to targetLen, replicating its sign
// byte (0x00 for non-negative, 0xff for negative) rather than zeroing —
// the fixed-width half of Form.Serialize's wire format, layered on top
// of bigint.EncodeSigned's minimal two's-complement encoding.
func signExtend(buf []byte, targetLen int) []byte {
	if len(buf) >= targetLen {
		return buf
	}
	out := make([]byte, targetLen)
	offset := targetLen - len(buf)
	if len(buf) > 0 && buf[0]&0x80 != 0 {
		for i := 0; i < offset; i++ {
			out[i] = 0xff
		}
	}
	copy(out[offset:], buf)
	return out
}
