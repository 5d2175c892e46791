// Package iq decodes interleaved signed 8-bit IQ bytes, the wire
// format every tuner-type front end in this engine's scope delivers,
// into complex128 baseband samples.
package iq

// Decode converts 2*n signed-byte pairs in buf into n complex samples:
// sample k = buf[2k] + j*buf[2k+1]. Any trailing odd byte is ignored.
func Decode(buf []byte) []complex128 {
	n := len(buf) / 2
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		i := int8(buf[2*k])
		q := int8(buf[2*k+1])
		out[k] = complex(float64(i), float64(q))
	}
	return out
}

// DecodeInto decodes into a caller-provided slice, truncating to
// min(len(dst), len(buf)/2), and returns the number of samples
// written. Used by hot paths that want to reuse an allocation across
// acquisitions.
func DecodeInto(buf []byte, dst []complex128) int {
	n := len(buf) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for k := 0; k < n; k++ {
		i := int8(buf[2*k])
		q := int8(buf[2*k+1])
		dst[k] = complex(float64(i), float64(q))
	}
	return n
}
