package pcm

import (
	"encoding/binary"
	"math"
)

// Float32ToL16 converts samples in [-1, 1] to little-endian signed 16-bit
// PCM. Out of range samples are clipped.
func Float32ToL16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(floatToInt16(s)))
	}
	return out
}

// L16ToFloat32 converts little-endian signed 16-bit PCM to float32 samples.
// A trailing odd byte is ignored.
func L16ToFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(v) / 32768
	}
	return out
}

func floatToInt16(s float32) int16 {
	if math.IsNaN(float64(s)) {
		return 0
	}
	v := math.Round(float64(s) * 32767)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
