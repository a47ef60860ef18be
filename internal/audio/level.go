package audio

import (
	"encoding/binary"
	"math"
)

// Level computes an RMS loudness estimate in [0,1] from little-endian PCM16
// samples. Used only for the UI level meter; the audio itself passes through
// untouched.
func Level(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		f := float64(sample) / math.MaxInt16
		sum += f * f
	}
	return math.Sqrt(sum / float64(n))
}
