package audio

import (
	"encoding/binary"
	"math"
)

const maxS16 = 32767

// DecodeBlock converts one callback block of raw little-endian samples
// in the given format to signed 16-bit values, appending to dst.
// Float samples are scaled by the maximum 16-bit magnitude and
// truncated toward zero; unsigned samples are recentered around the
// unsigned midpoint. Runs on the capture thread, so dst is reused by
// the caller to avoid per-block allocation growth.
func DecodeBlock(format SampleFormat, data []byte, dst []int) []int {
	switch format {
	case FormatS16:
		for i := 0; i+1 < len(data); i += 2 {
			dst = append(dst, int(int16(binary.LittleEndian.Uint16(data[i:]))))
		}
	case FormatU16:
		for i := 0; i+1 < len(data); i += 2 {
			u := binary.LittleEndian.Uint16(data[i:])
			dst = append(dst, int(int32(u)-32768))
		}
	case FormatF32:
		for i := 0; i+3 < len(data); i += 4 {
			f := math.Float32frombits(binary.LittleEndian.Uint32(data[i:]))
			s := int32(f * maxS16)
			if s > maxS16 {
				s = maxS16
			} else if s < -32768 {
				s = -32768
			}
			dst = append(dst, int(s))
		}
	}
	return dst
}

// BlockAmplitude returns the mean absolute amplitude of a block of
// converted samples, normalized to [0,1].
func BlockAmplitude(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var accum float64
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		accum += float64(s) / maxS16
	}
	avg := accum / float64(len(samples))
	if avg > 1 {
		avg = 1
	}
	return avg
}
