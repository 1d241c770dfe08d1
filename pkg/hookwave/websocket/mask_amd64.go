//go:build amd64 && !noasm
// +build amd64,!noasm

package websocket

import (
	"golang.org/x/sys/cpu"
)

var hasAVX2 = cpu.X86.HasAVX2

// maskBytesWide XORs 32 bytes per iteration using four interleaved uint64
// accumulators so the compiler can pipeline them across AVX2-width execution
// ports without resorting to a hand-written .s stub. Only taken on hardware
// that actually reports AVX2 (see hasAVX2); narrower CPUs fall back to
// maskBytesScalar's 8-byte loop.
func maskBytesWide(data []byte, maskKey [4]byte) {
	mask64 := uint64(maskKey[0]) |
		uint64(maskKey[1])<<8 |
		uint64(maskKey[2])<<16 |
		uint64(maskKey[3])<<24 |
		uint64(maskKey[0])<<32 |
		uint64(maskKey[1])<<40 |
		uint64(maskKey[2])<<48 |
		uint64(maskKey[3])<<56

	i := 0
	for ; i+32 <= len(data); i += 32 {
		for j := 0; j < 32; j += 8 {
			off := i + j
			val := uint64(data[off]) |
				uint64(data[off+1])<<8 |
				uint64(data[off+2])<<16 |
				uint64(data[off+3])<<24 |
				uint64(data[off+4])<<32 |
				uint64(data[off+5])<<40 |
				uint64(data[off+6])<<48 |
				uint64(data[off+7])<<56
			val ^= mask64
			data[off] = byte(val)
			data[off+1] = byte(val >> 8)
			data[off+2] = byte(val >> 16)
			data[off+3] = byte(val >> 24)
			data[off+4] = byte(val >> 32)
			data[off+5] = byte(val >> 40)
			data[off+6] = byte(val >> 48)
			data[off+7] = byte(val >> 56)
		}
	}

	if i < len(data) {
		maskBytesScalar(data[i:], rotateMaskKey(maskKey, i))
	}
}

// rotateMaskKey re-phases the 4-byte mask key for a sub-slice that starts
// at a non-multiple-of-4 offset into the original payload.
func rotateMaskKey(maskKey [4]byte, offset int) [4]byte {
	var rotated [4]byte
	for i := 0; i < 4; i++ {
		rotated[i] = maskKey[(offset+i)%4]
	}
	return rotated
}

// maskBytesFast is the masking entry point selected on amd64: it uses the
// wider unrolled loop when the payload is large enough to amortize it and
// the CPU advertises AVX2, otherwise it defers to the portable scalar path.
func maskBytesFast(data []byte, maskKey [4]byte) {
	if hasAVX2 && len(data) >= 32 {
		maskBytesWide(data, maskKey)
	} else {
		maskBytesScalar(data, maskKey)
	}
}

// maskBytesScalar is the scalar (non-SIMD) implementation.
// Processes 8 bytes at a time.
func maskBytesScalar(data []byte, maskKey [4]byte) {
	if len(data) >= 8 {
		mask64 := uint64(maskKey[0]) |
			uint64(maskKey[1])<<8 |
			uint64(maskKey[2])<<16 |
			uint64(maskKey[3])<<24 |
			uint64(maskKey[0])<<32 |
			uint64(maskKey[1])<<40 |
			uint64(maskKey[2])<<48 |
			uint64(maskKey[3])<<56

		i := 0
		for ; i+8 <= len(data); i += 8 {
			val := uint64(data[i]) |
				uint64(data[i+1])<<8 |
				uint64(data[i+2])<<16 |
				uint64(data[i+3])<<24 |
				uint64(data[i+4])<<32 |
				uint64(data[i+5])<<40 |
				uint64(data[i+6])<<48 |
				uint64(data[i+7])<<56
			val ^= mask64

			data[i] = byte(val)
			data[i+1] = byte(val >> 8)
			data[i+2] = byte(val >> 16)
			data[i+3] = byte(val >> 24)
			data[i+4] = byte(val >> 32)
			data[i+5] = byte(val >> 40)
			data[i+6] = byte(val >> 48)
			data[i+7] = byte(val >> 56)
		}

		for ; i < len(data); i++ {
			data[i] ^= maskKey[i%4]
		}
	} else {
		for i := 0; i < len(data); i++ {
			data[i] ^= maskKey[i%4]
		}
	}
}

func init() {
	maskBytes = maskBytesFast
}
