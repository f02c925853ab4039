package cipher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewShiftNormalizesKeyIntoByteRange(t *testing.T) {
	require.Equal(t, 3, NewShift(3).Key)
	require.Equal(t, 0, NewShift(256).Key)
	require.Equal(t, 1, NewShift(257).Key)
	require.Equal(t, 253, NewShift(-3).Key)
	require.Equal(t, 0, NewShift(-256).Key)
}

func TestEncodeForStorageShiftsEachByteForward(t *testing.T) {
	s := NewShift(3)
	require.Equal(t, []byte{3, 4, 5}, s.EncodeForStorage([]byte{0, 1, 2}))
}

func TestEncodeForStorageWrapsAroundByteBoundary(t *testing.T) {
	s := NewShift(3)
	require.Equal(t, []byte{0, 1, 2}, s.EncodeForStorage([]byte{253, 254, 255}))
}

func TestDecodeFromStorageIsInverseOfEncodeForStorage(t *testing.T) {
	original := []byte("hello, overlay filesystem")
	for _, key := range []int{0, 1, 3, 128, 255, 256, 300, -1, -3, -256, -300} {
		s := NewShift(key)
		encoded := s.EncodeForStorage(original)
		decoded := s.DecodeFromStorage(encoded)
		require.Equal(t, original, decoded, "key=%d", key)
	}
}

func TestDecodeFromStorageWrapsAroundByteBoundaryForNegativeKey(t *testing.T) {
	s := NewShift(-3)
	require.Equal(t, []byte{253, 254, 255}, s.EncodeForStorage([]byte{0, 1, 2}))
	require.Equal(t, []byte{0, 1, 2}, s.DecodeFromStorage([]byte{253, 254, 255}))
}

func TestEncodeForStorageDoesNotMutateInput(t *testing.T) {
	s := NewShift(5)
	input := []byte{1, 2, 3}
	_ = s.EncodeForStorage(input)
	require.Equal(t, []byte{1, 2, 3}, input)
}
