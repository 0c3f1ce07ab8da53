package codec_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/SergeiKhy/quicklink/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownValues(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0000000"},
		{1, "0000001"},
		{10, "000000a"},
		{15, "000000f"},
		{36, "000000A"},
		{61, "000000Z"},
		{62, "0000010"},
		{63, "0000011"},
		{3844, "0000100"},
		{12345, "00003d7"},
		{codec.MaxID, "ZZZZZZZ"},
	}

	for _, tt := range tests {
		got, err := codec.Encode(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "Encode(%d)", tt.input)
	}
}

func TestEncode_CarryPropagation(t *testing.T) {
	a, err := codec.Encode(codec.Base)
	require.NoError(t, err)
	b, err := codec.Encode(codec.Base + 1)
	require.NoError(t, err)

	assert.Equal(t, a[:codec.Width-1], b[:codec.Width-1])
	assert.Equal(t, "10", a[codec.Width-2:])
	assert.Equal(t, "11", b[codec.Width-2:])
}

func TestEncode_OutOfRange(t *testing.T) {
	for _, id := range []int64{-1, codec.MaxID + 1, 1 << 62} {
		_, err := codec.Encode(id)
		assert.ErrorIs(t, err, codec.ErrRangeExceeded, "id %d", id)
	}
}

func TestDecode_InverseOfEncode(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []int64{0, 1, 61, 62, 63, 3843, 3844, codec.MaxID - 1, codec.MaxID}
	for i := 0; i < 1000; i++ {
		ids = append(ids, rng.Int63n(codec.MaxID+1))
	}

	for _, id := range ids {
		code, err := codec.Encode(id)
		require.NoError(t, err)
		assert.Len(t, code, codec.Width)

		back, err := codec.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}
}

func TestEncode_InverseOfDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		var sb strings.Builder
		for j := 0; j < codec.Width; j++ {
			sb.WriteByte(codec.Alphabet[rng.Intn(len(codec.Alphabet))])
		}
		s := sb.String()

		id, err := codec.Decode(s)
		require.NoError(t, err)
		again, err := codec.Encode(id)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}

func TestDecode_Rejects(t *testing.T) {
	_, err := codec.Decode("abc")
	assert.ErrorIs(t, err, codec.ErrInvalidWidth)

	_, err = codec.Decode("00000000")
	assert.ErrorIs(t, err, codec.ErrInvalidWidth)

	_, err = codec.Decode("000-000")
	assert.ErrorIs(t, err, codec.ErrInvalidSymbol)
}

func TestIsCode(t *testing.T) {
	assert.True(t, codec.IsCode("0000000"))
	assert.True(t, codec.IsCode("aZ09xYz"))
	assert.False(t, codec.IsCode("mylink"))
	assert.False(t, codec.IsCode("my-link"))
	assert.False(t, codec.IsCode("abcdefgh"))
}
