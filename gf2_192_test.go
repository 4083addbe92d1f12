package sigma

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomGF(t *testing.T) GF2_192 {
	t.Helper()
	buf := make([]byte, 24)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return GF2_192FromBytes(buf)
}

func TestGF2_192Reduction(t *testing.T) {
	// x^191 * x wraps around to x^7 + x^2 + x + 1
	top := make([]byte, 24)
	top[23] = 0x80
	got := GF2_192FromBytes(top).Mul(GF2_192FromByte(2))

	expected := make([]byte, 24)
	expected[0] = 0x87
	require.Equal(t, expected, got.Bytes())
}

func TestGF2_192FieldLaws(t *testing.T) {
	one := GF2_192FromByte(1)
	zero := GF2_192{}

	for i := 0; i < 20; i++ {
		a, b, c := randomGF(t), randomGF(t), randomGF(t)

		require.True(t, a.Add(a).IsZero(), "a + a = 0")
		require.True(t, a.Mul(one).Equal(a), "a * 1 = a")
		require.True(t, a.Mul(zero).IsZero(), "a * 0 = 0")
		require.True(t, a.Mul(b).Equal(b.Mul(a)), "commutative")
		require.True(t, a.Mul(b).Mul(c).Equal(a.Mul(b.Mul(c))), "associative")
		require.True(t, a.Mul(b.Add(c)).Equal(a.Mul(b).Add(a.Mul(c))), "distributive")

		if !a.IsZero() {
			require.True(t, a.Mul(a.Invert()).Equal(one), "a * a^-1 = 1")
		}
	}
}

func TestGF2_192Encoding(t *testing.T) {
	a := randomGF(t)
	require.True(t, GF2_192FromBytes(a.Bytes()).Equal(a))
	require.Len(t, a.Bytes(), 24)

	require.True(t, GF2_192FromBytes([]byte{5}).Equal(GF2_192FromByte(5)))
	require.True(t, GF2_192{}.Invert().IsZero())
}

func TestChallengeGFConversion(t *testing.T) {
	c, err := randomChallenge(nil)
	require.NoError(t, err)
	require.Equal(t, c, ChallengeFromGF(c.GF()))

	d, err := randomChallenge(nil)
	require.NoError(t, err)
	require.Equal(t, c.Xor(d), ChallengeFromGF(c.GF().Add(d.GF())))
}
