package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNameKnownAlgorithms(t *testing.T) {
	for _, name := range []string{"sha-256", "sha-384", "sha-512", "sha3-256", "sha3-384", "sha3-512"} {
		alg, ok := FromName(name)
		require.True(t, ok, "expected %s to be registered", name)
		assert.Equal(t, name, alg.Name())
		assert.Greater(t, alg.Size(), 0)
	}
}

func TestFromNameUnknown(t *testing.T) {
	_, ok := FromName("md5")
	assert.False(t, ok)
}

func TestAlias(t *testing.T) {
	require.NoError(t, Alias("sha256", "sha-256"))
	alg, ok := FromName("sha256")
	require.True(t, ok)
	assert.Equal(t, "sha-256", alg.Name())
}

func TestAliasUnknownCanonical(t *testing.T) {
	err := Alias("whatever", "not-a-real-alg")
	assert.Error(t, err)
}

func TestOfIsDeterministicAndSized(t *testing.T) {
	alg, ok := FromName("sha-256")
	require.True(t, ok)

	out1 := Of(alg, []byte("hello"))
	out2 := Of(alg, []byte("hello"))
	assert.Equal(t, out1, out2)

	out3 := Of(alg, []byte("different"))
	assert.NotEqual(t, out1, out3)
}

func TestSizeMatchesDigestLength(t *testing.T) {
	alg, ok := FromName("sha-512")
	require.True(t, ok)

	h := alg.New()
	h.Write([]byte("x"))
	assert.Equal(t, alg.Size(), len(h.Sum(nil)))
}
