package corpus

import (
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestOrderPrefixedFirstFixedHeadThenShuffled(t *testing.T) {
	names := []string{"AA2.wav", "AA1.wav", "B.wav", "C.wav", "D.wav", "E.wav"}

	for seed := uint64(1); seed <= 20; seed++ {
		got := Order(names, "AA", 2, seeded(seed))
		require.Len(t, got, 6)
		assert.Equal(t, []string{"AA1.wav", "AA2.wav", "B.wav", "C.wav"}, got[:4])
		assert.ElementsMatch(t, []string{"D.wav", "E.wav"}, got[4:])
	}
}

func TestOrderShufflesAllOthersWhenAtMostFixedHead(t *testing.T) {
	names := []string{"AA1.wav", "X.wav", "Y.wav"}

	seen := map[string]bool{}
	for seed := uint64(1); seed <= 64; seed++ {
		got := Order(names, "AA", 2, seeded(seed))
		assert.Equal(t, "AA1.wav", got[0])
		assert.ElementsMatch(t, []string{"X.wav", "Y.wav"}, got[1:])
		seen[strings.Join(got[1:], ",")] = true
	}
	assert.Len(t, seen, 2, "both orders of the two non-prefixed files should occur")
}

func TestOrderIsAPermutationWithSortedPrefixedBlock(t *testing.T) {
	names := []string{"q.wav", "AA9.wav", "r.wav", "AA3.wav", "s.wav", "AA10.wav", "t.wav", "u.wav"}
	got := Order(names, "AA", 2, seeded(7))

	assert.ElementsMatch(t, names, got)
	prefixed := got[:3]
	assert.True(t, sort.StringsAreSorted(prefixed))
	for _, name := range got[3:] {
		assert.False(t, strings.HasPrefix(name, "AA"))
	}
	assert.Equal(t, []string{"q.wav", "r.wav"}, got[3:5])
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	names := []string{"b.wav", "a.wav", "c.wav", "d.wav"}
	before := append([]string(nil), names...)
	Order(names, "AA", 2, seeded(3))
	assert.Equal(t, before, names)
}

func TestOrderEmpty(t *testing.T) {
	assert.Empty(t, Order(nil, "AA", 2, seeded(1)))
}

func TestPlaylistAccessors(t *testing.T) {
	p := NewPlaylist("/corpus", []string{"a.wav", "b.wav"})
	assert.Equal(t, 2, p.Len())

	name, ok := p.At(1)
	assert.True(t, ok)
	assert.Equal(t, "b.wav", name)

	_, ok = p.At(2)
	assert.False(t, ok)

	files := p.Files()
	files[0] = "mutated"
	first, _ := p.At(0)
	assert.Equal(t, "a.wav", first)

	var empty *Playlist
	assert.Zero(t, empty.Len())
}
