package interpretation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomPhrases_SeedIsDeterministic(t *testing.T) {
	a := NewRandomPhrases("Sophia", 42)
	b := NewRandomPhrases("Sophia", 42)

	for range 10 {
		assert.Equal(t, a.SignaturePhrase(), b.SignaturePhrase())
		assert.Equal(t, a.Signature(), b.Signature())
	}
}

func TestRandomPhrases_DrawsFromKnownSets(t *testing.T) {
	p := NewRandomPhrases("Luna", 0)

	for range 20 {
		assert.Contains(t, signaturePhrases, p.SignaturePhrase())
		assert.Contains(t, p.Signature(), "Luna")
	}
}

func TestFixedPhrases(t *testing.T) {
	p := FixedPhrases{Phrase: "Trust the wisdom within", Sig: "Sophia"}
	assert.Equal(t, "Trust the wisdom within", p.SignaturePhrase())
	assert.Equal(t, "Sophia", p.Signature())
}
