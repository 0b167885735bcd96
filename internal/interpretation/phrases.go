package interpretation

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// PhraseProvider chooses cosmetic flavor text. The choice never affects state or data.
type PhraseProvider interface {
	SignaturePhrase() string
	Signature() string
}

var signaturePhrases = []string{
	"The cards whisper ancient truths",
	"Your soul already knows the way",
	"In the tapestry of your journey",
	"The universe conspires in your favor",
	"Trust the wisdom within",
}

var signatureFormats = []string{
	"With infinite love and cosmic blessings, %s ✨",
	"In sacred service to your highest good, %s 🌙",
	"Walking beside you on the path of wisdom, %s 💫",
	"Channeling ancient wisdom for your journey, %s 🔮",
	"With deep reverence for your spiritual path, %s ⭐",
}

// RandomPhrases picks phrases from a seeded generator.
type RandomPhrases struct {
	mu     sync.Mutex
	rng    *rand.Rand
	reader string
}

// NewRandomPhrases seeds the generator with seed, or with the clock when seed is zero.
func NewRandomPhrases(reader string, seed int64) *RandomPhrases {
	s := uint64(seed)
	if seed == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return &RandomPhrases{
		rng:    rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
		reader: reader,
	}
}

func (p *RandomPhrases) pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

func (p *RandomPhrases) SignaturePhrase() string {
	return signaturePhrases[p.pick(len(signaturePhrases))]
}

func (p *RandomPhrases) Signature() string {
	return fmt.Sprintf(signatureFormats[p.pick(len(signatureFormats))], p.reader)
}

// FixedPhrases always returns the same text.
type FixedPhrases struct {
	Phrase string
	Sig    string
}

func (p FixedPhrases) SignaturePhrase() string { return p.Phrase }
func (p FixedPhrases) Signature() string       { return p.Sig }
