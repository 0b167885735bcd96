// Package signals derives themes, sentiment, response style and engagement
// from free text and interaction metrics. All functions are pure.
package signals

import (
	"fmt"
	"strings"
)

// Themes is the fixed theme vocabulary. ExtractThemes returns matches in this order.
var Themes = []string{
	"transformation",
	"growth",
	"love",
	"spirituality",
	"wisdom",
	"change",
	"journey",
	"balance",
	"intuition",
	"strength",
	"clarity",
	"healing",
}

var (
	emotionalWords  = []string{"feel", "heart", "soul", "love", "fear", "hope", "dream"}
	analyticalWords = []string{"think", "analyze", "consider", "logic", "reason", "because"}
	positiveWords   = []string{"good", "great", "love", "happy", "excited", "wonderful", "amazing"}
	negativeWords   = []string{"bad", "hate", "sad", "worried", "terrible", "awful", "frustrated"}
	insightMarkers  = []string{"i ", "my ", "me "}
)

type ResponseStyle string

const (
	StyleConcise    ResponseStyle = "concise"
	StyleEmotional  ResponseStyle = "emotional"
	StyleAnalytical ResponseStyle = "analytical"
	StyleDetailed   ResponseStyle = "detailed"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// CardMetrics are the UI interaction measurements reported for a revealed card.
type CardMetrics struct {
	HoverTimeMs        int  `json:"hover_time_ms,omitempty"`
	Clicked            bool `json:"clicked,omitempty"`
	InterpretationRead bool `json:"interpretation_read,omitempty"`
}

// ExtractThemes returns every vocabulary theme found as a case-insensitive substring of text.
func ExtractThemes(text string) []string {
	lower := strings.ToLower(text)
	themes := make([]string, 0)
	for _, theme := range Themes {
		if strings.Contains(lower, theme) {
			themes = append(themes, theme)
		}
	}
	return themes
}

// AnalyzeResponseStyle classifies a user response. Precedence: concise, emotional, analytical, detailed.
func AnalyzeResponseStyle(text string) ResponseStyle {
	if len(text) < 50 {
		return StyleConcise
	}
	lower := strings.ToLower(text)
	if containsAny(lower, emotionalWords) {
		return StyleEmotional
	}
	if containsAny(lower, analyticalWords) {
		return StyleAnalytical
	}
	return StyleDetailed
}

// AnalyzeResponseSentiment compares positive and negative vocabulary hits. A tie is neutral.
func AnalyzeResponseSentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	pos := countAny(lower, positiveWords)
	neg := countAny(lower, negativeWords)
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// AssessInsightValue reports whether a response is long and personal enough to be worth remembering.
func AssessInsightValue(text string) bool {
	return len(text) > 100 && containsAny(strings.ToLower(text), insightMarkers)
}

// CardEngagementLevel scores card interaction: click 2, read 3, hover over two seconds 1.
func CardEngagementLevel(m CardMetrics) EngagementLevel {
	score := 0
	if m.Clicked {
		score += 2
	}
	if m.InterpretationRead {
		score += 3
	}
	if m.HoverTimeMs > 2000 {
		score++
	}
	switch {
	case score >= 4:
		return EngagementHigh
	case score >= 2:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

// CardCombinations pairs each card with its successor, e.g. "The Tower+The Star".
func CardCombinations(names []string) []string {
	combos := make([]string, 0)
	for i := 0; i+1 < len(names); i++ {
		combos = append(combos, fmt.Sprintf("%s+%s", names[i], names[i+1]))
	}
	return combos
}

func containsAny(s string, words []string) bool {
	return countAny(s, words) > 0
}

func countAny(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}
