package learning

import (
	"slices"
	"sync"
	"time"

	"github.com/mystic-arcana/oracle/internal/signals"
)

type Preferences struct {
	PreferredSpreads []string `json:"preferred_spreads"`
	FavoriteCards    []string `json:"favorite_cards"`
	ReadingFrequency string   `json:"reading_frequency"`
	SpiritualFocus   []string `json:"spiritual_focus"`
}

type LearningPatterns struct {
	EngagementScore   float64           `json:"engagement_score"`
	FeedbackSentiment signals.Sentiment `json:"feedback_sentiment"`
	CardsDrawnTotal   int               `json:"cards_drawn_total"`
	LastActive        time.Time         `json:"last_active"`
}

type PersonalizationData struct {
	JournalThemes      []string `json:"journal_themes"`
	RecurringQuestions []string `json:"recurring_questions"`
	GrowthAreas        []string `json:"growth_areas"`
}

// Profile aggregates what has been learned about one user during this process lifetime.
type Profile struct {
	UserID              string              `json:"user_id"`
	Preferences         Preferences         `json:"preferences"`
	LearningPatterns    LearningPatterns    `json:"learning_patterns"`
	PersonalizationData PersonalizationData `json:"personalization_data"`
}

func newProfile(userID string, now time.Time) *Profile {
	return &Profile{
		UserID: userID,
		Preferences: Preferences{
			PreferredSpreads: []string{},
			FavoriteCards:    []string{},
			ReadingFrequency: "occasional",
			SpiritualFocus:   []string{},
		},
		LearningPatterns: LearningPatterns{
			EngagementScore:   0.5,
			FeedbackSentiment: signals.SentimentNeutral,
			LastActive:        now,
		},
		PersonalizationData: PersonalizationData{
			JournalThemes:      []string{},
			RecurringQuestions: []string{},
			GrowthAreas:        []string{},
		},
	}
}

func (p *Profile) clone() Profile {
	c := *p
	c.Preferences.PreferredSpreads = slices.Clone(p.Preferences.PreferredSpreads)
	c.Preferences.FavoriteCards = slices.Clone(p.Preferences.FavoriteCards)
	c.Preferences.SpiritualFocus = slices.Clone(p.Preferences.SpiritualFocus)
	c.PersonalizationData.JournalThemes = slices.Clone(p.PersonalizationData.JournalThemes)
	c.PersonalizationData.RecurringQuestions = slices.Clone(p.PersonalizationData.RecurringQuestions)
	c.PersonalizationData.GrowthAreas = slices.Clone(p.PersonalizationData.GrowthAreas)
	return c
}

// ProfileStore is the in-memory profile table, keyed by user id. It is not persisted.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]*Profile)}
}

// Get returns a copy of the profile for userID.
func (s *ProfileStore) Get(userID string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// Update applies fn to the profile of userID under the store lock. When create is
// true a missing profile is initialized first; otherwise a missing profile is left
// alone and Update reports false.
func (s *ProfileStore) Update(userID string, create bool, now time.Time, fn func(*Profile)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		if !create {
			return false
		}
		p = newProfile(userID, now)
		s.profiles[userID] = p
	}
	fn(p)
	return true
}

func (s *ProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}
