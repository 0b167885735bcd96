// Package learning records every reading interaction, keeps per-user profiles and
// computes the engagement level that unlocks deeper readings.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mystic-arcana/oracle/internal/memory"
	inats "github.com/mystic-arcana/oracle/internal/nats"
	"github.com/mystic-arcana/oracle/internal/signals"
	"github.com/mystic-arcana/oracle/internal/tarot"
)

const patternWindow = 30 * 24 * time.Hour

// TurnRecord describes one step of a reading conversation.
type TurnRecord struct {
	UserID            string               `json:"user_id"`
	SessionID         string               `json:"session_id" validate:"required"`
	ConversationState string               `json:"conversation_state" validate:"required"`
	TurnNumber        int                  `json:"turn_number" validate:"gte=0"`
	Dialogue          string               `json:"dialogue"`
	UserResponse      string               `json:"user_response,omitempty"`
	RevealedCard      *memory.RevealedCard `json:"revealed_card,omitempty"`
}

// ResponseRecord describes free or option-based input given by the user.
type ResponseRecord struct {
	UserID            string   `json:"user_id"`
	SessionID         string   `json:"session_id" validate:"required"`
	Text              string   `json:"response_text" validate:"required"`
	OptionsPresented  []string `json:"options_presented"`
	ResponseTimeMs    int      `json:"response_time_ms,omitempty" validate:"gte=0"`
	ConversationState string   `json:"conversation_state"`
}

// CardRevealRecord describes how the user engaged with a revealed card.
type CardRevealRecord struct {
	UserID    string              `json:"user_id"`
	SessionID string              `json:"session_id" validate:"required"`
	CardName  string              `json:"card_name" validate:"required"`
	CardIndex int                 `json:"card_index" validate:"gte=0"`
	Metrics   signals.CardMetrics `json:"engagement_metrics"`
}

// QuestionRecord is an answer to a question put to the user.
type QuestionRecord struct {
	UserID       string `json:"user_id"`
	SessionID    string `json:"session_id" validate:"required"`
	Question     string `json:"question" validate:"required"`
	Response     string `json:"response" validate:"required"`
	QuestionType string `json:"question_type" validate:"required,oneof=clarification preference feedback spiritual_focus"`
	RelatedCard  string `json:"related_card,omitempty"`
}

// InteractiveRecord is an answer given during a card's interactive question step.
type InteractiveRecord struct {
	UserID    string
	SessionID string
	CardIndex int
	Card      string
	Question  string
	Answer    string
}

// Recommendations summarize a profile for the synthesizer and the UI.
type Recommendations struct {
	RecommendedSpreads []string                `json:"recommended_spreads"`
	CardPreferences    []string                `json:"card_preferences"`
	PersonalizedThemes []string                `json:"personalized_themes"`
	EngagementLevel    signals.EngagementLevel `json:"engagement_level"`
}

// LevelResult reports the outcome of a level check.
type LevelResult struct {
	LevelIncreased bool   `json:"level_increased"`
	NewLevel       int    `json:"new_level"`
	PreviousLevel  int    `json:"previous_level"`
	ThresholdMet   string `json:"threshold_met,omitempty"`
}

// Analysis is a detailed view of a user's progress toward the next level.
type Analysis struct {
	CurrentLevel   int                `json:"current_level"`
	LevelName      string             `json:"level_name"`
	Metrics        *EngagementMetrics `json:"metrics,omitempty"`
	NextThreshold  *Threshold         `json:"next_threshold,omitempty"`
	ProgressToNext float64            `json:"progress_to_next"`
}

type Stats struct {
	TotalUsers        int        `json:"total_users"`
	TotalEvents       int        `json:"total_events"`
	MemoryNotesLogged int64      `json:"memory_notes_logged"`
	LastActivity      *time.Time `json:"last_activity"`
	InteractionEvents int        `json:"interaction_events"`
	ConversationTurns int        `json:"conversation_turns"`
}

type EngagementPattern struct {
	AverageSatisfaction float64 `json:"average_satisfaction"`
	SessionCount        int     `json:"session_count"`
	FeedbackRate        float64 `json:"feedback_rate"`
}

// Patterns are computed from a user's events of the last thirty days.
type Patterns struct {
	SpreadPreferences map[string]int    `json:"spread_preferences"`
	CardAffinities    map[string]int    `json:"card_affinities"`
	Engagement        EngagementPattern `json:"engagement"`
}

type Engine struct {
	queue    *Queue
	profiles *ProfileStore
	memory   memory.Client
	levels   LevelStore
	sink     *Sink
	reader   string
	now      func() time.Time
}

type Option func(*Engine)

// WithPublisher broadcasts learning events through p in addition to the memory service.
func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.sink.publisher = p }
}

func WithReader(name string) Option {
	return func(e *Engine) { e.reader = name }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithProfileStore(s *ProfileStore) Option {
	return func(e *Engine) { e.profiles = s }
}

func NewEngine(mem memory.Client, levels LevelStore, opts ...Option) *Engine {
	e := &Engine{
		queue:    NewQueue(),
		profiles: NewProfileStore(),
		memory:   mem,
		levels:   levels,
		sink:     NewSink(mem, nil),
		reader:   "Sophia",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LogInteraction records a completed reading, writes its memory note and updates the profile.
func (e *Engine) LogInteraction(ctx context.Context, userID string, reading *tarot.Reading, feedback *memory.Feedback) {
	if userID == "" || reading == nil {
		return
	}
	now := e.now()
	cards := tarot.CardNames(reading.Context.Cards)
	spread := string(reading.Context.SpreadType)

	ev := Event{
		Type:      EventReadingCompleted,
		UserID:    userID,
		SessionID: reading.Context.SessionID,
		Data: ReadingData{
			ReadingID:           reading.ID,
			Cards:               cards,
			SpreadType:          spread,
			NarrativeLength:     len(reading.Narrative),
			InterpretationCount: len(reading.CardInterpretations),
			Feedback:            feedback,
		},
		Timestamp: now,
		Context: EventContext{
			SpreadType:            spread,
			CardsDrawn:            cards,
			InterpretationQuality: ReadingQuality(reading),
		},
	}
	if feedback != nil {
		ev.Context.UserSatisfaction = feedback.Rating
	}
	e.queue.Append(ev)

	note, err := readingNote(e.reader, userID, reading, feedback, now)
	if err != nil {
		slog.Warn("learning: building reading note failed", "user_id", userID, "error", err)
		e.sink.Deliver(ctx, ev, nil)
	} else {
		e.sink.Deliver(ctx, ev, &note)
	}

	e.UpdateProfile(userID, ev)
	slog.Debug("learning: logged interaction", "user_id", userID, "reading_id", reading.ID)
}

// LogConversationTurn records one dialogue step.
func (e *Engine) LogConversationTurn(ctx context.Context, rec TurnRecord) {
	if rec.UserID == "" {
		return
	}
	data := TurnData{
		ConversationState: rec.ConversationState,
		TurnNumber:        rec.TurnNumber,
		Dialogue:          rec.Dialogue,
		UserResponse:      rec.UserResponse,
		RevealedCard:      rec.RevealedCard,
		DialogueLength:    len(rec.Dialogue),
		HasUserResponse:   rec.UserResponse != "",
	}
	var drawn []string
	if rec.RevealedCard != nil {
		drawn = []string{rec.RevealedCard.Card}
	}
	ev := Event{
		Type:      EventConversationTurn,
		UserID:    rec.UserID,
		SessionID: rec.SessionID,
		Data:      data,
		Timestamp: e.now(),
		Context: EventContext{
			SpreadType:        "conversation_active",
			CardsDrawn:        drawn,
			ConversationState: rec.ConversationState,
			TurnNumber:        rec.TurnNumber,
		},
	}
	e.queue.Append(ev)

	note, err := conversationNote(e.reader, ev, data)
	if err != nil {
		slog.Warn("learning: building conversation note failed", "user_id", rec.UserID, "error", err)
		e.sink.Deliver(ctx, ev, nil)
		return
	}
	e.sink.Deliver(ctx, ev, &note)
}

// LogUserResponse records the style of a user's response and adjusts the growth areas of an existing profile.
func (e *Engine) LogUserResponse(ctx context.Context, rec ResponseRecord) {
	if rec.UserID == "" {
		return
	}
	ev := Event{
		Type:      EventUserResponse,
		UserID:    rec.UserID,
		SessionID: rec.SessionID,
		Data: ResponseData{
			ResponseText:        rec.Text,
			ResponseLength:      len(rec.Text),
			OptionsCount:        len(rec.OptionsPresented),
			ResponseTimeMs:      rec.ResponseTimeMs,
			ResponseStyle:       signals.AnalyzeResponseStyle(rec.Text),
			SelectedFromOptions: slices.Contains(rec.OptionsPresented, rec.Text),
		},
		Timestamp: e.now(),
		Context: EventContext{
			SpreadType:        "user_interaction",
			CardsDrawn:        []string{},
			ConversationState: rec.ConversationState,
		},
	}
	e.queue.Append(ev)
	e.sink.Deliver(ctx, ev, nil)
	e.UpdateProfile(rec.UserID, ev)
}

// LogCardReveal records how the user engaged with a revealed card.
func (e *Engine) LogCardReveal(ctx context.Context, rec CardRevealRecord) {
	if rec.UserID == "" {
		return
	}
	ev := Event{
		Type:      EventCardRevealed,
		UserID:    rec.UserID,
		SessionID: rec.SessionID,
		Data: CardRevealData{
			CardName:        rec.CardName,
			CardIndex:       rec.CardIndex,
			EngagementLevel: signals.CardEngagementLevel(rec.Metrics),
			Metrics:         rec.Metrics,
		},
		Timestamp: e.now(),
		Context: EventContext{
			SpreadType: "card_interaction",
			CardsDrawn: []string{rec.CardName},
		},
	}
	e.queue.Append(ev)
	e.sink.Deliver(ctx, ev, nil)
}

// LogQuestionResponse records an answered question. A memory note is written only
// when the answer carries insight value.
func (e *Engine) LogQuestionResponse(ctx context.Context, rec QuestionRecord) {
	if rec.UserID == "" {
		return
	}
	data := QuestionData{
		Question:        rec.Question,
		Response:        rec.Response,
		QuestionType:    rec.QuestionType,
		RelatedCard:     rec.RelatedCard,
		Sentiment:       signals.AnalyzeResponseSentiment(rec.Response),
		ProvidesInsight: signals.AssessInsightValue(rec.Response),
	}
	drawn := []string{}
	if rec.RelatedCard != "" {
		drawn = append(drawn, rec.RelatedCard)
	}
	ev := Event{
		Type:      EventQuestionAnswered,
		UserID:    rec.UserID,
		SessionID: rec.SessionID,
		Data:      data,
		Timestamp: e.now(),
		Context: EventContext{
			SpreadType: "question_interaction",
			CardsDrawn: drawn,
		},
	}
	e.queue.Append(ev)

	if !data.ProvidesInsight {
		e.sink.Deliver(ctx, ev, nil)
		return
	}
	note, err := questionNote(ev, data)
	if err != nil {
		slog.Warn("learning: building question note failed", "user_id", rec.UserID, "error", err)
		e.sink.Deliver(ctx, ev, nil)
		return
	}
	e.sink.Deliver(ctx, ev, &note)
}

// LogInteractiveResponse records the answer given to a card's interactive question.
// Such answers count as fully satisfied feedback on the card.
func (e *Engine) LogInteractiveResponse(ctx context.Context, rec InteractiveRecord) {
	if rec.UserID == "" {
		return
	}
	data := InteractiveData{
		CardIndex: rec.CardIndex,
		Card:      rec.Card,
		Question:  rec.Question,
		Answer:    rec.Answer,
		Feedback: &memory.Feedback{
			Rating:       5,
			HelpfulCards: []string{rec.Card},
			SessionNotes: fmt.Sprintf("Interactive response: %s for card %s", rec.Answer, rec.Card),
		},
	}
	ev := Event{
		Type:      EventInteractiveResponse,
		UserID:    rec.UserID,
		SessionID: rec.SessionID,
		Data:      data,
		Timestamp: e.now(),
		Context: EventContext{
			SpreadType:       "interactive_question",
			CardsDrawn:       []string{rec.Card},
			UserSatisfaction: data.Feedback.Rating,
		},
	}
	e.queue.Append(ev)

	note, err := interactiveNote(e.reader, ev, data)
	if err != nil {
		slog.Warn("learning: building interactive note failed", "user_id", rec.UserID, "error", err)
		e.sink.Deliver(ctx, ev, nil)
	} else {
		e.sink.Deliver(ctx, ev, &note)
	}
	e.UpdateProfile(rec.UserID, ev)
}

// UpdateProfile folds ev into the user's profile.
func (e *Engine) UpdateProfile(userID string, ev Event) {
	switch ev.Type {
	case EventReadingCompleted:
		data, ok := ev.Data.(ReadingData)
		if !ok {
			return
		}
		e.profiles.Update(userID, true, ev.Timestamp, func(p *Profile) {
			p.Preferences.PreferredSpreads = appendUnique(p.Preferences.PreferredSpreads, data.SpreadType)
			if data.Feedback != nil {
				p.Preferences.FavoriteCards = appendUnique(p.Preferences.FavoriteCards, data.Feedback.HelpfulCards...)
			}
			p.LearningPatterns.CardsDrawnTotal += len(data.Cards)
			p.LearningPatterns.LastActive = ev.Timestamp
			applySatisfaction(p, ev.Context.UserSatisfaction)
		})
	case EventInteractiveResponse:
		data, ok := ev.Data.(InteractiveData)
		if !ok {
			return
		}
		e.profiles.Update(userID, true, ev.Timestamp, func(p *Profile) {
			if data.Feedback != nil {
				p.Preferences.FavoriteCards = appendUnique(p.Preferences.FavoriteCards, data.Feedback.HelpfulCards...)
			}
			p.LearningPatterns.LastActive = ev.Timestamp
			applySatisfaction(p, ev.Context.UserSatisfaction)
		})
	case EventUserResponse:
		data, ok := ev.Data.(ResponseData)
		if !ok {
			return
		}
		e.profiles.Update(userID, false, ev.Timestamp, func(p *Profile) {
			switch data.ResponseStyle {
			case signals.StyleEmotional:
				p.PersonalizationData.GrowthAreas = appendUnique(p.PersonalizationData.GrowthAreas, "emotional_guidance")
			case signals.StyleAnalytical:
				p.PersonalizationData.GrowthAreas = appendUnique(p.PersonalizationData.GrowthAreas, "practical_wisdom")
			}
		})
	}
}

// applySatisfaction blends a 1-5 rating into the engagement score. A zero rating is ignored.
func applySatisfaction(p *Profile, rating int) {
	if rating <= 0 {
		return
	}
	normalized := float64(rating) / 5.0
	p.LearningPatterns.EngagementScore = p.LearningPatterns.EngagementScore*0.8 + normalized*0.2
	switch {
	case rating >= 4:
		p.LearningPatterns.FeedbackSentiment = signals.SentimentPositive
	case rating <= 2:
		p.LearningPatterns.FeedbackSentiment = signals.SentimentNegative
	}
}

// Profile returns a copy of the profile for userID.
func (e *Engine) Profile(userID string) (Profile, bool) {
	return e.profiles.Get(userID)
}

func (e *Engine) GetPersonalizationRecommendations(userID string) Recommendations {
	p, ok := e.profiles.Get(userID)
	if !ok {
		return Recommendations{
			RecommendedSpreads: []string{string(tarot.SpreadThreeCard)},
			CardPreferences:    []string{},
			PersonalizedThemes: []string{},
			EngagementLevel:    signals.EngagementMedium,
		}
	}

	level := signals.EngagementLow
	switch score := p.LearningPatterns.EngagementScore; {
	case score > 0.7:
		level = signals.EngagementHigh
	case score > 0.4:
		level = signals.EngagementMedium
	}

	return Recommendations{
		RecommendedSpreads: firstN(p.Preferences.PreferredSpreads, 3),
		CardPreferences:    firstN(p.Preferences.FavoriteCards, 5),
		PersonalizedThemes: p.PersonalizationData.GrowthAreas,
		EngagementLevel:    level,
	}
}

// RetrieveUserMemories returns the user's notes, or an empty list when the memory service is unavailable.
func (e *Engine) RetrieveUserMemories(ctx context.Context, userID string) []memory.Note {
	return memory.Retrieve(ctx, e.memory, userID)
}

// CheckAndIncrementLevel raises the persisted level when the user's history qualifies
// for a higher one. Levels never decrease and the method never fails.
func (e *Engine) CheckAndIncrementLevel(ctx context.Context, userID string) LevelResult {
	if userID == "" {
		return LevelResult{NewLevel: MinLevel, PreviousLevel: MinLevel}
	}

	current, err := e.levels.Get(ctx, userID)
	if err != nil {
		slog.Warn("learning: reading engagement level failed", "user_id", userID, "error", err)
		current = MinLevel
	}

	m := AnalyzeEngagementMetrics(e.RetrieveUserMemories(ctx, userID))
	newLevel := max(QualifiedLevel(m), current)

	if newLevel <= current {
		return LevelResult{NewLevel: current, PreviousLevel: current}
	}

	if err := e.levels.Set(ctx, userID, newLevel); err != nil {
		slog.Warn("learning: persisting engagement level failed", "user_id", userID, "level", newLevel, "error", err)
		return LevelResult{NewLevel: current, PreviousLevel: current}
	}

	name := LevelName(newLevel)
	slog.Info("learning: level increased", "user_id", userID, "previous_level", current, "new_level", newLevel, "threshold", name)
	e.sink.DeliverLevelChange(ctx, inats.LevelChangeEvent{
		UserID:        userID,
		PreviousLevel: current,
		NewLevel:      newLevel,
		ThresholdName: name,
		Timestamp:     e.now(),
	})

	return LevelResult{
		LevelIncreased: true,
		NewLevel:       newLevel,
		PreviousLevel:  current,
		ThresholdMet:   name,
	}
}

func (e *Engine) EngagementAnalysis(ctx context.Context, userID string) Analysis {
	if userID == "" {
		return Analysis{CurrentLevel: MinLevel, LevelName: "Guest User"}
	}

	current, err := e.levels.Get(ctx, userID)
	if err != nil {
		slog.Warn("learning: reading engagement level failed", "user_id", userID, "error", err)
		return Analysis{CurrentLevel: MinLevel, LevelName: LevelName(MinLevel)}
	}

	m := AnalyzeEngagementMetrics(e.RetrieveUserMemories(ctx, userID))
	a := Analysis{
		CurrentLevel: current,
		LevelName:    LevelName(current),
		Metrics:      &m,
	}

	for _, t := range Thresholds {
		if t.Level <= current {
			continue
		}
		next := t
		a.NextThreshold = &next
		progress := max(
			ratio(m.CompletedReadings, t.Readings),
			ratio(m.ConversationTurns, t.Turns),
			ratio(m.QuestionsAnswered, t.Questions),
		) * 100
		a.ProgressToNext = min(progress, 100)
		break
	}
	return a
}

func (e *Engine) Stats() Stats {
	events := e.queue.Snapshot()
	s := Stats{
		TotalUsers:        e.profiles.Len(),
		TotalEvents:       len(events),
		MemoryNotesLogged: e.sink.NotesWritten(),
	}
	if n := len(events); n > 0 {
		last := events[n-1].Timestamp
		s.LastActivity = &last
	}
	for _, ev := range events {
		switch ev.Type {
		case EventConversationTurn:
			s.ConversationTurns++
			s.InteractionEvents++
		case EventUserResponse, EventCardRevealed, EventQuestionAnswered:
			s.InteractionEvents++
		}
	}
	return s
}

// Patterns summarizes the user's spreads, cards and satisfaction over the last thirty days.
func (e *Engine) Patterns(userID string) Patterns {
	events := e.queue.Since(userID, e.now().Add(-patternWindow))
	p := Patterns{
		SpreadPreferences: make(map[string]int),
		CardAffinities:    make(map[string]int),
	}

	var satisfactionSum, rated int
	for _, ev := range events {
		p.SpreadPreferences[ev.Context.SpreadType]++
		for _, c := range ev.Context.CardsDrawn {
			p.CardAffinities[c]++
		}
		if ev.Context.UserSatisfaction > 0 {
			satisfactionSum += ev.Context.UserSatisfaction
			rated++
		}
	}

	p.Engagement.SessionCount = len(events)
	if rated > 0 {
		p.Engagement.AverageSatisfaction = float64(satisfactionSum) / float64(rated)
	}
	if len(events) > 0 {
		p.Engagement.FeedbackRate = float64(rated) / float64(len(events))
	}
	return p
}

func ratio(have, want int) float64 {
	if want <= 0 {
		return 1
	}
	return float64(have) / float64(want)
}

func firstN(list []string, n int) []string {
	if len(list) <= n {
		return slices.Clone(list)
	}
	return slices.Clone(list[:n])
}
