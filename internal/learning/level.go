package learning

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mystic-arcana/oracle/internal/memory"
)

const (
	MinLevel = 1
	MaxLevel = 5
)

// Threshold is the minimum activity for an engagement level.
type Threshold struct {
	Level     int    `json:"level"`
	Readings  int    `json:"readings"`
	Turns     int    `json:"turns"`
	Questions int    `json:"questions"`
	Name      string `json:"name"`
}

// Thresholds are ordered by ascending level.
var Thresholds = []Threshold{
	{Level: 1, Readings: 0, Turns: 0, Questions: 0, Name: "Novice Seeker"},
	{Level: 2, Readings: 3, Turns: 10, Questions: 2, Name: "Curious Student"},
	{Level: 3, Readings: 10, Turns: 30, Questions: 8, Name: "Dedicated Practitioner"},
	{Level: 4, Readings: 25, Turns: 75, Questions: 20, Name: "Enlightened Seeker"},
	{Level: 5, Readings: 50, Turns: 150, Questions: 40, Name: "Master Oracle"},
}

// LevelName returns the human-readable name of level.
func LevelName(level int) string {
	for _, t := range Thresholds {
		if t.Level == level {
			return t.Name
		}
	}
	return "Unknown Level"
}

// EngagementMetrics is derived on demand from a user's memory notes.
type EngagementMetrics struct {
	CompletedReadings int     `json:"completed_readings"`
	ConversationTurns int     `json:"conversation_turns"`
	QuestionsAnswered int     `json:"questions_answered"`
	SessionCount      int     `json:"session_count"`
	EngagementScore   float64 `json:"engagement_score"`
	ConsistencyScore  float64 `json:"consistency_score"`
}

// AnalyzeEngagementMetrics counts readings, turns and answered questions across
// notes. Notes whose content does not parse are ignored.
func AnalyzeEngagementMetrics(notes []memory.Note) EngagementMetrics {
	var m EngagementMetrics
	sessions := make(map[string]struct{})
	var totalEngagement float64
	var engagementCount int

	for _, p := range memory.ParseAll(notes) {
		pl := p.Payload
		if pl.ReadingSummary != nil {
			m.CompletedReadings++
			sid := pl.ReadingSummary.SessionID
			if sid == "" && pl.InteractionData != nil {
				sid = pl.InteractionData.SessionID
			}
			if sid != "" {
				sessions[sid] = struct{}{}
			}
		}
		if pl.ConversationData != nil {
			m.ConversationTurns++
			if pl.ConversationData.SessionID != "" {
				sessions[pl.ConversationData.SessionID] = struct{}{}
			}
		}
		if pl.QuestionData != nil {
			m.QuestionsAnswered++
		}
		if pl.EngagementMetrics != nil {
			totalEngagement += min(float64(pl.EngagementMetrics.DialogueLength)/100, 5)
			engagementCount++
		}
	}

	if engagementCount > 0 {
		m.EngagementScore = totalEngagement / float64(engagementCount)
	}
	m.SessionCount = len(sessions)
	m.ConsistencyScore = min(float64(m.SessionCount)/10, 1)
	return m
}

// QualifiedLevel returns the highest level whose threshold is met. A threshold is
// met when at least two of its three criteria hold, or when readings or turns reach
// one and a half times the requirement.
func QualifiedLevel(m EngagementMetrics) int {
	qualified := MinLevel
	for _, t := range Thresholds {
		criteria := 0
		if m.CompletedReadings >= t.Readings {
			criteria++
		}
		if m.ConversationTurns >= t.Turns {
			criteria++
		}
		if m.QuestionsAnswered >= t.Questions {
			criteria++
		}
		exceptionalReadings := float64(m.CompletedReadings) >= float64(t.Readings)*1.5
		exceptionalTurns := float64(m.ConversationTurns) >= float64(t.Turns)*1.5

		if criteria >= 2 || exceptionalReadings || exceptionalTurns {
			qualified = t.Level
		}
	}
	return qualified
}

// LevelStore persists the engagement level of each user.
type LevelStore interface {
	// Get returns MinLevel for a user that has no stored level.
	Get(ctx context.Context, userID string) (int, error)
	Set(ctx context.Context, userID string, level int) error
}

// RedisLevelStore keeps levels under engagement:level:{userID}.
type RedisLevelStore struct {
	client *redis.Client
}

func NewRedisLevelStore(client *redis.Client) *RedisLevelStore {
	return &RedisLevelStore{client: client}
}

func levelKey(userID string) string {
	return fmt.Sprintf("engagement:level:%s", userID)
}

func (s *RedisLevelStore) Get(ctx context.Context, userID string) (int, error) {
	key := levelKey(userID)
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return MinLevel, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	level, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing level %q: %w", val, err)
	}
	if level < MinLevel || level > MaxLevel {
		return 0, fmt.Errorf("level %d stored under %s is outside %d-%d", level, key, MinLevel, MaxLevel)
	}
	return level, nil
}

func (s *RedisLevelStore) Set(ctx context.Context, userID string, level int) error {
	key := levelKey(userID)
	if err := s.client.Set(ctx, key, level, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

type InMemoryLevelStore struct {
	mu     sync.RWMutex
	levels map[string]int
}

func NewInMemoryLevelStore() *InMemoryLevelStore {
	return &InMemoryLevelStore{levels: make(map[string]int)}
}

func (s *InMemoryLevelStore) Get(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if level, ok := s.levels[userID]; ok {
		return level, nil
	}
	return MinLevel, nil
}

func (s *InMemoryLevelStore) Set(_ context.Context, userID string, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[userID] = level
	return nil
}
