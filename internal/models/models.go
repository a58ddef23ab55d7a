package models

import "time"

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"` // bcrypt
	Points       int        `json:"points"`
	Streak       int        `json:"streak"`
	LastCheckIn  *time.Time `json:"last_check_in,omitempty"`
	JoinedAt     time.Time  `json:"joined_at"`
	IsAdmin      bool       `json:"is_admin"`
}

type Mood string

const (
	MoodJoyful   Mood = "joyful"
	MoodHappy    Mood = "happy"
	MoodNeutral  Mood = "neutral"
	MoodSad      Mood = "sad"
	MoodStressed Mood = "stressed"
)

// Moods lists every mood from most to least positive.
var Moods = []Mood{MoodJoyful, MoodHappy, MoodNeutral, MoodSad, MoodStressed}

func (m Mood) Valid() bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

// Score maps a self-reported mood onto the 0-100 analysis scale.
func (m Mood) Score() int {
	switch m {
	case MoodJoyful:
		return 90
	case MoodHappy:
		return 75
	case MoodSad:
		return 30
	case MoodStressed:
		return 15
	default:
		return 50
	}
}

// MoodForScore buckets an analysis score into the mood band it represents.
func MoodForScore(score int) Mood {
	switch {
	case score >= 80:
		return MoodJoyful
	case score >= 60:
		return MoodHappy
	case score >= 40:
		return MoodNeutral
	case score >= 20:
		return MoodSad
	default:
		return MoodStressed
	}
}

type Analysis struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Suggestions  []string `json:"suggestions"`
	Keywords     []string `json:"keywords"`
	Appreciation string   `json:"appreciation,omitempty"`
}

type JournalEntry struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Content  string    `json:"content"`
	Mood     Mood      `json:"mood"`
	Date     time.Time `json:"date"`
	Tags     []string  `json:"tags"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// LocalDate is the UTC calendar day of the entry as YYYY-MM-DD.
func (e JournalEntry) LocalDate() string {
	return e.Date.UTC().Format(DateLayout)
}

type Reward struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
	Image       string `json:"image"`
}

type RedeemedReward struct {
	ID         string    `json:"id"`
	RewardID   string    `json:"reward_id"`
	UserID     string    `json:"user_id"`
	Code       string    `json:"code"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

type Settings struct {
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`
}

const DateLayout = "2006-01-02"
