package domain

// Mood is the feeling attached to an entry. Values outside the vocabulary
// are stored as-is and rendered with the fallback.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodCalm    Mood = "calm"
	MoodAnxious Mood = "anxious"
	MoodTired   Mood = "tired"
	MoodExcited Mood = "excited"
	MoodNeutral Mood = "neutral"
)

// DefaultMood is preselected for new entries.
const DefaultMood = MoodHappy

// MoodInfo is the display data for a mood.
type MoodInfo struct {
	Mood  Mood   `json:"mood"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Moods is the selectable vocabulary, in picker order.
var Moods = []MoodInfo{
	{MoodHappy, "Happy", "😊"},
	{MoodSad, "Sad", "😢"},
	{MoodAngry, "Angry", "😠"},
	{MoodCalm, "Calm", "😌"},
	{MoodAnxious, "Anxious", "😰"},
	{MoodTired, "Tired", "😴"},
	{MoodExcited, "Excited", "🤩"},
	{MoodNeutral, "Neutral", "😐"},
}

// Info returns the display data for m, falling back to neutral.
func (m Mood) Info() MoodInfo {
	for _, info := range Moods {
		if info.Mood == m {
			return info
		}
	}
	fallback := Moods[len(Moods)-1]
	fallback.Mood = m
	return fallback
}

// Known reports whether m is part of the vocabulary.
func (m Mood) Known() bool {
	for _, info := range Moods {
		if info.Mood == m {
			return true
		}
	}
	return false
}
