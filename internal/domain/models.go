package domain

// Word is a term and its translation within a category, the atomic learning unit.
type Word struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Category    string `json:"category"`
}

// Question is one multiple-choice prompt built from a Word and its decoys.
type Question struct {
	Prompt        string   `json:"prompt"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
}

// Category is a topic shown on the dashboard.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// UserProfile is what a child fills in on first sign-in.
type UserProfile struct {
	Name              string `json:"name" validate:"required,max=64"`
	PreferredLanguage string `json:"preferredLanguage" validate:"required,oneof=Spanish French German Italian"`
	Age               *int   `json:"age,omitempty" validate:"omitempty,min=1,max=18"`
}

// UserProgress accumulates over completed lessons.
type UserProgress struct {
	TotalScore       int `json:"totalScore"`
	Stars            int `json:"stars"`
	CompletedLessons int `json:"completedLessons"`
}

type Reward string

const (
	RewardGoldStar   Reward = "goldStar"
	RewardSilverStar Reward = "silverStar"
	RewardBronzeStar Reward = "bronzeStar"
)

// Valid reports whether r is one of the known reward kinds.
func (r Reward) Valid() bool {
	switch r {
	case RewardGoldStar, RewardSilverStar, RewardBronzeStar:
		return true
	}
	return false
}

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}
