package models

// QuizAnswers carries the onboarding quiz form, posted to /api/quiz.
// Field values mirror the server's enumerations.
type QuizAnswers struct {
	ProficiencyLevel   string `json:"proficiencyLevel"`
	SpeakingConfidence string `json:"speakingConfidence"`
	WritingLevel       string `json:"writingLevel"`
	ReadingLevel       string `json:"readingLevel"`
	LearningStyle      string `json:"learningStyle"`
	PracticeFrequency  string `json:"practiceFrequency"`
	PreferredLocation  string `json:"preferredLocation"`
	AvailableTime      string `json:"availableTime"`
}

// DefaultQuizAnswers returns the wizard's starting selections.
func DefaultQuizAnswers() QuizAnswers {
	return QuizAnswers{
		ProficiencyLevel:   "beginner",
		SpeakingConfidence: "moderate",
		WritingLevel:       "beginner",
		ReadingLevel:       "beginner",
		LearningStyle:      "visual",
		PracticeFrequency:  "weekly",
		PreferredLocation:  "fredericton",
		AvailableTime:      "weekend",
	}
}

// MeetupProposal is posted to /api/users/:id/meetup-proposals.
type MeetupProposal struct {
	Location    string `json:"location"`
	ProposedAt  string `json:"proposedAt"`
	Note        string `json:"note,omitempty"`
	RecipientID int    `json:"-"`
}

// MessageReport is posted to /api/messages/:id/report.
type MessageReport struct {
	Reason  string `json:"reason"`
	Details string `json:"details,omitempty"`
}
