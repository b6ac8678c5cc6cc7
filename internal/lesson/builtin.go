package lesson

// Builtin returns the lessons shipped with the binary.
func Builtin() []Lesson {
	return []Lesson{
		{
			Name:     "pronunciation-patterns",
			Title:    "Common Pronunciation Patterns",
			Category: "pronunciation",
			Prompts: []string{
				"The quick brown fox jumps over the lazy dog",
				"She sells seashells by the seashore",
				"How much wood would a woodchuck chuck",
			},
		},
		{
			Name:     "past-tense",
			Title:    "Past Tense Mastery",
			Category: "grammar",
			Prompts: []string{
				"Yesterday I walked to the store",
				"She has lived here for five years",
				"They went to the movies last night",
			},
		},
		{
			Name:     "business-vocabulary",
			Title:    "Business Vocabulary",
			Category: "vocabulary",
			Prompts: []string{
				"Let me schedule a meeting to discuss the proposal",
				"Our company aims to increase productivity and efficiency",
				"The presentation was very informative and comprehensive",
			},
		},
		{
			Name:     "conversational-flow",
			Title:    "Conversational Flow",
			Category: "fluency",
			Prompts: []string{
				"How was your weekend? I hope you had a great time!",
				"I really appreciate your help with this project",
				"Would you like to grab coffee sometime this week?",
			},
		},
		{
			Name:     "th-sounds",
			Title:    "Th Sound Practice",
			Category: "pronunciation",
			Prompts: []string{
				"Think about three things",
				"The weather is nice today",
				"Thank you for everything",
			},
		},
		{
			Name:     "conditionals",
			Title:    "Conditional Sentences",
			Category: "grammar",
			Prompts: []string{
				"If I had more time, I would travel more",
				"If it rains tomorrow, we will cancel the picnic",
				"I would be happier if I lived near the ocean",
			},
		},
	}
}
