package mode

// Option describes one selectable value for the frontend.
type Option struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Catalog groups every selectable option by field.
type Catalog struct {
	Models         []Option  `json:"models"`
	Outlooks       []Option  `json:"outlooks"`
	CoachingStyles []Option  `json:"coachingStyles"`
	Default        Selection `json:"default"`
}

// NewCatalog returns the option list exposed to render surfaces.
func NewCatalog() Catalog {
	return Catalog{
		Models: []Option{
			{Value: string(Mentor), Description: "Career mentor for finance and investment banking recruiting. Tone and coaching style are adjustable."},
			{Value: string(Expert), Description: "Technical expert for finance concepts. Ignores tone settings and any uploaded resume."},
		},
		Outlooks: []Option{
			{Value: string(Pessimistic), Description: "Blunt about risks and competition."},
			{Value: string(Practical), Description: "Balanced, no extra framing."},
			{Value: string(Optimistic), Description: "Emphasises opportunities and momentum."},
		},
		CoachingStyles: []Option{
			{Value: string(Instructive), Description: "Direct, step-by-step guidance."},
			{Value: string(DefaultStyle), Description: "No extra coaching instructions."},
			{Value: string(Socratic), Description: "Guides with probing questions."},
		},
		Default: Default(),
	}
}

// Suggestions are the starter prompts shown next to an empty conversation.
func Suggestions() []string {
	return []string{
		"What are the key skills for a career in investment banking?",
		"Surprise me with one insight on Investment Banking Recruiting.",
		"What are the dos and donts of a superday interview?",
		"Can you suggest networking strategies for finance professionals?",
	}
}
