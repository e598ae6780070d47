package stub

import (
	"strings"

	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// fixture is a canned decision framework. Questions are ordered so that a
// prefix of them forms a sensible smaller questionnaire.
type fixture struct {
	decisionType   string
	title          string
	options        []decisionapi.Choice
	criteria       []decisionapi.Criterion
	questions      []decisionapi.Question
	contextFactors []string
	keywords       []string
}

func f(v float64) *float64 { return &v }

var travelFixture = fixture{
	decisionType: "travel_choice",
	title:        "Tropical Fall Break Trip Decision",
	options: []decisionapi.Choice{
		{Name: "Belize", Description: "Central American paradise with barrier reef and jungle adventures"},
		{Name: "Costa Rica", Description: "Eco-tourism destination with beaches, rainforests, and wildlife"},
		{Name: "Barbados", Description: "Caribbean island with pristine beaches and vibrant culture", Inferred: true},
	},
	criteria: []decisionapi.Criterion{
		{Name: "Budget", Description: "Total cost including flights, accommodation, and activities", Weight: 0.3, Category: "financial"},
		{Name: "Activities", Description: "Variety and quality of available activities and experiences", Weight: 0.25, Category: "experience"},
		{Name: "Safety", Description: "Overall safety and security for travelers", Weight: 0.2, Category: "practical"},
		{Name: "Weather", Description: "Climate conditions during your travel dates", Weight: 0.15, Category: "environmental"},
		{Name: "Accessibility", Description: "Ease of travel and getting around", Weight: 0.1, Category: "practical"},
	},
	questions: []decisionapi.Question{
		{
			Text: "What's your total budget per person for this trip?", Type: "scale",
			Min: f(1000), Max: f(5000), MinLabel: "$1,000", MaxLabel: "$5,000+", CriteriaLink: "Budget",
		},
		{
			Text: "How important are adventure activities vs relaxation?", Type: "scale",
			Min: f(1), Max: f(10), MinLabel: "Pure relaxation", MaxLabel: "Adventure focused", CriteriaLink: "Activities",
		},
		{
			Text: "Are you comfortable with basic Spanish for communication?", Type: "boolean",
			Labels: []string{"No", "Yes"}, CriteriaLink: "Accessibility",
		},
		{
			Text: "Rank these factors by importance to your group", Type: "rank",
			Options:      []string{"Beach quality", "Nightlife", "Cultural experiences", "Adventure sports", "Food scene"},
			CriteriaLink: "Activities",
		},
		{
			Text: "Any specific activities or experiences you're hoping for?", Type: "text",
			Placeholder: "e.g., snorkeling, zip-lining, cultural tours...", CriteriaLink: "Activities",
		},
		{
			Text: "Which part of the fall break works best for travel?", Type: "mcq",
			Options:      []string{"First week", "Second week", "Either"},
			CriteriaLink: "Weather",
		},
	},
	contextFactors: []string{"Group size", "Travel dates", "Previous travel experience"},
	keywords:       []string{"trip", "travel", "vacation", "holiday", "break"},
}

var jobFixture = fixture{
	decisionType: "career_choice",
	title:        "Job Offer Comparison",
	options: []decisionapi.Choice{
		{Name: "Job A", Description: "Higher base salary at an established company"},
		{Name: "Job B", Description: "Stronger team culture with more growth room"},
		{Name: "Negotiate current role", Description: "Use the offers to renegotiate where you are", Inferred: true},
	},
	criteria: []decisionapi.Criterion{
		{Name: "Compensation", Description: "Salary, bonus, and equity", Weight: 0.35, Category: "financial"},
		{Name: "Culture", Description: "Team, management, and day-to-day environment", Weight: 0.25, Category: "personal"},
		{Name: "Growth", Description: "Learning and promotion prospects", Weight: 0.25, Category: "career"},
		{Name: "Commute", Description: "Travel time and remote flexibility", Weight: 0.15, Category: "practical"},
	},
	questions: []decisionapi.Question{
		{
			Text: "How important is salary compared to everything else?", Type: "scale",
			Min: f(1), Max: f(10), MinLabel: "Barely matters", MaxLabel: "Top priority", CriteriaLink: "Compensation",
		},
		{
			Text: "Is a fully on-site role acceptable?", Type: "boolean",
			Labels: []string{"No", "Yes"}, CriteriaLink: "Commute",
		},
		{
			Text: "Rank what you want from your next role", Type: "rank",
			Options:      []string{"Pay", "Mentorship", "Stability", "Flexibility"},
			CriteriaLink: "Growth",
		},
		{
			Text: "How many years do you expect to stay?", Type: "scale",
			Min: f(1), Max: f(10), MinLabel: "1 year", MaxLabel: "10+ years", CriteriaLink: "Growth",
		},
		{
			Text: "Anything about either team that worries you?", Type: "text",
			Placeholder: "e.g., turnover, manager style...", CriteriaLink: "Culture",
		},
		{
			Text: "Which working arrangement do you prefer?", Type: "mcq",
			Options:      []string{"On-site", "Hybrid", "Remote"},
			CriteriaLink: "Commute",
		},
	},
	contextFactors: []string{"Current salary", "Career stage", "Location"},
	keywords:       []string{"job", "offer", "career", "salary", "role"},
}

var fixtures = []fixture{jobFixture, travelFixture}

// pickFixture chooses the fixture whose keywords appear in the scenario,
// falling back to the travel fixture.
func pickFixture(scenario string) fixture {
	s := strings.ToLower(scenario)
	for _, fx := range fixtures {
		for _, kw := range fx.keywords {
			if strings.Contains(s, kw) {
				return fx
			}
		}
	}
	return travelFixture
}

// questionCount scales the questionnaire with analysis depth.
func questionCount(depth string, available int) int {
	n := 5
	switch depth {
	case "quick":
		n = 3
	case "thorough":
		n = 6
	}
	return min(n, available)
}
