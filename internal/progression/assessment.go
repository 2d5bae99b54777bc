package progression

// The initial ability assessment places a new player on the curve from a
// short questionnaire: three weighted questions per enabled aspect, each
// answer worth 1–10 points. A full-score aspect (30 points) lands just
// inside S rank, which is what the multiplier is calibrated for.

// AssessmentMultiplier converts questionnaire points to experience.
const AssessmentMultiplier = 3500

// AssessmentOption is one selectable answer.
type AssessmentOption struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// AssessmentQuestion is one questionnaire entry tied to an aspect category.
type AssessmentQuestion struct {
	Question string             `json:"question"`
	Category string             `json:"category"`
	Options  []AssessmentOption `json:"options"`
}

// AssessmentResult is the outcome of scoring one aspect.
type AssessmentResult struct {
	XP    int64 `json:"xp"`
	Level int   `json:"level"`
}

// ScoreAssessment converts per-category questionnaire points into starting
// experience and levels. Every category in allCategories is present in the
// result; categories without answers score zero points and sit at the
// level-1 floor. The returned total level is the floor of the average
// across all categories (minimum 1), with the rank derived from banding.
func ScoreAssessment(points map[string]int, allCategories []string) (results map[string]AssessmentResult, totalXP int64, totalLevel int, rank Rank) {
	results = make(map[string]AssessmentResult, len(allCategories))

	levelSum := 0
	for _, cat := range allCategories {
		xp := int64(points[cat]) * AssessmentMultiplier
		p := Level(xp)
		results[cat] = AssessmentResult{XP: xp, Level: p.Level}
		totalXP += xp
		levelSum += p.Level
	}

	totalLevel = levelSum / len(allCategories)
	if totalLevel < 1 {
		totalLevel = 1
	}
	return results, totalXP, totalLevel, RankForLevel(totalLevel)
}

// AssessmentQuestions is the static questionnaire, three questions per
// aspect in the catalog's category vocabulary.
var AssessmentQuestions = []AssessmentQuestion{
	{
		Question: "What is your current level of physical activity?",
		Category: "strength",
		Options: []AssessmentOption{
			{Text: "Sedentary", Points: 1},
			{Text: "Light (daily walks)", Points: 3},
			{Text: "Moderate (training 2-3 times a week)", Points: 5},
			{Text: "Active (training 4-5 times a week)", Points: 7},
			{Text: "Athlete, training daily", Points: 10},
		},
	},
	{
		Question: "How long are your daily workouts?",
		Category: "strength",
		Options: []AssessmentOption{
			{Text: "I don't work out", Points: 1},
			{Text: "15-30 minutes", Points: 3},
			{Text: "30-45 minutes", Points: 5},
			{Text: "45-60 minutes", Points: 7},
			{Text: "More than an hour", Points: 10},
		},
	},
	{
		Question: "What kind of exercise do you mainly do?",
		Category: "strength",
		Options: []AssessmentOption{
			{Text: "None", Points: 1},
			{Text: "Light (walking, stretching)", Points: 3},
			{Text: "Moderate (light weights)", Points: 5},
			{Text: "Heavy (weight lifting)", Points: 7},
			{Text: "Specialized sport training", Points: 10},
		},
	},
	{
		Question: "How many books do you read per month?",
		Category: "intelligence",
		Options: []AssessmentOption{
			{Text: "I don't read", Points: 1},
			{Text: "One book or less", Points: 3},
			{Text: "2-3 books", Points: 5},
			{Text: "4-5 books", Points: 7},
			{Text: "More than 5 books", Points: 10},
		},
	},
	{
		Question: "What are your main learning sources?",
		Category: "intelligence",
		Options: []AssessmentOption{
			{Text: "No regular learning", Points: 1},
			{Text: "Social media", Points: 3},
			{Text: "Short courses and articles", Points: 5},
			{Text: "Books and specialized courses", Points: 7},
			{Text: "Advanced academic study", Points: 10},
		},
	},
	{
		Question: "How many hours do you study per week?",
		Category: "intelligence",
		Options: []AssessmentOption{
			{Text: "Less than an hour", Points: 1},
			{Text: "1-3 hours", Points: 3},
			{Text: "4-6 hours", Points: 5},
			{Text: "7-10 hours", Points: 7},
			{Text: "More than 10 hours", Points: 10},
		},
	},
	{
		Question: "What are your daily health habits?",
		Category: "vitality",
		Options: []AssessmentOption{
			{Text: "I don't pay much attention", Points: 1},
			{Text: "Regular sleep only", Points: 3},
			{Text: "Sleep plus good nutrition", Points: 5},
			{Text: "Sleep, nutrition and exercise", Points: 7},
			{Text: "A complete health routine", Points: 10},
		},
	},
	{
		Question: "How many hours do you sleep per night?",
		Category: "vitality",
		Options: []AssessmentOption{
			{Text: "Less than 5 hours", Points: 1},
			{Text: "5-6 hours", Points: 3},
			{Text: "6-7 hours", Points: 5},
			{Text: "7-8 hours", Points: 7},
			{Text: "8+ hours with deep sleep", Points: 10},
		},
	},
	{
		Question: "How would you rate your diet?",
		Category: "vitality",
		Options: []AssessmentOption{
			{Text: "Unhealthy and irregular", Points: 1},
			{Text: "Occasionally healthy", Points: 3},
			{Text: "Balanced diet", Points: 5},
			{Text: "Consistently healthy diet", Points: 7},
			{Text: "Tailored diet with follow-up", Points: 10},
		},
	},
	{
		Question: "How are your social relationships?",
		Category: "agility",
		Options: []AssessmentOption{
			{Text: "Isolated, I avoid gatherings", Points: 1},
			{Text: "Limited to close family", Points: 3},
			{Text: "Good within one circle", Points: 5},
			{Text: "A wide network", Points: 7},
			{Text: "A social leader with diverse ties", Points: 10},
		},
	},
	{
		Question: "How many social activities do you join per month?",
		Category: "agility",
		Options: []AssessmentOption{
			{Text: "None", Points: 1},
			{Text: "1-2 activities", Points: 3},
			{Text: "3-4 activities", Points: 5},
			{Text: "5-6 activities", Points: 7},
			{Text: "More than 6", Points: 10},
		},
	},
	{
		Question: "How do you handle conflict?",
		Category: "agility",
		Options: []AssessmentOption{
			{Text: "I avoid it", Points: 1},
			{Text: "I face it with difficulty", Points: 3},
			{Text: "I manage acceptably", Points: 5},
			{Text: "I resolve it skillfully", Points: 7},
			{Text: "I prevent it before it starts", Points: 10},
		},
	},
	{
		Question: "What is your level of religious commitment?",
		Category: "perception",
		Options: []AssessmentOption{
			{Text: "Not committed", Points: 1},
			{Text: "Partially committed", Points: 3},
			{Text: "Well committed", Points: 5},
			{Text: "Very committed and consistent", Points: 7},
			{Text: "An example others follow", Points: 10},
		},
	},
	{
		Question: "How much time do you set aside for worship and reflection?",
		Category: "perception",
		Options: []AssessmentOption{
			{Text: "Less than an hour a week", Points: 1},
			{Text: "1-3 hours a week", Points: 3},
			{Text: "4-6 hours a week", Points: 5},
			{Text: "7-10 hours a week", Points: 7},
			{Text: "More than 10 hours a week", Points: 10},
		},
	},
	{
		Question: "How much does the spiritual side shape your life?",
		Category: "perception",
		Options: []AssessmentOption{
			{Text: "Weak influence", Points: 1},
			{Text: "Limited influence", Points: 3},
			{Text: "Clear influence", Points: 5},
			{Text: "Strong influence", Points: 7},
			{Text: "The primary driver", Points: 10},
		},
	},
	{
		Question: "How do you manage your finances?",
		Category: "freedom",
		Options: []AssessmentOption{
			{Text: "Poorly, always struggling", Points: 1},
			{Text: "Trying, with difficulty", Points: 3},
			{Text: "Good financial planning", Points: 5},
			{Text: "Small investments, excellent control", Points: 7},
			{Text: "Financially independent", Points: 10},
		},
	},
	{
		Question: "How much of your income do you save?",
		Category: "freedom",
		Options: []AssessmentOption{
			{Text: "Nothing", Points: 1},
			{Text: "Less than 10%", Points: 3},
			{Text: "10-20%", Points: 5},
			{Text: "20-30%", Points: 7},
			{Text: "More than 30%", Points: 10},
		},
	},
	{
		Question: "What are your future financial plans?",
		Category: "freedom",
		Options: []AssessmentOption{
			{Text: "No plans", Points: 1},
			{Text: "Simple short-term plans", Points: 3},
			{Text: "Clear short and medium-term plans", Points: 5},
			{Text: "Medium and long-term plans", Points: 7},
			{Text: "A full strategic plan", Points: 10},
		},
	},
	{
		Question: "How do you handle your work or study obligations?",
		Category: "freedom",
		Options: []AssessmentOption{
			{Text: "I often miss them", Points: 1},
			{Text: "I attend irregularly", Points: 3},
			{Text: "I attend consistently", Points: 5},
			{Text: "Consistent and productive", Points: 7},
			{Text: "I exceed what is asked of me", Points: 10},
		},
	},
}

// QuestionsForCategories filters the questionnaire to the given enabled
// categories, preserving registry order.
func QuestionsForCategories(enabled map[string]bool) []AssessmentQuestion {
	var out []AssessmentQuestion
	for _, q := range AssessmentQuestions {
		if enabled[q.Category] {
			out = append(out, q)
		}
	}
	return out
}
