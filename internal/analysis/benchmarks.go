package analysis

// Static benchmark definitions. Loaded once, read-only across evaluators.
// The wording is configuration data, not logic; scoring weights live with
// the evaluators.

const regionLabel = "Central Oklahoma (USAO Service Area - Grady County/Chickasha focus)"

// admissionsRequirement is one high school unit requirement for USAO admission.
type admissionsRequirement struct {
	Key      string
	Required int
	Label    string
}

var admissionsRequirements = []admissionsRequirement{
	{Key: "english", Required: 4, Label: "English (Grammar, Composition, Literature)"},
	{Key: "math", Required: 3, Label: "Mathematics (Algebra I, Geometry, Algebra II or higher)"},
	{Key: "science", Required: 3, Label: "Lab Science (Biology, Chemistry, Physics, etc.)"},
	{Key: "history", Required: 3, Label: "History & Citizenship (inc. American History)"},
	{Key: "electives", Required: 2, Label: "Electives (Foreign Lang, Comp Sci, other AP)"},
}

// introSubjectArea groups the themes introductory college courses assume.
type introSubjectArea struct {
	Key    string
	Label  string
	Themes []string
}

var introSubjectAreas = []introSubjectArea{
	{Key: "english", Label: "English", Themes: []string{"composition", "literature", "critical reading", "communication fundamentals"}},
	{Key: "math", Label: "Mathematics", Themes: []string{"college algebra", "pre-calculus concepts", "introductory statistics", "problem-solving"}},
	{Key: "science", Label: "Science", Themes: []string{"principles of biology", "general chemistry", "foundations of physics", "scientific inquiry", "lab skills"}},
	{Key: "humanities", Label: "Humanities", Themes: []string{"american history survey", "world civilizations", "intro to philosophy", "social sciences overview"}},
	{Key: "arts", Label: "Arts", Themes: []string{"art appreciation", "music fundamentals", "theatre introduction", "design basics"}},
}

// regionalIndustry is one high-growth industry in the service region.
type regionalIndustry struct {
	Key      string
	Name     string
	Keywords []string
	Skills   []string
}

var regionalIndustries = []regionalIndustry{
	{
		Key:      "health",
		Name:     "Health Care & Social Assistance",
		Keywords: []string{"health", "biology", "chemistry", "anatomy", "psychology", "cna", "medical"},
		Skills:   []string{"Patient Care Fundamentals", "Basic Medical Terminology", "Empathy & Communication", "Scientific Literacy (Biology/Chemistry)"},
	},
	{
		Key:      "manufacturing",
		Name:     "Manufacturing (including Advanced)",
		Keywords: []string{"manufacturing", "engineering", "tech", "robotics", "cad", "shop", "industrial"},
		Skills:   []string{"Technical Aptitude", "Problem-Solving", "Basic Math/Physics Application", "Intro to Design/CAD (awareness)", "Safety Protocols"},
	},
	{
		Key:      "retail",
		Name:     "Retail Trade",
		Keywords: []string{"business", "marketing", "sales", "economics"},
		Skills:   []string{"Customer Service Principles", "Basic Sales Techniques", "Communication", "Inventory Awareness (basic math)"},
	},
	{
		Key:      "professional",
		Name:     "Professional, Scientific, & Technical Services",
		Keywords: []string{"business", "accounting", "it", "computer science", "research", "analysis"},
		Skills:   []string{"Analytical Thinking", "Basic IT Literacy/Computer Science", "Research Skills", "Professional Communication"},
	},
}
