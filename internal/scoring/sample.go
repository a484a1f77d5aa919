package scoring

// SampleBundle returns the seeded starter questionnaire, version 1, with no
// answers. Callers append answers before computing.
func SampleBundle() *Bundle {
	const versionID = "v1"
	return &Bundle{
		Version: Version{
			ID:          versionID,
			Version:     1,
			IsActive:    true,
			Description: "Initial version with sample questions",
		},
		Categories: []Category{
			{
				ID: "motivation", VersionID: versionID, Name: "motivation",
				Label:         "Motivation & Life Stage",
				Description:   "Career, family, and personal drivers",
				DefaultWeight: 1.0, SortOrder: 1,
			},
			{
				ID: "financial", VersionID: versionID, Name: "financial",
				Label:         "Financial Considerations",
				Description:   "Cost, income, and economic factors",
				DefaultWeight: 1.2, SortOrder: 2,
			},
			{
				ID: "location", VersionID: versionID, Name: "location",
				Label:         "Location & Environment",
				Description:   "Climate, community, lifestyle",
				DefaultWeight: 1.0, SortOrder: 3,
			},
		},
		Questions: []Question{
			{
				ID: "q1", VersionID: versionID, CategoryID: "motivation",
				Text: "How satisfied are you with your current job/career?",
				Type: QuestionTypeScale, ScaleMin: 1, ScaleMax: 10,
				ScaleLabels: map[string]string{"1": "Very Dissatisfied", "10": "Very Satisfied"},
				AllowNA:     true, SortOrder: 1,
			},
			{
				ID: "q2", VersionID: versionID, CategoryID: "location",
				Text: "How satisfied are you with your current location?",
				Type: QuestionTypeScale, ScaleMin: 1, ScaleMax: 10,
				AllowNA: true, SortOrder: 2,
			},
			{
				ID: "q3", VersionID: versionID, CategoryID: "financial",
				Text: "How would you rate your current financial situation?",
				Type: QuestionTypeScale, ScaleMin: 1, ScaleMax: 10,
				AllowNA: true, SortOrder: 3,
			},
			{
				ID: "q4", VersionID: versionID, CategoryID: "motivation",
				Text:    "Are you planning to move in the next 2 years?",
				Type:    QuestionTypeYesNo,
				AllowNA: true, SortOrder: 4,
			},
		},
		Scorings: []QuestionScoring{
			{QuestionID: "q1", ImproveWeight: 1, MoveWeight: -1, Multiplier: 1},
			{QuestionID: "q2", ImproveWeight: 1, MoveWeight: -1, Multiplier: 1},
			{QuestionID: "q3", ImproveWeight: 1, MoveWeight: -1, Multiplier: 1},
			{QuestionID: "q4", ImproveWeight: 1, MoveWeight: -1, Multiplier: 1},
		},
		Config: Config{
			VersionID:             versionID,
			EqualWeighting:        true,
			NeutralZoneMin:        -0.75,
			NeutralZoneMax:        0.75,
			SlightLeanThreshold:   0.3,
			ModerateLeanThreshold: 0.75,
			StrongLeanThreshold:   1.5,
			NAHandling:            NAExcludeFromDenominator,
		},
	}
}
