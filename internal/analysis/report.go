package analysis

import (
	"math"
	"time"
)

// Alignment verdicts assigned to a single criterion.
const (
	VerdictMet          = "Met"
	VerdictPartiallyMet = "Partially Met"
	VerdictGap          = "Gap"
	VerdictUnclear      = "Unclear"
)

// Finding is one criterion-level result within an aspect.
type Finding struct {
	StandardID      string `json:"standardId"`
	Description     string `json:"description"`
	AlignmentStatus string `json:"alignmentStatus"`
	Reasoning       string `json:"reasoning"`
}

// AspectDetails holds the findings for one benchmark aspect.
type AspectDetails struct {
	Summary  string    `json:"summary"`
	Findings []Finding `json:"findings"`
}

// IndustryAlignment is the per-industry result within the regional aspect.
type IndustryAlignment struct {
	ID                    string   `json:"id"`
	IndustrySector        string   `json:"industrySector"`
	AlignmentScorePercent int      `json:"alignmentScorePercent"`
	AlignmentStatusText   string   `json:"alignmentStatusText"`
	KeySkillsCovered      []string `json:"keySkillsCovered"`
	Reasoning             string   `json:"reasoning"`
}

// RegionalIndustryAlignment aggregates the industry aspect.
type RegionalIndustryAlignment struct {
	Region                               string              `json:"region"`
	Summary                              string              `json:"summary"`
	CurriculumAlignmentWithKeyIndustries []IndustryAlignment `json:"curriculumAlignmentWithKeyIndustries"`
}

// Report is the aggregate output of one analysis run. It is built by the
// orchestrator and persisted as the curriculum's analysisResults JSON.
// If Errors is non-empty the persisted status must be FAILED.
type Report struct {
	LastAnalyzed              time.Time                 `json:"lastAnalyzed"`
	AnalyzedBy                string                    `json:"analyzedBy"`
	OverallAlignmentScore     int                       `json:"overallAlignmentScore"`
	OverallStatusText         string                    `json:"overallStatusText"`
	StandardAlignmentDetails  AspectDetails             `json:"standardAlignmentDetails"`
	IntroCourseReadiness      AspectDetails             `json:"introCourseReadiness"`
	RegionalIndustryAlignment RegionalIndustryAlignment `json:"regionalIndustryAlignment"`
	ExtractedTextSnippet      string                    `json:"extractedTextSnippet"`
	AnalysisComplete          bool                      `json:"analysisComplete"`
	Errors                    []string                  `json:"errors"`
}

func newReport(engine string) *Report {
	return &Report{
		LastAnalyzed: time.Now().UTC(),
		AnalyzedBy:   engine,
		RegionalIndustryAlignment: RegionalIndustryAlignment{
			Region:                               regionLabel,
			CurriculumAlignmentWithKeyIndustries: []IndustryAlignment{},
		},
		StandardAlignmentDetails: AspectDetails{Findings: []Finding{}},
		IntroCourseReadiness:     AspectDetails{Findings: []Finding{}},
		Errors:                   []string{},
	}
}

// verdictWeight maps a verdict to its score contribution per criterion.
func verdictWeight(verdict string) float64 {
	switch verdict {
	case VerdictMet:
		return 1.0
	case VerdictPartiallyMet:
		return 0.5
	default:
		return 0
	}
}

// overallScore converts accumulated points to a 0-98 percentage. A run with
// no scorable items lands on the midpoint rather than claiming zero.
func overallScore(total, max float64) int {
	if max <= 0 {
		return 50
	}
	score := int(math.Round(100 * total / max))
	if score < 0 {
		score = 0
	}
	if score > 98 {
		score = 98
	}
	return score
}

func statusTextFor(score int) string {
	switch {
	case score >= 85:
		return "Strong Overall Alignment"
	case score >= 70:
		return "Good Overall Alignment"
	case score >= 50:
		return "Moderate Overall Alignment"
	default:
		return "Needs Improvement"
	}
}

func industryStatusText(percent int) string {
	switch {
	case percent >= 75:
		return "Strong Alignment"
	case percent >= 50:
		return "Moderate Alignment"
	case percent >= 30:
		return "Some Alignment"
	default:
		return "Limited Alignment"
	}
}

func snippet(text string, limit int) string {
	if text == "" {
		return "No text extracted."
	}
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
