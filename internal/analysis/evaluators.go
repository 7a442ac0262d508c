package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/scooter7/BrioCurriculum/internal/llm"
)

const defaultTextLimit = 4000

// EvalResult is the outcome of one benchmark aspect. A failed evaluation
// carries zero findings and a non-empty ErrMessage; it never surfaces as an
// error to the orchestrator.
type EvalResult struct {
	Findings     []Finding
	Industries   []IndustryAlignment
	Summary      string
	PartialScore float64
	PartialMax   float64
	ErrMessage   string
}

// Evaluator assesses the extracted text against one benchmark aspect.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, text string) EvalResult
}

// Evaluators returns the configured aspect evaluators in display order.
func Evaluators(client llm.StructuredClient, textLimit int) []Evaluator {
	if textLimit <= 0 {
		textLimit = defaultTextLimit
	}
	return []Evaluator{
		&admissionsEvaluator{client: client, textLimit: textLimit},
		&introEvaluator{client: client, textLimit: textLimit},
		&industryEvaluator{client: client, textLimit: textLimit},
	}
}

const systemInstruction = "You are an expert curriculum analyst. Respond ONLY with a valid JSON object. " +
	"Your entire response must be a single, parsable JSON object. Do not include any markdown, " +
	"explanations, or conversational text outside of the JSON structure requested."

func generateRequest(prompt string) llm.GenerateRequest {
	return llm.GenerateRequest{
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
		Temperature:       0.1,
		MaxOutputTokens:   1024,
		JSONOnly:          true,
	}
}

func truncateText(text string, limit int) string {
	if len(text) > limit {
		return text[:limit]
	}
	return text
}

func failedResult(name string, err error) EvalResult {
	return EvalResult{
		Findings:   []Finding{},
		Summary:    fmt.Sprintf("%s assessment could not be completed.", name),
		ErrMessage: fmt.Sprintf("%s evaluation failed: %v", name, err),
	}
}

// criterionSchema describes one {alignmentStatus, reasoning} reply entry.
func criterionSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"alignmentStatus"},
		"properties": map[string]any{
			"alignmentStatus": map[string]any{
				"type": "string",
				"enum": []any{VerdictMet, VerdictPartiallyMet, VerdictGap, VerdictUnclear},
			},
			"reasoning": map[string]any{"type": "string"},
		},
	}
}

func aspectSchema(topKey string, keys []string, entry map[string]any) map[string]any {
	props := map[string]any{}
	required := make([]any, 0, len(keys))
	for _, key := range keys {
		props[key] = entry
		required = append(required, key)
	}
	return map[string]any{
		"type":     "object",
		"required": []any{topKey},
		"properties": map[string]any{
			topKey: map[string]any{
				"type":       "object",
				"required":   required,
				"properties": props,
			},
		},
	}
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// admissionsEvaluator checks the high school unit requirements aspect.
type admissionsEvaluator struct {
	client    llm.StructuredClient
	textLimit int
}

func (e *admissionsEvaluator) Name() string { return "Admissions requirements" }

func (e *admissionsEvaluator) Evaluate(ctx context.Context, text string) EvalResult {
	excerpt := truncateText(text, e.textLimit)

	var lines []string
	keys := make([]string, 0, len(admissionsRequirements))
	for _, req := range admissionsRequirements {
		keys = append(keys, req.Key)
		lines = append(lines, fmt.Sprintf("- %s: %d units of %s", req.Key, req.Required, req.Label))
	}

	prompt := fmt.Sprintf(`Based on the Curriculum Text, assess whether each high school unit requirement below appears to be covered.
Curriculum Text: """%s"""
Requirements:
%s
Your response MUST be a single, valid JSON object with ONLY one top-level key: "admissionsAnalysis".
Its value must be an object with exactly the keys %s.
Each key's value must be an object with two keys: "alignmentStatus" (string: "Met", "Partially Met", "Gap", or "Unclear") and "reasoning" (string, strictly max 12 words).
Example: {"admissionsAnalysis": {"english": {"alignmentStatus": "Met", "reasoning": "Four years of English listed."}, ...}}`,
		excerpt, strings.Join(lines, "\n"), quoteList(keys))

	obj, err := e.client.Complete(ctx, generateRequest(prompt), "admissionsAnalysis",
		aspectSchema("admissionsAnalysis", keys, criterionSchema()))
	if err != nil {
		return failedResult(e.Name(), err)
	}

	entries := asObject(obj["admissionsAnalysis"])
	result := EvalResult{
		Findings: make([]Finding, 0, len(admissionsRequirements)),
		Summary:  "USAO high school unit requirement assessment complete.",
	}
	for _, req := range admissionsRequirements {
		entry := asObject(entries[req.Key])
		verdict := asString(entry["alignmentStatus"])
		if verdict == "" {
			verdict = VerdictUnclear
		}
		reasoning := asString(entry["reasoning"])
		if reasoning == "" {
			reasoning = "N/A"
		}
		result.Findings = append(result.Findings, Finding{
			StandardID:      "USAO-HS-" + strings.ToUpper(req.Key),
			Description:     fmt.Sprintf("%s (%d units)", req.Label, req.Required),
			AlignmentStatus: verdict,
			Reasoning:       reasoning,
		})
		result.PartialScore += verdictWeight(verdict)
		result.PartialMax += 1.0
	}
	return result
}

// introEvaluator checks readiness for introductory college course themes.
type introEvaluator struct {
	client    llm.StructuredClient
	textLimit int
}

func (e *introEvaluator) Name() string { return "Introductory course readiness" }

func (e *introEvaluator) Evaluate(ctx context.Context, text string) EvalResult {
	excerpt := truncateText(text, e.textLimit)

	var lines []string
	keys := make([]string, 0, len(introSubjectAreas))
	for _, area := range introSubjectAreas {
		keys = append(keys, area.Key)
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", area.Key, area.Label, strings.Join(area.Themes, ", ")))
	}

	prompt := fmt.Sprintf(`Based on the Curriculum Text, assess how well the curriculum prepares students for the introductory college course themes in each subject area below.
Curriculum Text: """%s"""
Subject areas and themes:
%s
Your response MUST be a single, valid JSON object with ONLY one top-level key: "readinessAnalysis".
Its value must be an object with exactly the keys %s.
Each key's value must be an object with two keys: "alignmentStatus" (string: "Met", "Partially Met", "Gap", or "Unclear") and "reasoning" (string, strictly max 12 words).`,
		excerpt, strings.Join(lines, "\n"), quoteList(keys))

	obj, err := e.client.Complete(ctx, generateRequest(prompt), "readinessAnalysis",
		aspectSchema("readinessAnalysis", keys, criterionSchema()))
	if err != nil {
		return failedResult(e.Name(), err)
	}

	entries := asObject(obj["readinessAnalysis"])
	result := EvalResult{
		Findings: make([]Finding, 0, len(introSubjectAreas)),
		Summary:  "Introductory course readiness assessment complete.",
	}
	for _, area := range introSubjectAreas {
		entry := asObject(entries[area.Key])
		verdict := asString(entry["alignmentStatus"])
		if verdict == "" {
			verdict = VerdictUnclear
		}
		reasoning := asString(entry["reasoning"])
		if reasoning == "" {
			reasoning = "N/A"
		}
		result.Findings = append(result.Findings, Finding{
			StandardID:      "USAO-INTRO-" + strings.ToUpper(area.Key),
			Description:     fmt.Sprintf("Intro %s themes: %s", area.Label, strings.Join(area.Themes, ", ")),
			AlignmentStatus: verdict,
			Reasoning:       reasoning,
		})
		result.PartialScore += verdictWeight(verdict)
		result.PartialMax += 1.0
	}
	return result
}

// industryEvaluator checks alignment with regional high-growth industries.
// Each industry carries a fixed weight of 3 points; the model's percentage is
// converted to points with floor(percent/33).
type industryEvaluator struct {
	client    llm.StructuredClient
	textLimit int
}

func (e *industryEvaluator) Name() string { return "Regional industry alignment" }

func industryEntrySchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"alignmentPercent"},
		"properties": map[string]any{
			"alignmentPercent": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 100,
			},
			"keySkillsCovered": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"reasoning": map[string]any{"type": "string"},
		},
	}
}

func (e *industryEvaluator) Evaluate(ctx context.Context, text string) EvalResult {
	excerpt := truncateText(text, e.textLimit)

	var lines []string
	keys := make([]string, 0, len(regionalIndustries))
	for _, ind := range regionalIndustries {
		keys = append(keys, ind.Key)
		lines = append(lines, fmt.Sprintf("- %s (%s): relevant topics %s; target skills %s",
			ind.Key, ind.Name, strings.Join(ind.Keywords, ", "), strings.Join(ind.Skills, ", ")))
	}

	prompt := fmt.Sprintf(`Based on the Curriculum Text, estimate how well the curriculum aligns with each regional high-growth industry below.
Curriculum Text: """%s"""
Industries:
%s
Your response MUST be a single, valid JSON object with ONLY one top-level key: "industryAnalysis".
Its value must be an object with exactly the keys %s.
Each key's value must be an object with three keys: "alignmentPercent" (integer 0-100), "keySkillsCovered" (array of strings drawn from that industry's target skills), and "reasoning" (string, strictly max 12 words).`,
		excerpt, strings.Join(lines, "\n"), quoteList(keys))

	obj, err := e.client.Complete(ctx, generateRequest(prompt), "industryAnalysis",
		aspectSchema("industryAnalysis", keys, industryEntrySchema()))
	if err != nil {
		return failedResult(e.Name(), err)
	}

	entries := asObject(obj["industryAnalysis"])
	result := EvalResult{
		Findings:   []Finding{},
		Industries: make([]IndustryAlignment, 0, len(regionalIndustries)),
		Summary:    "Regional high-growth industry alignment assessment complete.",
	}
	for _, ind := range regionalIndustries {
		entry := asObject(entries[ind.Key])
		percent := asInt(entry["alignmentPercent"])
		if percent < 0 {
			percent = 0
		}
		if percent > 90 {
			percent = 90
		}
		skills := []string{}
		if raw, ok := entry["keySkillsCovered"].([]any); ok {
			for _, s := range raw {
				if str := asString(s); str != "" {
					skills = append(skills, str)
				}
			}
		}
		if len(skills) == 0 {
			skills = []string{"General Foundational Skills"}
		}
		reasoning := asString(entry["reasoning"])
		if reasoning == "" {
			reasoning = "N/A"
		}
		result.Industries = append(result.Industries, IndustryAlignment{
			ID:                    "ind-align-" + ind.Key,
			IndustrySector:        ind.Name,
			AlignmentScorePercent: percent,
			AlignmentStatusText:   industryStatusText(percent),
			KeySkillsCovered:      skills,
			Reasoning:             reasoning,
		})
		result.PartialScore += math.Floor(float64(percent) / 33)
		result.PartialMax += 3.0
	}
	return result
}

func quoteList(keys []string) string {
	quoted := make([]string, len(keys))
	for i, key := range keys {
		quoted[i] = `"` + key + `"`
	}
	return strings.Join(quoted, ", ")
}
