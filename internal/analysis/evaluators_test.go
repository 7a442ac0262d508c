package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/scooter7/BrioCurriculum/internal/llm"
)

type scriptedClient struct {
	mu      sync.Mutex
	calls   int
	respond func(req llm.GenerateRequest) (string, error)
}

func (c *scriptedClient) GenerateContent(ctx context.Context, req llm.GenerateRequest) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.respond(req)
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func criteriaJSON(t *testing.T, topKey string, verdicts map[string]string) string {
	t.Helper()
	entries := map[string]any{}
	for key, verdict := range verdicts {
		entries[key] = map[string]any{"alignmentStatus": verdict, "reasoning": "test reasoning"}
	}
	raw, err := json.Marshal(map[string]any{topKey: entries})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func industryJSON(t *testing.T, percents map[string]int) string {
	t.Helper()
	entries := map[string]any{}
	for key, percent := range percents {
		entries[key] = map[string]any{
			"alignmentPercent": percent,
			"keySkillsCovered": []string{"Problem-Solving"},
			"reasoning":        "test reasoning",
		}
	}
	raw, err := json.Marshal(map[string]any{"industryAnalysis": entries})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestAdmissionsEvaluatorScoresVerdicts(t *testing.T) {
	client := &scriptedClient{respond: func(req llm.GenerateRequest) (string, error) {
		return criteriaJSON(t, "admissionsAnalysis", map[string]string{
			"english":   VerdictMet,
			"math":      VerdictPartiallyMet,
			"science":   VerdictGap,
			"history":   VerdictMet,
			"electives": VerdictUnclear,
		}), nil
	}}

	ev := &admissionsEvaluator{client: llm.StructuredClient{Base: client, MaxAttempts: 1}, textLimit: 4000}
	res := ev.Evaluate(context.Background(), "English, Algebra, World History coursework")

	if res.ErrMessage != "" {
		t.Fatalf("unexpected error message: %s", res.ErrMessage)
	}
	if len(res.Findings) != 5 {
		t.Fatalf("findings = %d, want 5", len(res.Findings))
	}
	if res.PartialScore != 2.5 {
		t.Fatalf("partial score = %v, want 2.5", res.PartialScore)
	}
	if res.PartialMax != 5.0 {
		t.Fatalf("partial max = %v, want 5.0", res.PartialMax)
	}
	if res.Findings[0].StandardID != "USAO-HS-ENGLISH" {
		t.Fatalf("standard id = %s", res.Findings[0].StandardID)
	}
	if res.Findings[0].AlignmentStatus != VerdictMet {
		t.Fatalf("verdict = %s", res.Findings[0].AlignmentStatus)
	}
}

func TestIntroEvaluatorScoresSubjectAreas(t *testing.T) {
	client := &scriptedClient{respond: func(req llm.GenerateRequest) (string, error) {
		return criteriaJSON(t, "readinessAnalysis", map[string]string{
			"english":    VerdictMet,
			"math":       VerdictMet,
			"science":    VerdictPartiallyMet,
			"humanities": VerdictGap,
			"arts":       VerdictGap,
		}), nil
	}}

	ev := &introEvaluator{client: llm.StructuredClient{Base: client, MaxAttempts: 1}, textLimit: 4000}
	res := ev.Evaluate(context.Background(), "Composition, college algebra, biology labs")

	if res.PartialScore != 2.5 || res.PartialMax != 5.0 {
		t.Fatalf("score = %v/%v, want 2.5/5.0", res.PartialScore, res.PartialMax)
	}
	for _, f := range res.Findings {
		if !strings.HasPrefix(f.StandardID, "USAO-INTRO-") {
			t.Fatalf("standard id = %s", f.StandardID)
		}
	}
}

func TestIndustryEvaluatorConvertsPercentToPoints(t *testing.T) {
	client := &scriptedClient{respond: func(req llm.GenerateRequest) (string, error) {
		return industryJSON(t, map[string]int{
			"health":        90,
			"manufacturing": 66,
			"retail":        33,
			"professional":  10,
		}), nil
	}}

	ev := &industryEvaluator{client: llm.StructuredClient{Base: client, MaxAttempts: 1}, textLimit: 4000}
	res := ev.Evaluate(context.Background(), "Biology, chemistry, robotics and CAD electives")

	// floor(90/33)=2, floor(66/33)=2, floor(33/33)=1, floor(10/33)=0
	if res.PartialScore != 5.0 {
		t.Fatalf("partial score = %v, want 5.0", res.PartialScore)
	}
	if res.PartialMax != 12.0 {
		t.Fatalf("partial max = %v, want 12.0", res.PartialMax)
	}
	if len(res.Industries) != 4 {
		t.Fatalf("industries = %d, want 4", len(res.Industries))
	}

	statusByID := map[string]string{}
	for _, ind := range res.Industries {
		statusByID[ind.ID] = ind.AlignmentStatusText
	}
	want := map[string]string{
		"ind-align-health":        "Strong Alignment",
		"ind-align-manufacturing": "Moderate Alignment",
		"ind-align-retail":        "Some Alignment",
		"ind-align-professional":  "Limited Alignment",
	}
	for id, text := range want {
		if statusByID[id] != text {
			t.Fatalf("%s status = %q, want %q", id, statusByID[id], text)
		}
	}
}

func TestIndustryEvaluatorCapsPercent(t *testing.T) {
	client := &scriptedClient{respond: func(req llm.GenerateRequest) (string, error) {
		return industryJSON(t, map[string]int{
			"health":        100,
			"manufacturing": 0,
			"retail":        0,
			"professional":  0,
		}), nil
	}}

	ev := &industryEvaluator{client: llm.StructuredClient{Base: client, MaxAttempts: 1}, textLimit: 4000}
	res := ev.Evaluate(context.Background(), "medical anatomy psychology health sciences")

	if res.Industries[0].AlignmentScorePercent != 90 {
		t.Fatalf("percent = %d, want cap at 90", res.Industries[0].AlignmentScorePercent)
	}
}

func TestEvaluatorFailureReturnsMessageNotError(t *testing.T) {
	client := &scriptedClient{respond: func(req llm.GenerateRequest) (string, error) {
		return "", llm.ErrQuotaExceeded
	}}

	ev := &admissionsEvaluator{client: llm.StructuredClient{Base: client, MaxAttempts: 1}, textLimit: 4000}
	res := ev.Evaluate(context.Background(), "some curriculum text of sufficient length")

	if res.ErrMessage == "" {
		t.Fatal("expected error message")
	}
	if len(res.Findings) != 0 {
		t.Fatalf("findings = %d, want 0", len(res.Findings))
	}
	if res.PartialScore != 0 || res.PartialMax != 0 {
		t.Fatalf("failed aspect must not contribute score, got %v/%v", res.PartialScore, res.PartialMax)
	}
}

func TestEvaluatorTruncatesPromptText(t *testing.T) {
	var sawPrompt string
	client := &scriptedClient{respond: func(req llm.GenerateRequest) (string, error) {
		sawPrompt = req.Prompt
		return criteriaJSON(t, "admissionsAnalysis", map[string]string{
			"english": VerdictMet, "math": VerdictMet, "science": VerdictMet,
			"history": VerdictMet, "electives": VerdictMet,
		}), nil
	}}

	longText := strings.Repeat("curriculum ", 100)
	ev := &admissionsEvaluator{client: llm.StructuredClient{Base: client, MaxAttempts: 1}, textLimit: 50}
	ev.Evaluate(context.Background(), longText)

	if strings.Contains(sawPrompt, longText) {
		t.Fatal("prompt contains untruncated text")
	}
	if !strings.Contains(sawPrompt, longText[:50]) {
		t.Fatal("prompt missing truncated excerpt")
	}
}
