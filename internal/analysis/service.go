package analysis

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scooter7/BrioCurriculum/internal/curricula"
	"github.com/scooter7/BrioCurriculum/internal/extract"
	"github.com/scooter7/BrioCurriculum/internal/llm"
	"github.com/scooter7/BrioCurriculum/internal/shared/metrics"
	"github.com/scooter7/BrioCurriculum/internal/shared/storage/object"
	"github.com/scooter7/BrioCurriculum/internal/shared/telemetry"
)

const (
	defaultMinTextLength = 20
	snippetLength        = 100
	finalWriteTimeout    = 10 * time.Second
)

// Service orchestrates analysis runs. Trigger flips the record to PROCESSING
// synchronously and spawns a detached background run; the run's finalizer
// writes exactly one terminal update. A newer trigger for the same curriculum
// cancels the stale run, whose finalizer then skips its write.
type Service struct {
	Repo            curricula.Repo
	Store           object.ObjectStore
	LLM             llm.Client
	Engine          string
	MinTextLength   int
	PromptTextLimit int
	MaxAttempts     int

	mu      sync.Mutex
	running map[string]*runHandle
}

type runHandle struct {
	cancel context.CancelFunc
}

// Trigger starts an analysis run for the curriculum and returns the updated
// record. The caller gets a response before any pipeline work happens.
func (s *Service) Trigger(ctx context.Context, id string) (curricula.Curriculum, error) {
	if id == "" {
		return curricula.Curriculum{}, curricula.ErrInvalidInput
	}

	cur, err := s.Repo.MarkProcessing(ctx, id, time.Now().UTC())
	if err != nil {
		return curricula.Curriculum{}, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	handle := &runHandle{cancel: cancel}

	s.mu.Lock()
	if s.running == nil {
		s.running = make(map[string]*runHandle)
	}
	if prev, ok := s.running[id]; ok {
		prev.cancel()
	}
	s.running[id] = handle
	s.mu.Unlock()

	metrics.IncRunStarted()
	telemetry.Info("analysis.triggered", map[string]any{"curriculum_id": id})

	go s.runAnalysis(runCtx, handle, cur)

	return cur, nil
}

func (s *Service) runAnalysis(ctx context.Context, handle *runHandle, cur curricula.Curriculum) {
	started := time.Now()
	report := newReport(s.Engine)
	status := curricula.StatusFailed

	defer func() {
		if r := recover(); r != nil {
			report.AnalysisComplete = false
			report.Errors = append(report.Errors, fmt.Sprintf("analysis run panicked: %v", r))
			status = curricula.StatusFailed
			telemetry.Error("analysis.panic", map[string]any{
				"curriculum_id": cur.ID,
				"panic":         fmt.Sprintf("%v", r),
			})
		}
		s.finish(ctx, handle, cur.ID, status, report, started)
	}()

	status = s.execute(ctx, cur, report)
}

func (s *Service) execute(ctx context.Context, cur curricula.Curriculum, report *Report) string {
	rc, err := s.Store.Open(ctx, cur.StorageKey)
	if err != nil {
		report.Errors = append(report.Errors, "failed to fetch stored document: "+err.Error())
		report.OverallStatusText = "Analysis Failed"
		return curricula.StatusFailed
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		report.Errors = append(report.Errors, "failed to read stored document: "+err.Error())
		report.OverallStatusText = "Analysis Failed"
		return curricula.StatusFailed
	}

	text, err := extract.ExtractTextFromBytes(ctx, data, cur.MimeType, cur.FileName)
	if err != nil {
		report.Errors = append(report.Errors, "text extraction failed: "+err.Error())
		report.OverallStatusText = "Analysis Failed"
		return curricula.StatusFailed
	}

	report.ExtractedTextSnippet = snippet(text, snippetLength)

	minLen := s.MinTextLength
	if minLen <= 0 {
		minLen = defaultMinTextLength
	}
	if len(strings.TrimSpace(text)) < minLen {
		report.OverallAlignmentScore = 5
		report.OverallStatusText = "Insufficient Data"
		report.StandardAlignmentDetails.Summary = "Not enough text from curriculum to perform analysis."
		report.Errors = append(report.Errors, fmt.Sprintf("extracted text too short for analysis (min %d chars)", minLen))
		return curricula.StatusFailed
	}

	structured := llm.StructuredClient{Base: s.LLM, MaxAttempts: s.MaxAttempts}
	evaluators := Evaluators(structured, s.PromptTextLimit)

	results := make([]EvalResult, len(evaluators))
	g, gctx := errgroup.WithContext(ctx)
	for i, ev := range evaluators {
		i, ev := i, ev
		g.Go(func() error {
			// errgroup does not recover goroutine panics; one escaping here
			// would kill the process before the run's finalizer writes.
			defer func() {
				if r := recover(); r != nil {
					results[i] = failedResult(ev.Name(), fmt.Errorf("panic: %v", r))
					telemetry.Error("analysis.evaluator_panic", map[string]any{
						"curriculum_id": cur.ID,
						"evaluator":     ev.Name(),
						"panic":         fmt.Sprintf("%v", r),
					})
				}
			}()
			results[i] = ev.Evaluate(gctx, text)
			return nil
		})
	}
	_ = g.Wait()

	var total, max float64
	for _, res := range results {
		total += res.PartialScore
		max += res.PartialMax
		if res.ErrMessage != "" {
			report.Errors = append(report.Errors, res.ErrMessage)
		}
	}

	report.StandardAlignmentDetails.Summary = results[0].Summary
	report.StandardAlignmentDetails.Findings = results[0].Findings
	report.IntroCourseReadiness.Summary = results[1].Summary
	report.IntroCourseReadiness.Findings = results[1].Findings
	report.RegionalIndustryAlignment.Summary = results[2].Summary
	if results[2].Industries != nil {
		report.RegionalIndustryAlignment.CurriculumAlignmentWithKeyIndustries = results[2].Industries
	}

	report.OverallAlignmentScore = overallScore(total, max)
	report.OverallStatusText = statusTextFor(report.OverallAlignmentScore)

	if len(report.Errors) > 0 {
		report.AnalysisComplete = false
		return curricula.StatusFailed
	}
	report.AnalysisComplete = true
	return curricula.StatusCompleted
}

// finish deregisters the run and persists the terminal state. A run whose
// context was canceled has been superseded by a newer trigger and must not
// write; the newer run owns the record now.
func (s *Service) finish(ctx context.Context, handle *runHandle, id, status string, report *Report, started time.Time) {
	s.mu.Lock()
	if s.running[id] == handle {
		delete(s.running, id)
	}
	s.mu.Unlock()

	if ctx.Err() != nil {
		metrics.IncRunSuperseded()
		telemetry.Info("analysis.superseded", map[string]any{"curriculum_id": id})
		return
	}

	if len(report.Errors) > 0 {
		status = curricula.StatusFailed
	}

	durationMs := float64(time.Since(started)) / float64(time.Millisecond)
	metrics.ObserveRunDurationMs(durationMs)
	if status == curricula.StatusCompleted {
		metrics.IncRunCompleted()
	} else {
		metrics.IncRunFailed()
	}

	var analysisError *string
	if len(report.Errors) > 0 {
		joined := strings.Join(report.Errors, "; ")
		analysisError = &joined
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), finalWriteTimeout)
	defer cancel()
	if _, err := s.Repo.CompleteAnalysis(writeCtx, id, status, analysisError, report, time.Now().UTC()); err != nil {
		telemetry.Error("analysis.persist_failed", map[string]any{
			"curriculum_id": id,
			"status":        status,
			"error":         err.Error(),
		})
		return
	}

	telemetry.Info("analysis.finished", map[string]any{
		"curriculum_id": id,
		"status":        status,
		"duration_ms":   durationMs,
		"score":         report.OverallAlignmentScore,
	})
}
