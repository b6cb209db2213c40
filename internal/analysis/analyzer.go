package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/trendpulse/trendpulse/internal/config"
)

// ErrNoData is returned when no titles were collected for the day.
var ErrNoData = errors.New("no collected data for today")

// Completer produces an analysis reply for a system+user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Source provides the titles collected on a given day.
type Source interface {
	Collect(ctx context.Context, day time.Time) ([]string, error)
}

// Result is the analysis payload stored on disk.
type Result struct {
	FullAnalysis string `json:"full_analysis"`
}

// Record is the persisted analysis state. LastAnalysis doubles as the
// once-per-day guard.
type Record struct {
	RunID        string `json:"run_id"`
	LastAnalysis string `json:"last_analysis"` // RFC3339
	Result       Result `json:"result"`
}

// Analyzer runs the daily analysis: collect today's titles, ask the model,
// persist the result. It never runs more than once per calendar day; within
// a day the stored record is reused.
type Analyzer struct {
	DataDir    string
	PromptFile string    // Optional system prompt override
	MaxTitles  int       // Cap on titles per prompt; <=0 means unlimited
	Client     Completer // The analysis model
	Source     Source    // Where titles come from
	Now        func() time.Time
}

// StatePath returns the path of the persisted analysis record.
func (a *Analyzer) StatePath() string {
	return config.AnalysisPath(a.DataDir)
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// LoadRecord reads the persisted record. Returns nil without error when no
// record exists yet.
func (a *Analyzer) LoadRecord() (*Record, error) {
	data, err := os.ReadFile(a.StatePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading analysis record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing analysis record: %w", err)
	}

	return &rec, nil
}

// AnalyzedToday reports whether a valid record from the current day exists.
// A corrupt or undated record counts as not analyzed, matching the tolerant
// read of the state file.
func (a *Analyzer) AnalyzedToday() bool {
	rec, err := a.LoadRecord()
	if err != nil || rec == nil || rec.LastAnalysis == "" {
		return false
	}

	last, err := time.Parse(time.RFC3339, rec.LastAnalysis)
	if err != nil {
		return false
	}

	y1, m1, d1 := last.Date()
	y2, m2, d2 := a.now().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Run performs the daily analysis. When today's analysis already exists the
// stored record is returned with ran=false and nothing is invoked. ErrNoData
// is returned when the day has no collected titles.
func (a *Analyzer) Run(ctx context.Context) (rec *Record, ran bool, err error) {
	if a.AnalyzedToday() {
		rec, err := a.LoadRecord()
		if err != nil {
			return nil, false, err
		}
		return rec, false, nil
	}

	now := a.now()
	entries, err := a.Source.Collect(ctx, now)
	if err != nil {
		return nil, false, fmt.Errorf("collecting titles: %w", err)
	}
	if len(entries) == 0 {
		return nil, false, ErrNoData
	}

	systemPrompt, _ := LoadSystemPrompt(a.PromptFile)
	userPrompt := BuildUserPrompt(entries, a.MaxTitles)

	text, err := a.Client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, false, fmt.Errorf("running analysis: %w", err)
	}

	rec = &Record{
		RunID:        uuid.NewString(),
		LastAnalysis: now.Format(time.RFC3339),
		Result:       Result{FullAnalysis: text},
	}

	if err := a.saveRecord(rec); err != nil {
		return nil, false, err
	}

	return rec, true, nil
}

func (a *Analyzer) saveRecord(rec *Record) error {
	path := a.StatePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating analysis dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analysis record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing analysis record: %w", err)
	}

	return nil
}
