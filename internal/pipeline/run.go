// Package pipeline orchestrates the capture-then-compose flow over a batch
// of story items.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rmarques/newsstory/internal/capture"
	"github.com/rmarques/newsstory/internal/compose"
	"github.com/rmarques/newsstory/internal/story"
)

// Capturer produces a screenshot for a URL.
type Capturer interface {
	Capture(ctx context.Context, url string) (*capture.Result, error)
}

// Compositor renders a story image from a background and item text.
type Compositor interface {
	Compose(background image.Image, item story.Item) (*compose.Story, error)
}

// ProgressEvent reports a stage transition for one item during a run.
type ProgressEvent struct {
	Stage   string `json:"stage"` // "capture" or "compose"
	Index   int    `json:"index"` // 1-based item index
	Total   int    `json:"total"`
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
}

// ProgressCallback is called as items move through the pipeline.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds everything a pipeline run needs.
type RunOptions struct {
	Items      []story.Item
	ShotsDir   string
	OutDir     string
	ReuseShots bool // skip capture and read prior screenshots from ShotsDir
	Capturer   Capturer
	Compositor Compositor
	Verbose    bool
	OnProgress ProgressCallback
}

// Outcome records what happened to one item. Exactly one of OutputPath and
// Err is meaningful.
type Outcome struct {
	Item       story.Item
	OutputPath string
	Err        error
}

// Succeeded reports whether the item produced an output artifact.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Report summarizes a pipeline run.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Requested  int
	Succeeded  int
	Outcomes   []Outcome
}

// Summary renders the run result: how many of N items succeeded and why each
// failure occurred.
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s: %d of %d stories generated\n", r.RunID, r.Succeeded, r.Requested)
	for i, o := range r.Outcomes {
		if o.Succeeded() {
			fmt.Fprintf(&sb, "  [%d] ok     %s -> %s\n", i+1, o.Item.URL, o.OutputPath)
		} else {
			fmt.Fprintf(&sb, "  [%d] failed %s: %v\n", i+1, o.Item.URL, o.Err)
		}
	}
	return sb.String()
}

// StoryPath returns the deterministic, index-based output path for an item.
func StoryPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("story_%02d.png", index))
}

// Run processes items sequentially: capture (or reuse a prior screenshot),
// compose, write. A capture or compose failure is recorded as that item's
// outcome and the batch continues; a missing font asset aborts the run since
// no output could ever be correct. Output files are written atomically, so a
// failed item never leaves a partial artifact behind.
func Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if opts.Capturer == nil && !opts.ReuseShots {
		return nil, fmt.Errorf("pipeline: capturer is required")
	}
	if opts.Compositor == nil {
		return nil, fmt.Errorf("pipeline: compositor is required")
	}
	if err := os.MkdirAll(opts.ShotsDir, 0755); err != nil {
		return nil, fmt.Errorf("pipeline: failed to create shots dir: %w", err)
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("pipeline: failed to create output dir: %w", err)
	}

	report := &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Requested: len(opts.Items),
	}

	for i, item := range opts.Items {
		index := i + 1
		if err := ctx.Err(); err != nil {
			report.Outcomes = append(report.Outcomes, Outcome{Item: item, Err: err})
			continue
		}

		outPath, err := runItem(ctx, &opts, item, index)
		if err != nil {
			if errors.Is(err, compose.ErrAssetMissing) {
				report.FinishedAt = time.Now().UTC()
				return report, err
			}
			report.Outcomes = append(report.Outcomes, Outcome{Item: item, Err: err})
			continue
		}
		report.Outcomes = append(report.Outcomes, Outcome{Item: item, OutputPath: outPath})
		report.Succeeded++
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

// runItem executes the capture-then-compose unit for a single item.
func runItem(ctx context.Context, opts *RunOptions, item story.Item, index int) (string, error) {
	shotPath := capture.ShotPath(opts.ShotsDir, index)

	var res *capture.Result
	var err error
	if opts.ReuseShots {
		emit(opts, ProgressEvent{Stage: "capture", Index: index, Total: len(opts.Items), URL: item.URL, Message: "reusing existing screenshot"})
		res, err = capture.LoadShot(shotPath, item.URL)
	} else {
		emit(opts, ProgressEvent{Stage: "capture", Index: index, Total: len(opts.Items), URL: item.URL})
		res, err = opts.Capturer.Capture(ctx, item.URL)
		if err == nil {
			// Persist the raw shot for later reuse; a failed save is not an
			// item failure.
			if saveErr := capture.SaveShot(shotPath, res); saveErr != nil {
				log.Printf("warning: %v", saveErr)
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("capture failed: %w", err)
	}

	background, _, err := image.Decode(bytes.NewReader(res.Image))
	if err != nil {
		return "", fmt.Errorf("failed to decode screenshot for %s: %w", item.URL, err)
	}

	emit(opts, ProgressEvent{Stage: "compose", Index: index, Total: len(opts.Items), URL: item.URL})
	st, err := opts.Compositor.Compose(background, item)
	if err != nil {
		if errors.Is(err, compose.ErrAssetMissing) {
			return "", err
		}
		return "", fmt.Errorf("compose failed: %w", err)
	}

	outPath := StoryPath(opts.OutDir, index)
	if err := writeAtomic(outPath, st); err != nil {
		return "", err
	}
	return outPath, nil
}

// writeAtomic encodes the story to a temp file in the output directory and
// renames it into place, so a failed item never leaves a partial file.
func writeAtomic(path string, st *compose.Story) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".story-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	tmpName := tmp.Name()

	if err := st.EncodePNG(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func emit(opts *RunOptions, event ProgressEvent) {
	if opts.OnProgress != nil {
		opts.OnProgress(event)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] %s [%d/%d] %s %s", event.Stage, event.Index, event.Total, event.URL, event.Message)
	}
}
