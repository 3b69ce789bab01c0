package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarques/newsstory/internal/capture"
	"github.com/rmarques/newsstory/internal/compose"
	"github.com/rmarques/newsstory/internal/story"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// stubCapturer returns a canned screenshot, or a per-URL error.
type stubCapturer struct {
	image []byte
	errs  map[string]error
	calls []string
}

func (s *stubCapturer) Capture(_ context.Context, url string) (*capture.Result, error) {
	s.calls = append(s.calls, url)
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	return &capture.Result{SourceURL: url, Image: s.image}, nil
}

// stubCompositor renders a fixed-size story, or fails.
type stubCompositor struct {
	err error
}

func (s *stubCompositor) Compose(_ image.Image, _ story.Item) (*compose.Story, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &compose.Story{Width: 4, Height: 4, Image: image.NewNRGBA(image.Rect(0, 0, 4, 4))}, nil
}

func testItems(n int) []story.Item {
	items := make([]story.Item, n)
	for i := range items {
		items[i] = story.Item{
			Title: fmt.Sprintf("Story %d", i+1),
			URL:   fmt.Sprintf("https://t.example/%d", i+1),
		}
	}
	return items
}

func runOpts(t *testing.T, items []story.Item, cap Capturer, comp Compositor) RunOptions {
	t.Helper()
	base := t.TempDir()
	return RunOptions{
		Items:      items,
		ShotsDir:   base + "/shots",
		OutDir:     base + "/out",
		Capturer:   cap,
		Compositor: comp,
	}
}

func TestRun_AllSucceed(t *testing.T) {
	cap := &stubCapturer{image: pngBytes(t, 10, 10)}
	opts := runOpts(t, testItems(3), cap, &stubCompositor{})

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 3, report.Succeeded)
	require.Len(t, report.Outcomes, 3)

	for i, o := range report.Outcomes {
		assert.True(t, o.Succeeded())
		assert.Equal(t, StoryPath(opts.OutDir, i+1), o.OutputPath)
		_, statErr := os.Stat(o.OutputPath)
		assert.NoError(t, statErr, "output file should exist")
	}

	// Raw shots persisted for reuse.
	_, err = os.Stat(capture.ShotPath(opts.ShotsDir, 1))
	assert.NoError(t, err)
}

func TestRun_FailureIsolated(t *testing.T) {
	items := testItems(3)
	cap := &stubCapturer{
		image: pngBytes(t, 10, 10),
		errs: map[string]error{
			items[1].URL: fmt.Errorf("%w: %s", capture.ErrCaptureTimeout, items[1].URL),
		},
	}
	opts := runOpts(t, items, cap, &stubCompositor{})

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Outcomes, 3)

	assert.True(t, report.Outcomes[0].Succeeded())
	assert.False(t, report.Outcomes[1].Succeeded())
	assert.ErrorIs(t, report.Outcomes[1].Err, capture.ErrCaptureTimeout)
	assert.True(t, report.Outcomes[2].Succeeded())

	// Item 3 keeps its index-based name despite item 2 failing.
	_, err = os.Stat(StoryPath(opts.OutDir, 3))
	assert.NoError(t, err)
	_, err = os.Stat(StoryPath(opts.OutDir, 2))
	assert.True(t, os.IsNotExist(err), "failed item must leave no output file")
}

func TestRun_AssetMissingAborts(t *testing.T) {
	cap := &stubCapturer{image: pngBytes(t, 10, 10)}
	opts := runOpts(t, testItems(3), cap, &stubCompositor{err: fmt.Errorf("%w: /fonts/title.ttf", compose.ErrAssetMissing)})

	report, err := Run(context.Background(), opts)
	assert.ErrorIs(t, err, compose.ErrAssetMissing)
	require.NotNil(t, report)
	assert.Zero(t, report.Succeeded)
	// Aborted on the first item; the rest were never attempted.
	assert.Len(t, cap.calls, 1)
}

func TestRun_ReuseShots(t *testing.T) {
	items := testItems(2)
	opts := runOpts(t, items, nil, &stubCompositor{})
	opts.ReuseShots = true
	require.NoError(t, os.MkdirAll(opts.ShotsDir, 0755))

	// Only item 1 has a prior screenshot.
	require.NoError(t, os.WriteFile(capture.ShotPath(opts.ShotsDir, 1), pngBytes(t, 10, 10), 0644))

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.True(t, report.Outcomes[0].Succeeded())
	assert.ErrorIs(t, report.Outcomes[1].Err, capture.ErrShotMissing)
}

func TestRun_UndecodableShot(t *testing.T) {
	cap := &stubCapturer{image: []byte("not an image")}
	opts := runOpts(t, testItems(1), cap, &stubCompositor{})

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Zero(t, report.Succeeded)
	assert.False(t, report.Outcomes[0].Succeeded())
}

func TestRun_MissingCollaborators(t *testing.T) {
	opts := runOpts(t, testItems(1), nil, &stubCompositor{})
	_, err := Run(context.Background(), opts)
	assert.Error(t, err)

	opts = runOpts(t, testItems(1), &stubCapturer{image: pngBytes(t, 4, 4)}, nil)
	_, err = Run(context.Background(), opts)
	assert.Error(t, err)
}

func TestRun_NoPartialFiles(t *testing.T) {
	cap := &stubCapturer{image: pngBytes(t, 10, 10)}
	opts := runOpts(t, testItems(1), cap, &stubCompositor{err: fmt.Errorf("compose exploded")})

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Zero(t, report.Succeeded)

	entries, err := os.ReadDir(opts.OutDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temp files may remain")
}

func TestReport_Summary(t *testing.T) {
	items := testItems(3)
	cap := &stubCapturer{
		image: pngBytes(t, 10, 10),
		errs: map[string]error{
			items[2].URL: fmt.Errorf("%w: %s", capture.ErrCaptureNetwork, items[2].URL),
		},
	}
	opts := runOpts(t, items, cap, &stubCompositor{})

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	summary := report.Summary()
	assert.Contains(t, summary, "2 of 3 stories generated")
	assert.Contains(t, summary, "failed "+items[2].URL)
	assert.Contains(t, summary, "capture network failure")
}
