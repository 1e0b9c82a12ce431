package transcribe

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/leviosa/internal/audio"
	"github.com/mgpai22/leviosa/internal/subtitle"
)

type fakeTranscriber struct {
	mu      sync.Mutex
	results map[string]*Result
	errs    map[string]error
	calls   []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filepath.Base(path))
	if err := f.errs[filepath.Base(path)]; err != nil {
		return nil, err
	}
	if r, ok := f.results[filepath.Base(path)]; ok {
		return r, nil
	}
	return &Result{}, nil
}

func fakeSplit(ctx context.Context, audioPath string, total, chunk time.Duration, outputDir string, concurrency int) ([]audio.ChunkInfo, error) {
	var chunks []audio.ChunkInfo
	for i := 0; time.Duration(i)*chunk < total; i++ {
		end := time.Duration(i+1) * chunk
		if end > total {
			end = total
		}
		chunks = append(chunks, audio.ChunkInfo{
			Path:      filepath.Join(outputDir, []string{"c0.wav", "c1.wav", "c2.wav"}[i]),
			Index:     i,
			StartTime: time.Duration(i) * chunk,
			EndTime:   end,
		})
	}
	return chunks, nil
}

func newTestChunked(inner Transcriber, total time.Duration) *ChunkedTranscriber {
	ct := NewChunkedTranscriber(inner, time.Minute, 2, nil)
	ct.probe = func(context.Context, string) (time.Duration, error) { return total, nil }
	ct.split = fakeSplit
	return ct
}

func TestChunkedShortAudioSkipsSplitting(t *testing.T) {
	inner := &fakeTranscriber{results: map[string]*Result{
		"audio.wav": {Text: "short", Segments: []subtitle.RawSegment{{Start: 0, End: 1, Text: "short"}}},
	}}
	ct := newTestChunked(inner, 30*time.Second)
	ct.split = func(context.Context, string, time.Duration, time.Duration, string, int) ([]audio.ChunkInfo, error) {
		t.Fatal("split should not be called for short audio")
		return nil, nil
	}

	result, err := ct.Transcribe(context.Background(), "/work/audio.wav")
	require.NoError(t, err)
	assert.Equal(t, "short", result.Text)
	assert.Equal(t, 30*time.Second, result.Duration)
}

func TestChunkedOffsetsSegments(t *testing.T) {
	inner := &fakeTranscriber{results: map[string]*Result{
		"c0.wav": {Text: "one", Language: "vi", Segments: []subtitle.RawSegment{{Start: 1, End: 2, Text: "one"}}},
		"c1.wav": {Text: "two", Segments: []subtitle.RawSegment{{Start: 0.5, End: 3, Text: "two"}}},
		"c2.wav": {Text: "three"},
	}}
	ct := newTestChunked(inner, 150*time.Second)

	result, err := ct.Transcribe(context.Background(), "/work/audio.wav")
	require.NoError(t, err)

	assert.Equal(t, "one two three", result.Text)
	assert.Equal(t, "vi", result.Language)
	assert.Equal(t, 150*time.Second, result.Duration)
	require.Len(t, result.Segments, 3)
	assert.Equal(t, subtitle.RawSegment{Start: 1, End: 2, Text: "one"}, result.Segments[0])
	assert.Equal(t, subtitle.RawSegment{Start: 60.5, End: 63, Text: "two"}, result.Segments[1])
	// text-only chunk spans its whole window
	assert.Equal(t, subtitle.RawSegment{Start: 120, End: 150, Text: "three"}, result.Segments[2])
}

func TestChunkedWithoutTimingLeavesSegmentsEmpty(t *testing.T) {
	inner := &fakeTranscriber{results: map[string]*Result{
		"c0.wav": {Text: "Câu một."},
		"c1.wav": {Text: "Câu hai?"},
	}}
	ct := newTestChunked(inner, 90*time.Second)

	result, err := ct.Transcribe(context.Background(), "/work/audio.wav")
	require.NoError(t, err)
	assert.Empty(t, result.Segments)
	assert.Equal(t, "Câu một. Câu hai?", result.Text)
}

func TestChunkedPropagatesChunkError(t *testing.T) {
	inner := &fakeTranscriber{errs: map[string]error{"c1.wav": errors.New("rate limited")}}
	ct := newTestChunked(inner, 90*time.Second)

	_, err := ct.Transcribe(context.Background(), "/work/audio.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 1 failed")
}

func TestChunkedProbeFailureFallsBack(t *testing.T) {
	inner := &fakeTranscriber{results: map[string]*Result{"audio.wav": {Text: "whole"}}}
	ct := newTestChunked(inner, 0)
	ct.probe = func(context.Context, string) (time.Duration, error) { return 0, errors.New("no ffprobe") }

	result, err := ct.Transcribe(context.Background(), "/work/audio.wav")
	require.NoError(t, err)
	assert.Equal(t, "whole", result.Text)
	assert.Equal(t, []string{"audio.wav"}, inner.calls)
}
