package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/leviosa/internal/audio"
	"github.com/mgpai22/leviosa/internal/logging"
	"github.com/mgpai22/leviosa/internal/subtitle"
)

type (
	probeFunc func(ctx context.Context, path string) (time.Duration, error)
	splitFunc func(
		ctx context.Context,
		audioPath string,
		total, chunk time.Duration,
		outputDir string,
		concurrency int,
	) ([]audio.ChunkInfo, error)
)

// ChunkedTranscriber splits long recordings into fixed-length chunks,
// recognizes them concurrently with the wrapped Transcriber and stitches the
// results back onto one timeline.
type ChunkedTranscriber struct {
	inner         Transcriber
	chunkDuration time.Duration
	concurrency   int
	logger        *logging.Logger

	probe probeFunc
	split splitFunc
}

func NewChunkedTranscriber(
	inner Transcriber,
	chunkDuration time.Duration,
	concurrency int,
	logger *logging.Logger,
) *ChunkedTranscriber {
	if concurrency <= 0 {
		concurrency = 3
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &ChunkedTranscriber{
		inner:         inner,
		chunkDuration: chunkDuration,
		concurrency:   concurrency,
		logger:        logger,
		probe:         audio.GetDuration,
		split:         audio.ChunkAudio,
	}
}

func (t *ChunkedTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if t.chunkDuration <= 0 {
		return t.inner.Transcribe(ctx, audioPath)
	}

	total, err := t.probe(ctx, audioPath)
	if err != nil {
		t.logger.Warnw("Could not probe audio duration, transcribing in one piece",
			"audio", audioPath,
			"error", err,
		)
		return t.inner.Transcribe(ctx, audioPath)
	}
	if total <= t.chunkDuration {
		result, err := t.inner.Transcribe(ctx, audioPath)
		if err == nil && result.Duration == 0 {
			result.Duration = total
		}
		return result, err
	}

	chunkDir := filepath.Join(filepath.Dir(audioPath), "chunks-"+uuid.NewString())
	defer os.RemoveAll(chunkDir)

	chunks, err := t.split(ctx, audioPath, total, t.chunkDuration, chunkDir, t.concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}

	t.logger.Infow("Transcribing audio in chunks",
		"chunks", len(chunks),
		"chunk_duration", t.chunkDuration.String(),
		"concurrency", t.concurrency,
	)

	results := make([]*Result, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			result, err := t.inner.Transcribe(gctx, chunk.Path)
			if err != nil {
				return fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
			}
			t.logger.Debugw("Chunk transcribed",
				"chunk", chunk.Index,
				"segments", len(result.Segments),
			)
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeChunkResults(chunks, results)
	merged.Duration = total
	return merged, nil
}

// mergeChunkResults shifts every chunk's segments by the chunk offset. When
// some chunks have timing and others only text, the text-only chunks become
// one segment spanning their window; when none have timing the merged result
// has no segments at all so sentence splitting can take over downstream.
func mergeChunkResults(chunks []audio.ChunkInfo, results []*Result) *Result {
	timed := false
	for _, r := range results {
		if len(r.Segments) > 0 {
			timed = true
			break
		}
	}

	merged := &Result{}
	var texts []string
	for i, r := range results {
		text := strings.TrimSpace(r.Text)
		if text != "" {
			texts = append(texts, text)
		}
		if merged.Language == "" {
			merged.Language = r.Language
		}
		if !timed {
			continue
		}

		offset := chunks[i].StartTime.Seconds()
		if len(r.Segments) == 0 {
			if text != "" {
				merged.Segments = append(merged.Segments, subtitle.RawSegment{
					Start: offset,
					End:   chunks[i].EndTime.Seconds(),
					Text:  text,
				})
			}
			continue
		}
		for _, seg := range r.Segments {
			merged.Segments = append(merged.Segments, subtitle.RawSegment{
				Start: seg.Start + offset,
				End:   seg.End + offset,
				Text:  seg.Text,
			})
		}
	}
	merged.Text = strings.Join(texts, " ")

	return merged
}
