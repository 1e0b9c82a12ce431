package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/leviosa/internal/subtitle"
	"github.com/mgpai22/leviosa/internal/transcribe"
	"github.com/mgpai22/leviosa/internal/video"
)

type fakeProcessor struct {
	mu         sync.Mutex
	extractErr error
	burnErr    error
	audioPaths []string
	burned     []string
}

func (f *fakeProcessor) ExtractAudio(_ context.Context, _, outputPath string, _ video.ExtractAudioOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.extractErr != nil {
		return f.extractErr
	}
	f.audioPaths = append(f.audioPaths, outputPath)
	return os.WriteFile(outputPath, []byte("RIFF"), 0o644)
}

func (f *fakeProcessor) BurnSubtitles(_ context.Context, _, subtitlePath, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.burnErr != nil {
		return f.burnErr
	}
	f.burned = append(f.burned, subtitlePath)
	return os.WriteFile(outputPath, []byte("video"), 0o644)
}

type fakeTranscriber struct {
	result  *transcribe.Result
	err     error
	gotLang string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (*transcribe.Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, err
	}
	f.gotLang = transcribe.LanguageFrom(ctx, "")
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestPipeline(t *testing.T, proc *fakeProcessor, tr *fakeTranscriber) (*Pipeline, string) {
	t.Helper()
	outDir := filepath.Join(t.TempDir(), "outputs")
	return New(proc, tr, outDir, WithWorkDir(t.TempDir())), outDir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeText, mode)

	mode, err = ParseMode(" Subtitle ")
	require.NoError(t, err)
	assert.Equal(t, ModeSubtitle, mode)

	_, err = ParseMode("karaoke")
	assert.Error(t, err)
}

func TestRunTextMode(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{result: &transcribe.Result{
		Text:     "  Xin chào các bạn.  ",
		Language: "vietnamese",
	}}
	p, outDir := newTestPipeline(t, proc, tr)

	out, err := p.Run(context.Background(), Request{VideoPath: "/videos/lesson.mp4", Language: "vi"})
	require.NoError(t, err)

	assert.Equal(t, ModeText, out.Mode)
	assert.Equal(t, "Xin chào các bạn.", out.Text)
	assert.Equal(t, "vi", out.Language)
	assert.Equal(t, "vi", tr.gotLang)
	assert.Nil(t, out.Segments)
	assert.Empty(t, out.SubtitlePath)
	assert.Equal(t, filepath.Join(outDir, "lesson.txt"), out.TranscriptPath)
	assert.Equal(t, "Xin chào các bạn.\n", readFile(t, out.TranscriptPath))

	// scratch audio is removed after the run
	require.Len(t, proc.audioPaths, 1)
	assert.NoFileExists(t, proc.audioPaths[0])
}

func TestRunSubtitleModeRecognized(t *testing.T) {
	tr := &fakeTranscriber{result: &transcribe.Result{
		Text: "Hello world. Bye.",
		Segments: []subtitle.RawSegment{
			{Start: 0.0, End: 1.5, Text: " Hello world. "},
			{Start: 1.5, End: 2.0, Text: "  "},
			{Start: 2.0, End: 3.25, Text: "Bye."},
		},
		Language: "en",
	}}
	p, _ := newTestPipeline(t, &fakeProcessor{}, tr)

	out, err := p.Run(context.Background(), Request{
		VideoPath: "/videos/talk.mkv",
		Mode:      ModeSubtitle,
	})
	require.NoError(t, err)

	require.NotNil(t, out.Segments)
	assert.Equal(t, subtitle.KindRecognized, out.Segments.Kind())
	assert.Len(t, out.Segments.List(), 3)
	assert.Equal(t, ".srt", filepath.Ext(out.SubtitlePath))

	want := "1\n00:00:00,000 --> 00:00:01,500\nHello world.\n\n" +
		"2\n00:00:02,000 --> 00:00:03,250\nBye.\n\n"
	assert.Equal(t, want, readFile(t, out.SubtitlePath))
}

func TestRunSubtitleModeSyntheticFallback(t *testing.T) {
	tr := &fakeTranscriber{result: &transcribe.Result{Text: "First one. Second one!"}}
	p, _ := newTestPipeline(t, &fakeProcessor{}, tr)

	out, err := p.Run(context.Background(), Request{
		VideoPath: "/videos/clip.mp4",
		Mode:      ModeSubtitle,
		Format:    subtitle.FormatVTT,
	})
	require.NoError(t, err)

	assert.Equal(t, subtitle.KindSynthetic, out.Segments.Kind())
	assert.Equal(t, ".vtt", filepath.Ext(out.SubtitlePath))

	want := "WEBVTT\n\n" +
		"1\n00:00:00.000 --> 00:00:02.500\nFirst one.\n\n" +
		"2\n00:00:02.500 --> 00:00:05.000\nSecond one!\n\n"
	assert.Equal(t, want, readFile(t, out.SubtitlePath))
}

func TestRunTextFromSegments(t *testing.T) {
	tr := &fakeTranscriber{result: &transcribe.Result{
		Segments: []subtitle.RawSegment{
			{Start: 0, End: 1, Text: " Một "},
			{Start: 1, End: 2, Text: ""},
			{Start: 2, End: 3, Text: "hai."},
		},
	}}
	p, _ := newTestPipeline(t, &fakeProcessor{}, tr)

	out, err := p.Run(context.Background(), Request{VideoPath: "/videos/a.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "Một hai.", out.Text)
	assert.Equal(t, "Một hai.\n", readFile(t, out.TranscriptPath))
}

func TestRunSilentAudio(t *testing.T) {
	tr := &fakeTranscriber{result: &transcribe.Result{}}
	p, _ := newTestPipeline(t, &fakeProcessor{}, tr)

	out, err := p.Run(context.Background(), Request{VideoPath: "/videos/silence.mp4", Mode: ModeSubtitle})
	require.NoError(t, err)

	assert.Empty(t, out.Text)
	assert.Empty(t, out.Segments.List())
	assert.Empty(t, readFile(t, out.SubtitlePath))
	assert.Empty(t, readFile(t, out.TranscriptPath))
}

func TestRunBurn(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{result: &transcribe.Result{
		Text:     "Hi.",
		Segments: []subtitle.RawSegment{{Start: 0, End: 1, Text: "Hi."}},
	}}
	p, outDir := newTestPipeline(t, proc, tr)

	out, err := p.Run(context.Background(), Request{
		VideoPath: "/videos/demo.mp4",
		Mode:      ModeSubtitle,
		Burn:      true,
		BaseName:  "job-1",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "job-1_subtitled.mp4"), out.BurnedPath)
	assert.FileExists(t, out.BurnedPath)
	assert.Equal(t, []string{out.SubtitlePath}, proc.burned)
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		proc    *fakeProcessor
		tr      *fakeTranscriber
		req     Request
		wantErr error
	}{
		{
			name:    "extraction",
			proc:    &fakeProcessor{extractErr: video.ErrNoAudio},
			tr:      &fakeTranscriber{},
			req:     Request{VideoPath: "/v/a.mp4"},
			wantErr: ErrAudioExtraction,
		},
		{
			name:    "recognition",
			proc:    &fakeProcessor{},
			tr:      &fakeTranscriber{err: boom},
			req:     Request{VideoPath: "/v/a.mp4"},
			wantErr: ErrRecognition,
		},
		{
			name: "malformed segment",
			proc: &fakeProcessor{},
			tr: &fakeTranscriber{result: &transcribe.Result{
				Text:     "x",
				Segments: []subtitle.RawSegment{{Start: 2, End: 1, Text: "x"}},
			}},
			req:     Request{VideoPath: "/v/a.mp4", Mode: ModeSubtitle},
			wantErr: subtitle.ErrMalformedSegment,
		},
		{
			name: "burn",
			proc: &fakeProcessor{burnErr: boom},
			tr: &fakeTranscriber{result: &transcribe.Result{
				Segments: []subtitle.RawSegment{{Start: 0, End: 1, Text: "x"}},
			}},
			req:     Request{VideoPath: "/v/a.mp4", Mode: ModeSubtitle, Burn: true},
			wantErr: ErrBurn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPipeline(t, tt.proc, tt.tr)
			_, err := p.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRunRejectsBadRequests(t *testing.T) {
	p, _ := newTestPipeline(t, &fakeProcessor{}, &fakeTranscriber{})

	_, err := p.Run(context.Background(), Request{})
	assert.Error(t, err)

	_, err = p.Run(context.Background(), Request{VideoPath: "/v/a.mp4", Burn: true})
	assert.ErrorContains(t, err, "subtitle mode")

	_, err = p.Run(context.Background(), Request{VideoPath: "/v/a.wav", Mode: ModeSubtitle, Burn: true})
	assert.ErrorContains(t, err, "not a video file")
}
