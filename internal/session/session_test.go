package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/ranker"
	"github.com/spigell/resume-ranker/internal/results"
)

type fakeUploader struct {
	calls   int32
	message string
	err     error

	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (f *fakeUploader) UploadResumes(_ context.Context, _ []ranker.File, _ string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}
	return f.message, f.err
}

func testFiles(names ...string) []ranker.File {
	files := make([]ranker.File, 0, len(names))
	for _, name := range names {
		files = append(files, ranker.File{Name: name, Reader: strings.NewReader("content of " + name)})
	}
	return files
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name        string
		requireDesc bool
		files       []ranker.File
		desc        string
		wantReason  string
	}{
		{name: "nil files", requireDesc: true, files: nil, desc: "Senior Engineer", wantReason: reasonNoFiles},
		{name: "empty files", requireDesc: false, files: []ranker.File{}, desc: "", wantReason: reasonNoFiles},
		{name: "blank description", requireDesc: true, files: testFiles("a.pdf"), desc: "  \n\t", wantReason: reasonMissingJobDesc},
		{name: "empty description", requireDesc: true, files: testFiles("a.pdf"), desc: "", wantReason: reasonMissingJobDesc},
		{name: "description optional", requireDesc: false, files: testFiles("a.pdf"), desc: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{message: "ok"}
			o := NewOrchestrator(up, tt.requireDesc, zap.NewNop())

			_, err := o.Submit(context.Background(), tt.files, tt.desc)
			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
				return
			}

			var validation *ValidationError
			require.True(t, errors.As(err, &validation), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantReason, validation.Reason)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Zero(t, atomic.LoadInt32(&up.calls))
			assert.Equal(t, Idle, o.State())
		})
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	up := &fakeUploader{
		message: "Processing complete.",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	o := NewOrchestrator(up, true, zap.NewNop())

	var completed int32
	o.OnComplete(func(context.Context, string) { atomic.AddInt32(&completed, 1) })

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), testFiles("a.pdf", "b.pdf"), "Senior Engineer")
		done <- err
	}()

	<-up.started
	assert.Equal(t, Busy, o.State())

	_, err := o.Submit(context.Background(), testFiles("c.pdf"), "Senior Engineer")
	require.ErrorIs(t, err, ErrAlreadyInProgress)
	assert.Equal(t, KindAlreadyInProgress, KindOf(err))

	close(up.release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&completed))
	assert.Equal(t, Idle, o.State())

	// The guard is released once the first submission resolves.
	_, err = o.Submit(context.Background(), testFiles("c.pdf"), "Senior Engineer")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&up.calls))
}

func TestSubmitFailureReturnsToIdle(t *testing.T) {
	remote := &ranker.RemoteError{Endpoint: ranker.UploadPath, StatusCode: http.StatusBadGateway, Err: errors.New("bad status")}
	up := &fakeUploader{err: remote}
	o := NewOrchestrator(up, false, zap.NewNop())

	var completed int32
	o.OnComplete(func(context.Context, string) { atomic.AddInt32(&completed, 1) })

	_, err := o.Submit(context.Background(), testFiles("a.pdf"), "")
	require.Error(t, err)
	assert.Equal(t, KindRemote, KindOf(err))
	assert.Equal(t, Idle, o.State())
	assert.Zero(t, atomic.LoadInt32(&completed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
}

func TestSubmitEmptyMessageFallsBack(t *testing.T) {
	o := NewOrchestrator(&fakeUploader{message: "  "}, false, zap.NewNop())

	var got string
	o.OnComplete(func(_ context.Context, message string) { got = message })
	o.OnComplete(nil)

	msg, err := o.Submit(context.Background(), testFiles("a.pdf"), "")
	require.NoError(t, err)
	assert.Equal(t, defaultCompleteMessage, msg)
	assert.Equal(t, defaultCompleteMessage, got)
}

type fakeSource struct {
	candidates []*ranker.Candidate
	err        error
}

func (f *fakeSource) GetRankedResumes(context.Context) ([]*ranker.Candidate, error) {
	return f.candidates, f.err
}

func TestRefreshFailureKeepsStore(t *testing.T) {
	store := results.NewStore()
	nav := results.NewNavigator(store)
	source := &fakeSource{candidates: []*ranker.Candidate{
		{Filename: "a.pdf", Score: 0.82, OriginalResume: "a"},
		{Filename: "b.pdf", Score: 0.67, OriginalResume: "b"},
	}}
	f := NewFetcher(source, store, nil, zap.NewNop())

	_, err := f.Refresh(context.Background())
	require.NoError(t, err)
	nav.SelectNext()

	before := store.Snapshot()
	source.candidates = nil
	source.err = &ranker.RemoteError{Endpoint: ranker.RankedPath, Err: errors.New("connection refused")}

	_, err = f.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindRemote, KindOf(err))
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 1, store.SelectedIndex())
}

func TestRefreshEmptyList(t *testing.T) {
	store := results.NewStore()
	store.Replace([]*ranker.Candidate{{Filename: "old.pdf", Score: 0.1}})
	nav := results.NewNavigator(store)

	got, err := NewFetcher(&fakeSource{candidates: []*ranker.Candidate{}}, store, nil, zap.NewNop()).Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, store.IsEmpty())
	assert.Equal(t, results.NoSelection, nav.SelectNext())
	assert.Equal(t, results.NoSelection, nav.SelectPrevious())

	_, _, ok := store.Current()
	assert.False(t, ok)
}

func TestRefreshAppliesFilters(t *testing.T) {
	store := results.NewStore()
	source := &fakeSource{candidates: []*ranker.Candidate{
		{Filename: "a.pdf", Score: 0.82},
		{Filename: "b.pdf", Score: 0.30},
	}}
	filters, err := filtering.Default(&filtering.Config{MinimumScore: 0.5}, zap.NewNop())
	require.NoError(t, err)

	got, err := NewFetcher(source, store, filters, zap.NewNop()).Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.pdf", got[0].Filename)
	assert.Equal(t, 0, store.SelectedIndex())
}

func TestRefreshConcurrent(t *testing.T) {
	store := results.NewStore()
	source := &fakeSource{candidates: []*ranker.Candidate{
		{Filename: "a.pdf", Score: 0.82},
		{Filename: "b.pdf", Score: 0.67},
		{Filename: "x.pdf", Score: 0.90},
		{Filename: "c.pdf", Score: 0.30},
	}}
	filters, err := filtering.Default(&filtering.Config{
		MinimumScore:     0.5,
		ExcludeFilenames: []string{"x.pdf"},
	}, zap.NewNop())
	require.NoError(t, err)
	f := NewFetcher(source, store, filters, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.Refresh(context.Background())
			if assert.NoError(t, err) {
				assert.Len(t, got, 2)
			}
		}()
	}
	wg.Wait()

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a.pdf", snapshot[0].Filename)
	assert.Equal(t, "b.pdf", snapshot[1].Filename)
	assert.Equal(t, 0, store.SelectedIndex())
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type fakeArtifacts struct {
	body *trackedBody
	err  error
}

func (f *fakeArtifacts) DownloadOptimized(context.Context, string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

type recordingSaver struct {
	calls int
	name  string
	data  string
	err   error
}

func (s *recordingSaver) Save(name string, r io.Reader) (string, error) {
	s.calls++
	s.name = name
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.data = string(data)
	return "/saved/" + name, nil
}

func TestDownload(t *testing.T) {
	body := &trackedBody{Reader: strings.NewReader("optimized")}
	saver := &recordingSaver{}
	d := NewDownloader(&fakeArtifacts{body: body}, saver, zap.NewNop())

	path, err := d.Download(context.Background(), "resume1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/saved/resume1_optimized.txt", path)
	assert.Equal(t, "optimized", saver.data)
	assert.True(t, body.closed)
}

func TestDownloadRemoteFailure(t *testing.T) {
	saver := &recordingSaver{}
	remote := &ranker.RemoteError{Endpoint: "/download_optimized/resume1.pdf", StatusCode: http.StatusNotFound, Err: errors.New("bad status")}
	d := NewDownloader(&fakeArtifacts{err: remote}, saver, zap.NewNop())

	_, err := d.Download(context.Background(), "resume1.pdf")
	require.Error(t, err)
	assert.Equal(t, KindRemote, KindOf(err))
	assert.Zero(t, saver.calls)
}

func TestDownloadBlankFilename(t *testing.T) {
	saver := &recordingSaver{}
	source := &countingArtifacts{}
	d := NewDownloader(source, saver, zap.NewNop())

	for _, filename := range []string{"", "   "} {
		_, err := d.Download(context.Background(), filename)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))

		var validation *ValidationError
		require.True(t, errors.As(err, &validation))
		assert.Equal(t, reasonNoFilename, validation.Reason)
	}

	assert.Zero(t, source.calls)
	assert.Zero(t, saver.calls)
}

type countingArtifacts struct {
	calls int
}

func (c *countingArtifacts) DownloadOptimized(context.Context, string) (io.ReadCloser, error) {
	c.calls++
	return io.NopCloser(strings.NewReader("optimized")), nil
}

func TestDownloadSaverFailureReleasesBody(t *testing.T) {
	body := &trackedBody{Reader: strings.NewReader("optimized")}
	d := NewDownloader(&fakeArtifacts{body: body}, &recordingSaver{err: errors.New("disk full")}, zap.NewNop())

	_, err := d.Download(context.Background(), "resume1.pdf")
	require.Error(t, err)
	assert.True(t, body.closed)
}

func TestOptimizedName(t *testing.T) {
	tests := map[string]string{
		"resume1.pdf":       "resume1_optimized.txt",
		"cv.docx":           "cv_optimized.txt",
		"notes":             "notes_optimized.txt",
		"../../etc/cv.pdf":  "cv_optimized.txt",
		"archive.tar.gz":    "archive.tar_optimized.txt",
		"":                  "resume_optimized.txt",
		"  spaced name.pdf": "spaced name_optimized.txt",
	}

	for in, want := range tests {
		assert.Equal(t, want, OptimizedName(in), in)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestFileSaver(t *testing.T) {
	dir := t.TempDir()
	s := &FileSaver{Dir: filepath.Join(dir, "out")}

	path, err := s.Save("resume1_optimized.txt", strings.NewReader("text"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "resume1_optimized.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text", string(data))

	_, err = s.Save("broken_optimized.txt", io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "resume1_optimized.txt", entries[0].Name())
}

func TestSessionUploadThenBrowse(t *testing.T) {
	var uploads, refreshes int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ranker.UploadPath:
			atomic.AddInt32(&uploads, 1)
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			assert.Len(t, r.MultipartForm.File["resumes"], 2)
			assert.Equal(t, "Senior Engineer", r.FormValue("job_description"))
			fmt.Fprint(w, `{"message": "Processing complete."}`)
		case ranker.RankedPath:
			atomic.AddInt32(&refreshes, 1)
			fmt.Fprint(w, `{"resumes": [
				{"filename": "resume1.pdf", "score": 0.82, "original_resume": "one", "optimized_resume": "one+", "evaluation": "strong"},
				{"filename": "resume2.pdf", "score": 0.67, "original_resume": "two", "optimized_resume": null, "evaluation": null}
			]}`)
		case "/download_optimized/resume1.pdf":
			fmt.Fprint(w, "one+")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := ranker.New(zap.NewNop(), ts.URL)
	dir := t.TempDir()
	s := New(client, Options{RequireJobDescription: true, Saver: &FileSaver{Dir: dir}}, zap.NewNop())

	var completed int32
	var refreshErr error
	s.Orchestrator.OnComplete(func(ctx context.Context, _ string) {
		atomic.AddInt32(&completed, 1)
		_, refreshErr = s.Fetcher.Refresh(ctx)
	})

	msg, err := s.Orchestrator.Submit(context.Background(), testFiles("resume1.pdf", "resume2.pdf"), "Senior Engineer")
	require.NoError(t, err)
	require.NoError(t, refreshErr)

	assert.Equal(t, "Processing complete.", msg)
	assert.Equal(t, Idle, s.Orchestrator.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&completed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&uploads))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))

	require.Equal(t, 2, s.Store.Len())
	assert.Equal(t, 0, s.Store.SelectedIndex())

	snapshot := s.Store.Snapshot()
	assert.Equal(t, 0.82, snapshot[0].Score)
	assert.Equal(t, 0.67, snapshot[1].Score)
	assert.False(t, snapshot[1].HasOptimized())

	current, _, ok := s.Store.Current()
	require.True(t, ok)
	path, err := s.Downloader.Download(context.Background(), current.Filename)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "resume1_optimized.txt"), path)

	s.Navigator.SelectNext()
	current, _, _ = s.Store.Current()
	_, err = s.Downloader.Download(context.Background(), current.Filename)
	assert.Equal(t, KindRemote, KindOf(err))

	_, err = s.Navigator.SelectIndex(5)
	assert.Equal(t, KindOutOfRange, KindOf(err))
	assert.Equal(t, 1, s.Store.SelectedIndex())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
	assert.Equal(t, "remote", KindRemote.String())
	assert.Equal(t, "busy", Busy.String())
}
