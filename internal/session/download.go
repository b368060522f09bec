package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/logger"
)

const optimizedSuffix = "_optimized.txt"

type ArtifactSource interface {
	DownloadOptimized(ctx context.Context, filename string) (io.ReadCloser, error)
}

// Saver persists a byte stream under a suggested name and returns where it
// ended up.
type Saver interface {
	Save(name string, r io.Reader) (string, error)
}

// Downloader fetches optimized artifacts. It holds no selection state; the
// caller passes the filename of the current candidate.
type Downloader struct {
	source ArtifactSource
	saver  Saver
	logger *zap.Logger
}

func NewDownloader(source ArtifactSource, saver Saver, log *zap.Logger) *Downloader {
	return &Downloader{source: source, saver: saver, logger: logger.WithFields(log)}
}

// Download fetches the artifact for filename and hands it to the saver.
// Nothing reaches the saver when the request fails. A blank filename is a
// ValidationError and makes no request.
func (d *Downloader) Download(ctx context.Context, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", &ValidationError{Reason: reasonNoFilename}
	}

	body, err := d.source.DownloadOptimized(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", filename, err)
	}
	defer body.Close()

	target := OptimizedName(filename)

	path, err := d.saver.Save(target, body)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", target, err)
	}

	d.logger.Debug("optimized resume saved",
		append(logger.RequestFields("", filename), zap.String("path", path))...,
	)

	return path, nil
}

// OptimizedName derives the saved name: the base name with its extension
// replaced by "_optimized.txt".
func OptimizedName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == string(filepath.Separator) {
		base = "resume"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + optimizedSuffix
}

// FileSaver writes artifacts into Dir. Data goes to a temporary file first
// which is renamed on success and removed on every failure path.
type FileSaver struct {
	Dir string
}

func (s *FileSaver) Save(name string, r io.Reader) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", err
	}

	if err := tmp.Close(); err != nil {
		return "", err
	}

	target := filepath.Join(dir, filepath.Base(name))
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	committed = true

	return target, nil
}
