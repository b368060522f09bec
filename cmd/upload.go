package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/ranker"
	"github.com/spigell/resume-ranker/internal/session"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [resume files...]",
	Short: "Upload resumes with a job description and browse the ranked result",
	Run: func(cmd *cobra.Command, args []string) {
		upload(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().String("job-description", "", "job description text")
	uploadCmd.Flags().String("job-description-file", "", "file with the job description. Takes precedence over --job-description")
	uploadCmd.Flags().Bool("no-browse", false, "exit after the upload instead of browsing the results")
}

func upload(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger, _, s := setup()

	jobDescription, err := readJobDescription(cmd)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	files, closeFiles, err := openResumes(args)
	if err != nil {
		logger.Fatal("opening resumes", zap.Error(err), zap.String("hint", errorHint(err)))
	}
	defer closeFiles()

	var refreshErr error
	s.Orchestrator.OnComplete(func(ctx context.Context, _ string) {
		candidates, err := s.Fetcher.Refresh(ctx)
		if err != nil {
			refreshErr = err
			return
		}
		logger.Info("getting ranked resumes", zap.Int("count", len(candidates)))
	})

	logger.Info("analyzing resumes, please wait", zap.Int("files", len(files)))

	message, err := s.Orchestrator.Submit(ctx, files, jobDescription)
	if err != nil {
		closeFiles()
		logger.Fatal("uploading resumes", zap.Error(err), zap.String("hint", errorHint(err)))
	}
	closeFiles()

	fmt.Fprintln(os.Stdout, message)

	if refreshErr != nil {
		logger.Fatal("getting ranked resumes", zap.Error(refreshErr), zap.String("hint", errorHint(refreshErr)))
	}

	if noBrowse, _ := cmd.Flags().GetBool("no-browse"); noBrowse {
		renderCurrent(os.Stdout, s.Store)
		return
	}

	if err := browse(ctx, s, logger); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func readJobDescription(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("job-description-file")
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading job description from file %q: %w", path, err)
		}
		return string(data), nil
	}

	text, _ := cmd.Flags().GetString("job-description")
	return text, nil
}

// resumeExtensions are the file types the evaluation service accepts.
var resumeExtensions = []string{".pdf", ".zip", ".docx"}

// openResumes opens every path. The returned func closes all of them and is
// safe to call more than once. Nothing is opened when a path has an
// unsupported extension.
func openResumes(paths []string) ([]ranker.File, func(), error) {
	for _, path := range paths {
		if !slices.Contains(resumeExtensions, strings.ToLower(filepath.Ext(path))) {
			return nil, func() {}, &session.ValidationError{
				Reason: fmt.Sprintf("unsupported file type %q, expected one of %s", path, strings.Join(resumeExtensions, ", ")),
			}
		}
	}

	opened := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
		opened = nil
	}

	files := make([]ranker.File, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		files = append(files, ranker.File{Name: path, Reader: f})
	}

	return files, closeAll, nil
}
