package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/session"
)

const (
	PromptNext      = "Next"
	PromptPrevious  = "Previous"
	PromptJump      = "Jump to candidate"
	PromptEvaluate  = "Show evaluation"
	PromptOriginal  = "Show original resume"
	PromptOptimized = "Show optimized resume"
	PromptDownload  = "Download optimized resume"
	PromptRefresh   = "Refresh"
	PromptReport    = "Report"
	PromptDump      = "Dump candidates to file"
	PromptBack      = "back"
	PromptExit      = "Exit"
)

var errExit = errors.New("exit requested")

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the ranked candidates from the evaluation service",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		logger, _, s := setup()

		if _, err := s.Fetcher.Refresh(ctx); err != nil {
			logger.Fatal("getting ranked resumes", zap.Error(err), zap.String("hint", errorHint(err)))
		}

		if err := browse(ctx, s, logger); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browse runs the interactive loop until the user exits.
func browse(ctx context.Context, s *session.Session, logger *zap.Logger) error {
	for {
		renderCurrent(os.Stdout, s.Store)

		items := browseItems(s)
		prompt := promptui.Select{
			Label: "Choose an action",
			Items: items,
			Size:  len(items),
		}

		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		if err := handleBrowseAction(ctx, action, s, logger); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

// browseItems lists the actions available for the current selection.
// Movement past either end and actions on a missing candidate are not offered.
// The optimized text is only offered when the service sent one; the artifact
// download stays available since the service renders it on request.
func browseItems(s *session.Session) []string {
	current, _, ok := s.Store.Current()
	if !ok {
		return []string{PromptRefresh, PromptExit}
	}

	items := make([]string, 0, 11)
	if s.Navigator.HasNext() {
		items = append(items, PromptNext)
	}
	if s.Navigator.HasPrevious() {
		items = append(items, PromptPrevious)
	}

	items = append(items, PromptJump, PromptEvaluate, PromptOriginal)
	if current.HasOptimized() {
		items = append(items, PromptOptimized)
	}

	return append(items,
		PromptDownload,
		PromptRefresh,
		PromptReport,
		PromptDump,
		PromptExit,
	)
}

func handleBrowseAction(ctx context.Context, action string, s *session.Session, logger *zap.Logger) error {
	switch action {
	case PromptNext:
		s.Navigator.SelectNext()
	case PromptPrevious:
		s.Navigator.SelectPrevious()
	case PromptJump:
		return jump(s, logger)
	case PromptEvaluate, PromptOriginal, PromptOptimized:
		current, _, ok := s.Store.Current()
		if !ok {
			return nil
		}
		switch action {
		case PromptEvaluate:
			renderSection(os.Stdout, "Evaluation", current.EvaluationText())
		case PromptOriginal:
			renderSection(os.Stdout, "Original Resume", current.OriginalText())
		default:
			renderSection(os.Stdout, "Optimized Resume", current.OptimizedText())
		}
	case PromptDownload:
		current, _, ok := s.Store.Current()
		if !ok {
			return nil
		}
		path, err := s.Downloader.Download(ctx, current.Filename)
		if err != nil {
			logger.Error("downloading optimized resume", zap.Error(err), zap.String("hint", errorHint(err)))
			return nil
		}
		logger.Info("optimized resume saved", zap.String("filename", current.Filename), zap.String("path", path))
	case PromptRefresh:
		candidates, err := s.Fetcher.Refresh(ctx)
		if err != nil {
			logger.Error("refreshing results", zap.Error(err), zap.String("hint", errorHint(err)))
			return nil
		}
		logger.Info("results refreshed", zap.Int("count", len(candidates)))
	case PromptReport:
		for _, line := range s.Store.Report() {
			fmt.Fprintln(os.Stdout, line)
		}
	case PromptDump:
		filename, err := s.Store.DumpToTmpFile("")
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}

	return nil
}

func jump(s *session.Session, logger *zap.Logger) error {
	items := s.Store.Report()
	candidatePrompt := promptui.Select{
		Label:     "Choose a candidate and press ENTER",
		Items:     append(items, PromptBack),
		CursorPos: max(s.Store.SelectedIndex(), 0),
	}

	idx, selected, err := candidatePrompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) {
		return nil
	}
	if err != nil {
		return err
	}

	if selected == PromptBack {
		return nil
	}

	if _, err := s.Navigator.SelectIndex(idx); err != nil {
		logger.Warn("selecting candidate", zap.Error(err), zap.String("hint", errorHint(err)))
	}

	return nil
}
