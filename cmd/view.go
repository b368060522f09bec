package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spigell/resume-ranker/internal/results"
	"github.com/spigell/resume-ranker/internal/session"
)

const (
	noResumesMessage = "No resumes available."
	sectionRule      = "----------------------------------------"
)

func renderCurrent(w io.Writer, store *results.Store) {
	current, idx, ok := store.Current()
	if !ok {
		fmt.Fprintln(w, noResumesMessage)
		return
	}

	fmt.Fprintf(w, "\nRanked by Score of Match\nCandidate %d of %d | Filename: %s | Score: %d%%\n",
		idx+1, store.Len(), current.Filename, current.ScorePercent())
}

func renderSection(w io.Writer, title, text string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n%s\n", title, sectionRule, strings.TrimSpace(text), sectionRule)
}

// errorHint turns a core error into an actionable message for the user.
func errorHint(err error) string {
	switch session.KindOf(err) {
	case session.KindValidation:
		return "check the selected files and the job description and try again"
	case session.KindAlreadyInProgress:
		return "an upload is already running, wait for it to finish"
	case session.KindRemote:
		return "the evaluation service could not complete the request, try again"
	case session.KindOutOfRange:
		return "choose a candidate from the list"
	default:
		return ""
	}
}
