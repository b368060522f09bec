// Package session wires the upload, refresh, navigation and download
// operations of a single browsing session.
package session

import (
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/ranker"
	"github.com/spigell/resume-ranker/internal/results"
)

type Options struct {
	RequireJobDescription bool
	// Filters run on every refresh before the store is replaced. Nil keeps
	// the service list as is.
	Filters *filtering.Filtering
	Saver   Saver
}

// Session owns one result set and one orchestrator. Build one per session
// and pass it to the view.
type Session struct {
	Store        *results.Store
	Navigator    *results.Navigator
	Orchestrator *Orchestrator
	Fetcher      *Fetcher
	Downloader   *Downloader
}

func New(client *ranker.Client, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	saver := opts.Saver
	if saver == nil {
		saver = &FileSaver{Dir: "."}
	}

	store := results.NewStore()

	return &Session{
		Store:        store,
		Navigator:    results.NewNavigator(store),
		Orchestrator: NewOrchestrator(client, opts.RequireJobDescription, logger),
		Fetcher:      NewFetcher(client, store, opts.Filters, logger),
		Downloader:   NewDownloader(client, saver, logger),
	}
}
