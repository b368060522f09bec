package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/ranker"
)

const logMessageLimit = 120

type Uploader interface {
	UploadResumes(ctx context.Context, files []ranker.File, jobDescription string) (string, error)
}

type State int32

const (
	Idle State = iota
	Busy
)

func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// CompletionFunc is called once after every successful submission with the
// status message returned by the service.
type CompletionFunc func(ctx context.Context, message string)

type submission struct {
	Files          []ranker.File `validate:"min=1"`
	JobDescription string        `validate:"notblank"`
}

// Orchestrator submits upload batches. At most one submission is in flight
// at a time; concurrent calls are rejected, not queued.
type Orchestrator struct {
	uploader              Uploader
	logger                *zap.Logger
	validate              *validator.Validate
	requireJobDescription bool

	inFlight *semaphore.Weighted
	state    atomic.Int32

	mu        sync.Mutex
	observers []CompletionFunc
}

func NewOrchestrator(uploader Uploader, requireJobDescription bool, log *zap.Logger) *Orchestrator {
	validate := validator.New()
	// notblank is a known tag; registration cannot fail.
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	return &Orchestrator{
		uploader:              uploader,
		logger:                logger.WithRequestFields(log, ranker.UploadPath, ""),
		validate:              validate,
		requireJobDescription: requireJobDescription,
		inFlight:              semaphore.NewWeighted(1),
	}
}

// OnComplete registers an observer for successful submissions.
func (o *Orchestrator) OnComplete(fn CompletionFunc) {
	if fn == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Submit validates the batch and sends it in a single request. It never
// retries; the orchestrator is Idle again when Submit returns.
func (o *Orchestrator) Submit(ctx context.Context, files []ranker.File, jobDescription string) (string, error) {
	if err := o.validateSubmission(files, jobDescription); err != nil {
		return "", err
	}

	if !o.inFlight.TryAcquire(1) {
		o.logger.Debug("rejecting submission", zap.String("reason", ErrAlreadyInProgress.Error()))
		return "", ErrAlreadyInProgress
	}

	message, err := o.submit(ctx, files, jobDescription)
	if err != nil {
		return "", err
	}

	o.notify(ctx, message)

	return message, nil
}

func (o *Orchestrator) submit(ctx context.Context, files []ranker.File, jobDescription string) (string, error) {
	o.state.Store(int32(Busy))
	defer func() {
		o.state.Store(int32(Idle))
		o.inFlight.Release(1)
	}()

	o.logger.Debug("submitting resumes", zap.Int("files", len(files)))

	message, err := o.uploader.UploadResumes(ctx, files, jobDescription)
	if err != nil {
		return "", fmt.Errorf("submitting resumes: %w", err)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = defaultCompleteMessage
	}

	o.logger.Debug("resumes submitted", zap.String("message", logger.TruncateForLog(message, logMessageLimit)))

	return message, nil
}

func (o *Orchestrator) notify(ctx context.Context, message string) {
	o.mu.Lock()
	observers := make([]CompletionFunc, len(o.observers))
	copy(observers, o.observers)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(ctx, message)
	}
}

func (o *Orchestrator) validateSubmission(files []ranker.File, jobDescription string) error {
	s := submission{Files: files, JobDescription: jobDescription}

	var err error
	if o.requireJobDescription {
		err = o.validate.Struct(s)
	} else {
		err = o.validate.StructExcept(s, "JobDescription")
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	switch fieldErrs[0].Field() {
	case "Files":
		return &ValidationError{Reason: reasonNoFiles}
	default:
		return &ValidationError{Reason: reasonMissingJobDesc}
	}
}
