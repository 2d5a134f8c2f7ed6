package execution

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"ptc/internal/domain"
	"ptc/internal/tree"
)

// Invoker runs one case on a channel and returns its captured output
type Invoker interface {
	Invoke(ctx context.Context, ch Channel, label string) (string, error)
}

// Classifier maps captured checker output to a verdict
type Classifier interface {
	Classify(output string) domain.Status
}

// Explainer extracts the lines of a failed case's output worth showing
type Explainer interface {
	BugLines(output string) []string
}

// Observer is told about case progress during a run
type Observer interface {
	CaseStarted(node *tree.Node)
	CaseFinished(node *tree.Node, entry domain.Entry)
}

// Request selects the nodes to run
type Request struct {
	Include  []*tree.Node
	FailFast bool
}

// Orchestrator runs requested test items one case at a time
type Orchestrator struct {
	tree       *tree.Tree
	selector   *Selector
	invoker    Invoker
	classifier Classifier
	scheduler  Scheduler
	observer   Observer
	logger     *zap.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(tr *tree.Tree, selector *Selector, invoker Invoker, classifier Classifier, scheduler Scheduler, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		tree:       tr,
		selector:   selector,
		invoker:    invoker,
		classifier: classifier,
		scheduler:  scheduler,
		logger:     logger.Named("orchestrator"),
	}
}

// SetObserver sets the observer notified about case progress
func (o *Orchestrator) SetObserver(observer Observer) {
	o.observer = observer
}

// Expand resolves a request into the cases it covers, in processing order
func (o *Orchestrator) Expand(req Request) []*tree.Node {
	return o.scheduler.Schedule(o.tree.Expand(req.Include))
}

// Run processes every case covered by req sequentially and returns the
// ended report. Cancelling ctx stops cases that have not started yet; they
// stay unstarted and are not reported.
func (o *Orchestrator) Run(ctx context.Context, req Request) *domain.Report {
	cases := o.Expand(req)
	report := domain.NewReport(len(cases))
	defer report.End()

	// the watcher may detach cases from their file mid-run
	fileKeys := make(map[*tree.Node]string, len(cases))
	for _, c := range cases {
		if parent := c.Parent(); parent != nil {
			fileKeys[c] = parent.Key
		}
		c.SetResult(domain.StatusUnstarted, "", nil)
	}
	if len(cases) == 0 {
		return report
	}

	var ch Channel
	lease, err := o.selector.Acquire()
	if err != nil {
		o.logger.Error("no execution channel", zap.Error(err))
	} else {
		defer lease.Release()
		ch = lease.Channel()
	}

	for _, c := range cases {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		entry := o.runCase(ctx, ch, c, fileKeys[c])
		report.Append(entry)

		if req.FailFast && entry.Status != domain.StatusPassed {
			o.logger.Info("stopping after first failure", zap.String("case", c.Label))
			break
		}
	}
	return report
}

func (o *Orchestrator) runCase(ctx context.Context, ch Channel, c *tree.Node, fileKey string) domain.Entry {
	c.SetResult(domain.StatusRunning, "", nil)
	if o.observer != nil {
		o.observer.CaseStarted(c)
	}
	start := time.Now()

	status := domain.StatusErrored
	var output string
	if ch != nil {
		out, err := o.invoker.Invoke(ctx, ch, c.Label)
		if err != nil {
			o.logger.Warn("case errored", zap.String("case", c.Label), zap.Error(err))
		} else {
			output = out
			status = o.classifier.Classify(output)
		}
	}

	entry := domain.Entry{
		FileKey:  fileKey,
		CaseKey:  c.Key,
		Label:    c.Label,
		File:     c.File,
		Status:   status,
		Duration: time.Since(start),
	}

	switch status {
	case domain.StatusFailed:
		loc := c.Location()
		entry.Message = domain.MessageFailed
		entry.Location = &loc
		if ex, ok := o.classifier.(Explainer); ok {
			entry.Detail = strings.Join(ex.BugLines(output), "\n")
		}
	case domain.StatusErrored:
		entry.Message = domain.MessageErrored
	}
	c.SetResult(entry.Status, entry.Message, entry.Location)

	if o.observer != nil {
		o.observer.CaseFinished(c, entry)
	}
	o.logger.Debug("case finished", zap.String("case", c.Label), zap.Stringer("status", status))
	return entry
}
