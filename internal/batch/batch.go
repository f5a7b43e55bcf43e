// Package batch runs the pitch analysis over many radiographs on a single
// worker goroutine.
//
// Items are processed strictly in order. An item that is already Done or
// Failed is skipped, so a stopped batch can be resumed with the same slice.
// One item's failure is recorded on that item and never aborts the batch.
// Stopping is cooperative: Stop and context cancellation are checked
// between items, and an analysis in progress always completes.
package batch

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/calcpitch-mcp/internal/analyzer"
)

// ErrStopped is returned by Run when Stop halted the batch early.
var ErrStopped = errors.New("batch stopped")

// Status is the processing state of an Item.
type Status string

const (
	Pending Status = "pending"
	Done    Status = "done"
	Failed  Status = "failed"
)

// Item is one radiograph in a batch.
type Item struct {
	Path   string           `json:"path"`
	Status Status           `json:"status"`
	Result *analyzer.Result `json:"result,omitempty"`
	Kind   analyzer.Kind    `json:"kind,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// NewItems creates pending items for paths.
func NewItems(paths []string) []Item {
	items := make([]Item, len(paths))
	for i, p := range paths {
		items[i] = Item{Path: p, Status: Pending}
	}
	return items
}

// FileAnalyzer analyzes one file.
type FileAnalyzer interface {
	AnalyzeFile(path string) (*analyzer.Result, error)
}

// ProgressFunc is called after every item with the number of items handled
// so far and the batch size.
type ProgressFunc func(done, total int)

// ItemFunc is called after an item has been analyzed.
type ItemFunc func(index int, item Item)

// Worker processes batches sequentially.
type Worker struct {
	an      FileAnalyzer
	log     logrus.FieldLogger
	stopped atomic.Bool
}

// NewWorker creates a worker around an analyzer.
func NewWorker(an FileAnalyzer, log logrus.FieldLogger) *Worker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Worker{an: an, log: log}
}

// Stop asks a running batch to halt before its next item.
func (w *Worker) Stop() {
	w.stopped.Store(true)
}

// Run processes items in place. progress and finished may be nil.
//
// Run returns ErrStopped or the context error when halted early, nil
// otherwise. A Stop issued before Run only affects that Run call.
func (w *Worker) Run(ctx context.Context, items []Item, progress ProgressFunc, finished ItemFunc) error {
	defer w.stopped.Store(false)
	total := len(items)

	for i := range items {
		if w.stopped.Load() {
			w.log.WithField("remaining", total-i).Info("batch stopped")
			return ErrStopped
		}
		if err := ctx.Err(); err != nil {
			w.log.WithField("remaining", total-i).Info("batch cancelled")
			return err
		}

		item := &items[i]
		if item.Status == Done || item.Status == Failed {
			if progress != nil {
				progress(i+1, total)
			}
			continue
		}

		res, err := w.an.AnalyzeFile(item.Path)
		if err != nil {
			item.Status = Failed
			item.Kind = analyzer.KindOf(err)
			item.Error = err.Error()
			w.log.WithError(err).WithField("path", item.Path).Warn("analysis failed")
		} else {
			item.Status = Done
			item.Result = res
		}

		if finished != nil {
			finished(i, *item)
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	return nil
}
