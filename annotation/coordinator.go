package annotation

import (
	"context"
	"log"

	"github.com/lewtec/parelha/internal/domain"
)

// Refresher drops cached listings that went stale
type Refresher interface {
	InvalidateTasks()
	InvalidateHistory()
	InvalidateClasses(taskID domain.ID)
}

// Coordinator turns a committed choice into exactly one annotate call and
// moves the Walker to wherever the server says it should go.
type Coordinator struct {
	annotations domain.AnnotationService
	refresher   Refresher
	journal     domain.SubmissionLog
}

// NewCoordinator creates a Coordinator. refresher and journal may be nil.
func NewCoordinator(annotations domain.AnnotationService, refresher Refresher, journal domain.SubmissionLog) *Coordinator {
	return &Coordinator{annotations: annotations, refresher: refresher, journal: journal}
}

// Post sends one annotation without touching any Walker
func (c *Coordinator) Post(ctx context.Context, taskID, coupleID, classID domain.ID, notes string, index int) (*domain.AnnotateResult, error) {
	if classID.IsZero() {
		return nil, domain.ErrMissingSelection
	}
	return c.annotations.Annotate(ctx, taskID, domain.AnnotateRequest{
		CoupleID:       coupleID,
		ClassSelection: classID,
		Notes:          notes,
		CurrentIndex:   index,
	})
}

// Submit posts the current pair of w with its selected class. The next
// index always comes from the server.
func (c *Coordinator) Submit(ctx context.Context, w *Walker) (*domain.AnnotateResult, error) {
	return c.submit(ctx, w, nil)
}

// SubmitWith selects classID and sets notes on the current pair of w, then
// submits it, all under the same claim on the walker. A zero classID keeps
// the current selection.
func (c *Coordinator) SubmitWith(ctx context.Context, w *Walker, classID domain.ID, notes string) (*domain.AnnotateResult, error) {
	return c.submit(ctx, w, &submitChoice{classID: classID, notes: notes})
}

func (c *Coordinator) submit(ctx context.Context, w *Walker, choice *submitChoice) (*domain.AnnotateResult, error) {
	p, err := w.beginSubmit(choice)
	if err != nil {
		return nil, err
	}
	req := p.request

	res, err := c.Post(ctx, p.taskID, req.CoupleID, req.ClassSelection, req.Notes, req.CurrentIndex)
	if err != nil {
		log.Printf("coordinator: submit of pair %s in task %s failed: %s", req.CoupleID, p.taskID, err)
		w.abortSubmit(p, err)
		c.record(ctx, p, domain.OutcomeFailed, err.Error())
		return nil, err
	}

	if res.Completed {
		log.Printf("coordinator: task %s completed", p.taskID)
		w.complete(p)
		c.record(ctx, p, domain.OutcomeCompleted, res.CompletionMessage)
		if c.refresher != nil {
			c.refresher.InvalidateTasks()
			c.refresher.InvalidateHistory()
		}
		return res, nil
	}

	c.record(ctx, p, domain.OutcomeRecorded, res.Message)
	if err := w.advance(ctx, p, res.NextIndex); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Coordinator) record(ctx context.Context, p pendingSubmit, outcome domain.SubmitOutcome, detail string) {
	if c.journal == nil {
		return
	}
	err := c.journal.Record(context.WithoutCancel(ctx), domain.Submission{
		TaskID:   p.taskID,
		CoupleID: p.request.CoupleID,
		ClassID:  p.request.ClassSelection,
		Index:    p.request.CurrentIndex,
		Notes:    p.request.Notes,
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		log.Printf("coordinator: %s", err)
	}
}
