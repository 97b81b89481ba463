// Package crew staffs the job site: one worker per trade, a shared RFI
// desk for questions that need project-level context, and the roster that
// wires it all onto a delegate registry.
package crew

import (
	"context"
	"fmt"
	"sync/atomic"
)

// RFI is a crew's request for information.
type RFI struct {
	ID       string
	TaskID   string
	Question string
	replyCh  chan reply
}

type reply struct {
	Answer string
	Err    error
}

// AnswerFunc resolves one RFI using project-level context the crews don't
// have.
type AnswerFunc func(ctx context.Context, taskID, question string) (string, error)

// RFIDesk routes requests for information from concurrent crews to a
// single answerer. Crews block on their own answer; the desk never blocks
// on a slow crew.
type RFIDesk struct {
	requestCh chan RFI
	answerFn  AnswerFunc
	seq       atomic.Uint64
	done      chan struct{}
}

// NewRFIDesk creates a desk with the given intake buffer. The buffer
// should comfortably exceed the engine's concurrency so crews rarely wait
// to file.
func NewRFIDesk(bufferSize int, answerFn AnswerFunc) *RFIDesk {
	return &RFIDesk{
		requestCh: make(chan RFI, bufferSize),
		answerFn:  answerFn,
		done:      make(chan struct{}),
	}
}

// Start launches the request handler goroutine. It processes RFIs until
// the context is cancelled.
func (d *RFIDesk) Start(ctx context.Context) {
	go d.handleRequests(ctx)
}

func (d *RFIDesk) handleRequests(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			return
		case rfi := <-d.requestCh:
			answer, err := d.answerFn(ctx, rfi.TaskID, rfi.Question)

			// The answerer may have been cut off mid-answer.
			select {
			case <-ctx.Done():
				rfi.replyCh <- reply{Err: ctx.Err()}
				return
			default:
				rfi.replyCh <- reply{Answer: answer, Err: err}
			}
		}
	}
}

// Ask files an RFI and waits for the answer. It respects context
// cancellation at both the send and receive stages.
func (d *RFIDesk) Ask(ctx context.Context, taskID, question string) (string, error) {
	// Buffered so the desk can reply and move on even if this crew has
	// already given up.
	replyCh := make(chan reply, 1)

	rfi := RFI{
		ID:       fmt.Sprintf("RFI-%04d", d.seq.Add(1)),
		TaskID:   taskID,
		Question: question,
		replyCh:  replyCh,
	}

	select {
	case d.requestCh <- rfi:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-replyCh:
		if r.Err != nil {
			return "", fmt.Errorf("%s: %w", rfi.ID, r.Err)
		}
		return r.Answer, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stop blocks until the handler goroutine has exited.
func (d *RFIDesk) Stop() {
	<-d.done
}
