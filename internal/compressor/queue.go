package compressor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one file to encode.
type Task struct {
	Input  string
	Output string
	FFArgs []string
}

// Result is the outcome of one Task.
type Result struct {
	Task     Task
	Err      error
	Duration time.Duration
}

// WorkFunc performs one task.
type WorkFunc func(ctx context.Context, t Task) error

// Queue runs tasks with bounded parallelism.
type Queue struct {
	concurrency int
	work        WorkFunc
	tasks       []Task
}

// NewQueue creates a queue running at most concurrency tasks at once.
// Values below 1 mean 1.
func NewQueue(concurrency int, work WorkFunc) *Queue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Queue{concurrency: concurrency, work: work}
}

// Add appends a task.
func (q *Queue) Add(t Task) {
	q.tasks = append(q.tasks, t)
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Run executes every queued task and returns results in the order tasks were
// added. A failed task does not stop the others; a cancelled ctx does, and the
// tasks that never started report ctx's error.
func (q *Queue) Run(ctx context.Context) []Result {
	results := make([]Result, len(q.tasks))

	var g errgroup.Group
	g.SetLimit(q.concurrency)
	for i, t := range q.tasks {
		results[i].Task = t
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			start := time.Now()
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Err = q.work(ctx, t)
			results[i].Duration = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
