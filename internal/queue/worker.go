package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Worker runs a pool of goroutines that drain the queue and a gocron
// scheduler for recurring jobs.
type Worker struct {
	queue      *RedisQueue
	numWorkers int
	wg         sync.WaitGroup
	quit       chan struct{}
	scheduler  *gocron.Scheduler
}

// NewWorker creates a new worker pool
func NewWorker(queue *RedisQueue, numWorkers int) *Worker {
	return &Worker{
		queue:      queue,
		numWorkers: numWorkers,
		quit:       make(chan struct{}),
		scheduler:  gocron.NewScheduler(time.UTC),
	}
}

// Start starts the worker pool and the recurring job scheduler
func (w *Worker) Start() {
	log.Printf("Starting %d queue workers", w.numWorkers)

	for i := 0; i < w.numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	w.scheduler.StartAsync()
}

// Stop stops the worker pool
func (w *Worker) Stop() {
	log.Println("Stopping queue workers")
	close(w.quit)
	w.wg.Wait()
	w.scheduler.Stop()
}

// ScheduleEvery registers a recurring task with the scheduler
func (w *Worker) ScheduleEvery(interval time.Duration, task func()) error {
	_, err := w.scheduler.Every(interval).Do(task)
	return err
}

// ScheduleDailyAt registers a task that runs once a day at the given time
func (w *Worker) ScheduleDailyAt(at string, task func()) error {
	_, err := w.scheduler.Every(1).Day().At(at).Do(task)
	return err
}

// process drains jobs from the queue until the worker is stopped
func (w *Worker) process(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.quit:
			log.Printf("Queue worker %d stopped", workerID)
			return
		default:
			job, err := w.queue.Dequeue()
			if err != nil {
				log.Printf("Error dequeueing job: %v", err)
				time.Sleep(1 * time.Second)
				continue
			}

			if job == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			handler, ok := w.queue.handler(job.Type)
			if !ok {
				log.Printf("No handler registered for job type %s", job.Type)
				w.queue.Fail(job, ErrNoHandler)
				continue
			}

			result, err := handler(context.Background(), *job)
			if err != nil {
				log.Printf("Job %s (%s) failed: %v", job.ID, job.Type, err)
				w.queue.Fail(job, err)
				continue
			}

			w.queue.Complete(job, result)
		}
	}
}
