package jobs

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/tessera/engine/core"
)

// Task is a unit of background work. OnStart runs on a worker goroutine;
// OnComplete/OnFailure run on the same goroutine afterwards.
type Task struct {
	Name       string
	OnStart    func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

// System is a fixed-size worker pool consuming tasks from a buffered channel.
type System struct {
	numWorkers int
	taskQueue  chan Task
	wg         sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewSystem(numWorkers int, channelSize int) (*System, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &System{
		numWorkers: numWorkers,
		taskQueue:  make(chan Task, channelSize),
	}
	js.start()

	return js, nil
}

func (js *System) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for task := range js.taskQueue {
				result, err := task.OnStart()
				if err != nil {
					core.LogError("job %q failed: %s", task.Name, err.Error())
					if task.OnFailure != nil {
						task.OnFailure(err)
					}
					continue
				}
				if task.OnComplete != nil {
					task.OnComplete(result)
				}
			}
		}()
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish.
func (js *System) Shutdown() error {
	close(js.taskQueue)
	js.wg.Wait()
	return nil
}

// Submit queues the task, blocking when the queue is full.
func (js *System) Submit(t Task) {
	js.taskQueue <- t
}

// SubmitNonBlocking queues the task without blocking the caller.
func (js *System) SubmitNonBlocking(t Task) {
	go js.Submit(t)
}
