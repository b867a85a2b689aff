package pipeline

import (
	"sync"

	"github.com/pkg/errors"
)

type errorChans struct {
	mu   sync.Mutex
	list []*errorChan
}

// new registers a named error channel for one pipeline stage. The owning
// stage must close it when done.
func (ec *errorChans) new(name string) *errorChan {
	c := &errorChan{
		name: name,
		c:    make(chan error, 10),
	}
	ec.mu.Lock()
	ec.list = append(ec.list, c)
	ec.mu.Unlock()
	return c
}

type errorChan struct {
	name string
	c    chan error
}

// mergeErrors merges the per-stage error channels into one, wrapping each
// error with its stage name. Based on https://blog.golang.org/pipelines.
func mergeErrors(cs ...*errorChan) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))

	output := func(c *errorChan) {
		defer wg.Done()
		for err := range c.c {
			out <- errors.Wrap(err, c.name)
		}
	}
	wg.Add(len(cs))
	for _, c := range cs {
		go output(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
