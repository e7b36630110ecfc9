package app

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	healthgo "github.com/hellofresh/health-go/v5"
)

// resources tracks connections opened by providers so runners can release them
// and health can probe them.
type resources struct {
	mu      sync.Mutex
	closers []namedCloser
	checks  []healthgo.Config
}

type namedCloser struct {
	name  string
	close func() error
}

func newResources() *resources { return &resources{} }

func (r *resources) onClose(name string, fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closers = append(r.closers, namedCloser{name: name, close: fn})
}

func (r *resources) check(c healthgo.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, c)
}

func (r *resources) healthChecks() []healthgo.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.checks)
}

// closeAll runs closers in reverse registration order.
func (r *resources) closeAll() error {
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", closers[i].name, err))
		}
	}
	return errors.Join(errs...)
}
