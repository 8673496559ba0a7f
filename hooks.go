package syncbridge

import (
	"sync"

	"github.com/agentstation/syncbridge/pkg/engine"
)

// RunCompletedHook is invoked after every reconciliation run with its
// result, whether the run succeeded or not.
type RunCompletedHook func(result *engine.Result)

// hooks holds the registered event callbacks.
type hooks struct {
	mu           sync.RWMutex
	runCompleted []RunCompletedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) onRunCompleted(hook RunCompletedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runCompleted = append(h.runCompleted, hook)
}

func (h *hooks) triggerRunCompleted(result *engine.Result) {
	h.mu.RLock()
	registered := make([]RunCompletedHook, len(h.runCompleted))
	copy(registered, h.runCompleted)
	h.mu.RUnlock()

	for _, hook := range registered {
		hook(result)
	}
}
