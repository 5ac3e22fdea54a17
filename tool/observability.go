package tool

import "sync"

// OperationObservation captures one dispatched operation outcome.
type OperationObservation struct {
	Operation  string
	Document   string
	DurationMS int64
	Success    bool
	ErrorCode  string
}

// Observer receives operation-level observability events.
type Observer interface {
	ObserveOperation(observation OperationObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveOperation(OperationObservation) {}

var (
	observerMu     sync.RWMutex
	activeObserver Observer = noopObserver{}
)

// SetObserver sets the process-wide operation observability observer.
func SetObserver(observer Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	if observer == nil {
		activeObserver = noopObserver{}
		return
	}
	activeObserver = observer
}

func emitOperationObservation(observation OperationObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveOperation(observation)
}
