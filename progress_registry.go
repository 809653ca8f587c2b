package crabnode

import (
	"sync"

	"github.com/google/uuid"
)

// progressRegistry maps operation ids to their event streams
type progressRegistry struct {
	observer ProgressObserver

	streams      map[string]*progressStream
	streamsMutex sync.Mutex

	forwarders sync.WaitGroup
}

// progressStream unbounded, ordered event mailbox of a single operation
type progressStream struct {
	id string

	mutex      sync.Mutex
	queue      []OperationProgress
	last       float64
	terminated bool
	closed     bool

	notify chan struct{}
}

func progressRegistryNew(observer ProgressObserver) *progressRegistry {
	return &progressRegistry{
		observer: observer,
		streams:  map[string]*progressStream{},
	}
}

// Begin mints a new operation id and registers its stream
func (registry *progressRegistry) Begin() (string, error) {
	registry.streamsMutex.Lock()
	defer registry.streamsMutex.Unlock()

	var id string
	for {
		uid, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		id = uid.String()
		if _, prs := registry.streams[id]; !prs {
			break
		}
	}

	stream := &progressStream{
		id:     id,
		notify: make(chan struct{}, 1),
	}
	registry.streams[id] = stream

	registry.forwarders.Add(1)
	go registry.forward(stream)

	return id, nil
}

// Emit queues progress on the stream of operationID. Events for unknown or
// ended operations, and events after a terminal one, are dropped.
func (registry *progressRegistry) Emit(operationID string, progress OperationProgress) bool {
	registry.streamsMutex.Lock()
	stream, prs := registry.streams[operationID]
	registry.streamsMutex.Unlock()

	if !prs {
		return false
	}

	progress.OperationID = operationID
	return stream.push(progress)
}

// End removes the stream of operationID. The stream is closed once its queued
// events are delivered. Returns false if the operation was not registered.
func (registry *progressRegistry) End(operationID string) bool {
	registry.streamsMutex.Lock()
	stream, prs := registry.streams[operationID]
	delete(registry.streams, operationID)
	registry.streamsMutex.Unlock()

	if !prs {
		return false
	}

	stream.close()
	return true
}

// Len number of registered operations
func (registry *progressRegistry) Len() int {
	registry.streamsMutex.Lock()
	defer registry.streamsMutex.Unlock()

	return len(registry.streams)
}

// Wait blocks until every ended stream has been delivered
func (registry *progressRegistry) Wait() {
	registry.forwarders.Wait()
}

func (registry *progressRegistry) forward(stream *progressStream) {
	defer registry.forwarders.Done()

	for {
		stream.mutex.Lock()
		batch := stream.queue
		stream.queue = nil
		closed := stream.closed
		stream.mutex.Unlock()

		for _, progress := range batch {
			if registry.observer != nil {
				registry.observer(progress)
			}
		}

		if closed {
			return
		}

		<-stream.notify
	}
}

func (stream *progressStream) push(progress OperationProgress) bool {
	stream.mutex.Lock()
	defer stream.mutex.Unlock()

	if stream.closed || stream.terminated {
		return false
	}

	if progress.TotalBytes == nil && progress.Stage != StageCompleted {
		progress.Progress = stream.last
	}
	stream.last = progress.Progress

	if progress.Stage.IsTerminal() {
		stream.terminated = true
	}

	stream.queue = append(stream.queue, progress)
	stream.wake()

	return true
}

func (stream *progressStream) close() {
	stream.mutex.Lock()
	defer stream.mutex.Unlock()

	stream.closed = true
	stream.wake()
}

func (stream *progressStream) wake() {
	select {
	case stream.notify <- struct{}{}:
	default:
	}
}

// operation a registered transfer. end is safe to call more than once
type operation struct {
	ID string

	registry *progressRegistry
	endOnce  sync.Once
}

func (registry *progressRegistry) beginOperation() (*operation, error) {
	id, err := registry.Begin()
	if err != nil {
		return nil, err
	}

	return &operation{ID: id, registry: registry}, nil
}

func (op *operation) emit(progress OperationProgress) {
	op.registry.Emit(op.ID, progress)
}

func (op *operation) end() {
	op.endOnce.Do(func() {
		op.registry.End(op.ID)
	})
}
