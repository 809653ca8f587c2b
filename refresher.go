package crabnode

import (
	"context"
	"time"

	"github.com/runletapp/crabnode/interfaces"
)

// RefreshNetworkInfo queries the node and overwrites the network snapshot.
// Fields the node fails to report are left empty. The storage snapshot is
// refreshed too when the node can account its repository.
func (m *Manager) RefreshNetworkInfo(ctx context.Context) error {
	node, err := m.currentNode()
	if err != nil {
		return err
	}

	network := networkSnapshotNew(m.settings.MaxPeers)

	if peerID, err := node.PeerID(); err == nil {
		network.PeerID = peerID
	} else {
		log.Debugw("peer id unavailable", "err", err)
	}
	if version, err := node.Version(); err == nil {
		network.Version = version
	} else {
		log.Debugw("version unavailable", "err", err)
	}
	if repoPath, err := node.RepoPath(); err == nil {
		network.RepoPath = repoPath
	} else {
		log.Debugw("repo path unavailable", "err", err)
	}

	if counter, ok := node.(interfaces.PeerCounter); ok {
		network.ConnectedPeers = uint32(counter.ConnectedPeers())
		network.ApproximatePeers = false
	}

	// A disconnect may have cleared the snapshot while the node was queried
	m.networkMutex.Lock()
	if m.Status() == StatusConnected {
		m.network = network
	}
	m.networkMutex.Unlock()

	if stater, ok := node.(interfaces.StorageStater); ok {
		stat, err := stater.StorageStat(ctx)
		if err != nil {
			log.Warnw("failed to read storage stat", "err", err)
			return nil
		}

		m.storageMutex.Lock()
		m.storage = storageSnapshotFromUsage(m.settings.StorageQuota, stat.UsedBytes, stat.BlockCount)
		m.storageMutex.Unlock()
	}

	return nil
}

// refresher periodically refreshes the snapshots while connected. Refreshes
// run one at a time on the refresher's own goroutine
type refresher struct {
	interval time.Duration

	scheduleCh chan struct{}

	ctx       context.Context
	ctxCancel context.CancelFunc

	refresh func(ctx context.Context) error

	done chan struct{}
}

func refresherNew(ctx context.Context, interval time.Duration, refresh func(ctx context.Context) error) *refresher {
	ctx, cancel := context.WithCancel(ctx)

	return &refresher{
		interval: interval,

		scheduleCh: make(chan struct{}, 1),

		ctx:       ctx,
		ctxCancel: cancel,

		refresh: refresh,

		done: make(chan struct{}),
	}
}

func (r *refresher) Start() {
	go r.background()
}

// Schedule requests a refresh as soon as possible. Pending requests collapse
func (r *refresher) Schedule() {
	select {
	case r.scheduleCh <- struct{}{}:
	default:
	}
}

// Stop cancels the refresher and waits for a running refresh to return
func (r *refresher) Stop() {
	r.ctxCancel()
	<-r.done
}

func (r *refresher) background() {
	defer close(r.done)

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-tick:
			r.Refresh()
		case <-r.scheduleCh:
			r.Refresh()
		}
	}
}

func (r *refresher) Refresh() {
	if err := r.refresh(r.ctx); err != nil && r.ctx.Err() == nil {
		log.Warnw("periodic refresh failed", "err", err)
	}
}

func (m *Manager) startRefresher() {
	m.refresherMutex.Lock()
	defer m.refresherMutex.Unlock()

	if m.refresher != nil {
		m.refresher.Stop()
		m.refresher = nil
	}

	// A disconnect after this point stops the new refresher
	if m.Status() != StatusConnected {
		return
	}

	m.refresher = refresherNew(m.settings.Context, m.settings.RefreshInterval, m.RefreshNetworkInfo)
	m.refresher.Start()
}

func (m *Manager) stopRefresher() {
	m.refresherMutex.Lock()
	defer m.refresherMutex.Unlock()

	if m.refresher != nil {
		m.refresher.Stop()
		m.refresher = nil
	}
}

func (m *Manager) scheduleRefresh() {
	m.refresherMutex.Lock()
	defer m.refresherMutex.Unlock()

	if m.refresher != nil {
		m.refresher.Schedule()
	}
}
