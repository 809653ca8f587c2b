package crabnode

import (
	"context"
	"sync"

	logging "github.com/ipfs/go-log/v2"

	"github.com/runletapp/crabnode/interfaces"
	"github.com/runletapp/crabnode/options"
)

var log = logging.Logger("crabnode")

// Manager owns the connection to a storage node: its lifecycle, the cached
// network and storage snapshots, and the progress streams of running transfers.
// A Manager is safe for concurrent use and is meant to be created once per
// process and shared.
type Manager struct {
	settings *options.Settings
	factory  interfaces.NodeFactory

	// node is present if and only if status is StatusConnected, except while a
	// disconnect is tearing it down
	node      interfaces.Node
	nodeMutex sync.Mutex

	status      ConnectionStatus
	lastError   string
	attempt     uint64
	statusMutex sync.RWMutex

	network      NetworkSnapshot
	networkMutex sync.RWMutex

	storage      StorageSnapshot
	storageMutex sync.RWMutex

	progress *progressRegistry

	refresher      *refresher
	refresherMutex sync.Mutex
}

// New creates a manager that builds nodes with factory. observer, if not nil,
// receives every progress event.
func New(factory interfaces.NodeFactory, observer ProgressObserver, opts ...options.Option) (*Manager, error) {
	settings := &options.Settings{}
	if err := settings.SetDefaults(); err != nil {
		return nil, wrapError(ErrConfiguration, err)
	}

	if err := settings.Apply(opts...); err != nil {
		return nil, wrapError(ErrConfiguration, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, wrapError(ErrConfiguration, err)
	}

	if err := logging.SetLogLevelRegex("^crabnode", settings.LogLevel); err != nil {
		return nil, wrapError(ErrConfiguration, err)
	}

	manager := &Manager{
		settings: settings,
		factory:  factory,

		status: StatusDisconnected,

		network: networkSnapshotNew(settings.MaxPeers),
		storage: storageSnapshotNew(settings.StorageQuota),

		progress: progressRegistryNew(observer),
	}

	if settings.AutoConnect {
		if err := manager.Connect(settings.Context); err != nil {
			return nil, err
		}
	}

	return manager, nil
}

// Settings returns the settings this manager was built with
func (m *Manager) Settings() options.Settings {
	return *m.settings
}

// Connect creates and starts a node. It returns nil if already connected and
// ErrConnectInProgress if another connect is running.
func (m *Manager) Connect(ctx context.Context) error {
	m.statusMutex.Lock()
	switch m.status {
	case StatusConnected:
		m.statusMutex.Unlock()
		return nil
	case StatusConnecting:
		m.statusMutex.Unlock()
		return ErrConnectInProgress
	}
	m.status = StatusConnecting
	m.lastError = ""
	m.attempt++
	attempt := m.attempt
	m.statusMutex.Unlock()

	log.Infow("connecting", "dataDir", m.settings.DataDir, "repo", m.settings.RepoKind)

	node, err := m.factory(m.settings)
	if err != nil {
		return m.failConnect(attempt, wrapError(ErrNodeCreation, err))
	}

	if err := node.Start(ctx); err != nil {
		if stopErr := node.Stop(ctx); stopErr != nil {
			log.Debugw("stop after failed start", "err", stopErr)
		}
		return m.failConnect(attempt, wrapError(ErrNodeStart, err))
	}

	m.statusMutex.Lock()
	if m.status != StatusConnecting || m.attempt != attempt {
		m.statusMutex.Unlock()

		if err := node.Stop(ctx); err != nil {
			log.Warnw("failed to stop aborted node", "err", err)
		}
		return ErrConnectAborted
	}

	m.nodeMutex.Lock()
	m.node = node
	m.nodeMutex.Unlock()

	m.status = StatusConnected
	m.statusMutex.Unlock()

	if err := m.RefreshNetworkInfo(ctx); err != nil {
		log.Warnw("failed to refresh network info", "err", err)
	}

	m.startRefresher()

	log.Infow("connected")
	return nil
}

func (m *Manager) failConnect(attempt uint64, err error) error {
	m.statusMutex.Lock()
	if m.status == StatusConnecting && m.attempt == attempt {
		m.status = StatusError
		m.lastError = err.Error()
	}
	m.statusMutex.Unlock()

	log.Errorw("connection failed", "err", err)
	return err
}

// Disconnect stops the node. Stop failures are logged, not returned.
//
// Transfers already running are neither cancelled nor awaited: they keep the
// node they started with and finish or fail on their own.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.statusMutex.Lock()
	if m.status == StatusDisconnected {
		m.statusMutex.Unlock()
		return nil
	}
	m.status = StatusDisconnected
	m.attempt++
	m.statusMutex.Unlock()

	m.stopRefresher()

	m.nodeMutex.Lock()
	node := m.node
	m.node = nil
	m.nodeMutex.Unlock()

	if node != nil {
		if err := node.Stop(ctx); err != nil {
			log.Warnw("failed to stop node", "err", err)
		}
	}

	m.networkMutex.Lock()
	m.network.PeerID = ""
	m.network.Version = ""
	m.network.RepoPath = ""
	m.network.ConnectedPeers = 0
	m.networkMutex.Unlock()

	m.statusMutex.Lock()
	m.lastError = ""
	m.statusMutex.Unlock()

	log.Infow("disconnected")
	return nil
}

// Close disconnects and waits for pending progress events to be delivered
func (m *Manager) Close() error {
	err := m.Disconnect(context.Background())
	m.progress.Wait()
	return err
}

// Status returns the connection status
func (m *Manager) Status() ConnectionStatus {
	m.statusMutex.RLock()
	defer m.statusMutex.RUnlock()

	return m.status
}

// LastError returns the reason of the last failed connect, if any
func (m *Manager) LastError() (string, bool) {
	m.statusMutex.RLock()
	defer m.statusMutex.RUnlock()

	return m.lastError, m.lastError != ""
}

// NetworkInfo returns the cached network snapshot
func (m *Manager) NetworkInfo() NetworkSnapshot {
	m.networkMutex.RLock()
	defer m.networkMutex.RUnlock()

	return m.network
}

// StorageInfo returns the cached storage snapshot. Unless the node accounts
// its repository, the values are an estimate seeded from the quota.
func (m *Manager) StorageInfo() StorageSnapshot {
	m.storageMutex.RLock()
	defer m.storageMutex.RUnlock()

	return m.storage
}

// PeerID returns the cached peer id of the node
func (m *Manager) PeerID() (string, bool) {
	network := m.NetworkInfo()
	return network.PeerID, network.PeerID != ""
}

// Version returns the cached version of the node
func (m *Manager) Version() (string, bool) {
	network := m.NetworkInfo()
	return network.Version, network.Version != ""
}

// ConnectToPeer dials peerID at addrs
func (m *Manager) ConnectToPeer(ctx context.Context, peerID string, addrs []string) error {
	node, err := m.startedNode()
	if err != nil {
		return err
	}

	if err := node.ConnectToPeer(ctx, peerID, addrs); err != nil {
		return wrapError(ErrConfiguration, err)
	}

	m.scheduleRefresh()
	return nil
}

// NodeAddresses returns the addresses the node is reachable at
func (m *Manager) NodeAddresses(ctx context.Context) ([]string, error) {
	node, err := m.startedNode()
	if err != nil {
		return nil, err
	}

	info, err := node.DebugInfo(ctx)
	if err != nil {
		return nil, wrapError(ErrConfiguration, err)
	}

	return info.Addrs, nil
}

// currentNode copies the node out of its slot. The caller operates on the
// copy without holding nodeMutex.
func (m *Manager) currentNode() (interfaces.Node, error) {
	m.nodeMutex.Lock()
	node := m.node
	m.nodeMutex.Unlock()

	if node == nil {
		return nil, ErrNodeNotInitialized
	}

	return node, nil
}

func (m *Manager) startedNode() (interfaces.Node, error) {
	node, err := m.currentNode()
	if err != nil {
		return nil, err
	}

	if !node.IsStarted() {
		return nil, ErrNodeNotStarted
	}

	return node, nil
}
