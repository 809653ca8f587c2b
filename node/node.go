package node

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	ipfsDatastore "github.com/ipfs/go-datastore"
	ipfsDatastoreSync "github.com/ipfs/go-datastore/sync"
	badger "github.com/ipfs/go-ds-badger"
	ipfsBlockstore "github.com/ipfs/go-ipfs-blockstore"
	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	libp2pHost "github.com/libp2p/go-libp2p/core/host"
	libp2pPeer "github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/pnet"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"github.com/multiformats/go-multiaddr"
	cache "github.com/patrickmn/go-cache"

	"github.com/runletapp/crabnode/identity"
	"github.com/runletapp/crabnode/interfaces"
	"github.com/runletapp/crabnode/options"
)

var log = logging.Logger("crabnode/node")

// Version node implementation version
const Version = "0.1.0"

var _ interfaces.Node = &LocalNode{}
var _ interfaces.PeerCounter = &LocalNode{}
var _ interfaces.StorageStater = &LocalNode{}

// LocalNode storage node embedded in the process: a libp2p host for peer
// connectivity and a blockstore over a badger or in-memory datastore.
// Content is stored locally only; blocks are not fetched from peers.
type LocalNode struct {
	settings *options.Settings

	repoPath string
	identity identity.Identity
	psk      pnet.PSK

	// mutex is held for reading by every operation using the repository and
	// for writing by Start and Stop, so Stop waits for running transfers
	mutex   sync.RWMutex
	started atomic.Bool

	host libp2pHost.Host
	ds   ipfsDatastore.Batching
	bs   ipfsBlockstore.Blockstore
	gc   *garbageCollector

	ctx       context.Context
	ctxCancel context.CancelFunc

	manifests *cache.Cache

	quota *quota
}

// New creates a node from settings. It matches interfaces.NodeFactory
func New(settings *options.Settings) (interfaces.Node, error) {
	return LocalNodeNew(settings)
}

// LocalNodeNew creates a node, not started yet
func LocalNodeNew(settings *options.Settings) (*LocalNode, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if settings.DataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}

	node := &LocalNode{
		settings: settings,
		repoPath: filepath.Join(settings.DataDir, "repo"),

		manifests: cache.New(10*time.Minute, 10*time.Minute),

		quota: quotaNew(settings.StorageQuota),
	}

	var err error
	switch settings.RepoKind {
	case options.RepoMemory:
		node.identity, err = identity.CreateIdentity()
	case options.RepoBadger:
		if err := os.MkdirAll(settings.DataDir, 0755); err != nil {
			return nil, err
		}
		node.identity, err = identity.LoadOrCreate(filepath.Join(settings.DataDir, "identity.key"))
	default:
		return nil, ErrInvalidRepoKind
	}
	if err != nil {
		return nil, err
	}

	if settings.SwarmKeyPath != "" {
		node.psk, err = readSwarmKeyFile(settings.SwarmKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read swarm key: %v", err)
		}
	}

	return node, nil
}

func openDatastore(kind string, path string) (ipfsDatastore.Batching, error) {
	switch kind {
	case options.RepoMemory:
		return ipfsDatastoreSync.MutexWrap(ipfsDatastore.NewMapDatastore()), nil
	case options.RepoBadger:
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, err
		}
		ds, err := badger.NewDatastore(path, &badger.DefaultOptions)
		if err != nil {
			return nil, err
		}
		return ds, nil
	}

	return nil, ErrInvalidRepoKind
}

func (node *LocalNode) Start(ctx context.Context) error {
	node.mutex.Lock()
	defer node.mutex.Unlock()

	if node.started.Load() {
		return nil
	}

	ds, err := openDatastore(node.settings.RepoKind, node.repoPath)
	if err != nil {
		return err
	}

	host, err := node.newHost()
	if err != nil {
		ds.Close()
		return err
	}

	node.ctx, node.ctxCancel = context.WithCancel(context.Background())

	node.ds = ds
	node.bs = ipfsBlockstore.NewBlockstore(ds)
	node.host = host

	node.gc = garbageCollectorNew(node.ctx, node.settings.GCInterval, node.ds, node.bs)
	node.gc.Start()

	node.started.Store(true)

	node.bootstrap(ctx)

	log.Infow("node started", "peer", host.ID().String(), "repo", node.repoPath)
	return nil
}

func (node *LocalNode) newHost() (libp2pHost.Host, error) {
	low := int(node.settings.MaxPeers) / 2
	connManager, err := connmgr.NewConnManager(low, int(node.settings.MaxPeers))
	if err != nil {
		return nil, err
	}

	port := node.settings.DiscoveryPort
	opts := []libp2p.Option{
		libp2p.Identity(node.identity.GetLibp2pPrivateKey()),
		libp2p.ListenAddrStrings(
			fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", port),
			fmt.Sprintf("/ip6/::/tcp/%d", port),
		),
		// Private networks are only supported over tcp
		libp2p.Transport(tcp.NewTCPTransport),
		libp2p.ConnectionManager(connManager),
	}

	if node.psk != nil {
		opts = append(opts, libp2p.PrivateNetwork(node.psk))
	}

	return libp2p.New(opts...)
}

func (node *LocalNode) bootstrap(ctx context.Context) {
	for _, addr := range node.settings.BootstrapPeers {
		info, err := libp2pPeer.AddrInfoFromString(addr)
		if err != nil {
			log.Warnw("invalid bootstrap address", "addr", addr, "err", err)
			continue
		}

		if err := node.host.Connect(ctx, *info); err != nil {
			log.Warnw("failed to dial bootstrap peer", "addr", addr, "err", err)
		}
	}
}

func (node *LocalNode) Stop(ctx context.Context) error {
	node.started.Store(false)

	node.mutex.Lock()
	defer node.mutex.Unlock()

	if node.host == nil {
		return nil
	}

	node.ctxCancel()
	node.gc.Wait()

	hostErr := node.host.Close()
	dsErr := node.ds.Close()

	node.host = nil
	node.ds = nil
	node.bs = nil
	node.gc = nil
	node.manifests.Flush()

	if hostErr != nil {
		return hostErr
	}

	return dsErr
}

func (node *LocalNode) IsStarted() bool {
	return node.started.Load()
}

// acquire read locks the node for the duration of an operation
func (node *LocalNode) acquire() (func(), error) {
	node.mutex.RLock()
	if node.host == nil || !node.started.Load() {
		node.mutex.RUnlock()
		return nil, ErrNotStarted
	}

	return node.mutex.RUnlock, nil
}

func (node *LocalNode) PeerID() (string, error) {
	release, err := node.acquire()
	if err != nil {
		return node.identity.PeerID()
	}
	defer release()

	return node.host.ID().String(), nil
}

func (node *LocalNode) Version() (string, error) {
	return Version, nil
}

func (node *LocalNode) RepoPath() (string, error) {
	if node.settings.RepoKind == options.RepoMemory {
		return "", fmt.Errorf("in-memory repository has no path")
	}

	return node.repoPath, nil
}

func (node *LocalNode) ConnectToPeer(ctx context.Context, peerID string, addrs []string) error {
	release, err := node.acquire()
	if err != nil {
		return err
	}
	defer release()

	id, err := libp2pPeer.Decode(peerID)
	if err != nil {
		return fmt.Errorf("invalid peer id %q: %v", peerID, err)
	}

	info := libp2pPeer.AddrInfo{ID: id}
	for _, addr := range addrs {
		maddr, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %v", addr, err)
		}
		info.Addrs = append(info.Addrs, maddr)
	}

	return node.host.Connect(ctx, info)
}

func (node *LocalNode) DebugInfo(ctx context.Context) (*interfaces.DebugInfo, error) {
	release, err := node.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	addrs := []string{}

	hostAddr, err := multiaddr.NewMultiaddr(fmt.Sprintf("/p2p/%s", node.host.ID().String()))
	if err != nil {
		return nil, err
	}

	for _, addr := range node.host.Addrs() {
		addrs = append(addrs, addr.Encapsulate(hostAddr).String())
	}

	return &interfaces.DebugInfo{Addrs: addrs}, nil
}

func (node *LocalNode) ConnectedPeers() int {
	release, err := node.acquire()
	if err != nil {
		return 0
	}
	defer release()

	return len(node.host.Network().Peers())
}

func (node *LocalNode) StorageStat(ctx context.Context) (interfaces.StorageStat, error) {
	release, err := node.acquire()
	if err != nil {
		return interfaces.StorageStat{}, err
	}
	defer release()

	return node.storageStat(ctx)
}

func (node *LocalNode) storageStat(ctx context.Context) (interfaces.StorageStat, error) {
	stat := interfaces.StorageStat{}

	ch, err := node.bs.AllKeysChan(ctx)
	if err != nil {
		return stat, err
	}

	for key := range ch {
		size, err := node.bs.GetSize(ctx, key)
		if err != nil {
			continue
		}

		stat.UsedBytes += uint64(size)
		stat.BlockCount++
	}

	return stat, ctx.Err()
}

func (node *LocalNode) usedBytes(ctx context.Context) (uint64, error) {
	stat, err := node.storageStat(ctx)
	return stat.UsedBytes, err
}

// CollectGarbage removes orphan blocks now
func (node *LocalNode) CollectGarbage() (int, error) {
	release, err := node.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	return node.gc.Collect()
}
