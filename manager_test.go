package crabnode

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/runletapp/crabnode/interfaces"
	"github.com/runletapp/crabnode/mocks"
	"github.com/runletapp/crabnode/options"
)

func TestManagerNewDefaults(t *testing.T) {
	m, _, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	assert.Equal(StatusDisconnected, m.Status())

	_, prs := m.LastError()
	assert.False(prs)

	network := m.NetworkInfo()
	assert.Equal(uint32(50), network.MaxPeers)
	assert.Equal(uint32(0), network.ConnectedPeers)
	assert.True(network.ApproximatePeers)
	assert.Empty(network.PeerID)

	storage := m.StorageInfo()
	assert.Equal(uint64(1024*1024*1024), storage.TotalBytes)
	assert.Equal(storage.TotalBytes, storage.AvailableBytes)
	assert.Equal(uint64(0), storage.UsedBytes)
	assert.True(storage.Estimated)

	_, prs = m.PeerID()
	assert.False(prs)
	_, prs = m.Version()
	assert.False(prs)
}

func TestManagerNewInvalidSettings(t *testing.T) {
	assert := assert.New(t)

	_, err := New(nil, nil, testOptions(t, options.StorageQuota(0))...)
	assert.True(errors.Is(err, ErrConfiguration))

	_, err = New(nil, nil, testOptions(t, options.LogLevel("chatty"))...)
	assert.True(errors.Is(err, ErrConfiguration))
}

func TestManagerConnect(t *testing.T) {
	m, _, _, ctrl := setUpConnectedManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	assert.Equal(StatusConnected, m.Status())

	peerID, prs := m.PeerID()
	assert.True(prs)
	assert.Equal("QmPeer", peerID)

	version, prs := m.Version()
	assert.True(prs)
	assert.Equal("1.2.3", version)

	network := m.NetworkInfo()
	assert.Equal("/data/repo", network.RepoPath)
	assert.True(network.ApproximatePeers)

	// Already connected
	assert.Nil(m.Connect(context.Background()))
	assert.Equal(StatusConnected, m.Status())
}

func TestManagerConnectCreatesNodeOnce(t *testing.T) {
	ctrl := setUpBasicTest(t)
	defer setDownBasicTest(ctrl)
	assert := assert.New(t)

	node := mocks.NewMockNode(ctrl)
	expectStartedNode(node)

	created := 0
	factory := func(settings *options.Settings) (interfaces.Node, error) {
		created++
		return node, nil
	}

	m, err := New(factory, nil, testOptions(t)...)
	assert.Nil(err)
	defer m.Close()

	assert.Nil(m.Connect(context.Background()))
	assert.Nil(m.Connect(context.Background()))
	assert.Equal(1, created)
}

func TestManagerConnectFactoryError(t *testing.T) {
	assert := assert.New(t)

	factory := func(settings *options.Settings) (interfaces.Node, error) {
		return nil, errors.New("bad repo")
	}

	m, err := New(factory, nil, testOptions(t)...)
	assert.Nil(err)
	defer m.Close()

	err = m.Connect(context.Background())
	assert.True(errors.Is(err, ErrNodeCreation))
	assert.Contains(err.Error(), "bad repo")

	assert.Equal(StatusError, m.Status())

	reason, prs := m.LastError()
	assert.True(prs)
	assert.Contains(reason, "bad repo")
}

func TestManagerConnectStartError(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().Start(gomock.Any()).Return(errors.New("port in use"))
	node.EXPECT().Stop(gomock.Any()).Return(nil)

	err := m.Connect(context.Background())
	assert.True(errors.Is(err, ErrNodeStart))
	assert.Equal(StatusError, m.Status())

	reason, prs := m.LastError()
	assert.True(prs)
	assert.Contains(reason, "port in use")

	// No node is kept after a failed connect
	_, err = m.Upload(context.Background(), writeTestFile(t, 1))
	assert.True(errors.Is(err, ErrNodeNotInitialized))
}

func TestManagerConnectRetryAfterError(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	gomock.InOrder(
		node.EXPECT().Start(gomock.Any()).Return(errors.New("port in use")),
		node.EXPECT().Stop(gomock.Any()).Return(nil),
	)
	assert.NotNil(m.Connect(context.Background()))
	assert.Equal(StatusError, m.Status())

	expectStartedNode(node)
	assert.Nil(m.Connect(context.Background()))
	assert.Equal(StatusConnected, m.Status())

	_, prs := m.LastError()
	assert.False(prs)
}

func TestManagerConnectingStatus(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().IsStarted().AnyTimes().Return(true)
	node.EXPECT().PeerID().AnyTimes().Return("QmPeer", nil)
	node.EXPECT().Version().AnyTimes().Return("1.2.3", nil)
	node.EXPECT().RepoPath().AnyTimes().Return("/data/repo", nil)
	node.EXPECT().Stop(gomock.Any()).AnyTimes().Return(nil)

	node.EXPECT().Start(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		assert.Equal(StatusConnecting, m.Status())
		assert.Equal(ErrConnectInProgress, m.Connect(ctx))
		return nil
	})

	assert.Nil(m.Connect(context.Background()))
	assert.Equal(StatusConnected, m.Status())
}

func TestManagerDisconnectWhileConnecting(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().Start(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		assert.Nil(m.Disconnect(ctx))
		return nil
	})
	// The started node is torn down by the aborted connect
	node.EXPECT().Stop(gomock.Any()).Return(nil)

	err := m.Connect(context.Background())
	assert.Equal(ErrConnectAborted, err)
	assert.Equal(StatusDisconnected, m.Status())

	_, err = m.NodeAddresses(context.Background())
	assert.Equal(ErrNodeNotInitialized, err)
}

func TestManagerAutoConnect(t *testing.T) {
	ctrl := setUpBasicTest(t)
	defer setDownBasicTest(ctrl)
	assert := assert.New(t)

	node := mocks.NewMockNode(ctrl)
	expectStartedNode(node)

	m, _ := setUpManagerTestWithNode(t, node, options.AutoConnect(true))
	defer m.Close()

	assert.Equal(StatusConnected, m.Status())
}

func TestManagerDisconnect(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().Start(gomock.Any()).Return(nil)
	node.EXPECT().IsStarted().AnyTimes().Return(true)
	node.EXPECT().PeerID().AnyTimes().Return("QmPeer", nil)
	node.EXPECT().Version().AnyTimes().Return("1.2.3", nil)
	node.EXPECT().RepoPath().AnyTimes().Return("/data/repo", nil)
	node.EXPECT().Stop(gomock.Any()).Times(1).Return(nil)

	assert.Nil(m.Connect(context.Background()))
	assert.Nil(m.Disconnect(context.Background()))

	assert.Equal(StatusDisconnected, m.Status())

	_, prs := m.PeerID()
	assert.False(prs)

	network := m.NetworkInfo()
	assert.Empty(network.RepoPath)
	assert.Equal(uint32(50), network.MaxPeers)

	// Disconnecting again does not touch the node
	assert.Nil(m.Disconnect(context.Background()))
}

func TestManagerDisconnectNeverConnected(t *testing.T) {
	m, _, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	assert.Nil(m.Disconnect(context.Background()))
	assert.Equal(StatusDisconnected, m.Status())
}

func TestManagerDisconnectStopFailure(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().Start(gomock.Any()).Return(nil)
	node.EXPECT().PeerID().AnyTimes().Return("QmPeer", nil)
	node.EXPECT().Version().AnyTimes().Return("1.2.3", nil)
	node.EXPECT().RepoPath().AnyTimes().Return("/data/repo", nil)
	node.EXPECT().Stop(gomock.Any()).Return(errors.New("stuck"))

	assert.Nil(m.Connect(context.Background()))
	assert.Nil(m.Disconnect(context.Background()))
	assert.Equal(StatusDisconnected, m.Status())
}

func TestManagerDisconnectAfterError(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().Start(gomock.Any()).Return(errors.New("port in use"))
	node.EXPECT().Stop(gomock.Any()).Return(nil)

	assert.NotNil(m.Connect(context.Background()))
	assert.Nil(m.Disconnect(context.Background()))

	assert.Equal(StatusDisconnected, m.Status())
	_, prs := m.LastError()
	assert.False(prs)
}

func TestManagerNetworkInfoPartial(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().Start(gomock.Any()).Return(nil)
	node.EXPECT().PeerID().AnyTimes().Return("", errors.New("no identity"))
	node.EXPECT().Version().AnyTimes().Return("1.2.3", nil)
	node.EXPECT().RepoPath().AnyTimes().Return("", errors.New("no repo"))
	node.EXPECT().Stop(gomock.Any()).AnyTimes().Return(nil)

	assert.Nil(m.Connect(context.Background()))

	_, prs := m.PeerID()
	assert.False(prs)

	version, prs := m.Version()
	assert.True(prs)
	assert.Equal("1.2.3", version)

	assert.Empty(m.NetworkInfo().RepoPath)
}

// statsNode a node that also counts peers and accounts its storage
type statsNode struct {
	*mocks.MockNode
	*mocks.MockPeerCounter
	*mocks.MockStorageStater
}

func TestManagerRefreshLiveCounters(t *testing.T) {
	ctrl := setUpBasicTest(t)
	defer setDownBasicTest(ctrl)
	assert := assert.New(t)

	node := &statsNode{
		MockNode:          mocks.NewMockNode(ctrl),
		MockPeerCounter:   mocks.NewMockPeerCounter(ctrl),
		MockStorageStater: mocks.NewMockStorageStater(ctrl),
	}
	expectStartedNode(node.MockNode)
	node.MockPeerCounter.EXPECT().ConnectedPeers().AnyTimes().Return(3)
	node.MockStorageStater.EXPECT().StorageStat(gomock.Any()).AnyTimes().Return(interfaces.StorageStat{
		UsedBytes:  100,
		BlockCount: 2,
	}, nil)

	m, _ := setUpManagerTestWithNode(t, node, options.StorageQuota(1000))
	defer m.Close()

	assert.Nil(m.Connect(context.Background()))

	network := m.NetworkInfo()
	assert.Equal(uint32(3), network.ConnectedPeers)
	assert.False(network.ApproximatePeers)

	storage := m.StorageInfo()
	assert.Equal(uint64(100), storage.UsedBytes)
	assert.Equal(uint64(1000), storage.TotalBytes)
	assert.Equal(uint64(900), storage.AvailableBytes)
	assert.Equal(uint32(2), storage.BlockCount)
	assert.False(storage.Estimated)
}

func TestManagerRefreshNotInitialized(t *testing.T) {
	m, _, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	assert.Equal(ErrNodeNotInitialized, m.RefreshNetworkInfo(context.Background()))
}

func TestManagerNotInitialized(t *testing.T) {
	m, _, recorder, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)
	ctx := context.Background()

	_, err := m.Upload(ctx, writeTestFile(t, 10))
	assert.Equal(ErrNodeNotInitialized, err)

	err = m.Download(ctx, "bafkreid", "/tmp/out")
	assert.Equal(ErrNodeNotInitialized, err)

	assert.Equal(ErrNodeNotInitialized, m.ConnectToPeer(ctx, "QmOther", nil))

	_, err = m.NodeAddresses(ctx)
	assert.Equal(ErrNodeNotInitialized, err)

	m.progress.Wait()
	assert.Len(recorder.Events(), 0)
}

func TestManagerNotStarted(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)
	ctx := context.Background()

	node.EXPECT().Start(gomock.Any()).Return(nil)
	node.EXPECT().IsStarted().AnyTimes().Return(false)
	node.EXPECT().PeerID().AnyTimes().Return("QmPeer", nil)
	node.EXPECT().Version().AnyTimes().Return("1.2.3", nil)
	node.EXPECT().RepoPath().AnyTimes().Return("/data/repo", nil)
	node.EXPECT().Stop(gomock.Any()).AnyTimes().Return(nil)

	assert.Nil(m.Connect(ctx))

	_, err := m.Upload(ctx, writeTestFile(t, 10))
	assert.Equal(ErrNodeNotStarted, err)

	err = m.Download(ctx, "bafkreid", "/tmp/out")
	assert.Equal(ErrNodeNotStarted, err)

	_, err = m.NodeAddresses(ctx)
	assert.Equal(ErrNodeNotStarted, err)

	assert.Equal(0, m.progress.Len())
}

func TestManagerConnectToPeer(t *testing.T) {
	m, node, _, ctrl := setUpConnectedManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)
	ctx := context.Background()

	addrs := []string{"/ip4/10.0.0.2/tcp/4001"}
	node.EXPECT().ConnectToPeer(gomock.Any(), "QmOther", addrs).Return(nil)
	assert.Nil(m.ConnectToPeer(ctx, "QmOther", addrs))

	node.EXPECT().ConnectToPeer(gomock.Any(), "QmBad", gomock.Any()).Return(errors.New("dial failed"))
	err := m.ConnectToPeer(ctx, "QmBad", nil)
	assert.True(errors.Is(err, ErrConfiguration))
	assert.Contains(err.Error(), "dial failed")
}

func TestManagerNodeAddresses(t *testing.T) {
	m, node, _, ctrl := setUpConnectedManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().DebugInfo(gomock.Any()).Return(&interfaces.DebugInfo{
		Addrs: []string{"/ip4/127.0.0.1/tcp/4001/p2p/QmPeer"},
	}, nil)

	addrs, err := m.NodeAddresses(context.Background())
	assert.Nil(err)
	assert.Equal([]string{"/ip4/127.0.0.1/tcp/4001/p2p/QmPeer"}, addrs)
}

func TestManagerConcurrentConnectDisconnect(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	node.EXPECT().Start(gomock.Any()).AnyTimes().Return(nil)
	node.EXPECT().IsStarted().AnyTimes().Return(true)
	node.EXPECT().PeerID().AnyTimes().Return("QmPeer", nil)
	node.EXPECT().Version().AnyTimes().Return("1.2.3", nil)
	node.EXPECT().RepoPath().AnyTimes().Return("/data/repo", nil)
	node.EXPECT().Stop(gomock.Any()).AnyTimes().Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Connect(context.Background())
		}()
		go func() {
			defer wg.Done()
			m.Disconnect(context.Background())
		}()
	}
	wg.Wait()

	status := m.Status()
	assert.True(status == StatusConnected || status == StatusDisconnected)

	if status == StatusDisconnected {
		_, err := m.NodeAddresses(context.Background())
		assert.Equal(ErrNodeNotInitialized, err)
	}
}

// expectCountedRefreshes sets up node to start and counts the snapshot
// refreshes run against it
func expectCountedRefreshes(node *mocks.MockNode, refreshes *atomic.Int32) {
	node.EXPECT().Start(gomock.Any()).Return(nil)
	node.EXPECT().IsStarted().AnyTimes().Return(true)
	node.EXPECT().PeerID().AnyTimes().Return("QmPeer", nil)
	node.EXPECT().Version().AnyTimes().DoAndReturn(func() (string, error) {
		refreshes.Add(1)
		return "1.2.3", nil
	})
	node.EXPECT().RepoPath().AnyTimes().Return("/data/repo", nil)
	node.EXPECT().Stop(gomock.Any()).AnyTimes().Return(nil)
}

func TestManagerRefresherTicks(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t, options.RefreshInterval(10*time.Millisecond))
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	refreshes := &atomic.Int32{}
	expectCountedRefreshes(node, refreshes)

	assert.Nil(m.Connect(context.Background()))

	// Connect refreshes once, the ticker does the rest
	assert.Eventually(func() bool {
		return refreshes.Load() >= 4
	}, 5*time.Second, 5*time.Millisecond)

	assert.Equal("1.2.3", m.NetworkInfo().Version)
}

func TestManagerRefresherStopsOnDisconnect(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t, options.RefreshInterval(10*time.Millisecond))
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	refreshes := &atomic.Int32{}
	expectCountedRefreshes(node, refreshes)

	assert.Nil(m.Connect(context.Background()))
	assert.Eventually(func() bool {
		return refreshes.Load() >= 2
	}, 5*time.Second, 5*time.Millisecond)

	assert.Nil(m.Disconnect(context.Background()))
	stopped := refreshes.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(stopped, refreshes.Load())
	assert.Equal("", m.NetworkInfo().Version)
}

func TestManagerConnectToPeerSchedulesRefresh(t *testing.T) {
	m, node, _, ctrl := setUpManagerTest(t)
	defer setDownManagerTest(m, ctrl)
	assert := assert.New(t)

	refreshes := &atomic.Int32{}
	expectCountedRefreshes(node, refreshes)

	assert.Nil(m.Connect(context.Background()))
	assert.Equal(int32(1), refreshes.Load())

	node.EXPECT().ConnectToPeer(gomock.Any(), "QmOther", gomock.Any()).Return(nil)
	assert.Nil(m.ConnectToPeer(context.Background(), "QmOther", nil))

	assert.Eventually(func() bool {
		return refreshes.Load() == 2
	}, 5*time.Second, 5*time.Millisecond)
}
