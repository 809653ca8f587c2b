//go:generate mockgen -destination=../mocks/mock_stats.go -package=mocks github.com/runletapp/crabnode/interfaces PeerCounter,StorageStater

package interfaces

import "context"

// StorageStat repository accounting
type StorageStat struct {
	UsedBytes  uint64
	BlockCount uint32
}

// PeerCounter is implemented by nodes that track live connections
type PeerCounter interface {
	ConnectedPeers() int
}

// StorageStater is implemented by nodes that can account their repository usage
type StorageStater interface {
	StorageStat(ctx context.Context) (StorageStat, error)
}
