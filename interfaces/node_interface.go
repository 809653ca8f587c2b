//go:generate mockgen -destination=../mocks/mock_node.go -package=mocks github.com/runletapp/crabnode/interfaces Node

package interfaces

import (
	"context"

	"github.com/runletapp/crabnode/options"
)

// TransferProgress is reported by a node while bytes move
type TransferProgress struct {
	// BytesTransferred bytes uploaded or downloaded so far
	BytesTransferred uint64

	// TotalBytes total size of the transfer, nil while unknown
	TotalBytes *uint64
}

// ProgressFunc receives transfer progress. It may be called from any goroutine,
// including after the transfer call has returned.
type ProgressFunc func(progress TransferProgress)

// UploadResult result of a successful upload
type UploadResult struct {
	CID  string
	Size uint64
}

// DownloadResult result of a successful download
type DownloadResult struct {
	Size uint64
}

// DebugInfo node diagnostics
type DebugInfo struct {
	Addrs []string
}

// Node storage node capability.
//
// Implementations must be safe for concurrent use: the manager shares one
// Node between every in-flight transfer and metadata query.
type Node interface {
	// Start brings the node online
	Start(ctx context.Context) error

	// Stop takes the node offline and releases its resources
	Stop(ctx context.Context) error

	// IsStarted reports whether Start succeeded and Stop was not called yet
	IsStarted() bool

	// PeerID returns the network id of this node
	PeerID() (string, error)

	// Version returns the node implementation version
	Version() (string, error)

	// RepoPath returns the location of the node repository
	RepoPath() (string, error)

	// Upload stores the file at path and returns its content id
	Upload(ctx context.Context, path string, onProgress ProgressFunc) (*UploadResult, error)

	// Download writes the content cid to destPath
	Download(ctx context.Context, cid string, destPath string, onProgress ProgressFunc) (*DownloadResult, error)

	// ConnectToPeer dials peerID using addrs
	ConnectToPeer(ctx context.Context, peerID string, addrs []string) error

	// DebugInfo returns node diagnostics
	DebugInfo(ctx context.Context) (*DebugInfo, error)
}

// NodeFactory creates a node, not started yet, from settings
type NodeFactory func(settings *options.Settings) (Node, error)
