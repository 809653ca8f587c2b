package crabnode

// NetworkSnapshot cached view of the node network metadata. It is overwritten
// on each refresh and may be stale in between.
type NetworkSnapshot struct {
	// PeerID, Version and RepoPath are empty when the node could not report them
	PeerID   string `json:"peer_id,omitempty"`
	Version  string `json:"version,omitempty"`
	RepoPath string `json:"repo_path,omitempty"`

	ConnectedPeers uint32 `json:"connected_peers"`
	MaxPeers       uint32 `json:"max_peers"`

	// ApproximatePeers is true when ConnectedPeers is a placeholder
	ApproximatePeers bool `json:"approximate_peers"`
}

// StorageSnapshot cached view of the node repository usage
type StorageSnapshot struct {
	UsedBytes      uint64 `json:"used_bytes"`
	TotalBytes     uint64 `json:"total_bytes"`
	AvailableBytes uint64 `json:"available_bytes"`
	BlockCount     uint32 `json:"block_count"`

	// Estimated is true while the values are seeded from the quota instead
	// of read from the node
	Estimated bool `json:"estimated"`
}

func networkSnapshotNew(maxPeers uint32) NetworkSnapshot {
	return NetworkSnapshot{
		MaxPeers:         maxPeers,
		ApproximatePeers: true,
	}
}

func storageSnapshotNew(quota uint64) StorageSnapshot {
	return StorageSnapshot{
		TotalBytes:     quota,
		AvailableBytes: quota,
		Estimated:      true,
	}
}

func storageSnapshotFromUsage(quota uint64, used uint64, blocks uint32) StorageSnapshot {
	available := uint64(0)
	if used < quota {
		available = quota - used
	}

	return StorageSnapshot{
		UsedBytes:      used,
		TotalBytes:     quota,
		AvailableBytes: available,
		BlockCount:     blocks,
	}
}
