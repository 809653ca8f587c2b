package node

import (
	"context"
	"sync"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	ipfsBlockstore "github.com/ipfs/go-ipfs-blockstore"
)

// quota admits uploads against the storage limit. An admitted upload reserves
// the bytes of the blocks it will add; a reservation shrinks as its blocks are
// written and is released when the upload ends.
type quota struct {
	mutex sync.Mutex

	limit    uint64
	reserved uint64
}

type reservation struct {
	quota *quota

	// pending blocks not written yet, by cid. Guarded by quota.mutex
	pending map[cid.Cid]uint64
}

func quotaNew(limit uint64) *quota {
	return &quota{limit: limit}
}

// Reserve admits pending if the stored bytes reported by used, the bytes
// reserved by running uploads and pending together fit the limit
func (q *quota) Reserve(ctx context.Context, used func(ctx context.Context) (uint64, error), pending map[cid.Cid]uint64) (*reservation, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	usedBytes, err := used(ctx)
	if err != nil {
		return nil, err
	}

	need := uint64(0)
	for _, size := range pending {
		need += size
	}

	if usedBytes+q.reserved+need > q.limit {
		return nil, ErrQuotaExceeded
	}

	q.reserved += need

	return &reservation{quota: q, pending: pending}, nil
}

// Reserved returns the bytes held by running uploads
func (q *quota) Reserved() uint64 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.reserved
}

// Put stores block and moves its bytes from the reservation to the store.
// Both happen under the quota lock so admission never counts a block twice
// or not at all.
func (r *reservation) Put(ctx context.Context, bs ipfsBlockstore.Blockstore, block blocks.Block) error {
	r.quota.mutex.Lock()
	defer r.quota.mutex.Unlock()

	if err := bs.Put(ctx, block); err != nil {
		return err
	}

	if size, prs := r.pending[block.Cid()]; prs {
		delete(r.pending, block.Cid())
		r.quota.reserved -= size
	}

	return nil
}

// Release gives back the bytes of blocks never written
func (r *reservation) Release() {
	r.quota.mutex.Lock()
	defer r.quota.mutex.Unlock()

	for c, size := range r.pending {
		delete(r.pending, c)
		r.quota.reserved -= size
	}
}
