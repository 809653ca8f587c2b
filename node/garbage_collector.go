package node

import (
	"context"
	"path"
	"sync"
	"time"

	syncevent "github.com/GustavoKatel/SyncEvent"
	cid "github.com/ipfs/go-cid"
	ipfsDatastore "github.com/ipfs/go-datastore"
	ipfsDatastoreQuery "github.com/ipfs/go-datastore/query"
	ipfsBlockstore "github.com/ipfs/go-ipfs-blockstore"
)

const pinPrefix = "/crabnode/pins/"

func pinKey(c cid.Cid) ipfsDatastore.Key {
	return ipfsDatastore.NewKey(pinPrefix + c.String())
}

// garbageCollector removes blocks not reachable from any pinned manifest,
// such as the chunks of an interrupted upload
type garbageCollector struct {
	interval time.Duration

	scheduleCh chan struct{}

	ctx context.Context

	ds ipfsDatastore.Batching
	bs ipfsBlockstore.Blockstore

	locker *sync.RWMutex

	event syncevent.SyncEvent
}

func garbageCollectorNew(ctx context.Context, interval time.Duration, ds ipfsDatastore.Batching, bs ipfsBlockstore.Blockstore) *garbageCollector {
	return &garbageCollector{
		ctx:      ctx,
		interval: interval,

		scheduleCh: make(chan struct{}, 1),

		ds: ds,
		bs: bs,

		locker: &sync.RWMutex{},
		event:  syncevent.NewSyncEvent(false),
	}
}

func (gc *garbageCollector) Start() {
	go gc.background()
}

// Schedule schedules a clean up as soon as possible
func (gc *garbageCollector) Schedule() {
	select {
	case gc.scheduleCh <- struct{}{}:
	default:
	}
}

func (gc *garbageCollector) background() {
	var tick <-chan time.Time
	if gc.interval > 0 {
		ticker := time.NewTicker(gc.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-gc.ctx.Done():
			return
		case <-tick:
			gc.collectLogged()
		case <-gc.scheduleCh:
			gc.collectLogged()
		}
	}
}

func (gc *garbageCollector) collectLogged() {
	removed, err := gc.Collect()
	if err != nil {
		if gc.ctx.Err() == nil {
			log.Warnw("garbage collection failed", "err", err)
		}
		return
	}

	if removed > 0 {
		log.Infow("garbage collected", "blocks", removed)
	}
}

// Collect performs a clean up now and returns the number of removed blocks
func (gc *garbageCollector) Collect() (int, error) {
	// Check if there's another collect operation going on
	if gc.event.IsSet() {
		return 0, nil
	}

	gc.event.Set()
	defer gc.event.Reset()

	// Lock for read/write, making sure no upload is happening during collecting
	gc.locker.Lock()
	defer gc.locker.Unlock()

	if gc.ctx.Err() != nil {
		return 0, gc.ctx.Err()
	}

	// Stops the key producers when returning early
	ctx, cancel := context.WithCancel(gc.ctx)
	defer cancel()

	results, err := gc.ds.Query(ctx, ipfsDatastoreQuery.Query{
		Prefix:   pinPrefix,
		KeysOnly: true,
	})
	if err != nil {
		return 0, err
	}
	defer results.Close()

	usedBlocks := map[string]struct{}{}

	for result := range results.Next() {
		if result.Error != nil {
			return 0, result.Error
		}

		root, err := cid.Decode(path.Base(result.Key))
		if err != nil {
			continue
		}

		usedBlocks[string(root.Hash())] = struct{}{}

		block, err := gc.bs.Get(ctx, root)
		if err != nil {
			continue
		}

		m, err := unmarshalManifest(block.RawData())
		if err != nil {
			continue
		}

		for _, c := range m.Blocks {
			usedBlocks[string(c.Hash())] = struct{}{}
		}
	}

	ch, err := gc.bs.AllKeysChan(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for key := range ch {
		if _, prs := usedBlocks[string(key.Hash())]; prs {
			// Block is used, next
			continue
		}

		if err := gc.bs.DeleteBlock(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}

	gcDs, ok := gc.ds.(ipfsDatastore.GCDatastore)
	if ok {
		if err := gcDs.CollectGarbage(ctx); err != nil {
			return removed, err
		}
	}

	return removed, nil
}

// Wait blocks until a running collection finishes
func (gc *garbageCollector) Wait() {
	gc.locker.Lock()
	gc.locker.Unlock()
}

// Locker returns the locker uploads hold while writing unpinned blocks
func (gc *garbageCollector) Locker() sync.Locker {
	return gc.locker.RLocker()
}
