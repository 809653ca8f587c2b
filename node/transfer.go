package node

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	ipfsChunker "github.com/ipfs/go-ipfs-chunker"

	"github.com/runletapp/crabnode/interfaces"
)

func (node *LocalNode) Upload(ctx context.Context, path string, onProgress interfaces.ProgressFunc) (*interfaces.UploadResult, error) {
	release, err := node.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	size := uint64(stat.Size())

	// Blocks written below are unpinned until the manifest is; keep the
	// garbage collector out until then
	locker := node.gc.Locker()
	locker.Lock()
	defer locker.Unlock()

	m, sizes, err := scanChunks(file)
	if err != nil {
		return nil, err
	}
	if m.Size != size {
		return nil, ErrSizeMismatch
	}

	root, err := m.Block()
	if err != nil {
		return nil, err
	}

	pending, err := node.missingBlocks(ctx, m, sizes, root)
	if err != nil {
		return nil, err
	}

	reservation, err := node.quota.Reserve(ctx, node.usedBytes, pending)
	if err != nil {
		return nil, err
	}
	defer reservation.Release()

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if err := node.putChunks(ctx, file, m, reservation, onProgress); err != nil {
		node.gc.Schedule()
		return nil, err
	}

	if err := reservation.Put(ctx, node.bs, root); err != nil {
		node.gc.Schedule()
		return nil, err
	}

	if err := node.ds.Put(ctx, pinKey(root.Cid()), []byte{}); err != nil {
		node.gc.Schedule()
		return nil, err
	}

	node.manifests.SetDefault(root.Cid().String(), m)

	return &interfaces.UploadResult{CID: root.Cid().String(), Size: size}, nil
}

// scanChunks splits r into blocks and returns their manifest and block
// sizes without storing anything
func scanChunks(r io.Reader) (*manifest, []uint64, error) {
	m := &manifest{}
	sizes := []uint64{}

	splitter := ipfsChunker.DefaultSplitter(r)
	for {
		data, err := splitter.NextBytes()
		if err == io.EOF {
			return m, sizes, nil
		}
		if err != nil {
			return nil, nil, err
		}

		block, err := newRawBlock(data)
		if err != nil {
			return nil, nil, err
		}

		m.Blocks = append(m.Blocks, block.Cid())
		m.Size += uint64(len(data))
		sizes = append(sizes, uint64(len(data)))
	}
}

// missingBlocks returns the sizes of the blocks of m and its root not
// stored yet. Stored blocks cost nothing since blocks deduplicate.
func (node *LocalNode) missingBlocks(ctx context.Context, m *manifest, sizes []uint64, root blocks.Block) (map[cid.Cid]uint64, error) {
	pending := map[cid.Cid]uint64{}

	has, err := node.bs.Has(ctx, root.Cid())
	if err != nil {
		return nil, err
	}
	if !has {
		pending[root.Cid()] = uint64(len(root.RawData()))
	}

	for i, c := range m.Blocks {
		if _, prs := pending[c]; prs {
			continue
		}

		has, err := node.bs.Has(ctx, c)
		if err != nil {
			return nil, err
		}
		if has {
			continue
		}

		pending[c] = sizes[i]
	}

	return pending, nil
}

// putChunks splits r again and stores the blocks through reservation. The
// blocks must match m
func (node *LocalNode) putChunks(ctx context.Context, r io.Reader, m *manifest, reservation *reservation, onProgress interfaces.ProgressFunc) error {
	size := m.Size
	uploaded := uint64(0)

	splitter := ipfsChunker.DefaultSplitter(r)
	for i := 0; ; i++ {
		data, err := splitter.NextBytes()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		block, err := newRawBlock(data)
		if err != nil {
			return err
		}

		if i >= len(m.Blocks) || !block.Cid().Equals(m.Blocks[i]) {
			return ErrContentChanged
		}

		if err := reservation.Put(ctx, node.bs, block); err != nil {
			return err
		}

		uploaded += uint64(len(data))

		if onProgress != nil {
			onProgress(interfaces.TransferProgress{BytesTransferred: uploaded, TotalBytes: &size})
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if uploaded != size {
		return ErrContentChanged
	}

	return nil
}

func (node *LocalNode) Download(ctx context.Context, contentID string, destPath string, onProgress interfaces.ProgressFunc) (*interfaces.DownloadResult, error) {
	release, err := node.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	root, err := cid.Decode(contentID)
	if err != nil {
		return nil, fmt.Errorf("invalid cid %q: %v", contentID, err)
	}

	m, err := node.loadManifest(ctx, root)
	if err != nil {
		return nil, err
	}

	size := m.Size
	if onProgress != nil {
		onProgress(interfaces.TransferProgress{BytesTransferred: 0, TotalBytes: &size})
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, err
	}

	// Each download writes its own temporary file next to destPath
	file, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".*.part")
	if err != nil {
		return nil, err
	}
	partPath := file.Name()

	var written uint64
	err = file.Chmod(0644)
	if err == nil {
		written, err = node.writeBlocks(ctx, file, m, onProgress)
	}
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written != m.Size {
		err = ErrSizeMismatch
	}
	if err != nil {
		os.Remove(partPath)
		return nil, err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return nil, err
	}

	return &interfaces.DownloadResult{Size: written}, nil
}

func (node *LocalNode) writeBlocks(ctx context.Context, w io.Writer, m *manifest, onProgress interfaces.ProgressFunc) (uint64, error) {
	size := m.Size
	written := uint64(0)

	for _, c := range m.Blocks {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		has, err := node.bs.Has(ctx, c)
		if err != nil {
			return written, err
		}
		if !has {
			return written, ErrBlockNotFound
		}

		block, err := node.bs.Get(ctx, c)
		if err != nil {
			return written, err
		}

		n, err := w.Write(block.RawData())
		if err != nil {
			return written, err
		}
		written += uint64(n)

		if onProgress != nil {
			onProgress(interfaces.TransferProgress{BytesTransferred: written, TotalBytes: &size})
		}
	}

	return written, nil
}

func (node *LocalNode) loadManifest(ctx context.Context, root cid.Cid) (*manifest, error) {
	if cached, prs := node.manifests.Get(root.String()); prs {
		return cached.(*manifest), nil
	}

	has, err := node.bs.Has(ctx, root)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrBlockNotFound
	}

	block, err := node.bs.Get(ctx, root)
	if err != nil {
		return nil, err
	}

	m, err := unmarshalManifest(block.RawData())
	if err != nil {
		return nil, err
	}

	node.manifests.SetDefault(root.String(), m)
	return m, nil
}
