package node

import (
	"github.com/gogo/protobuf/proto"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	multihash "github.com/multiformats/go-multihash"
)

const manifestVersion = 1

// blockPrefix every block, chunk or manifest, is a CIDv1 raw sha2-256 block
var blockPrefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// manifest lists the chunks of an uploaded file in order
type manifest struct {
	Size   uint64
	Blocks []cid.Cid
}

// Marshal encodes the manifest as varints: version, size, block count, then
// one length-prefixed cid per block
func (m *manifest) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(nil)

	if err := buf.EncodeVarint(manifestVersion); err != nil {
		return nil, err
	}
	if err := buf.EncodeVarint(m.Size); err != nil {
		return nil, err
	}
	if err := buf.EncodeVarint(uint64(len(m.Blocks))); err != nil {
		return nil, err
	}

	for _, c := range m.Blocks {
		if err := buf.EncodeRawBytes(c.Bytes()); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Block returns the manifest as a block
func (m *manifest) Block() (blocks.Block, error) {
	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	return newRawBlock(data)
}

func unmarshalManifest(data []byte) (*manifest, error) {
	buf := proto.NewBuffer(data)

	version, err := buf.DecodeVarint()
	if err != nil || version != manifestVersion {
		return nil, ErrInvalidManifest
	}

	size, err := buf.DecodeVarint()
	if err != nil {
		return nil, ErrInvalidManifest
	}

	count, err := buf.DecodeVarint()
	if err != nil || count > uint64(len(data)) {
		return nil, ErrInvalidManifest
	}

	m := &manifest{
		Size:   size,
		Blocks: make([]cid.Cid, 0, count),
	}

	for i := uint64(0); i < count; i++ {
		raw, err := buf.DecodeRawBytes(true)
		if err != nil {
			return nil, ErrInvalidManifest
		}

		c, err := cid.Cast(raw)
		if err != nil {
			return nil, ErrInvalidManifest
		}

		m.Blocks = append(m.Blocks, c)
	}

	return m, nil
}

func newRawBlock(data []byte) (blocks.Block, error) {
	c, err := blockPrefix.Sum(data)
	if err != nil {
		return nil, err
	}

	block, err := blocks.NewBlockWithCid(data, c)
	if err != nil {
		return nil, err
	}

	return block, nil
}
