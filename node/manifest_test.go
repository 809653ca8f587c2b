package node

import (
	"testing"

	cid "github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
)

func TestManifestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	a, err := newRawBlock([]byte("first"))
	assert.Nil(err)
	b, err := newRawBlock([]byte("second"))
	assert.Nil(err)

	m := &manifest{Size: 11, Blocks: []cid.Cid{a.Cid(), b.Cid()}}

	data, err := m.Marshal()
	assert.Nil(err)

	decoded, err := unmarshalManifest(data)
	assert.Nil(err)
	assert.Equal(m.Size, decoded.Size)
	assert.Len(decoded.Blocks, 2)
	assert.True(a.Cid().Equals(decoded.Blocks[0]))
	assert.True(b.Cid().Equals(decoded.Blocks[1]))
}

func TestManifestBlockIsRawV1(t *testing.T) {
	assert := assert.New(t)

	m := &manifest{}
	block, err := m.Block()
	assert.Nil(err)

	prefix := block.Cid().Prefix()
	assert.Equal(uint64(1), prefix.Version)
	assert.Equal(uint64(cid.Raw), prefix.Codec)
}

func TestManifestInvalid(t *testing.T) {
	assert := assert.New(t)

	inputs := [][]byte{
		{},
		[]byte("plain data"),
		// Version 2
		{0x02, 0x00, 0x00},
		// One block announced, none present
		{0x01, 0x05, 0x01},
		// One block with garbage cid bytes
		{0x01, 0x05, 0x01, 0x03, 0xff, 0xff, 0xff},
	}

	for _, input := range inputs {
		_, err := unmarshalManifest(input)
		assert.Equal(ErrInvalidManifest, err)
	}
}
