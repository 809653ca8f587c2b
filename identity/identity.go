package identity

import (
	"bytes"
	"crypto/rand"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	libp2pCrypto "github.com/libp2p/go-libp2p/core/crypto"
	libp2pPeer "github.com/libp2p/go-libp2p/core/peer"
)

var _ Identity = &Libp2pIdentity{}

// Libp2pIdentity identity provided by libp2p core
type Libp2pIdentity struct {
	data []byte

	key libp2pCrypto.PrivKey
}

// CreateIdentity creates a new ed25519 identity
func CreateIdentity() (Identity, error) {
	key, _, err := libp2pCrypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, err
	}

	data, err := libp2pCrypto.MarshalPrivateKey(key)
	if err != nil {
		return nil, err
	}

	return &Libp2pIdentity{
		data: data,
		key:  key,
	}, nil
}

// UnmarshalIdentity unmarshal identity from a reader
func UnmarshalIdentity(r io.Reader) (Identity, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	key, err := libp2pCrypto.UnmarshalPrivateKey(data)
	if err != nil {
		return nil, err
	}

	return &Libp2pIdentity{
		data: data,
		key:  key,
	}, nil
}

// LoadOrCreate reads the identity stored at path, creating and storing a new
// one if the file does not exist
func LoadOrCreate(path string) (Identity, error) {
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		return UnmarshalIdentity(file)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	id, err := CreateIdentity()
	if err != nil {
		return nil, err
	}

	data, err := id.Marshal()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	if err := ioutil.WriteFile(path, data, 0600); err != nil {
		return nil, err
	}

	return id, nil
}

func (id *Libp2pIdentity) Marshal() ([]byte, error) {
	return bytes.Clone(id.data), nil
}

func (id *Libp2pIdentity) GetPrivateKey() []byte {
	return id.data
}

func (id *Libp2pIdentity) GetLibp2pPrivateKey() libp2pCrypto.PrivKey {
	return id.key
}

func (id *Libp2pIdentity) PeerID() (string, error) {
	peerID, err := libp2pPeer.IDFromPrivateKey(id.key)
	if err != nil {
		return "", err
	}

	return peerID.String(), nil
}
