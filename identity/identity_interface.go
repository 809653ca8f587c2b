package identity

import libp2pCrypto "github.com/libp2p/go-libp2p/core/crypto"

// Identity node interface
type Identity interface {
	// GetPrivateKey returns the marshaled private key
	GetPrivateKey() []byte

	// GetLibp2pPrivateKey returns the key the node host signs with
	GetLibp2pPrivateKey() libp2pCrypto.PrivKey

	// PeerID returns the peer id derived from the key
	PeerID() (string, error)

	// Marshal marshals a identity to bytes
	Marshal() ([]byte, error)
}
