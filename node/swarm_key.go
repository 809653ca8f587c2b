package node

// Heavily inspired by https://github.com/libp2p/go-libp2p-pnet

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/libp2p/go-libp2p/core/pnet"
)

var (
	pathPSKv1  = []byte("/key/swarm/psk/1.0.0/")
	pathBin    = "/bin/"
	pathBase16 = "/base16/"
	pathBase64 = "/base64/"
)

func readHeader(r *bufio.Reader) ([]byte, error) {
	header, err := r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(header, "\r\n"), nil
}

// GenerateSwarmKey generates a base16 encoded pre-shared key for a private network
func GenerateSwarmKey() (io.Reader, error) {
	psk := [32]byte{}
	if _, err := rand.Read(psk[:]); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(pathPSKv1)
	out.WriteString("\n" + pathBase16 + "\n")
	out.WriteString(hex.EncodeToString(psk[:]))

	return &out, nil
}

// ReadSwarmKey reads a pre-shared key in the go-ipfs swarm.key format
func ReadSwarmKey(in io.Reader) (pnet.PSK, error) {
	reader := bufio.NewReader(in)

	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(header, pathPSKv1) {
		return nil, fmt.Errorf("expected file header %s, got: %s", pathPSKv1, header)
	}

	encoding, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	var decoder io.Reader
	switch string(encoding) {
	case pathBase16:
		decoder = hex.NewDecoder(reader)
	case pathBase64:
		decoder = base64.NewDecoder(base64.StdEncoding, reader)
	case pathBin:
		decoder = reader
	default:
		return nil, fmt.Errorf("unknown encoding: %s", encoding)
	}

	out := make([]byte, 32)
	if _, err := io.ReadFull(decoder, out); err != nil {
		return nil, err
	}

	return pnet.PSK(out), nil
}

func readSwarmKeyFile(path string) (pnet.PSK, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadSwarmKey(file)
}
