package node

import "errors"

var (
	// ErrNotStarted the node is not running
	ErrNotStarted = errors.New("Node is not started")

	// ErrQuotaExceeded storing the file would exceed the storage quota
	ErrQuotaExceeded = errors.New("Storage quota exceeded")

	// ErrBlockNotFound the requested block is not stored locally
	ErrBlockNotFound = errors.New("Block not found")

	// ErrInvalidManifest the content id does not point to a valid manifest
	ErrInvalidManifest = errors.New("Invalid manifest")

	// ErrSizeMismatch the retrieved content does not match its manifest
	ErrSizeMismatch = errors.New("Content size does not match manifest")

	// ErrContentChanged the source file changed while it was being stored
	ErrContentChanged = errors.New("File changed during upload")

	// ErrInvalidRepoKind an unknown repository kind was requested
	ErrInvalidRepoKind = errors.New("Invalid repo kind")
)
