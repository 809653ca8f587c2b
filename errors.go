package crabnode

import "errors"

var (
	// ErrNodeCreation the node could not be created from the settings
	ErrNodeCreation = errors.New("Failed to create node")

	// ErrNodeStart the node was created but failed to start
	ErrNodeStart = errors.New("Failed to start node")

	// ErrNodeNotInitialized an operation was requested before connecting
	ErrNodeNotInitialized = errors.New("Node is not initialized")

	// ErrNodeNotStarted the node exists but is not running
	ErrNodeNotStarted = errors.New("Node is not started")

	// ErrUpload the node failed to store the file
	ErrUpload = errors.New("Upload failed")

	// ErrDownload the node failed to retrieve the content
	ErrDownload = errors.New("Download failed")

	// ErrFileNotFound the source file does not exist or is not a regular file
	ErrFileNotFound = errors.New("File not found")

	// ErrInvalidCID an empty or malformed content id was given
	ErrInvalidCID = errors.New("Invalid CID")

	// ErrIO a local filesystem operation failed
	ErrIO = errors.New("IO error")

	// ErrConfiguration the settings are unusable or a peer operation failed
	ErrConfiguration = errors.New("Configuration error")

	// ErrConnectInProgress another connect is still running
	ErrConnectInProgress = errors.New("Connection already in progress")

	// ErrConnectAborted a disconnect was requested while connecting
	ErrConnectAborted = errors.New("Connection aborted by disconnect")
)

// Error an error of a given kind with the reason reported by its source
type Error struct {
	Kind   error
	Reason string
}

func newError(kind error, reason string) error {
	return &Error{Kind: kind, Reason: reason}
}

func wrapError(kind error, err error) error {
	return &Error{Kind: kind, Reason: err.Error()}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Reason
}

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the error kind
func (e *Error) Unwrap() error {
	return e.Kind
}
