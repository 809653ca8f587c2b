// Package commands exposes a Manager as a line oriented command surface: one
// request per line, one JSON response per request.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/runletapp/crabnode"
)

var (
	// ErrEmptyCommand the line holds no command
	ErrEmptyCommand = errors.New("empty command")

	// ErrUnknownCommand no handler is registered under the name
	ErrUnknownCommand = errors.New("unknown command")
)

// Handler runs a command with its arguments
type Handler func(ctx context.Context, args []string) (interface{}, error)

type command struct {
	usage   string
	minArgs int
	// maxArgs < 0 means unbounded
	maxArgs int
	handle  Handler
}

// UploadResult response of the upload command
type UploadResult struct {
	CID        string `json:"cid"`
	Size       uint64 `json:"size"`
	DurationMs int64  `json:"duration_ms"`
	Verified   bool   `json:"verified"`
}

// DownloadResult response of the download command
type DownloadResult struct {
	CID        string `json:"cid"`
	Size       uint64 `json:"size"`
	DurationMs int64  `json:"duration_ms"`
	Verified   bool   `json:"verified"`
	Filepath   string `json:"filepath"`
}

// Dispatcher maps command names onto manager operations
type Dispatcher struct {
	manager *crabnode.Manager

	commands map[string]command
}

// DispatcherNew creates a dispatcher serving manager
func DispatcherNew(manager *crabnode.Manager) *Dispatcher {
	d := &Dispatcher{
		manager:  manager,
		commands: map[string]command{},
	}

	d.register("get_status", "", 0, 0, d.getStatus)
	d.register("get_error", "", 0, 0, d.getError)
	d.register("get_network_info", "", 0, 0, d.getNetworkInfo)
	d.register("get_storage_info", "", 0, 0, d.getStorageInfo)
	d.register("connect", "", 0, 0, d.connect)
	d.register("disconnect", "", 0, 0, d.disconnect)
	d.register("get_peer_id", "", 0, 0, d.getPeerID)
	d.register("get_version", "", 0, 0, d.getVersion)
	d.register("upload", "<file_path>", 1, 1, d.upload)
	d.register("download", "<cid> <save_path>", 2, 2, d.download)
	d.register("connect_to_peer", "<peer_id> [address...]", 1, -1, d.connectToPeer)
	d.register("get_node_addresses", "", 0, 0, d.getNodeAddresses)

	return d
}

func (d *Dispatcher) register(name string, usage string, minArgs int, maxArgs int, handle Handler) {
	d.commands[name] = command{
		usage:   usage,
		minArgs: minArgs,
		maxArgs: maxArgs,
		handle:  handle,
	}
}

// Names returns the registered command names, sorted
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Usage returns the argument synopsis of name
func (d *Dispatcher) Usage(name string) (string, bool) {
	cmd, prs := d.commands[name]
	if !prs {
		return "", false
	}

	return strings.TrimSpace(name + " " + cmd.usage), true
}

// ParseLine splits a request line into a command name and its arguments.
// Arguments follow shell quoting rules.
func ParseLine(line string) (string, []string, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return "", nil, err
	}

	if len(words) == 0 {
		return "", nil, ErrEmptyCommand
	}

	return words[0], words[1:], nil
}

// Execute runs the command name with args
func (d *Dispatcher) Execute(ctx context.Context, name string, args []string) (interface{}, error) {
	cmd, prs := d.commands[name]
	if !prs {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		usage, _ := d.Usage(name)
		return nil, fmt.Errorf("usage: %s", usage)
	}

	return cmd.handle(ctx, args)
}

// Dispatch parses line and executes it
func (d *Dispatcher) Dispatch(ctx context.Context, line string) (interface{}, error) {
	name, args, err := ParseLine(line)
	if err != nil {
		return nil, err
	}

	return d.Execute(ctx, name, args)
}

func (d *Dispatcher) getStatus(ctx context.Context, args []string) (interface{}, error) {
	return d.manager.Status(), nil
}

func (d *Dispatcher) getError(ctx context.Context, args []string) (interface{}, error) {
	if reason, prs := d.manager.LastError(); prs {
		return reason, nil
	}

	return nil, nil
}

func (d *Dispatcher) getNetworkInfo(ctx context.Context, args []string) (interface{}, error) {
	return d.manager.NetworkInfo(), nil
}

func (d *Dispatcher) getStorageInfo(ctx context.Context, args []string) (interface{}, error) {
	return d.manager.StorageInfo(), nil
}

func (d *Dispatcher) connect(ctx context.Context, args []string) (interface{}, error) {
	return nil, d.manager.Connect(ctx)
}

func (d *Dispatcher) disconnect(ctx context.Context, args []string) (interface{}, error) {
	return nil, d.manager.Disconnect(ctx)
}

func (d *Dispatcher) getPeerID(ctx context.Context, args []string) (interface{}, error) {
	if peerID, prs := d.manager.PeerID(); prs {
		return peerID, nil
	}

	return nil, nil
}

func (d *Dispatcher) getVersion(ctx context.Context, args []string) (interface{}, error) {
	if version, prs := d.manager.Version(); prs {
		return version, nil
	}

	return nil, nil
}

func (d *Dispatcher) upload(ctx context.Context, args []string) (interface{}, error) {
	start := time.Now()

	result, err := d.manager.UploadFile(ctx, args[0])
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		CID:        result.CID,
		Size:       result.Size,
		DurationMs: time.Since(start).Milliseconds(),
		Verified:   true,
	}, nil
}

func (d *Dispatcher) download(ctx context.Context, args []string) (interface{}, error) {
	start := time.Now()

	result, err := d.manager.DownloadFile(ctx, args[0], args[1])
	if err != nil {
		return nil, err
	}

	return &DownloadResult{
		CID:        args[0],
		Size:       result.Size,
		DurationMs: time.Since(start).Milliseconds(),
		Verified:   true,
		Filepath:   args[1],
	}, nil
}

func (d *Dispatcher) connectToPeer(ctx context.Context, args []string) (interface{}, error) {
	return nil, d.manager.ConnectToPeer(ctx, args[0], args[1:])
}

func (d *Dispatcher) getNodeAddresses(ctx context.Context, args []string) (interface{}, error) {
	return d.manager.NodeAddresses(ctx)
}
