package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"

	"github.com/runletapp/crabnode"
)

var log = logging.Logger("crabnode/commands")

// maxLineSize longest request line accepted
const maxLineSize = 1024 * 1024

// Response answer to a single request line. Seq is the line number of the
// request, starting at 1; responses may arrive out of order
type Response struct {
	Seq    uint64      `json:"seq"`
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ProgressEvent a transfer progress notification
type ProgressEvent struct {
	Event    string                     `json:"event"`
	Progress crabnode.OperationProgress `json:"progress"`
}

// Writer serializes responses and progress events as JSON lines
type Writer struct {
	mutex   sync.Mutex
	encoder *json.Encoder
}

// WriterNew creates a writer over w
func WriterNew(w io.Writer) *Writer {
	return &Writer{encoder: json.NewEncoder(w)}
}

func (w *Writer) write(v interface{}) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.encoder.Encode(v); err != nil {
		log.Warnw("failed to write message", "err", err)
	}
}

// WriteResponse writes a response line
func (w *Writer) WriteResponse(response *Response) {
	w.write(response)
}

// Progress writes a progress event line. It matches crabnode.ProgressObserver
func (w *Writer) Progress(progress crabnode.OperationProgress) {
	w.write(&ProgressEvent{Event: "progress", Progress: progress})
}

// Serve reads request lines from r until EOF or ctx is done. Each request
// runs in its own goroutine so a long transfer does not block status queries.
// Serve returns after every running request has answered.
func Serve(ctx context.Context, r io.Reader, w *Writer, d *Dispatcher) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var wg sync.WaitGroup
	defer wg.Wait()

	seq := uint64(0)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		seq++

		wg.Add(1)
		go func(seq uint64, line string) {
			defer wg.Done()
			w.WriteResponse(handle(ctx, d, seq, line))
		}(seq, line)
	}

	return scanner.Err()
}

func handle(ctx context.Context, d *Dispatcher, seq uint64, line string) *Response {
	result, err := d.Dispatch(ctx, line)
	if err != nil {
		log.Debugw("command failed", "seq", seq, "line", line, "err", err)
		return &Response{Seq: seq, OK: false, Error: err.Error()}
	}

	return &Response{Seq: seq, OK: true, Result: result}
}
