package dap_interceptors

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/go-dap"

	"dapwire/pkg/decode"
	"dapwire/pkg/extractors"
	"dapwire/pkg/logger"
	"dapwire/pkg/requests"
	"dapwire/pkg/schema"
)

// Observer is told about every client frame seen by a RequestInterceptingReader.
// Exactly one of msg and err is non-nil.
type Observer func(seq int, msg dap.Message, err error)

// RequestInterceptingReader forwards client bytes untouched while decoding each
// complete frame through a requests.Registry, so malformed requests show up in
// the log before the upstream adapter rejects them.
type RequestInterceptingReader struct {
	reader    io.Reader
	registry  *requests.Registry
	validator *schema.Validator
	log       logger.Logger
	observer  Observer

	mu        sync.Mutex
	buffer    []byte
	decoded   int
	failed    int
	discarded int
}

// NewRequestInterceptingReader wraps reader. validator may be nil.
func NewRequestInterceptingReader(reader io.Reader, registry *requests.Registry, validator *schema.Validator,
	log logger.Logger) *RequestInterceptingReader {
	return &RequestInterceptingReader{
		reader:    reader,
		registry:  registry,
		validator: validator,
		log:       log,
	}
}

// OnRequest registers fn to be called for every frame. Set it before the first Read.
func (rir *RequestInterceptingReader) OnRequest(fn Observer) {
	rir.observer = fn
}

func (rir *RequestInterceptingReader) Read(p []byte) (n int, err error) {
	n, err = rir.reader.Read(p)
	if n > 0 {
		rir.mu.Lock()
		rir.buffer = append(rir.buffer, p[:n]...)
		rir.inspect()
		rir.mu.Unlock()
	}
	return n, err
}

// inspect decodes every complete frame in the buffer. A header that can never
// yield a frame is skipped so one bad frame does not stall inspection.
func (rir *RequestInterceptingReader) inspect() {
	rest, discarded := extractors.Scan(rir.buffer, rir.decodeFrame)
	if discarded > 0 {
		rir.log.Warning("Skipping %d unparseable bytes from client stream", discarded)
		rir.discarded += discarded
	}
	rir.buffer = append(rir.buffer[:0], rest...)
}

func (rir *RequestInterceptingReader) decodeFrame(body []byte) {
	obj, err := decode.ParseObject(body)
	if err != nil {
		rir.report(0, nil, err)
		return
	}
	seq, _ := decode.AsInt(obj["seq"], "seq")
	env, err := requests.DecodeEnvelope(obj)
	if err != nil {
		rir.report(seq, nil, err)
		return
	}
	if rir.validator != nil {
		if args, ok, _ := obj.OptionalObject("arguments"); ok {
			if err := rir.validator.Validate(env.Command, args); err != nil {
				rir.report(seq, nil, err)
				return
			}
		}
	}

	msg, err := rir.registry.Decode(obj)
	rir.report(seq, msg, err)
}

func (rir *RequestInterceptingReader) report(seq int, msg dap.Message, err error) {
	if err != nil {
		rir.failed++
		rir.log.Warning("Request seq=%d failed to decode: %v", seq, err)
	} else {
		rir.decoded++
		rir.log.Info("Request seq=%d %s", seq, describe(msg))
	}
	if rir.observer != nil {
		rir.observer(seq, msg, err)
	}
}

// Stats returns how many frames decoded, failed, and how many bytes were
// dropped as unparseable.
func (rir *RequestInterceptingReader) Stats() (decoded, failed, discarded int) {
	rir.mu.Lock()
	defer rir.mu.Unlock()
	return rir.decoded, rir.failed, rir.discarded
}

func describe(msg dap.Message) string {
	switch m := msg.(type) {
	case *dap.SetBreakpointsRequest:
		lines := make([]int, 0, len(m.Arguments.Breakpoints))
		for _, bp := range m.Arguments.Breakpoints {
			lines = append(lines, bp.Line)
		}
		return fmt.Sprintf("setBreakpoints %s lines=%v", sourceName(m.Arguments.Source), lines)
	case dap.RequestMessage:
		return m.GetRequest().Command
	default:
		return fmt.Sprintf("%T", msg)
	}
}

func sourceName(src dap.Source) string {
	if src.Path != "" {
		return src.Path
	}
	if src.Name != "" {
		return src.Name
	}
	return fmt.Sprintf("sourceReference=%d", src.SourceReference)
}
