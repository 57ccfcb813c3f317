package dap_interceptors

import (
	"io"
	"sync"

	"github.com/google/go-dap"

	"dapwire/pkg/extractors"
	"dapwire/pkg/logger"
)

// ResponseInterceptingReader forwards upstream bytes untouched and logs what
// the adapter answered: failed responses, breakpoint verification and events.
type ResponseInterceptingReader struct {
	reader io.Reader
	log    logger.Logger

	mu        sync.Mutex
	buffer    []byte
	responses int
	failures  int
	events    int
	unknown   int
}

func NewResponseInterceptingReader(reader io.Reader, log logger.Logger) *ResponseInterceptingReader {
	return &ResponseInterceptingReader{reader: reader, log: log}
}

func (rir *ResponseInterceptingReader) Read(p []byte) (n int, err error) {
	n, err = rir.reader.Read(p)
	if n > 0 {
		rir.mu.Lock()
		rir.buffer = append(rir.buffer, p[:n]...)
		rest, discarded := extractors.Scan(rir.buffer, rir.inspect)
		if discarded > 0 {
			rir.log.Warning("Skipping %d unparseable bytes from upstream stream", discarded)
		}
		rir.buffer = append(rir.buffer[:0], rest...)
		rir.mu.Unlock()
	}
	return n, err
}

func (rir *ResponseInterceptingReader) inspect(body []byte) {
	msg, err := dap.DecodeProtocolMessage(body)
	if err != nil {
		// go-dap rejects commands and events it has no type for.
		rir.unknown++
		return
	}
	switch m := msg.(type) {
	case *dap.ErrorResponse:
		rir.responses++
		rir.failures++
		detail := m.Message
		if m.Body.Error != nil {
			detail = m.Body.Error.Format
		}
		rir.log.Warning("Response to seq=%d %s failed: %s", m.RequestSeq, m.Command, detail)
	case *dap.SetBreakpointsResponse:
		rir.responses++
		verified := 0
		for _, bp := range m.Body.Breakpoints {
			if bp.Verified {
				verified++
			}
		}
		rir.log.Info("Response to seq=%d setBreakpoints: %d of %d verified",
			m.RequestSeq, verified, len(m.Body.Breakpoints))
	case dap.ResponseMessage:
		rir.responses++
		if r := m.GetResponse(); !r.Success {
			rir.failures++
			rir.log.Warning("Response to seq=%d %s failed: %s", r.RequestSeq, r.Command, r.Message)
		}
	case dap.EventMessage:
		rir.events++
		rir.log.Info("Event %s", m.GetEvent().Event)
	}
}

// Stats returns the number of responses, failed responses, events and frames
// go-dap could not decode.
func (rir *ResponseInterceptingReader) Stats() (responses, failures, events, unknown int) {
	rir.mu.Lock()
	defer rir.mu.Unlock()
	return rir.responses, rir.failures, rir.events, rir.unknown
}
