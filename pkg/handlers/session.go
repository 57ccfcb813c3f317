package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/go-dap"

	"dapwire/pkg/logger"
	"dapwire/pkg/utils"
)

// Session serves one framed DAP connection.
type Session struct {
	// rw is used to read requests and write events/responses
	rw *bufio.ReadWriter

	// sendQueue collects messages from the request goroutines; sendFromQueue
	// is its only reader and the only writer to rw. sendWg tracks the senders
	// so the queue is closed only after all of them are done.
	sendQueue chan dap.Message
	sendWg    sync.WaitGroup

	dispatcher *Dispatcher
	log        logger.Logger
}

// Serve reads requests from conn until the client disconnects, answering each
// through dispatcher. It closes conn before returning. A clean disconnect
// returns nil.
func Serve(conn io.ReadWriteCloser, dispatcher *Dispatcher, log logger.Logger) error {
	return serve(bufio.NewReader(conn), conn, dispatcher, log)
}

func serve(r *bufio.Reader, conn io.ReadWriteCloser, dispatcher *Dispatcher, log logger.Logger) error {
	ds := &Session{
		rw:         bufio.NewReadWriter(r, bufio.NewWriter(conn)),
		sendQueue:  make(chan dap.Message),
		dispatcher: dispatcher,
		log:        log,
	}

	writerDone := make(chan struct{})
	go func() {
		ds.sendFromQueue()
		close(writerDone)
	}()

	var err error
	for {
		if err = ds.handleRequest(); err != nil {
			break
		}
	}

	ds.sendWg.Wait()
	close(ds.sendQueue)
	<-writerDone
	if cerr := conn.Close(); cerr != nil && !utils.IsConnectionClosedError(cerr) {
		log.Warning("Error closing connection: %v", cerr)
	}

	if utils.IsConnectionClosedError(err) {
		log.Info("Client disconnected")
		return nil
	}
	return fmt.Errorf("read request: %w", err)
}

func (ds *Session) send(message dap.Message) {
	ds.sendQueue <- message
}

func (ds *Session) sendFromQueue() {
	broken := false
	for message := range ds.sendQueue {
		if broken {
			continue
		}
		err := dap.WriteProtocolMessage(ds.rw.Writer, message)
		if err == nil {
			err = ds.rw.Flush()
		}
		if err != nil {
			// Keep draining so request goroutines never block on send.
			ds.log.Error("Error writing message: %v", err)
			broken = true
		}
	}
}

// handleRequest reads one frame and dispatches it on its own goroutine.
func (ds *Session) handleRequest() error {
	body, err := dap.ReadBaseMessage(ds.rw.Reader)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return err
	}
	ds.sendWg.Add(1)
	go func() {
		defer ds.sendWg.Done()
		for _, message := range ds.dispatcher.Dispatch(body) {
			ds.send(message)
		}
	}()
	return nil
}
