/*
 * membershipcard - serial console over TCP
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package console bridges a raw TCP client to the Membership Card's UART,
// one byte at a time, using just enough of the telnet option-negotiation
// handshake to put a real telnet client into transparent binary mode
// (no 3270, no line mode, no terminal-type probing — those belong to a
// terminal emulator, not a serial port).
package console

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	iac  byte = 255
	dont byte = 254
	do   byte = 253
	wont byte = 252
	will byte = 251

	optBinary byte = 0
	optEcho   byte = 1
	optSGA    byte = 3
)

// negotiation is sent as soon as a client connects: go binary, suppress
// local echo (the host echoes, not the terminal), and suppress go-ahead
// since the link is full duplex.
var negotiation = []byte{
	iac, will, optEcho,
	iac, will, optSGA,
	iac, will, optBinary,
	iac, do, optBinary,
}

// Board is the byte-level surface console needs from the board: enough to
// shuttle characters in and out without console depending on board's tick
// scheduling or CPU internals.
type Board interface {
	UartRead() (uint8, error)
	UartWrite(val uint8)
}

// Server accepts TCP connections and bridges each one to board; every
// accepted connection gets its own handler, so several can be open at once.
type Server struct {
	log      *slog.Logger
	board    Board
	listener net.Listener
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// Listen starts a console server for board on addr (e.g. ":2301").
func Listen(log *slog.Logger, board Board, addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("console: listen on %s: %w", addr, err)
	}
	s := &Server{log: log, board: board, listener: listener, shutdown: make(chan struct{})}
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the address the server is actually listening on, useful
// when addr was passed as ":0".
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Stop closes the listener and waits (up to one second) for the accept
// loop and any active connection handler to finish.
func (s *Server) Stop() {
	close(s.shutdown)
	s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		if s.log != nil {
			s.log.Warn("console: timed out waiting for connections to close")
		}
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	if _, err := conn.Write(negotiation); err != nil {
		return
	}

	toBoard := make(chan byte, 64)
	done := make(chan struct{})
	go s.readLoop(conn, toBoard, done)

	poll := time.NewTicker(time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case b, ok := <-toBoard:
			if !ok {
				return
			}
			s.board.UartWrite(b)
		case <-s.shutdown:
			return
		case <-poll.C:
			val, err := s.board.UartRead()
			if err == nil {
				if _, werr := conn.Write([]byte{val}); werr != nil {
					return
				}
			}
		}
	}
}

// readLoop strips telnet IAC sequences out of the inbound byte stream,
// handling only the minimal WILL/WONT/DO/DONT acknowledgements a client
// might still send unsolicited, and forwards plain data bytes to toBoard.
func (s *Server) readLoop(conn net.Conn, toBoard chan<- byte, done chan<- struct{}) {
	defer close(toBoard)
	defer close(done)

	buf := make([]byte, 256)
	const (
		stateData = iota
		stateIAC
		stateOption
	)
	state := stateData

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			b := buf[i]
			switch state {
			case stateData:
				if b == iac {
					state = stateIAC
				} else {
					toBoard <- b
				}
			case stateIAC:
				switch b {
				case iac:
					toBoard <- iac
					state = stateData
				case will, wont, do, dont:
					state = stateOption
				default:
					state = stateData
				}
			case stateOption:
				state = stateData
			}
		}
	}
}
