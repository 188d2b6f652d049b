package console

import (
	"bufio"
	"net"
	"testing"
	"time"
)

type fakeBoard struct {
	written chan uint8
	toSend  chan uint8
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{written: make(chan uint8, 16), toSend: make(chan uint8, 16)}
}

func (b *fakeBoard) UartWrite(val uint8) {
	b.written <- val
}

func (b *fakeBoard) UartRead() (uint8, error) {
	select {
	case v := <-b.toSend:
		return v, nil
	default:
		return 0, errNoData
	}
}

type noDataErr struct{}

func (noDataErr) Error() string { return "no data" }

var errNoData error = noDataErr{}

func TestServerEchoesBoardOutputToClient(t *testing.T) {
	board := newFakeBoard()
	srv, err := Listen(nil, board, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() err = %v", err)
	}
	defer srv.Stop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial() err = %v", err)
	}
	defer conn.Close()

	board.toSend <- 'A'

	reader := bufio.NewReader(conn)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Drain telnet negotiation bytes (IAC triplets) before the data byte.
	for {
		b, err := reader.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte() err = %v", err)
		}
		if b != iac {
			if b == 'A' {
				return
			}
			t.Fatalf("unexpected byte %x before data", b)
		}
		reader.ReadByte()
		reader.ReadByte()
	}
}

func TestServerForwardsClientBytesToBoard(t *testing.T) {
	board := newFakeBoard()
	srv, err := Listen(nil, board, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() err = %v", err)
	}
	defer srv.Stop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial() err = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("X")); err != nil {
		t.Fatalf("Write() err = %v", err)
	}

	select {
	case b := <-board.written:
		if b != 'X' {
			t.Errorf("board received %q, want X", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for board to receive byte")
	}
}
