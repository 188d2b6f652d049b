/*
 * membershipcard - input/output event stream contracts
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

// Package ioevent defines the value types a board-level pin event is made
// of. It carries no file I/O, transport, or persistence of its own — a
// caller outside the core owns recording and replaying these, the core
// only agrees on their shape.
package ioevent

import "time"

// OutputKind names an output-capable pin a board can report a change on.
type OutputKind int

const (
	Q OutputKind = iota
	Io1
	Io2
	Io3
	Io4
	Io5
	Io6
	Io7
)

func (k OutputKind) String() string {
	switch k {
	case Q:
		return "q"
	case Io1:
		return "io1"
	case Io2:
		return "io2"
	case Io3:
		return "io3"
	case Io4:
		return "io4"
	case Io5:
		return "io5"
	case Io6:
		return "io6"
	case Io7:
		return "io7"
	default:
		return "?"
	}
}

// InputKind names an input-capable pin a recorded event can drive.
type InputKind int

const (
	Intr InputKind = iota
	Ef1
	Ef2
	Ef3
	Ef4
	InIo1
	InIo2
	InIo3
	InIo4
	InIo5
	InIo6
	InIo7
)

// ParseInputKind parses the names used by event logs (intr, ef1..ef4,
// io1..io7), written either all in lowercase or all in uppercase.
func ParseInputKind(s string) (InputKind, bool) {
	switch s {
	case "intr", "INTR":
		return Intr, true
	case "ef1", "EF1":
		return Ef1, true
	case "ef2", "EF2":
		return Ef2, true
	case "ef3", "EF3":
		return Ef3, true
	case "ef4", "EF4":
		return Ef4, true
	case "io1", "IO1":
		return InIo1, true
	case "io2", "IO2":
		return InIo2, true
	case "io3", "IO3":
		return InIo3, true
	case "io4", "IO4":
		return InIo4, true
	case "io5", "IO5":
		return InIo5, true
	case "io6", "IO6":
		return InIo6, true
	case "io7", "IO7":
		return InIo7, true
	default:
		return 0, false
	}
}

func (k InputKind) String() string {
	switch k {
	case Intr:
		return "intr"
	case Ef1:
		return "ef1"
	case Ef2:
		return "ef2"
	case Ef3:
		return "ef3"
	case Ef4:
		return "ef4"
	case InIo1:
		return "io1"
	case InIo2:
		return "io2"
	case InIo3:
		return "io3"
	case InIo4:
		return "io4"
	case InIo5:
		return "io5"
	case InIo6:
		return "io6"
	case InIo7:
		return "io7"
	default:
		return "?"
	}
}

// InputEvent is a single recorded change a replay log applies to the
// board at Timestamp.
type InputEvent struct {
	Timestamp time.Duration
	Kind      InputKind
	Value     uint8
}

// OutputEvent is a single observed change the board produced at Timestamp.
type OutputEvent struct {
	Timestamp time.Duration
	Kind      OutputKind
	Value     uint8
}
