/*
 * membershipcard - Configuration file parser
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

// Package boardconfig parses a Membership Card configuration file: one
// directive per line, a name followed by a value and optional comma
// separated options, '#' starting a trailing comment. Directives register
// themselves with Register from an init function, the same registry
// pattern used to wire up peripherals without main needing to know about
// every directive by name.
//
// Directive grammar:
//
//	<line>      := <directive> <whitespace> <value> *(',' <option>)
//	<directive> := <letters>
//	<value>     := <letters-or-digits> | '"' *(anything but '"') '"'
//	<option>    := <letters>['=' <value>]
package boardconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Option is one comma-separated trailing option on a directive line.
type Option struct {
	Name  string
	Value string
}

// Handler processes one directive's value and options.
type Handler func(value string, opts []Option) error

var directives = map[string]Handler{}

// Register associates a directive name (case-insensitive) with a handler,
// intended to be called from an init function.
func Register(name string, fn Handler) {
	directives[strings.ToUpper(name)] = fn
}

var lineNumber int

// Load reads and applies every directive in a configuration file.
func Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		text, err := reader.ReadString('\n')
		lineNumber++
		if len(text) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if perr := parseLine(text); perr != nil {
			return perr
		}
		if err != nil {
			return nil
		}
	}
}

type cursor struct {
	line string
	pos  int
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.line) && unicode.IsSpace(rune(c.line[c.pos])) {
		c.pos++
	}
}

func (c *cursor) isEOL() bool {
	return c.pos >= len(c.line) || c.line[c.pos] == '#'
}

func (c *cursor) word() string {
	start := c.pos
	for c.pos < len(c.line) {
		r := rune(c.line[c.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == ':' || r == '/' || r == '\\' {
			c.pos++
			continue
		}
		break
	}
	return c.line[start:c.pos]
}

func (c *cursor) quotedOrWord() string {
	c.skipSpace()
	if c.isEOL() {
		return ""
	}
	if c.line[c.pos] == '"' {
		c.pos++
		start := c.pos
		for c.pos < len(c.line) && c.line[c.pos] != '"' {
			c.pos++
		}
		value := c.line[start:c.pos]
		if c.pos < len(c.line) {
			c.pos++ // consume closing quote
		}
		return value
	}
	return c.word()
}

func parseLine(text string) error {
	c := &cursor{line: text}
	c.skipSpace()
	if c.isEOL() {
		return nil
	}

	name := c.word()
	if name == "" {
		return fmt.Errorf("boardconfig: line %d: expected a directive name", lineNumber)
	}
	handler, ok := directives[strings.ToUpper(name)]
	if !ok {
		return fmt.Errorf("boardconfig: line %d: unknown directive %q", lineNumber, name)
	}

	value := c.quotedOrWord()

	var opts []Option
	c.skipSpace()
	for !c.isEOL() && c.line[c.pos] == ',' {
		c.pos++
		c.skipSpace()
		optName := c.word()
		opt := Option{Name: optName}
		if !c.isEOL() && c.line[c.pos] == '=' {
			c.pos++
			opt.Value = c.quotedOrWord()
		}
		opts = append(opts, opt)
		c.skipSpace()
	}

	if err := handler(value, opts); err != nil {
		return fmt.Errorf("boardconfig: line %d: %w", lineNumber, err)
	}
	return nil
}
