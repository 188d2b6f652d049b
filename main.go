/*
 * membershipcard - Main process.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/membershipcard/board"
	"github.com/rcornwell/membershipcard/config/boardconfig"
	"github.com/rcornwell/membershipcard/config/machineconfig"
	"github.com/rcornwell/membershipcard/console"
	"github.com/rcornwell/membershipcard/internal/debug"
	"github.com/rcornwell/membershipcard/internal/logger"
	"github.com/rcornwell/membershipcard/memory"
	"github.com/rcornwell/membershipcard/uartport"
)

var log *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "board.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebugFile := getopt.StringLong("trace", 't', "", "Trace log file")
	optDebug := getopt.BoolLong("debug", 'd', "Echo log records to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logWriter io.Writer
	if *optLogFile != "" {
		logFile, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "can't open log file:", err)
			os.Exit(1)
		}
		defer logFile.Close()
		logWriter = logFile
	}
	log = logger.New(logWriter, slog.LevelDebug, *optDebug)
	slog.SetDefault(log)

	if *optDebugFile != "" {
		traceFile, err := os.Create(*optDebugFile)
		if err != nil {
			log.Error("can't open trace file", "err", err)
			os.Exit(1)
		}
		defer traceFile.Close()
		debug.SetFile(traceFile)
	}

	log.Info("membershipcard started")

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		log.Error("configuration file not found", "path", *optConfig)
		os.Exit(1)
	}

	if err := boardconfig.Load(*optConfig); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	cfg := machineconfig.C

	memBuilder := memory.NewBuilder().WithAddressWidth(addressBits(cfg.RamSize))
	if cfg.RomPath != "" {
		rom, err := os.ReadFile(cfg.RomPath)
		if err != nil {
			log.Error("can't read rom image", "path", cfg.RomPath, "err", err)
			os.Exit(1)
		}
		memBuilder = memBuilder.WithImage(cfg.RomAddr, rom)
	}
	mem, err := memBuilder.Build()
	if err != nil {
		log.Error("can't build memory", "err", err)
		os.Exit(1)
	}

	var uart uartport.Uart
	if cfg.Uart != machineconfig.UartNone {
		mode := uartport.DefaultMode()
		clkMul := uartport.BaudToClockMultiplier(cfg.Baud, cfg.ClockFreq)
		switch cfg.Uart {
		case machineconfig.UartAy51013:
			uart = uartport.NewAy51013Port(mode, clkMul)
		case machineconfig.UartCdp1854:
			uart = uartport.NewCdp1854Port(mode, clkMul)
		}
	}

	b := board.NewBuilder().
		WithLogger(log).
		WithMemory(mem).
		WithUart(uart).
		WithInvertEf(cfg.InvertEf).
		WithInvertQ(cfg.InvertQ).
		Build()

	var consoleSrv *console.Server
	if cfg.ConsoleAddr != "" && uart != nil {
		consoleSrv, err = console.Listen(log, b, cfg.ConsoleAddr)
		if err != nil {
			log.Error("can't start console", "err", err)
			os.Exit(1)
		}
		log.Info("console listening", "addr", consoleSrv.Addr())
	}

	stop := make(chan struct{})
	go runBoard(b, cfg.ClockFreq, stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	close(stop)
	if consoleSrv != nil {
		consoleSrv.Stop()
	}
	log.Info("stopped")
}

// runBoard ticks b at its configured clock rate until stop is closed. A
// real Membership Card's clock is free-running; pacing it to wall-clock
// time here is what lets a human typing at a real telnet client keep up
// with the emulated UART's bit timing.
func runBoard(b *board.Board, clockFreq uint32, stop <-chan struct{}) {
	if clockFreq == 0 {
		clockFreq = 4_000_000
	}
	ticker := time.NewTicker(time.Second / time.Duration(clockFreq))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.Tick()
		}
	}
}

// addressBits returns the smallest address width that can hold size bytes,
// defaulting to a full 64KiB space when size is zero or already that large.
func addressBits(size uint16) uint {
	if size == 0 {
		return 16
	}
	return uint(bits.Len16(size - 1))
}
