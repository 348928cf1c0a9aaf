// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/ezrec/promdump/board"
	"github.com/ezrec/promdump/bus"
	"github.com/ezrec/promdump/calibrate"
	"github.com/ezrec/promdump/gpio"
	"github.com/ezrec/promdump/prom"
	"github.com/ezrec/promdump/sim"
	"github.com/ezrec/promdump/sink"
	"github.com/ezrec/promdump/source"
	"github.com/ezrec/promdump/statsview"
	"github.com/ezrec/promdump/translate"
	"github.com/ezrec/promdump/ux"
)

type options struct {
	board    string
	image    string
	metadata string
	simulate string

	start uint64
	top   uint64
	width int
	block int
	chunk int

	calibrate bool
	delay     time.Duration
	settle    time.Duration

	quiet     bool
	verbose   bool
	statsview bool
}

func main() {
	var opts options

	flag.StringVar(&opts.board, "b", "", "Board .star file; the Raspberry Pi 40-pin wiring if empty")
	flag.StringVar(&opts.image, "o", "", "Binary image output file")
	flag.StringVar(&opts.metadata, "m", "", "Metadata output file")
	flag.Uint64Var(&opts.start, "start", 0, "First address to read")
	flag.Uint64Var(&opts.top, "top", 0, "Address to stop reading at")
	flag.IntVar(&opts.width, "width", 0, "Address bus width of the chip")
	flag.IntVar(&opts.block, "block", 0, "Block size of reads")
	flag.IntVar(&opts.chunk, "chunk", 0, "Chunk size of reads")
	flag.BoolVar(&opts.calibrate, "calibrate", false, "Calibrate the propagation delay before reading")
	flag.DurationVar(&opts.delay, "delay", 0, "Propagation delay")
	flag.BoolVar(&opts.quiet, "q", false, "Quiet mode, no hex dump")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose mode")
	flag.StringVar(&opts.simulate, "simulate", "", "Simulate a chip holding this image")
	flag.DurationVar(&opts.settle, "settle", 0, "Settle time of the simulated chip")
	flag.BoolVar(&opts.statsview, "statsview", false, "Serve runtime statistics")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	err := run(&opts, os.Stdout)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
}

// simulate attaches a simulated chip, wired as the board, to a mock.
func simulate(bd *board.Board, opts *options) (hal *gpio.Mock, chip *sim.Prom, err error) {
	image, err := os.ReadFile(opts.simulate)
	if err != nil {
		return
	}

	chip = &sim.Prom{
		Image:   image,
		Address: bd.Address,
		Data:    bd.Data,
		Enable:  map[gpio.Pin]gpio.Level{},
		Settle:  opts.settle,
		Seed:    time.Now().UnixNano(),
	}

	if bd.Counter != nil {
		chip.Counter = &sim.Counter{
			Width: bd.Counter.Width,
			Clock: bd.Counter.Clock,
			Reset: bd.Counter.Reset,
		}
	}

	for _, en := range bd.Enable {
		chip.Enable[en.Pin] = en.Active
	}

	hal = gpio.NewMock()
	hal.Verbose = opts.verbose
	chip.Attach(hal)

	return
}

func run(opts *options, stdout io.Writer) (err error) {
	bd := board.Default()
	if len(opts.board) != 0 {
		bd, err = board.Load(opts.board, nil)
		if err != nil {
			return
		}
	}

	if opts.block > 0 {
		bd.BlockSize = opts.block
	}
	if opts.chunk > 0 {
		bd.ChunkSize = opts.chunk
	}
	if opts.delay > 0 {
		bd.Delay = opts.delay
	}

	if opts.statsview {
		if statsview.Available() {
			statsview.Launch(stdout)
		} else {
			log.Printf("statsview: not built in")
		}
	}

	var hal gpio.Hal
	var sleep func(time.Duration)

	if len(opts.simulate) != 0 {
		var chip *sim.Prom
		hal, chip, err = simulate(bd, opts)
		if err != nil {
			return
		}
		sleep = chip.Sleep
	} else {
		var host *gpio.Host
		host, err = gpio.NewHost()
		if err != nil {
			return
		}
		host.Verbose = opts.verbose
		defer func() {
			cerr := host.Close()
			if err == nil {
				err = cerr
			}
		}()
		hal = host
	}

	address, data, err := bd.Build(hal)
	if err != nil {
		return
	}

	cb, ok := address.(*bus.Counter)
	if ok {
		cb.Verbose = opts.verbose
		cb.Sleep = sleep
	}

	br, err := source.NewBusReader(address, data)
	if err != nil {
		return
	}
	br.Sleep = sleep
	br.SetPropagationDelay(bd.Delay)

	pr, err := prom.NewReader(hal, br, bd.BlockSize)
	if err != nil {
		return
	}

	pr.Verbose = opts.verbose
	pr.Start = opts.start
	pr.Top = opts.top
	pr.LogicalWidth = opts.width
	pr.ChunkSize = bd.ChunkSize
	pr.Enable = bd.Enable

	// A simulated chip ignores the lines set by hand.
	if len(opts.simulate) == 0 {
		pr.Prompter = &ux.Prompter{Output: stdout}
	}

	err = pr.Configure()
	if err != nil {
		return
	}

	if opts.calibrate {
		cal := calibrate.NewCalibrator(br)
		cal.Verbose = opts.verbose

		var delay time.Duration
		err = pr.Enabled(func() (err error) {
			delay, err = cal.Calibrate()
			return
		})
		if err != nil {
			return
		}

		translate.Fprintf(stdout, "Propagation delay: %v\n", delay)
	}

	lower, upper, err := pr.Bounds()
	if err != nil {
		return
	}

	translate.Fprintf(stdout, "Board: %s\n", bd.Name)
	translate.Fprintf(stdout, "Lower bound: 0x%04x\n", lower)
	translate.Fprintf(stdout, "Upper bound: 0x%04x\n", upper)
	translate.Fprintf(stdout, "Bytes to read: %d\n", upper-lower)

	if len(opts.image) != 0 {
		translate.Fprintf(stdout, "Image file: %s\n", opts.image)

		var ouf *os.File
		ouf, err = os.Create(opts.image)
		if err != nil {
			return
		}

		image := &sink.File{Output: ouf}
		defer func() {
			cerr := image.Close()
			if err == nil {
				err = cerr
			}
		}()
		pr.AddSink(image)
	}

	if len(opts.metadata) != 0 {
		translate.Fprintf(stdout, "Metadata file: %s\n", opts.metadata)
	}

	var hexdump *sink.HexDump
	if opts.quiet {
		pr.Progress = &ux.Progress{Output: os.Stderr, Label: translate.From("Reading")}
	} else {
		hexdump = &sink.HexDump{Output: stdout}
		pr.AddSink(hexdump)
	}

	_, err = pr.Dump()
	if err != nil {
		return
	}

	if hexdump != nil {
		err = hexdump.Close()
		if err != nil {
			return
		}
	}

	translate.Fprintf(stdout, "\n%s\n", pr.Hashes())

	if len(opts.metadata) != 0 {
		var ouf *os.File
		ouf, err = os.Create(opts.metadata)
		if err != nil {
			return
		}

		err = pr.WriteMetadata(ouf, opts.image)
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}

	return
}
