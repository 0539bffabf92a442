package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/ZenLiuCN/minidl"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("failure %s", err)
	}
}

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Usage = "dynamic library inspector"
	app.Name = "inspect"
	app.Description = "load native shared libraries and resolve their symbols by name or ordinal"
	app.Writer = out
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log loader activity"},
		&cli.BoolFlag{Name: "dump", Usage: "dump resolved results"},
	}
	app.Before = func(ctx *cli.Context) error {
		minidl.SetDebug(ctx.Bool("debug"))
		return nil
	}
	libFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "lib", Aliases: []string{"l"}, Required: true, Usage: "library path or loader search name"}
	}
	app.Commands = []*cli.Command{
		{
			Name:   "load",
			Action: load,
			Usage:  "load libraries and display their handles",
			Args:   true,
		},
		{
			Name:   "sym",
			Action: sym,
			Usage:  "resolve symbols by name",
			Flags: []cli.Flag{
				libFlag(),
				&cli.BoolFlag{Name: "required", Aliases: []string{"r"}, Usage: "fail on the first missing symbol"},
			},
			Args: true,
		},
		{
			Name:   "ord",
			Action: ord,
			Usage:  "resolve symbols by ordinal (windows only)",
			Flags: []cli.Flag{
				libFlag(),
				&cli.BoolFlag{Name: "required", Aliases: []string{"r"}, Usage: "fail on the first missing ordinal"},
			},
			Args: true,
		},
		{
			Name:   "unload",
			Action: unload,
			Usage:  "load then unload a library, unsound outside of tests",
			Flags:  []cli.Flag{libFlag()},
		},
	}
	return app
}

type result struct {
	Name    string
	Address uintptr
	Found   bool
}

func dump(ctx *cli.Context, v ...any) {
	if ctx.Bool("dump") {
		sp := spew.NewDefaultConfig()
		sp.MaxDepth = 3
		sp.Fdump(ctx.App.Writer, v...)
	}
}

func report(ctx *cli.Context, results []result) {
	for _, r := range results {
		if r.Found {
			fmt.Fprintf(ctx.App.Writer, "%s => %#x\n", r.Name, r.Address)
		} else {
			fmt.Fprintf(ctx.App.Writer, "%s => missing\n", r.Name)
		}
	}
	dump(ctx, results)
}

func load(ctx *cli.Context) (err error) {
	if ctx.NArg() == 0 {
		return fmt.Errorf("missing library list")
	}
	for _, s := range ctx.Args().Slice() {
		var lib minidl.Library
		if lib, err = minidl.Load(s); err != nil {
			return
		}
		fmt.Fprintf(ctx.App.Writer, "%s => %s\n", s, lib)
		dump(ctx, lib)
	}
	return
}

func sym(ctx *cli.Context) (err error) {
	if ctx.NArg() == 0 {
		return fmt.Errorf("missing symbol list")
	}
	lib, err := minidl.Load(ctx.String("lib"))
	if err != nil {
		return
	}
	var results []result
	for _, s := range ctx.Args().Slice() {
		r := result{Name: s}
		if ctx.Bool("required") {
			if r.Address, err = lib.Symbol(s + "\x00"); err != nil {
				return
			}
			r.Found = true
		} else {
			r.Address, r.Found = lib.SymbolOptional(s + "\x00")
		}
		results = append(results, r)
	}
	report(ctx, results)
	return
}

func ord(ctx *cli.Context) (err error) {
	if ctx.NArg() == 0 {
		return fmt.Errorf("missing ordinal list")
	}
	lib, err := minidl.Load(ctx.String("lib"))
	if err != nil {
		return
	}
	var results []result
	for _, s := range ctx.Args().Slice() {
		var n uint64
		if n, err = strconv.ParseUint(s, 0, 16); err != nil {
			return fmt.Errorf("invalid ordinal %q: %w", s, err)
		}
		r := result{Name: "@" + strconv.FormatUint(n, 10)}
		if ctx.Bool("required") {
			if r.Address, err = lib.SymbolByOrdinal(uint16(n)); err != nil {
				return
			}
			r.Found = true
		} else {
			r.Address, r.Found = lib.SymbolOptionalByOrdinal(uint16(n))
		}
		results = append(results, r)
	}
	report(ctx, results)
	return
}

func unload(ctx *cli.Context) (err error) {
	p := ctx.String("lib")
	lib, err := minidl.Load(p)
	if err != nil {
		return
	}
	if err = lib.UnsafeUnload(); err != nil {
		return
	}
	fmt.Fprintf(ctx.App.Writer, "%s unloaded\n", p)
	return
}
