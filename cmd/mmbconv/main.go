package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ledgerwatch/log/v3"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/funvibe/mmbconv/internal/config"
)

// Version can be set at build time using: -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

var verbosityFlag = &cli.StringFlag{
	Name:  "verbosity",
	Usage: "Log level: trace, debug, info, warn, error, crit",
	Value: config.DefaultVerbosity,
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "mmbconv"
	app.Usage = "Convert MMB unify streams into proof streams"
	app.Version = Version
	app.Flags = []cli.Flag{verbosityFlag}
	app.Commands = []*cli.Command{
		convertCmd,
		batchCmd,
		disasmCmd,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger writes logfmt records at --verbosity or above to the app's error writer.
func newLogger(c *cli.Context) (log.Logger, error) {
	lvl, err := log.LvlFromString(c.String(verbosityFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid --verbosity: %w", err)
	}
	logger := log.New("app", c.App.Name)
	logger.SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(c.App.ErrWriter, log.LogfmtFormat())))
	return logger, nil
}

// useColor reports whether w is a terminal that wants ANSI colors.
func useColor(w io.Writer) bool {
	if _, ok := os.LookupEnv(config.NoColorEnv); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
