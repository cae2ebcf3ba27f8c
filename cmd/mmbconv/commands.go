package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/funvibe/mmbconv/internal/arity"
	"github.com/funvibe/mmbconv/internal/batch"
	"github.com/funvibe/mmbconv/internal/config"
	"github.com/funvibe/mmbconv/internal/convert"
	"github.com/funvibe/mmbconv/internal/opcode"
	"github.com/funvibe/mmbconv/internal/stream"
)

var (
	termsFlag = &cli.StringFlag{
		Name:  "terms",
		Usage: "YAML file declaring term ids and argument counts",
	}
	asmFlag = &cli.StringFlag{
		Name:  "asm",
		Usage: `Input stream in assembly form, e.g. "term 2; ref 0; ref 1"`,
	}
	hexFlag = &cli.StringFlag{
		Name:  "hex",
		Usage: "Input stream as hex bytes",
	}
	inFlag = &cli.StringFlag{
		Name:  "in",
		Usage: "File holding the binary input stream",
	}
	strictFlag = &cli.BoolFlag{
		Name:  "strict",
		Usage: "Fail when heap slots are consumed out of allocation order",
	}

	convertCmd = &cli.Command{
		Action: convertAction,
		Name:   "convert",
		Usage:  "Convert one unify stream into a proof stream",
		Flags: []cli.Flag{
			termsFlag,
			&cli.UintFlag{
				Name:  "init-vars",
				Usage: "Heap size before the stream runs",
			},
			asmFlag,
			hexFlag,
			inFlag,
			strictFlag,
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: disasm, asm or hex",
				Value: "disasm",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Also write the binary proof stream to this file",
			},
		},
	}

	batchCmd = &cli.Command{
		Action: batchAction,
		Name:   "batch",
		Usage:  "Convert every job of a manifest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Manifest file",
				Value: config.ManifestFileName,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Override the manifest's concurrency limit",
			},
			strictFlag,
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Disassemble every converted stream",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write all proof streams to this bundle file (" + config.BundleFileExt + ")",
			},
		},
	}

	disasmCmd = &cli.Command{
		Action: disasmAction,
		Name:   "disasm",
		Usage:  "Disassemble a binary stream or a bundle",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dialect",
				Usage: "Stream dialect: unify or proof",
				Value: "proof",
			},
			termsFlag,
			hexFlag,
			inFlag,
		},
	}
)

func loadTerms(c *cli.Context) (*arity.Table, error) {
	path := c.String(termsFlag.Name)
	if path == "" {
		return &arity.Table{}, nil
	}
	return arity.Load(path)
}

// readInput returns the raw bytes given by --hex or --in.
func readInput(c *cli.Context) ([]byte, error) {
	switch {
	case c.IsSet(hexFlag.Name) && c.IsSet(inFlag.Name):
		return nil, errors.New("--hex and --in are mutually exclusive")
	case c.IsSet(hexFlag.Name):
		return batch.DecodeHex(c.String(hexFlag.Name))
	case c.IsSet(inFlag.Name):
		return os.ReadFile(c.String(inFlag.Name))
	}
	return nil, errors.New("no input: use --hex or --in")
}

func readUnify(c *cli.Context) ([]opcode.UnifyCommand, error) {
	if c.IsSet(asmFlag.Name) {
		if c.IsSet(hexFlag.Name) || c.IsSet(inFlag.Name) {
			return nil, errors.New("--asm cannot be combined with --hex or --in")
		}
		return stream.ParseUnify(c.String(asmFlag.Name))
	}
	raw, err := readInput(c)
	if err != nil {
		return nil, err
	}
	cmds, _, err := stream.DecodeUnify(raw)
	return cmds, err
}

func convertAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	terms, err := loadTerms(c)
	if err != nil {
		return err
	}
	unify, err := readUnify(c)
	if err != nil {
		return err
	}

	var opts []convert.Option
	if c.Bool(strictFlag.Name) {
		opts = append(opts, convert.WithStrictHeap())
	}
	initVars := uint32(c.Uint("init-vars"))
	proof, err := convert.UnifyToProof(initVars, unify, terms, opts...)
	if err != nil {
		return err
	}
	encoded, err := stream.Encode(proof)
	if err != nil {
		return err
	}
	logger.Debug("Converted", "init-vars", initVars, "unify", len(unify), "proof", len(proof), "bytes", len(encoded))

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, encoded, 0o644); err != nil {
			return err
		}
		logger.Info("Wrote proof stream", "file", out, "bytes", len(encoded))
	}

	w := c.App.Writer
	switch format := c.String("format"); format {
	case "disasm":
		d := &stream.Disassembler{Names: terms, Color: useColor(w)}
		_, err = fmt.Fprint(w, d.Proof("proof", proof))
	case "asm":
		_, err = fmt.Fprint(w, stream.Format(proof))
	case "hex":
		_, err = fmt.Fprintln(w, hex.EncodeToString(encoded))
	default:
		err = fmt.Errorf("unknown --format %q", format)
	}
	return err
}

func batchAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	m, err := config.LoadManifest(c.String("manifest"))
	if err != nil {
		return err
	}
	if c.IsSet("workers") {
		m.Workers = c.Int("workers")
	}
	if c.Bool(strictFlag.Name) {
		m.StrictHeap = true
	}

	runner, err := batch.FromManifest(m, logger)
	if err != nil {
		return err
	}
	results, err := runner.Run(c.Context, m.Jobs)
	if err != nil {
		return err
	}

	terms, err := m.Arities()
	if err != nil {
		return err
	}
	w := c.App.Writer
	d := &stream.Disassembler{Names: terms, Color: useColor(w)}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "%s: FAILED: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %d unify -> %d proof commands, %d bytes\n", res.Name, len(res.Unify), len(res.Proof), len(res.Encoded))
		if c.Bool("print") {
			fmt.Fprint(w, d.Proof(res.Name, res.Proof))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}

	if out := c.String("out"); out != "" {
		b, err := batch.Bundle(m.Path(), results)
		if err != nil {
			return err
		}
		data, err := b.Serialize()
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		logger.Info("Wrote bundle", "file", out, "streams", len(results), "bytes", len(data))
	}
	return nil
}

var bundlePrefix = []byte("MMBB")

func disasmAction(c *cli.Context) error {
	terms, err := loadTerms(c)
	if err != nil {
		return err
	}
	raw, err := readInput(c)
	if err != nil {
		return err
	}
	w := c.App.Writer
	d := &stream.Disassembler{Names: terms, Color: useColor(w)}

	if bytes.HasPrefix(raw, bundlePrefix) {
		b, err := stream.DeserializeBundle(raw)
		if err != nil {
			return err
		}
		for _, name := range b.Names() {
			cmds, _, err := stream.DecodeProof(b.Streams[name].Proof)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("%s (init_vars %d)", name, b.Streams[name].InitVars)
			fmt.Fprint(w, d.Proof(title, cmds))
		}
		return nil
	}

	switch dialect := c.String("dialect"); dialect {
	case "unify":
		cmds, _, err := stream.DecodeUnify(raw)
		if err != nil {
			return err
		}
		fmt.Fprint(w, d.Unify("unify", cmds))
	case "proof":
		cmds, _, err := stream.DecodeProof(raw)
		if err != nil {
			return err
		}
		fmt.Fprint(w, d.Proof("proof", cmds))
	default:
		return fmt.Errorf("unknown --dialect %q", dialect)
	}
	return nil
}
