// Command tourdesk is the back-office console for entering leads, associates,
// staff and tour packages.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tourforms/internal/config"
	"github.com/goliatone/go-tourforms/pkg/export"
	"github.com/goliatone/go-tourforms/pkg/render/preview"
	"github.com/goliatone/go-tourforms/pkg/renderers/tui"
)

const usage = `usage: tourdesk [-config file] [-env file] <command> [args]

commands:
  forms                     list the entry screens
  fill <form>               fill a screen in the terminal and save the record
  list <form>               list saved records, newest first
  preview <form> [id]       render a blank screen, or a saved record, as HTML
  export [form...]          write the OpenAPI contract of the record payloads
  watch                     print options other desks create`

func main() {
	global := flag.NewFlagSet("tourdesk", flag.ExitOnError)
	configFile := global.String("config", "", "configuration file (default: search configs/ and . for tourdesk.yaml)")
	envFile := global.String("env", ".env", "dotenv file loaded before the environment")
	global.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(config.LoadOptions{File: *configFile, EnvFiles: []string{*envFile}})
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()
	a.serveMetrics()

	if err := run(ctx, a, args[0], args[1:]); err != nil {
		a.Close()
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, tui.ErrCancelled) || errors.Is(err, tui.ErrUnfillable) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Fatalf("%s: %v", args[0], err)
	}
}

func run(ctx context.Context, a *app, cmd string, args []string) error {
	switch cmd {
	case "forms":
		return listForms(a, os.Stdout)
	case "fill":
		return fill(ctx, a, args)
	case "list":
		return list(ctx, a, args)
	case "preview":
		return renderPreview(ctx, a, args)
	case "export":
		return exportContract(ctx, a, args)
	case "watch":
		return watch(ctx, a, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func listForms(a *app, out io.Writer) error {
	for _, def := range a.catalog.Definitions() {
		if _, err := fmt.Fprintf(out, "%-10s %s\n", def.ID, def.Title); err != nil {
			return err
		}
	}
	return nil
}

func fill(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	format := fs.String("output", "pretty", "how to print the saved record: json or pretty")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("fill needs exactly one form id")
	}

	s, err := a.open(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	console, err := tui.New(
		tui.WithOutputFormat(tui.OutputFormat(*format)),
		tui.WithLogger(a.log),
		tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
	)
	if err != nil {
		return err
	}
	_, err = console.Run(ctx, s)
	return err
}

func list(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum records to show")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("list needs exactly one form id")
	}

	recs, err := a.records.List(ctx, fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

func renderPreview(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	output := fs.String("o", "", "output file (stdout if empty)")
	_ = fs.Parse(args)
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return errors.New("preview needs a form id and optionally a record id")
	}

	var opts []preview.EngineOption
	if dir := a.cfg.Preview.Templates; dir != "" {
		opts = append(opts, preview.WithBaseDir(dir))
	}
	renderer, err := preview.New(opts...)
	if err != nil {
		return err
	}

	form := fs.Arg(0)
	var html string
	if fs.NArg() == 2 {
		def, ok := a.catalog.Definition(form)
		if !ok {
			return fmt.Errorf("unknown form %q", form)
		}
		rec, err := a.records.Get(ctx, fs.Arg(1))
		if err != nil {
			return err
		}
		html, err = renderer.Record(def, rec)
		if err != nil {
			return err
		}
	} else {
		s, err := a.open(ctx, form)
		if err != nil {
			return err
		}
		html, err = renderer.Form(s)
		if err != nil {
			return err
		}
	}
	return writeOutput(*output, []byte(html))
}

func exportContract(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "yaml", "json or yaml")
	output := fs.String("o", "", "output file (stdout if empty)")
	version := fs.String("version", "", "document version")
	_ = fs.Parse(args)

	defs := a.catalog.Definitions()
	if fs.NArg() > 0 {
		defs = defs[:0]
		for _, id := range fs.Args() {
			def, ok := a.catalog.Definition(id)
			if !ok {
				return fmt.Errorf("unknown form %q", id)
			}
			defs = append(defs, def)
		}
	}

	doc, err := export.Document(ctx, export.Info{Version: *version}, defs...)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if strings.EqualFold(*format, "yaml") {
		if payload, err = toYAML(payload); err != nil {
			return err
		}
	}
	return writeOutput(*output, payload)
}

// toYAML re-encodes JSON as block-style YAML, keeping key order.
func toYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = 0
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Style = 0
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func watch(ctx context.Context, a *app, out io.Writer) error {
	if a.directory == nil {
		return errors.New("watch needs directory.redis.addr to be configured")
	}
	updates, err := a.directory.Subscribe(ctx)
	if err != nil {
		return err
	}
	for update := range updates {
		if _, err := fmt.Fprintf(out, "%s: %s\n", update.Field, update.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Written to %s\n", path)
	return nil
}
