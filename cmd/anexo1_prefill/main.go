package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/config"
	"github.com/a3tai/mcp-diarias/internal/errors"
	"github.com/a3tai/mcp-diarias/internal/forms"
	"github.com/a3tai/mcp-diarias/internal/logging"
)

// options are the command line settings
type options struct {
	target   string
	format   string
	soffice  string
	timeout  time.Duration
	maxSize  int64
	verbose  bool
	help     bool
	filePath string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr, fs)
		return 2
	}
	if opts.help {
		printHelp(stdout, fs)
		return 0
	}

	result, err := prefillFile(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Erro: %s\n", errors.UserMessage(err))
		if opts.verbose {
			fmt.Fprintf(stderr, "Detalhes: %v\n", err)
		}
		return 1
	}

	if err := outputResult(stdout, opts.format, result); err != nil {
		fmt.Fprintf(stderr, "Error outputting results: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, *pflag.FlagSet, error) {
	defaults := config.DefaultConfig()
	opts := &options{}

	fs := pflag.NewFlagSet("anexo1_prefill", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.target, "target", string(anexo.KindAnexo2), "Form to prefill: anexo1 or anexo2")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.StringVar(&opts.soffice, "soffice", defaults.ConverterBinary, "LibreOffice binary used to convert .doc files")
	fs.DurationVar(&opts.timeout, "convert-timeout", defaults.ConverterTimeout, "Timeout of the .doc conversion")
	fs.Int64Var(&opts.maxSize, "max-file-size", defaults.MaxFileSize, "Maximum file size in bytes")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log pipeline steps to stderr")
	fs.BoolVar(&opts.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if opts.help {
		return opts, fs, nil
	}

	if fs.NArg() != 1 {
		return nil, fs, fmt.Errorf("exactly one Anexo I file is required")
	}
	opts.filePath = fs.Arg(0)

	if _, err := anexo.ParseKind(opts.target); err != nil {
		return nil, fs, fmt.Errorf("invalid target %q", opts.target)
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, fs, fmt.Errorf("unsupported output format: %s", opts.format)
	}
	return opts, fs, nil
}

// prefillFile digitizes the file with a service rooted at its directory
func prefillFile(ctx context.Context, opts *options, stderr io.Writer) (*forms.PrefillResult, error) {
	absPath, err := filepath.Abs(opts.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	cfg := config.DefaultConfig()
	cfg.InputDirectory = filepath.Dir(absPath)
	cfg.MaxFileSize = opts.maxSize
	cfg.ConverterBinary = opts.soffice
	cfg.ConverterTimeout = opts.timeout

	log := logging.Discard()
	if opts.verbose {
		log.SetOutput(stderr)
		log.SetLevel(logrus.DebugLevel)
	}

	svc, err := forms.NewService(cfg, log)
	if err != nil {
		return nil, err
	}
	return svc.PrefillFile(ctx, filepath.Base(absPath), anexo.Kind(opts.target))
}

func outputResult(w io.Writer, format string, result *forms.PrefillResult) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		return outputText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputText(w io.Writer, result *forms.PrefillResult) error {
	fmt.Fprintf(w, "Arquivo: %s (%s)\n", result.Filename, result.Source)
	fmt.Fprintf(w, "Formulário: %s\n", result.Target)

	if len(result.Warnings) == 0 {
		fmt.Fprintln(w, "Todos os campos foram reconhecidos.")
	} else {
		fmt.Fprintf(w, "\nAvisos (%d):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	payload, err := json.MarshalIndent(result.Prefill, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nPré-preenchimento:\n%s\n", payload)
	return nil
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "anexo1_prefill - Digitize a filled Anexo I and print the prefill payload")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reads a PDF, DOCX or DOC Anexo I (travel request), extracts its fields and")
	fmt.Fprintln(w, "projects them onto the Anexo II (travel report) or back onto the Anexo I.")
	fmt.Fprintln(w)
	printUsage(w, fs)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  anexo1_prefill anexo1.pdf")
	fmt.Fprintln(w, "  anexo1_prefill --target anexo1 --format json requisicao.docx")
	fmt.Fprintln(w, "  anexo1_prefill --soffice /opt/libreoffice/program/soffice antigo.doc")
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  anexo1_prefill [OPTIONS] <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprint(w, fs.FlagUsages())
}
