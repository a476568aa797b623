package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/hvml/purc"
	"github.com/hvml/purc/ejson"
	"github.com/hvml/purc/util"
	"github.com/hvml/purc/variant"
	"github.com/hvml/purc/vcm"
)

var version string

// Config mirrors the YAML file accepted through --config.
type Config struct {
	Depth  int  `yaml:"depth"`
	Pretty bool `yaml:"pretty"`
	Spaced bool `yaml:"spaced"`
}

// Return parsed options and the input filename.
func parseOptions(args []string) (string, *Config, *optionsT) {
	var opts optionsT

	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] [file]"
	args, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	config := &Config{}
	if opts.Config != "" {
		buf, err := os.ReadFile(opts.Config)
		if err != nil {
			log.Fatalf("Failed to read '%s': %s", opts.Config, err)
		}
		if err := yaml.Unmarshal(buf, config); err != nil {
			log.Fatalf("Failed to parse '%s': %s", opts.Config, err)
		}
	}

	file := opts.File
	if len(args) == 1 {
		file = args[0]
	} else if len(args) > 1 {
		fmt.Printf("Multiple files are given: %v\n\n", args)
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}
	return file, config, &opts
}

type optionsT struct {
	File    string `short:"f" long:"file" description:"Read EJSON from the file, rather than stdin" value-name:"filename" default:"-"`
	Depth   int    `long:"depth" description:"Maximum nesting depth" default:"0"`
	Pretty  bool   `long:"pretty" description:"Pretty-print the serialized output"`
	Plain   bool   `long:"plain" description:"Stringify instead of serializing"`
	Tree    bool   `long:"tree" description:"Print the VCM tree instead of materializing a variant"`
	Debug   bool   `long:"debug" description:"Dump the VCM tree structure"`
	Config  string `long:"config" description:"YAML file to specify: depth, pretty, spaced"`
	Help    bool   `long:"help" description:"Show this help"`
	Version bool   `long:"version" description:"Show this version"`
}

func readInput(filepath string) (string, error) {
	if filepath == "-" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", fmt.Errorf("stdin is not piped")
		}

		var buffer bytes.Buffer
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			buffer.WriteString(scanner.Text())
			buffer.WriteString("\n")
		}
		return buffer.String(), nil
	}
	buf, err := os.ReadFile(filepath)
	return string(buf), err
}

// reportParseError prints the failing line with a caret under the
// offending column.
func reportParseError(err error) {
	fmt.Fprintln(os.Stderr, err)
	var pe *purc.Error
	if !errors.As(err, &pe) || pe.Detail == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s\n", pe.Detail)
	if pe.Column > 0 {
		fmt.Fprintf(os.Stderr, "  %s^\n", strings.Repeat(" ", pe.Column-1))
	}
}

func main() {
	util.InitSlog()
	file, config, opts := parseOptions(os.Args[1:])

	input, err := readInput(file)
	if err != nil {
		log.Fatalf("Failed to read '%s': %s", file, err)
	}

	depth := opts.Depth
	if depth == 0 {
		depth = config.Depth
	}

	parser := ejson.NewParser(depth)
	tree, err := parser.ParseString(input)
	if err != nil {
		reportParseError(err)
		os.Exit(1)
	}

	if opts.Debug {
		pp.Println(tree)
	}

	if opts.Tree || !tree.IsLiteral() {
		fmt.Println(tree.ToString())
		return
	}

	value, err := vcm.ToVariant(tree)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer value.Unref()

	var serializeFlags variant.SerializeFlags
	pretty := opts.Pretty || config.Pretty
	if !pretty && term.IsTerminal(int(os.Stdout.Fd())) {
		pretty = true
	}
	if pretty {
		serializeFlags |= variant.SerializePretty
	}
	if config.Spaced {
		serializeFlags |= variant.SerializeSpaced
	}
	if opts.Plain {
		serializeFlags |= variant.SerializePlain
	}

	out, err := variant.SerializeToString(value, serializeFlags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(out)
}
