package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/tabc/internal/logger"
	"github.com/jacoelho/tabc/internal/tabc/report"
	"github.com/jacoelho/tabc/internal/tabc/source"
	"github.com/jacoelho/tabc/internal/tabc/toolchain"
)

var (
	ErrNoArguments         = errors.New("no arguments provided")
	ErrHelp                = errors.New("help requested")
	ErrMissingCommand      = errors.New("a command is required: translate, build or run")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrMissingInput        = errors.New("at least one input file is required")
	ErrConflictingOutputs  = errors.New("--out and --out-dir are mutually exclusive")
	ErrOutWithManyInputs   = errors.New("--out requires exactly one input file")
	ErrInvalidJobs         = errors.New("--jobs must be at least 1")
	ErrInvalidCompileRate  = errors.New("--compile-rate must not be negative")
	ErrInvalidReportFormat = errors.New("--report must be one of: text, json, yaml")
)

// Command selects what the CLI does with its inputs.
type Command string

const (
	CommandTranslate Command = "translate"
	CommandBuild     Command = "build"
	CommandRun       Command = "run"
)

// Config defines CLI options for the translator.
type Config struct {
	Command Command
	Inputs  []string
	// Args are passed to the program in run mode.
	Args []string

	Output    string
	OutputDir string
	Overwrite bool

	CC          string
	CFlags      []string
	Keep        bool
	WorkDir     string
	CompileRate float64

	Encoding     source.Encoding
	Strict       bool
	Jobs         int
	ReportFormat report.Format
	LogLevel     string
}

// ToStdout reports whether translated C is written to standard output.
func (c Config) ToStdout() bool {
	return c.Command == CommandTranslate && c.Output == "" && c.OutputDir == ""
}

// fileConfig mirrors the flags in a YAML configuration file.
type fileConfig struct {
	Out         *string  `yaml:"out"`
	OutDir      *string  `yaml:"out_dir"`
	Overwrite   *bool    `yaml:"overwrite"`
	CC          *string  `yaml:"cc"`
	CFlags      []string `yaml:"cflags"`
	Keep        *bool    `yaml:"keep"`
	WorkDir     *string  `yaml:"work_dir"`
	Encoding    *string  `yaml:"encoding"`
	Strict      *bool    `yaml:"strict"`
	Jobs        *int     `yaml:"jobs"`
	CompileRate *float64 `yaml:"compile_rate"`
	Report      *string  `yaml:"report"`
	LogLevel    *string  `yaml:"log_level"`
}

type flagValues struct {
	out         string
	outDir      string
	overwrite   bool
	cc          string
	cflags      string
	keep        bool
	workDir     string
	encoding    string
	strict      bool
	jobs        int
	compileRate float64
	report      string
	logLevel    string
	configFile  string
}

// Parse parses and validates CLI arguments using the process environment.
func Parse(args []string) (*Config, error) {
	return ParseWithEnv(args, os.Getenv)
}

// ParseWithEnv parses CLI arguments, resolving defaults through getenv.
func ParseWithEnv(args []string, getenv func(string) string) (*Config, error) {
	if len(args) == 0 {
		return nil, ErrNoArguments
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	var values flagValues
	fs.StringVar(&values.out, "out", "", "Output file for a single input")
	fs.StringVar(&values.outDir, "out-dir", "", "Output directory for generated files")
	fs.BoolVar(&values.overwrite, "overwrite", false, "Overwrite existing output files")
	fs.StringVar(&values.cc, "cc", "", "C compiler")
	fs.StringVar(&values.cflags, "cflags", "", "Extra compiler flags")
	fs.BoolVar(&values.keep, "keep", false, "Keep intermediate artifacts")
	fs.StringVar(&values.workDir, "work-dir", "", "Directory for intermediate artifacts")
	fs.StringVar(&values.encoding, "encoding", string(source.EncodingUTF8), "Source encoding")
	fs.BoolVar(&values.strict, "strict", false, "Validate expressions")
	fs.IntVar(&values.jobs, "jobs", runtime.GOMAXPROCS(0), "Files processed concurrently")
	fs.Float64Var(&values.compileRate, "compile-rate", 0, "Compiler launches per second, 0 for unlimited")
	fs.StringVar(&values.report, "report", string(report.FormatText), "Report format: text, json or yaml")
	fs.StringVar(&values.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&values.configFile, "config", "", "YAML configuration file")

	if err := parseFlags(fs, args[1:]); err != nil {
		return nil, err
	}

	positional := fs.Args()
	if len(positional) == 0 {
		return nil, ErrMissingCommand
	}

	command, err := parseCommand(positional[0])
	if err != nil {
		return nil, err
	}

	cfg := &Config{Command: command}

	switch command {
	case CommandRun:
		if err := parseFlags(fs, positional[1:]); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return nil, ErrMissingInput
		}
		cfg.Inputs = []string{rest[0]}
		cfg.Args = append([]string(nil), rest[1:]...)
	default:
		inputs, err := parseInterleaved(fs, positional[1:])
		if err != nil {
			return nil, err
		}
		if len(inputs) == 0 {
			return nil, ErrMissingInput
		}
		cfg.Inputs = inputs
	}

	if values.configFile != "" {
		if err := applyFile(fs, &values, values.configFile); err != nil {
			return nil, err
		}
	}

	if err := values.apply(cfg, getenv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrHelp
		}
		return fmt.Errorf("parse arguments: %w", err)
	}
	return nil
}

// parseInterleaved accepts flags between input files.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var inputs []string
	for {
		if err := parseFlags(fs, args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return inputs, nil
		}
		inputs = append(inputs, rest[0])
		args = rest[1:]
	}
}

func parseCommand(input string) (Command, error) {
	switch Command(input) {
	case CommandTranslate, CommandBuild, CommandRun:
		return Command(input), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, input)
	}
}

// applyFile fills every flag not given on the command line from path.
func applyFile(fs *flag.FlagSet, values *flagValues, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	setString(set, "out", &values.out, file.Out)
	setString(set, "out-dir", &values.outDir, file.OutDir)
	setBool(set, "overwrite", &values.overwrite, file.Overwrite)
	setString(set, "cc", &values.cc, file.CC)
	if !set["cflags"] && len(file.CFlags) > 0 {
		values.cflags = strings.Join(file.CFlags, " ")
	}
	setBool(set, "keep", &values.keep, file.Keep)
	setString(set, "work-dir", &values.workDir, file.WorkDir)
	setString(set, "encoding", &values.encoding, file.Encoding)
	setBool(set, "strict", &values.strict, file.Strict)
	if !set["jobs"] && file.Jobs != nil {
		values.jobs = *file.Jobs
	}
	if !set["compile-rate"] && file.CompileRate != nil {
		values.compileRate = *file.CompileRate
	}
	setString(set, "report", &values.report, file.Report)
	setString(set, "log-level", &values.logLevel, file.LogLevel)

	return nil
}

func setString(set map[string]bool, name string, target *string, value *string) {
	if !set[name] && value != nil {
		*target = *value
	}
}

func setBool(set map[string]bool, name string, target *bool, value *bool) {
	if !set[name] && value != nil {
		*target = *value
	}
}

func (v flagValues) apply(cfg *Config, getenv func(string) string) error {
	if v.out != "" && v.outDir != "" {
		return ErrConflictingOutputs
	}
	if v.out != "" && len(cfg.Inputs) > 1 {
		return ErrOutWithManyInputs
	}
	if v.jobs < 1 {
		return fmt.Errorf("%w, got: %d", ErrInvalidJobs, v.jobs)
	}
	if v.compileRate < 0 {
		return fmt.Errorf("%w, got: %v", ErrInvalidCompileRate, v.compileRate)
	}

	encoding, err := source.ParseEncoding(v.encoding)
	if err != nil {
		return err
	}

	format, err := parseReportFormat(v.report)
	if err != nil {
		return err
	}

	level := logger.Resolve(v.logLevel, getenv(logger.EnvLevel))
	if _, err := logger.ParseLevel(level); err != nil {
		return err
	}

	cfg.Output = v.out
	cfg.OutputDir = v.outDir
	cfg.Overwrite = v.overwrite
	cfg.CC = toolchain.Resolve(v.cc, getenv("CC"))
	cfg.CFlags = strings.Fields(v.cflags)
	cfg.Keep = v.keep
	cfg.WorkDir = v.workDir
	cfg.CompileRate = v.compileRate
	cfg.Encoding = encoding
	cfg.Strict = v.strict
	cfg.Jobs = v.jobs
	cfg.ReportFormat = format
	cfg.LogLevel = level

	return nil
}

func parseReportFormat(input string) (report.Format, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", string(report.FormatText):
		return report.FormatText, nil
	case string(report.FormatJSON):
		return report.FormatJSON, nil
	case string(report.FormatYAML), "yml":
		return report.FormatYAML, nil
	default:
		return "", fmt.Errorf("%w, got: %s", ErrInvalidReportFormat, input)
	}
}

// Usage returns command usage text.
func Usage() string {
	return `tabc - translate tab-indented scripts into C

Usage:
  tabc [flags] translate FILE...
  tabc [flags] build FILE...
  tabc [flags] run FILE [ARGS...]

Commands:
  translate         Write C for each input to --out, --out-dir or stdout
  build             Translate and compile each input to an executable
  run               Translate, compile and run one input, then clean up

Options:
  --out FILE          Output file for a single input
  --out-dir DIR       Output directory for generated files
  --overwrite         Overwrite existing output files
  --cc PATH           C compiler (default: $CC or cc)
  --cflags FLAGS      Extra compiler flags, space separated
  --keep              Keep intermediate artifacts
  --work-dir DIR      Directory for intermediate artifacts
  --encoding NAME     Source encoding: utf-8, utf-16 or shift_jis (default: utf-8)
  --strict            Validate expressions before emitting them
  --jobs N            Files processed concurrently (default: number of CPUs)
  --compile-rate N    Compiler launches per second, 0 for unlimited
  --report FORMAT     Report format: text, json or yaml (default: text)
  --log-level LEVEL   debug, info, warn or error (default: $TABC_LOG_LEVEL or warn)
  --config FILE       YAML file with the same keys; flags given here win
  -h, --help          Show this help message`
}
