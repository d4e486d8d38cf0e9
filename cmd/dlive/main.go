// Package main is the entry point for the dlive CLI
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/api"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/app"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/macro"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/transport"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFile  string
	dryRun      bool
	showBytes   bool
	outputFile  string
	spacing     uint32
	serverPort  int
	resolveOnly bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dlive",
	Short: "Build and send Allen & Heath dLive control commands",
	Long: `dlive validates operator requests against the dLive console topology,
resolves channel and socket addresses, and sends the resulting MIDI over TCP
to a MixRack or surface.

Examples:
  dlive resolve mute channelType=input input=0 mute=true
  dlive send faderLevel channelType=dca dca=3 level=107
  dlive run walk-in.yaml
  dlive export walk-in.yaml -o walk-in.mid
  dlive catalog choices fader_level
  dlive tui
  dlive serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <operation> [key=value...]",
	Short: "Validate and resolve a request and print the command",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

var sendCmd = &cobra.Command{
	Use:   "send <operation> [key=value...]",
	Short: "Resolve a request and send it to the console",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSend,
}

var runCmd = &cobra.Command{
	Use:   "run <macro>",
	Short: "Resolve every step of a macro file, then send them in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runMacro,
}

var exportCmd = &cobra.Command{
	Use:   "export <macro>",
	Short: "Write a macro as a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var catalogCmd = &cobra.Command{
	Use:       "catalog [kinds|sockets|operations|choices [table]]",
	Short:     "Print the console catalog",
	Args:      cobra.RangeArgs(0, 2),
	ValidArgs: []string{"kinds", "sockets", "operations", "choices"},
	RunE:      runCatalog,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./dlive.yaml or ~/.config/dlive/dlive.yaml)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log encoded MIDI instead of sending it")

	resolveCmd.Flags().BoolVar(&showBytes, "bytes", false, "Also print the encoded MIDI bytes")

	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	exportCmd.Flags().Uint32Var(&spacing, "spacing", transport.DefaultSpacing, "Ticks between commands")

	tuiCmd.Flags().BoolVar(&resolveOnly, "resolve-only", false, "Show commands without sending them")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides server.port)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(opts app.Options) (*app.App, error) {
	opts.ConfigFile = configFile
	opts.DryRun = opts.DryRun || dryRun
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stderr
	}
	return app.New(opts)
}

func parseRequest(args []string) (command.Request, error) {
	fields, err := command.ParseFields(args[1:])
	if err != nil {
		return command.Request{}, err
	}
	return command.Request{Operation: command.Operation(args[0]), Fields: fields}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runResolve(cmd *cobra.Command, args []string) error {
	req, err := parseRequest(args)
	if err != nil {
		return err
	}
	// Resolving never needs a console connection
	a, err := setup(app.Options{DryRun: true})
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Dispatcher.Resolve(req)
	if err != nil {
		return err
	}
	if err := printJSON(c); err != nil {
		return err
	}
	if showBytes {
		data, err := a.Encoder.Bytes(c)
		if err != nil {
			return err
		}
		fmt.Printf("% X\n", data)
	}
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	req, err := parseRequest(args)
	if err != nil {
		return err
	}
	a, err := setup(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Dispatcher.Dispatch(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Printf("Sent %s\n", c)
	return nil
}

func runMacro(cmd *cobra.Command, args []string) error {
	m, err := macro.Load(args[0])
	if err != nil {
		return err
	}
	a, err := setup(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	cmds, err := m.Run(cmd.Context(), a.Dispatcher)
	for i, c := range cmds {
		fmt.Printf("%3d  %s\n", i+1, c)
	}
	if err != nil {
		return fmt.Errorf("macro %s: %w", m.Name, err)
	}
	fmt.Printf("Ran %s: %d commands\n", m.Name, len(cmds))
	return nil
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runExport(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	m, err := macro.Load(input)
	if err != nil {
		return err
	}

	// The encoder depends on the configured MIDI channel, so build the app
	// first and then swap in a recorder
	base, err := setup(app.Options{DryRun: true})
	if err != nil {
		return err
	}
	defer base.Close()

	rec := transport.NewRecorder(base.Encoder)
	rec.SetSpacing(spacing)
	d := command.NewDispatcher(rec, base.Logger)

	if _, err := m.Run(cmd.Context(), d); err != nil {
		return fmt.Errorf("macro %s: %w", m.Name, err)
	}
	if err := rec.WriteMIDIFile(output); err != nil {
		return err
	}

	fmt.Printf("Exported %s -> %s (%d commands)\n", input, output, rec.Len())
	return nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	what := "kinds"
	if len(args) > 0 {
		what = args[0]
	}

	var out any
	switch what {
	case "kinds", "channels":
		out = console.Channels()
	case "sockets":
		out = console.Sockets()
	case "operations":
		out = operationSummaries()
	case "choices":
		if len(args) < 2 {
			out = console.TableNames()
			break
		}
		entries, ok := console.Table(args[1])
		if !ok {
			return fmt.Errorf("unknown choice table %q (have %s)", args[1], strings.Join(console.TableNames(), ", "))
		}
		out = entries
	default:
		return fmt.Errorf("unknown catalog section %q", what)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}

type operationSummary struct {
	Operation   string   `yaml:"operation"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Targets     []string `yaml:"targets,omitempty"`
	Fields      []string `yaml:"fields,omitempty"`
}

func operationSummaries() []operationSummary {
	var out []operationSummary
	for _, def := range command.Operations() {
		s := operationSummary{
			Operation:   string(def.Operation),
			Name:        def.Name,
			Description: def.Description,
		}
		for _, t := range def.Targets {
			s.Targets = append(s.Targets, fmt.Sprintf("%s: %s", t.Role, strings.Join(t.Kinds, ", ")))
		}
		for _, f := range def.Fields {
			s.Fields = append(s.Fields, fmt.Sprintf("%s (%s)", f.ID, f.TypeName))
		}
		out = append(out, s)
	}
	return out
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := setup(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()
	return tui.Run(a.Dispatcher, !resolveOnly)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup(app.Options{LogWriter: os.Stdout})
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(a.Config.Server.Mode)
	if serverPort > 0 {
		a.Config.Server.Port = serverPort
	}
	addr := a.Config.ServerAddr()
	fmt.Printf("Starting API server on %s...\n", addr)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", a.Config.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.NewServer(a.Dispatcher, a.Logger).Run(ctx, addr)
}
