// Command cascadelang runs CascadeLang programs: `cascadelang <file>` lexes,
// parses, and evaluates the file against a fresh heap, printing output and
// exiting 0 on success or 1 on any lex/parse/runtime error (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caivega/cascadelang/httpapi"
	"github.com/caivega/cascadelang/lang/interp"
	"github.com/caivega/cascadelang/lang/parser"
	"github.com/caivega/cascadelang/lang/repl"
	"github.com/caivega/cascadelang/version"
)

func main() {
	// Force glog to stderr, matching the real cayley CLI's own setup, since
	// this binary has no log file rotation story of its own.
	flag.Set("logtostderr", "true")
	// Mark the Go flag set as parsed without reading os.Args: every
	// command-line flag belongs to cobra.
	flag.CommandLine.Parse([]string{})

	root := newRootCmd()
	root.AddCommand(newReplCmd(), newServeCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var showVersion bool
	cmd := &cobra.Command{
		Use:     "cascadelang <file>",
		Short:   "Run a CascadeLang program",
		Args:    cobra.ExactArgs(1),
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			return runFile(args[0])
		},
	}
	cmd.Flags().BoolVar(&showVersion, "version", false, "print version information and exit")
	// cobra answers --version itself, before RunE, so give it printVersion's text.
	cmd.SetVersionTemplate(fmt.Sprintf("cascadelang %s (%s, built %s)\n", version.Version, version.GitHash, version.BuildDate))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

func printVersion() {
	fmt.Printf("cascadelang %s (%s, built %s)\n", version.Version, version.GitHash, version.BuildDate)
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive CascadeLang session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl.Run(os.Stdout)
		},
	}
}

func newServeCmd() *cobra.Command {
	var debugAddr string
	var debugAuth string
	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Run a file, then serve its debug snapshot over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// CASCADELANG_DEBUG_ADDR mirrors --debug-addr but only applies
			// when the flag itself was left at its default.
			if !cmd.Flags().Changed("debug-addr") {
				v := viper.New()
				v.SetEnvPrefix("CASCADELANG")
				v.AutomaticEnv()
				if addr := v.GetString("DEBUG_ADDR"); addr != "" {
					debugAddr = addr
				}
			}
			return serveFile(args[0], debugAddr, debugAuth)
		},
	}
	cmd.Flags().StringVar(&debugAddr, "debug-addr", "127.0.0.1:8765", "address the debug server listens on")
	cmd.Flags().StringVar(&debugAuth, "debug-auth", "", "user:bcryptedpass to require HTTP Basic Auth on the debug server")
	return cmd
}

func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		glog.Errorf("cascadelang: %v", err)
		return err
	}
	prog, err := parser.Parse(string(src))
	if err != nil {
		glog.Errorf("cascadelang: %v", err)
		return err
	}
	in := interp.New()
	in.SetPrint(func(s string) { fmt.Println(s) })
	if err := in.Run(prog); err != nil {
		glog.Errorf("cascadelang: %v", err)
		return err
	}
	return nil
}

func serveFile(path, addr, authSpec string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		glog.Errorf("cascadelang: %v", err)
		return err
	}
	prog, err := parser.Parse(string(src))
	if err != nil {
		glog.Errorf("cascadelang: %v", err)
		return err
	}
	in := interp.New()
	in.SetPrint(func(s string) { fmt.Println(s) })
	if err := in.Run(prog); err != nil {
		glog.Errorf("cascadelang: %v", err)
		return err
	}

	report := httpapi.Report{
		Snapshot:  in.Heap.Snapshot(),
		Events:    in.Heap.Events(),
		TypeNames: in.Registry.TypeNames(),
	}
	auth, err := parseAuthSpec(authSpec)
	if err != nil {
		glog.Errorf("cascadelang: %v", err)
		return err
	}

	server := httpapi.New(report, auth)
	glog.Infof("cascadelang: serving debug snapshot on %s", addr)
	return http.ListenAndServe(addr, server.Handler())
}

func parseAuthSpec(spec string) (*httpapi.AuthCreds, error) {
	if spec == "" {
		return nil, nil
	}
	for i := 0; i < len(spec); i++ {
		if spec[i] == ':' {
			return &httpapi.AuthCreds{User: spec[:i], BcryptedPass: []byte(spec[i+1:])}, nil
		}
	}
	return nil, fmt.Errorf("invalid --debug-auth value %q, want user:bcryptedpass", spec)
}
