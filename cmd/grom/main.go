package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/grom/internal/config"
	"github.com/aleksaelezovic/grom/internal/encoding"
	"github.com/aleksaelezovic/grom/internal/storage"
	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/grom"
	"github.com/aleksaelezovic/grom/pkg/server"
	"github.com/aleksaelezovic/grom/pkg/store"
	"github.com/aleksaelezovic/grom/pkg/transport"
)

var version = "0.1.0"

// Global state set up before every command
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "grom",
		Short: "Fetch RDF statement sets and build linked node graphs",
		Long: `Grom fetches N-Triples from an RDF endpoint, groups the statements by
subject into nodes and links nodes that reference each other.

Example:
  grom fetch https://api.example.org/query/person_index --filter Person
  grom fetch person_by_id?person_id=43RHonMf --save --pretty
  grom serve --addr :8080`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			configPath, _ := cmd.Flags().GetString("config")
			archivePath, _ := cmd.Flags().GetString("archive-path")

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			loaded, err := config.Load(configPath, logger)
			if err != nil {
				return err
			}
			if archivePath != "" {
				loaded.Archive.Path = archivePath
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().String("config", config.DefaultFileName, "Path to the HCL configuration file")
	root.PersistentFlags().String("archive-path", "", "Payload archive directory (overrides the config file)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(fetchCmd())
	root.AddCommand(buildCmd())
	root.AddCommand(archiveCmd())
	root.AddCommand(serveCmd())
	return root
}

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <uri>",
		Short: "Fetch a URI and print the built graph",
		Long: `Fetch a URI and print the built graph.

Relative URIs are resolved against endpoint.base_url from the config file.

Example:
  grom fetch https://api.example.org/query/person_index
  grom fetch person_index --filter Person,Party --format csv
  grom fetch person_index -H "Ocp-Apim-Subscription-Key: secret" --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, _ := cmd.Flags().GetStringSlice("filter")
			rawHeaders, _ := cmd.Flags().GetStringArray("header")
			save, _ := cmd.Flags().GetBool("save")

			uri, err := cfg.ResolveURI(args[0])
			if err != nil {
				return err
			}
			headers, err := parseHeaders(rawHeaders)
			if err != nil {
				return err
			}

			opts := []grom.Option{grom.WithTransport(newTransport()), grom.WithLogger(logger)}
			if save {
				archive, err := openArchive()
				if err != nil {
					return err
				}
				defer archive.Close()
				opts = append(opts, grom.WithArchive(archive))
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			result, err := grom.New(opts...).FetchGraph(ctx, uri, headers, filters, cfg.Decorator())
			if err != nil {
				return err
			}
			return writeGraph(cmd, uri, result)
		},
	}

	cmd.Flags().StringArrayP("header", "H", nil, `Request header as "Name: value" (repeatable)`)
	cmd.Flags().Bool("save", false, "Archive the fetched payload")
	addOutputFlags(cmd)
	return cmd
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [payload.json]",
		Short: "Build a graph from a payload file or an archived fetch",
		Long: `Build a graph from a JSON payload without fetching.

The payload is read from the named file, from stdin when the file is "-",
or from the archive with --archived.

Example:
  grom build payload.json --filter Person
  grom fetch person_index --save && grom build --archived person_index`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archived, _ := cmd.Flags().GetString("archived")
			filters, _ := cmd.Flags().GetStringSlice("filter")

			var payload *graph.Payload
			var uri string

			switch {
			case archived != "" && len(args) > 0:
				return fmt.Errorf("give either a payload file or --archived, not both")
			case archived != "":
				resolved, err := cfg.ResolveURI(archived)
				if err != nil {
					return err
				}
				archive, err := openArchive()
				if err != nil {
					return err
				}
				defer archive.Close()

				record, err := archive.Load(resolved)
				if err != nil {
					return err
				}
				payload, uri = record.Payload, resolved
			case len(args) == 1:
				data, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				if payload, err = graph.DecodePayload(data); err != nil {
					return fmt.Errorf("failed to decode %s: %w", args[0], err)
				}
				uri = payload.URI
			default:
				return fmt.Errorf("a payload file or --archived is required")
			}

			b := graph.Builder{Logger: logger}
			result, err := b.Build(payload, filters, cfg.Decorator())
			if err != nil {
				return err
			}
			return writeGraph(cmd, uri, result)
		},
	}

	cmd.Flags().String("archived", "", "Rebuild the payload archived for this URI")
	addOutputFlags(cmd)
	return cmd
}

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived payloads",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [filter]",
		Short: "List archived payloads, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := openArchive()
			if err != nil {
				return err
			}
			defer archive.Close()

			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			entries, err := archive.List(filter)
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), entries)
		},
	})

	show := &cobra.Command{
		Use:   "show <uri>",
		Short: "Print an archived payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := openArchive()
			if err != nil {
				return err
			}
			defer archive.Close()

			uri, err := cfg.ResolveURI(args[0])
			if err != nil {
				return err
			}
			record, err := archive.Load(uri)
			if err != nil {
				return err
			}
			data, err := record.Payload.MarshalJSON()
			if err != nil {
				return err
			}
			return writeJSON(cmd, data)
		},
	}
	show.Flags().Bool("pretty", false, "Indent JSON output")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <uri>",
		Short: "Remove an archived payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := openArchive()
			if err != nil {
				return err
			}
			defer archive.Close()

			uri, err := cfg.ResolveURI(args[0])
			if err != nil {
				return err
			}
			if err := archive.Delete(uri); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", uri)
			return nil
		},
	})

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP graph endpoint",
		Long: `Start the HTTP graph endpoint.

Routes:
  GET /graph?uri=...&filter=...&format=json|nt|csv|tsv
  GET /archive[?uri=...]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			save, _ := cmd.Flags().GetBool("save")
			if addr == "" {
				addr = cfg.Server.Addr
			}

			clientOpts := []grom.Option{grom.WithTransport(newTransport()), grom.WithLogger(logger)}
			serverOpts := []server.Option{
				server.WithDecorator(cfg.Decorator()),
				server.WithLogger(logger),
			}
			if cfg.Endpoint.BaseURL != "" {
				serverOpts = append(serverOpts, server.WithResolver(cfg.ResolveEndpointURI))
			} else if len(cfg.Endpoint.Headers) > 0 {
				logger.Warn("endpoint headers are sent to any host without endpoint.base_url")
			}
			if save {
				archive, err := openArchive()
				if err != nil {
					return err
				}
				defer archive.Close()
				clientOpts = append(clientOpts, grom.WithArchive(archive))
				serverOpts = append(serverOpts, server.WithArchive(archive))
			}

			return server.NewServer(grom.New(clientOpts...), addr, serverOpts...).Start()
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, "+config.DefaultServerAddr+")")
	cmd.Flags().Bool("save", false, "Archive fetched payloads and serve /archive")
	return cmd
}

func newTransport() *transport.Transport {
	return transport.New(
		transport.WithTimeout(cfg.Endpoint.Timeout),
		transport.WithHeaders(cfg.Endpoint.Headers),
		transport.WithLogger(logger),
	)
}

func openArchive() (*store.Archive, error) {
	s, err := storage.NewBadgerStorage(cfg.Archive.Path, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive at %s: %w", cfg.Archive.Path, err)
	}
	return store.NewArchive(s, encoding.NewRecordEncoder(), encoding.NewRecordDecoder()), nil
}

// parseHeaders splits "Name: value" pairs
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want \"Name: value\"", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
