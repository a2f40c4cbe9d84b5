package eventctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eventgate/internal/auth"
	"eventgate/internal/config"
	"eventgate/internal/registry"
	"eventgate/pkg/resource"
	"eventgate/pkg/types"
)

// Config holds the persistent flag values.
type Config struct {
	Server  string
	Token   string
	LogLvl  string
	Compact bool
	Timeout time.Duration
}

// DefaultConfig reads EVENTCTL_* env defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:  envStr("EVENTCTL_SERVER", "http://localhost:8080"),
		Token:   envStr("EVENTCTL_TOKEN", ""),
		LogLvl:  envStr("EVENTCTL_LOG_LEVEL", "warn"),
		Compact: envBool("EVENTCTL_COMPACT", false),
		Timeout: 15 * time.Second,
	}
}

// buildRootCmdWith constructs the command tree. Results are printed to out
// as JSON.
func buildRootCmdWith(cfg *Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "eventctl",
		Short:         "Operate an eventgated notification dispatch gate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.Server, "server", cfg.Server, "eventgated base URL (defaults EVENTCTL_SERVER)")
	root.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token for POST /events (defaults EVENTCTL_TOKEN)")
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults EVENTCTL_LOG_LEVEL or warn)")
	root.PersistentFlags().BoolVar(&cfg.Compact, "compact", cfg.Compact, "Print compact JSON (defaults EVENTCTL_COMPACT)")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		SetLogLevel(cfg.LogLvl)
	}

	client := func() *Client {
		c := NewClient(cfg.Server, cfg.Token)
		c.HTTP.Timeout = cfg.Timeout
		log.Debug().Str("server", c.BaseURL).Bool("token", c.Token != "").Msg("client ready")
		return c
	}
	emit := func(v any) error { return writeJSON(out, v, cfg.Compact) }

	root.AddCommand(
		publishCmd(client, emit),
		&cobra.Command{
			Use:     "types",
			Short:   "List registered event types",
			Example: "  eventctl types",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ets, err := client().EventTypes(cmd.Context())
				if err != nil {
					return err
				}
				return emit(types.EventTypesResponse{EventTypes: ets})
			},
		},
		dispatchesCmd(client, emit),
		&cobra.Command{
			Use:   "status",
			Short: "Show daemon status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := client().Status(cmd.Context())
				if err != nil {
					return err
				}
				return emit(st)
			},
		},
		tokenCmd(out),
		checkConfigCmd(emit),
	)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(out, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(out) }})
	root.AddCommand(completionCmd)

	return root
}

func publishCmd(client func() *Client, emit func(any) error) *cobra.Command {
	var (
		file          string
		eventClass    string
		kind          string
		resourceType  string
		resourceID    string
		unpublished   bool
		followers     []string
		affectedUsers []string
		extra         []string
		force         bool
	)
	cmd := &cobra.Command{
		Use:   "publish <event-name>",
		Short: "Publish an event to the gate",
		Example: "  eventctl publish decidim.events.proposals.proposal_accepted --class Decidim::Proposals::AcceptedProposalEvent --type proposal --id 42 --followers 1,2\n" +
			"  eventctl publish --file event.json",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req types.PublishRequest
			if file != "" {
				r, err := readPublishFile(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req = r
			} else {
				r := &resource.Resource{Kind: resource.Kind(kind), Type: resourceType, ID: resourceID}
				if unpublished {
					r.Publication = resource.Unpublished()
				}
				x, err := parseExtra(extra)
				if err != nil {
					return err
				}
				req.Data = types.EventData{
					Resource:      r,
					EventClass:    eventClass,
					Followers:     followers,
					AffectedUsers: affectedUsers,
					Extra:         x,
					ForceSend:     force,
				}
			}
			if len(args) == 1 {
				req.Event = args[0]
			}
			if strings.TrimSpace(req.Event) == "" {
				return fmt.Errorf("event name is required")
			}
			resp, err := client().Publish(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(resp)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "Read the full publish request JSON from a file (- for stdin)")
	f.StringVar(&eventClass, "class", "", "Event class identifier")
	f.StringVar(&kind, "kind", "", "Resource kind: resource|component|participatory_space")
	f.StringVar(&resourceType, "type", "", "Resource type")
	f.StringVar(&resourceID, "id", "", "Resource id")
	f.BoolVar(&unpublished, "unpublished", false, "Mark the resource as publicable but unpublished")
	f.StringSliceVar(&followers, "followers", nil, "Follower ids")
	f.StringSliceVar(&affectedUsers, "affected-users", nil, "Affected user ids")
	f.StringArrayVar(&extra, "extra", nil, "Extra key=value pairs (repeatable)")
	f.BoolVar(&force, "force", false, "Bypass the publication check (force_send)")
	return cmd
}

func dispatchesCmd(client func() *Client, emit func(any) error) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "dispatches",
		Short: "List recent gate decisions from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := client().Dispatches(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return emit(types.DispatchesResponse{Dispatches: recs})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of records (server default 50, max 500)")
	return cmd
}

func tokenCmd(out io.Writer) *cobra.Command {
	var (
		secret  string
		subject string
		scope   string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Mint a bearer token for POST /events",
		Example: "  EVENTGATE_JWT_SECRET=... eventctl token --subject ci --ttl 24h",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = envStr(config.EnvPrefix+"JWT_SECRET", "")
			}
			tok, err := auth.Sign(secret, subject, scope, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, tok)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (defaults EVENTGATE_JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "eventctl", "Token subject")
	cmd.Flags().StringVar(&scope, "scope", auth.ScopePublish, "Space-separated scopes")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime (0 for no expiry)")
	return cmd
}

// checkConfigReport is printed by check-config.
type checkConfigReport struct {
	Config     config.Config `json:"config"`
	EventTypes int           `json:"event_types"`
}

func checkConfigCmd(emit func(any) error) *cobra.Command {
	var path, eventTypes string
	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate a daemon config file and its event type descriptors offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if path != "" {
				c, err := config.Load(path)
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				cfg = c
			}
			if eventTypes != "" {
				cfg.EventTypesPath = eventTypes
			}
			cfg = cfg.WithDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}
			reg, err := registry.Load(cfg.EventTypesPath)
			if err != nil {
				return err
			}
			// never echo the signing secret
			if cfg.JWTSecret != "" {
				cfg.JWTSecret = "<redacted>"
			}
			return emit(checkConfigReport{Config: cfg, EventTypes: reg.Len()})
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "Config file (.yaml/.yml/.json/.toml)")
	cmd.Flags().StringVar(&eventTypes, "event-types", "", "Event type descriptor file or directory (overrides config)")
	return cmd
}

func readPublishFile(path string, stdin io.Reader) (types.PublishRequest, error) {
	var req types.PublishRequest
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

func parseExtra(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("extra %q: want key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

func writeJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// runContext is the base context for commands.
func runContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}
