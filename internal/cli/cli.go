// Package cli implements the sharepass command line.
package cli

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vaultpass/sharepass-go/internal/client"
	"github.com/vaultpass/sharepass-go/internal/config"
	"github.com/vaultpass/sharepass-go/internal/crypto"
	"github.com/vaultpass/sharepass-go/internal/logging"
	"github.com/vaultpass/sharepass-go/internal/model"
	"github.com/vaultpass/sharepass-go/internal/server"
	"github.com/vaultpass/sharepass-go/internal/service"
)

type rootOptions struct {
	apiBase    string
	publicBase string
	logLevel   string
}

// NewRootCmd builds the sharepass command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sharepass",
		Short: "Generate passwords and share them through self-destructing links",
		Long: `sharepass generates random passwords and shares secrets through
links that expire after a time or a number of views.

Example:
  sharepass generate --length 20 --symbols=false
  sharepass create --expires 30 --unit minutes --views 2
  sharepass reveal https://share.example.com/visualizar/abc123
  sharepass serve`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			config.LoadDotEnv()
			logging.Setup(cmd.ErrOrStderr(), opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.apiBase, "api", "", "secret API base URL (default $API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.publicBase, "public-url", "", "base URL of share links (default $PUBLIC_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newGenerateCmd(),
		newCreateCmd(opts),
		newRevealCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

func (o *rootOptions) resolveAPIBase() (string, error) {
	base := o.apiBase
	if base == "" {
		base = os.Getenv("API_BASE_URL")
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", config.ErrMissingAPIBase
	}
	return base, nil
}

// resolvePublicBase returns the share-link base, or "" when none is configured.
func (o *rootOptions) resolvePublicBase() string {
	base := o.publicBase
	if base == "" {
		base = os.Getenv("PUBLIC_BASE_URL")
	}
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

func (o *rootOptions) secretService() (*service.SecretService, error) {
	apiBase, err := o.resolveAPIBase()
	if err != nil {
		return nil, err
	}
	api, err := client.New(apiBase)
	if err != nil {
		return nil, err
	}
	return service.NewSecretService(api, o.resolvePublicBase()), nil
}

type generateOptions struct {
	length  int
	letters bool
	digits  bool
	symbols bool
	uniform bool
	count   int
	seed    string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print random passwords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.length, "length", "l", service.DefaultLength, "password length")
	f.BoolVar(&opts.letters, "letters", true, "include letters")
	f.BoolVar(&opts.digits, "digits", true, "include digits")
	f.BoolVar(&opts.symbols, "symbols", true, "include symbols")
	f.BoolVar(&opts.uniform, "uniform", false, "draw every character from the whole alphabet without guaranteeing each category")
	f.IntVarP(&opts.count, "count", "n", 1, "number of passwords")
	f.StringVar(&opts.seed, "seed", "", "hex-encoded 32-byte seed for reproducible output (not for real passwords)")
	return cmd
}

func runGenerate(out io.Writer, opts *generateOptions) error {
	policy := crypto.Policy{
		UseLetters: opts.letters,
		UseDigits:  opts.digits,
		UseSymbols: opts.symbols,
		Length:     opts.length,
	}
	if opts.uniform {
		policy.Strategy = crypto.StrategyUniform
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	if opts.count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", opts.count)
	}

	gen := crypto.NewGenerator(nil)
	if opts.seed != "" {
		seed, err := hex.DecodeString(opts.seed)
		if err != nil {
			return fmt.Errorf("decoding seed: %w", err)
		}
		src, err := crypto.NewSeededSource(seed)
		if err != nil {
			return err
		}
		gen = crypto.NewGenerator(src)
	}

	for i := 0; i < opts.count; i++ {
		password, err := gen.Generate(policy)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, password)
	}
	return nil
}

type createOptions struct {
	password string
	stdin    bool
	length   int
	letters  bool
	digits   bool
	symbols  bool
	expires  int
	unit     string
	views    int
}

func newCreateCmd(root *rootOptions) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Store a secret and print its share link",
		Long: `Store a secret and print its share link.

Without --password or --stdin the API generates the secret from the
length and category flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := root.secretService()
			if err != nil {
				return err
			}
			form, err := opts.form(cmd)
			if err != nil {
				return err
			}
			created, err := svc.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			if root.resolvePublicBase() == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no --public-url or PUBLIC_BASE_URL set, printing the bare token")
				fmt.Fprintln(cmd.OutOrStdout(), created.PwdID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.URL)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.password, "password", "p", "", "secret to share")
	f.BoolVar(&opts.stdin, "stdin", false, "read the secret from standard input")
	f.IntVarP(&opts.length, "length", "l", service.DefaultLength, "length of a generated secret")
	f.BoolVar(&opts.letters, "letters", true, "include letters in a generated secret")
	f.BoolVar(&opts.digits, "digits", true, "include digits in a generated secret")
	f.BoolVar(&opts.symbols, "symbols", true, "include symbols in a generated secret")
	f.IntVarP(&opts.expires, "expires", "e", service.DefaultExpires, "expiration value")
	f.StringVarP(&opts.unit, "unit", "u", "minutes", "expiration unit: seconds, minutes or days")
	f.IntVar(&opts.views, "views", service.DefaultViewLimit, "number of views before the link stops working")
	cmd.MarkFlagsMutuallyExclusive("password", "stdin")
	return cmd
}

func (o *createOptions) form(cmd *cobra.Command) (model.CreateSecretForm, error) {
	password := o.password
	if o.stdin {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return model.CreateSecretForm{}, fmt.Errorf("reading secret: %w", err)
		}
		password = strings.TrimRight(string(b), "\r\n")
		if strings.TrimSpace(password) == "" {
			return model.CreateSecretForm{}, errors.New("no secret on standard input")
		}
	}

	if o.expires < service.MinExpires {
		return model.CreateSecretForm{}, service.ErrExpirationTooShort
	}
	if o.views < service.MinViewLimit {
		return model.CreateSecretForm{}, service.ErrViewLimitTooLow
	}

	return model.CreateSecretForm{
		Password:     password,
		UseLetters:   &o.letters,
		UseDigits:    &o.digits,
		UseSymbols:   &o.symbols,
		Length:       json.Number(strconv.Itoa(o.length)),
		ExpiresValue: &o.expires,
		ExpiresUnit:  o.unit,
		ViewLimit:    &o.views,
	}, nil
}

func newRevealCmd(root *rootOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "reveal <token-or-link>",
		Short: "Reveal a shared secret, consuming one view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.secretService()
			if err != nil {
				return err
			}
			secret, err := svc.Reveal(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, secret.Secret)
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "views remaining: %d\nexpires in: %s\n", secret.ViewsRemaining, secret.Remaining)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the secret")
	return cmd
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web front",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.serveConfig(port)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT, then 8080)")
	return cmd
}

// serveConfig loads the web front configuration and applies the command-line
// overrides. The default share-link base follows an overridden port.
func (o *rootOptions) serveConfig(port string) (config.Config, error) {
	cfg, err := config.Load()
	if o.apiBase != "" {
		cfg.APIBaseURL = strings.TrimRight(o.apiBase, "/")
		if errors.Is(err, config.ErrMissingAPIBase) {
			err = nil
		}
	}
	if err != nil {
		return config.Config{}, err
	}

	if port != "" {
		cfg.Port = port
		if os.Getenv("PUBLIC_BASE_URL") == "" {
			cfg.PublicBaseURL = config.DefaultPublicBaseURL(port)
		}
	}
	if o.publicBase != "" {
		cfg.PublicBaseURL = strings.TrimRight(o.publicBase, "/")
	}
	return cfg, nil
}
