package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	hsjwt "github.com/bionicotaku/lingo-utils-hsjwt"
)

const usage = `usage: hsjwt <command> [flags]

commands:
  issue   sign a claim set and print the token
  verify  verify a token and print its claims
  serve   run an HTTP server issuing and checking tokens
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "issue":
		err = runIssue(args[1:], stdout, stderr)
	case "verify":
		err = runVerify(args[1:], stdout, stderr)
	case "serve":
		err = runServe(args[1:], stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	fmt.Fprintln(stderr, formatError(err))
	return 1
}

// configFlags are the flags shared by every command.
type configFlags struct {
	envFile string
	alg     string
	secret  string
	ttl     string
}

func (c *configFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.envFile, "env", defaultEnvPath(), "Path to .env file (env HSJWT_ENV_FILE)")
	fs.StringVar(&c.alg, "alg", "", "Signing algorithm override (env JWT_ALG)")
	fs.StringVar(&c.secret, "secret", "", "Signing secret override (env JWT_SECRET)")
	fs.StringVar(&c.ttl, "ttl", "", "Token lifetime in seconds override (env JWT_TTL)")
}

func (c *configFlags) load() (hsjwt.Config, error) {
	cfg, err := hsjwt.LoadConfig(c.envFile)
	if err != nil {
		return hsjwt.Config{}, err
	}
	overrides := map[string]string{}
	if c.alg != "" {
		overrides[hsjwt.KeyAlg] = c.alg
	}
	if c.secret != "" {
		overrides[hsjwt.KeySecret] = c.secret
	}
	if c.ttl != "" {
		overrides[hsjwt.KeyTTL] = c.ttl
	}
	return cfg.Overlay(overrides), nil
}

func defaultEnvPath() string {
	if path := os.Getenv("HSJWT_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

// claimFlags collects repeated -claim key=value flags in order.
type claimFlags []string

func (c *claimFlags) String() string {
	return strings.Join(*c, ",")
}

func (c *claimFlags) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("claim %q must be key=value", value)
	}
	*c = append(*c, value)
	return nil
}

func runIssue(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cf         configFlags
		claimPairs claimFlags
	)
	cf.register(fs)
	claimsJSON := fs.String("claims-json", "", "Claims as a JSON object")
	fs.Var(&claimPairs, "claim", "Claim as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	claims, err := collectClaims(*claimsJSON, claimPairs)
	if err != nil {
		return err
	}
	token, err := hsjwt.NewBuilder(cfg).Build(claims)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func collectClaims(rawJSON string, pairs []string) (*hsjwt.Claims, error) {
	claims := hsjwt.NewClaims()
	if strings.TrimSpace(rawJSON) != "" {
		if err := claims.UnmarshalJSON([]byte(rawJSON)); err != nil {
			return nil, fmt.Errorf("parse -claims-json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		claims.Set(strings.TrimSpace(key), value)
	}
	return claims, nil
}

func runVerify(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf configFlags
	cf.register(fs)
	token := fs.String("token", os.Getenv("HSJWT_TOKEN"), "Token to verify (env HSJWT_TOKEN)")
	header := fs.String("header", "", `Full authorization header value, e.g. "Bearer <token>"`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	authorization := *header
	if authorization == "" && *token != "" {
		authorization = "Bearer " + *token
	}
	claims, err := hsjwt.NewVerifier(cfg).Verify(authorization)
	if err != nil {
		return err
	}
	return printClaims(stdout, claims)
}

func printClaims(w io.Writer, claims *hsjwt.Claims) error {
	fmt.Fprintln(w, "== Token Verified ==")
	if exp, ok := claims.ExpiresAt(); ok {
		fmt.Fprintf(w, "expires_at   : %s\n", time.Unix(exp, 0).UTC().Format(time.RFC3339))
	}
	out, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "claims       : %s\n", out)
	return nil
}

func formatError(err error) string {
	if code := hsjwt.CodeOf(err); code != "" {
		return fmt.Sprintf("%s: %s", code, err)
	}
	return err.Error()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
