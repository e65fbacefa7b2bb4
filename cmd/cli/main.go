// Command caseledger is a CLI client for the case ledger gRPC API.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	grpcserver "github.com/nagarrakshak/caseledger/internal/server/grpc"
)

// ---- token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "caseledger")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "caseledger")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", errors.New("no saved token (run: caseledger login)")
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// tokenExpiry reads exp without verifying the signature; the server verifies.
func tokenExpiry(tok string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// options are the persistent flags shared by every command.
type options struct {
	addr      string
	caPath    string
	insecure  bool
	plaintext bool
	token     string
	jsonOut   bool
	timeout   time.Duration

	out    io.Writer
	dialer func(context.Context, string) (net.Conn, error)
}

func (o *options) bearer() (string, error) {
	if o.token != "" {
		return o.token, nil
	}
	return loadToken()
}

func (o *options) client() (*grpc.ClientConn, grpcserver.CaseLedgerClient, error) {
	tok, err := o.bearer()
	if err != nil {
		return nil, nil, err
	}
	var opts []grpc.DialOption
	if o.plaintext {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		creds, err := loadTLS(o.caPath, o.insecure)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}
	opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: tok, secure: !o.plaintext}))
	target := o.addr
	if o.dialer != nil {
		opts = append(opts, grpc.WithContextDialer(o.dialer))
		target = "passthrough:///" + o.addr
	}
	cc, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cc, grpcserver.NewCaseLedgerClient(cc), nil
}

// call dials, runs fn under the command timeout and closes the connection.
func (o *options) call(cmd *cobra.Command, fn func(ctx context.Context, c grpcserver.CaseLedgerClient) error) error {
	cc, c, err := o.client()
	if err != nil {
		return err
	}
	defer cc.Close()
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()
	return fn(ctx, c)
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func (o *options) printJSON(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func describe(err error) string {
	if s, ok := status.FromError(err); ok {
		return fmt.Sprintf("rpc error: code=%s msg=%s", s.Code(), s.Message())
	}
	return err.Error()
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "caseledger",
		Short: "Case ledger client",
		Long: `caseledger talks to the case ledger gRPC API.

Obtain a bearer token from the identity provider and store it with
"caseledger login --token <jwt>" before running other commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.addr, "addr", "localhost:8081", "server addr")
	pf.StringVar(&o.caPath, "cacert", "", "CA cert (PEM)")
	pf.BoolVar(&o.insecure, "insecure", false, "skip cert verify (dev)")
	pf.BoolVar(&o.plaintext, "plaintext", false, "connect without TLS")
	pf.StringVar(&o.token, "token", os.Getenv("NR_TOKEN"), "bearer token (defaults to the saved token)")
	pf.BoolVar(&o.jsonOut, "json", false, "output in JSON format")
	pf.DurationVar(&o.timeout, "timeout", 30*time.Second, "per-command timeout")

	root.AddCommand(
		newVersionCmd(o),
		newLoginCmd(o),
		newLogoutCmd(o),
		newCasesCmd(o),
		newOfficersCmd(o),
		newStatsCmd(o),
	)
	return root
}

func newVersionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(o.out, "caseledger %s (%s)\n", version, buildDate)
		},
	}
}

func newLoginCmd(o *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token for later commands",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			tok := o.token
			if file != "" {
				b, err := readAll(file)
				if err != nil {
					return err
				}
				tok = strings.TrimSpace(string(b))
			}
			if tok == "" {
				return errors.New("login needs --token or --token-file")
			}
			exp, err := tokenExpiry(tok)
			if err != nil {
				return err
			}
			if time.Now().After(exp) {
				return errors.New("token already expired")
			}
			if err := saveToken(tok, exp); err != nil {
				return err
			}
			fmt.Fprintf(o.out, "ok (expires %s)\n", exp.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "token-file", "", "read the token from a file (- for stdin)")
	return cmd
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := os.Remove(tokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			fmt.Fprintln(o.out, "ok")
			return nil
		},
	}
}

// main runs the root command and reports RPC failures with their status code.
func main() {
	o := &options{out: os.Stdout}
	if err := newRootCmd(o).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}
