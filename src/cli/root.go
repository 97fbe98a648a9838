// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/zxiu-bonofa/MemorizingTrustManager/src/config"
	"github.com/zxiu-bonofa/MemorizingTrustManager/src/logger"
	"github.com/zxiu-bonofa/MemorizingTrustManager/src/mtm"
	"github.com/zxiu-bonofa/MemorizingTrustManager/src/truststore"
)

var (
	configFile     string
	storePath      string
	timeoutSeconds int
	clientCertFile string
	clientKeyFile  string
)

// OperationPerformed reports whether a dial was attempted, for final status
// output by the caller.
var OperationPerformed bool

// Execute runs the root command. The context cancels an in-flight dial and
// any pending trust prompt; cancellation during a prompt aborts the
// connection with the original validation failure.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	rootCmd := &cobra.Command{
		Use:           "memorizing-tls-dial HOST:PORT",
		Short:         "Dial a TLS endpoint, memorizing operator trust decisions",
		Long: `memorizing-tls-dial opens a TLS connection through a memorizing trust
manager: certificate chains are checked against the local trust store first,
then against the system roots, and on double failure you are asked whether to
trust the chain. Answering "always" persists the decision for future runs.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDial(cmd.Context(), cmd, args[0], log)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file (.yaml, .yml, .json)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "trust store location (default: platform config dir)")
	rootCmd.Flags().IntVarP(&timeoutSeconds, "timeout", "t", 0, "dial timeout in seconds, including prompt time (0 disables)")
	rootCmd.Flags().StringVar(&clientCertFile, "client-cert", "", "client certificate for mutual TLS")
	rootCmd.Flags().StringVar(&clientKeyFile, "client-key", "", "client key for mutual TLS")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memorized certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd)
		},
	}
	rootCmd.AddCommand(listCmd)

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves the effective configuration from defaults, config
// file, MTM_* environment variables, and flags (highest precedence).
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader, err := config.NewLoaderWithFlags(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return loader.Get()
}

// withDialTimeout bounds the connection attempt. The deadline covers the
// whole handshake including any pending trust prompt, so answering slower
// than the timeout fails the connection even though an "always" decision is
// still memorized. A timeout of zero or less means no deadline.
func withDialTimeout(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

// runDial opens a TLS connection through the memorizing trust manager and
// reports the negotiated session.
func runDial(ctx context.Context, cmd *cobra.Command, target string, log logger.Logger) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := truststore.Open(truststore.NewFileBackend(cfg.Store.Path))
	if err != nil {
		return fmt.Errorf("opening trust store: %w", err)
	}

	manager, err := mtm.New(mtm.Options{
		Store:   store,
		Surface: NewTerminalSurface(),
		Logger:  log,
	})
	if err != nil {
		return err
	}

	tlsConfig := manager.TLSConfig(ctx)
	if clientCertFile != "" {
		cert, err := tls.LoadX509KeyPair(clientCertFile, clientKeyFile)
		if err != nil {
			return fmt.Errorf("loading client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	dialCtx, cancel := withDialTimeout(ctx, cfg.Dial.Timeout)
	defer cancel()

	OperationPerformed = true

	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(dialCtx, "tcp", target)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", target, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	fmt.Printf("connected to %s\n", target)
	fmt.Printf("  protocol: %s\n", tls.VersionName(state.Version))
	fmt.Printf("  cipher suite: %s\n", tls.CipherSuiteName(state.CipherSuite))
	for i, cert := range state.PeerCertificates {
		fmt.Printf("  chain[%d]: %s (issued by %s)\n", i, cert.Subject, cert.Issuer)
	}
	fmt.Printf("trust store: %d memorized certificate(s) at %s\n", store.Len(), cfg.Store.Path)

	return nil
}

// runList renders the memorized trust store as a table.
func runList(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := truststore.Open(truststore.NewFileBackend(cfg.Store.Path))
	if err != nil {
		return fmt.Errorf("opening trust store: %w", err)
	}

	certs := store.Certificates()
	if len(certs) == 0 {
		fmt.Printf("trust store at %s is empty\n", cfg.Store.Path)
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"#", "Subject", "Issuer", "Expires", "SHA-256 Fingerprint"})

	var rows [][]string
	for i, cert := range certs {
		sum := sha256.Sum256(cert.Raw)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			cert.Subject.String(),
			cert.Issuer.String(),
			cert.NotAfter.Format("2006-01-02"),
			fmt.Sprintf("%x", sum[:8]),
		})
	}

	table.Bulk(rows)
	table.Render()
	return nil
}
