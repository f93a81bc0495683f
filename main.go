package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattLLVW/gifgrid/giphy"
	"github.com/mattLLVW/gifgrid/models"
	"github.com/mattLLVW/gifgrid/server"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "gifgrid",
		Short:        "Search gifs on giphy",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "config file")
	root.AddCommand(serveCmd(&envFile), searchCmd(&envFile))
	return root
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the gif grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logWriter, closeLog, err := setupLogging(c, os.Stdout)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpClient := &http.Client{Timeout: c.HttpTimeout}
			opts := []server.Option{
				server.WithDoer(httpClient),
				server.WithRateLimit(c.RateLimit, c.RateBurst),
				server.WithDownloadHosts(c.DownloadHosts...),
				server.WithLogWriter(logWriter),
			}

			if c.DbEnabled {
				store, err := models.OpenFrameStore(ctx, models.DataSourceName(c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName))
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, server.WithFrameCache(store))
			}

			srv := server.New(newClient(c, httpClient), opts...)

			addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
			slog.Info("starting server", slog.String("addr", addr))
			if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.WithStack(err)
			}
			slog.Info("server stopped")
			return nil
		},
	}
}

func searchCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>...",
		Short: "Search gifs and print them as json",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			c.LogFile = ""
			if _, _, err := setupLogging(c, cmd.ErrOrStderr()); err != nil {
				return err
			}

			term := strings.TrimSpace(strings.Join(args, " "))
			if len([]rune(term)) < 2 {
				return errors.New("search term must be at least 2 characters")
			}

			gifs, err := newClient(c, &http.Client{Timeout: c.HttpTimeout}).Search(cmd.Context(), term)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(gifs)
		},
	}
}

func newClient(c config, doer models.Doer) *giphy.Client {
	return giphy.NewClient(c.ApiKey,
		giphy.WithEndpoint(c.Endpoint),
		giphy.WithLimit(c.Limit),
		giphy.WithDoer(doer),
	)
}

// setupLogging sends logs to out and, when a log file is configured, to
// that file as well. The returned writer is shared with the access log.
func setupLogging(c config, out io.Writer) (io.Writer, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}

	w := out
	closeLog := func() {}
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open log file: %w", err)
		}
		w = io.MultiWriter(out, f)
		closeLog = func() { f.Close() }
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return w, closeLog, nil
}
