package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	host    string
	port    int
	token   string
	timeout time.Duration
	wait    time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "healthcheck",
	Short:         "Health check for the FMP MCP server",
	Long:          `Checks that the server reports healthy with the FMP API key configured and that the MCP endpoint responds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHealthCheck,
}

func init() {
	rootCmd.Flags().StringVar(&host, "host", "localhost", "Server host")
	rootCmd.Flags().IntVar(&port, "port", 8080, "Server port")
	rootCmd.Flags().StringVar(&token, "token", os.Getenv("HEALTHCHECK_TOKEN"), "Bearer token for the MCP endpoint when auth is enabled (env HEALTHCHECK_TOKEN)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for each request")
	rootCmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying until the server is healthy or this much time has passed")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func runHealthCheck(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := "http://" + net.JoinHostPort(host, strconv.Itoa(port))
	logger.Info("Checking FMP MCP server health", zap.String("url", baseURL))

	checker := NewChecker(baseURL, token, &http.Client{Timeout: timeout}, logger)
	if err := checker.Wait(cmd.Context(), wait); err != nil {
		logger.Error("One or more checks failed. Server may not be functioning correctly.", zap.Error(err))
		return err
	}

	logger.Info("All checks passed. Server is healthy.")
	return nil
}
