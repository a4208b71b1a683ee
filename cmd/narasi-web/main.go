// Command narasi-web serves the YPBB narrative assistant: a local web server
// that turns form input or uploaded documents into ready-to-publish
// narrative variants via Gemini, with chat-style iterative revision.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"narasi-web/internal/auth"
	"narasi-web/internal/chat"
	"narasi-web/internal/logging"
	"narasi-web/internal/server"
	"narasi-web/internal/session"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	portFlag  int
	modelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "narasi-web",
	Short: "Web UI for YPBB narrative generation",
	Long: `Narasi Web starts a local web server that generates volunteer-group
narratives with Gemini. Pick a narrative goal, fill in the form or upload a
document, and refine the result through a chat-style revision flow.

Examples:
  narasi-web
  narasi-web --port 9090
  narasi-web --model gemini-2.5-pro`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", chat.DefaultModelName, "Gemini model to use")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	start := time.Now()
	logging.Init()
	auth.LoadEnv()

	if modelFlag != chat.DefaultModelName {
		os.Setenv("GEMINI_MODEL", modelFlag)
	}

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get API key")
	}

	ctx := context.Background()
	client, err := chat.NewClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	if err := client.ValidateKey(ctx); err != nil {
		log.Fatal().Err(err).Msg("Invalid API key")
	}
	log.Info().Str("model", client.Model()).Msg("API key validated")

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", portFlag),
		Handler:      server.New(session.NewStore(client)).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	logging.NewStartupLogger("narasi-web").
		Config("model", client.Model()).
		Config("port", fmt.Sprintf("%d", portFlag)).
		Config("logLevel", logging.EnvOrDefault("NARASI_LOG_LEVEL", "info")).
		InitDuration(time.Since(start)).
		Log()
	fmt.Printf("\n  Asisten Narasi YPBB: http://localhost:%d\n\n", portFlag)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
