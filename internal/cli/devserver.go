// devserver.go implements "lifesim devserver", a local in-memory backend.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/devserver"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run an in-memory simulation backend for local play",
	Long: `Serve the backend API from memory with canned narrative. Point the
client at it with --server http://localhost:8080 or LIFESIM_SERVER.
Nothing is persisted; state is lost when the server stops.`,
	Args: cobra.NoArgs,
	RunE: runDevserver,
}

var addrFlag string

func init() {
	devserverCmd.Flags().StringVar(&addrFlag, "addr", ":8080", "Listen address")
}

func runDevserver(cmd *cobra.Command, _ []string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	srv := &http.Server{
		Addr:              addrFlag,
		Handler:           devserver.New(logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addrFlag).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
