package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"site_cms/generator"
	"site_cms/post"
	"site_cms/server"
	"site_cms/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the admin API and the public blog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := store.Open(appConfig.Database.Driver, appConfig.Database.DSN, logger)
		if err != nil {
			return err
		}
		posts := store.NewPostStore(db)
		if appConfig.AuthorID != "" {
			if err := posts.SaveProfile(ctx, appConfig.AuthorID, appConfig.AuthorName); err != nil {
				return err
			}
		}
		svc, err := post.NewService(posts, store.NewProfileIdentity(db, appConfig.AuthorID), logger)
		if err != nil {
			return err
		}

		var agent *generator.Agent
		if llm, err := generator.NewLLMFromConfig(&appConfig.LLM); err != nil {
			logger.WithError(err).Warn("drafting disabled")
		} else if agent, err = generator.NewAgent(llm, logger); err != nil {
			return err
		}

		srv, err := server.New(svc, agent, logger, server.Options{SanitizeHTML: appConfig.SanitizeHTML})
		if err != nil {
			return err
		}

		listen := appConfig.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		httpSrv := &http.Server{
			Addr:              listen,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", listen).Info("starting web server")
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server_addr)")
	rootCmd.AddCommand(serveCmd)
}
