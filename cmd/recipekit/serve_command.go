package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/recipekit/internal/catalog"
	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动只读的菜谱记录查询 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, logger, err := ctx.load(config.CLIArgs{Listen: listen})
			if err != nil {
				return err
			}
			idx, err := catalog.Load(eff.Catalog, logger)
			if err != nil {
				return fail(1, err)
			}

			srv := &http.Server{
				Addr:              eff.Listen,
				Handler:           server.New(idx, server.Options{PagesDir: eff.PagesDir, Table: eff.Table}, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP 服务已启动", "listen", eff.Listen, "recipes", idx.Len())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fail(1, err)
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fail(1, err)
			}
			logger.Info("HTTP 服务已停止")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "监听地址（默认 127.0.0.1:5000）")
	return cmd
}
