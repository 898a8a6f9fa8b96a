package main

import (
	"net/http"

	"github.com/spf13/cobra"

	mcpserver "github.com/botverse-dev/botverse/internal/mcp"
)

var mcpHTTPAddr string

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Expose bots to MCP clients",
	Long: `Runs an MCP server with ask_bot, search_chunks and list_bots tools.

By default the server speaks stdio, for local MCP clients. With --http it
serves Streamable HTTP on the given address instead, with the MCP endpoint
at /mcp.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		server := mcpserver.NewServer(&mcpserver.Config{
			Answer:   a.answer,
			Provider: a.provider,
			Vectors:  a.vectors,
			DB:       a.db,
		})

		if mcpHTTPAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

			a.logger.Info("starting mcp http server", "addr", mcpHTTPAddr)
			httpServer := &http.Server{Addr: mcpHTTPAddr, Handler: mux}
			go func() {
				<-ctx.Done()
				httpServer.Close()
			}()
			return httpServer.ListenAndServe()
		}

		a.logger.Info("starting mcp server on stdio")
		return server.Run(ctx)
	},
}

func init() {
	serveMCPCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve MCP over HTTP on this address instead of stdio")

	rootCmd.AddCommand(serveMCPCmd)
}
