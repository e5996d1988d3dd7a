package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/httpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the question answering API over HTTP.

Endpoints:
  GET  /                  liveness message
  GET  /health            checks the vector store is reachable
  POST /chat              {"query": "...", "max_context_docs": 5}
  GET  /stats             vector collection statistics
  GET  /datasets/summary  indicators, years and surveys loaded

Allowed CORS origins, the /chat rate limit and the request timeout come from
the [server] section of the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd.Context(), levelAnswers)
	if err != nil {
		return err
	}

	settings := a.settings.Server
	if servePort != 0 {
		settings.Port = servePort
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Chat:    a.chat,
		Index:   a.index,
		Dataset: a.dataset,
	}, settings)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", settings.Port)
	cmd.Printf("API listening on http://localhost%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
