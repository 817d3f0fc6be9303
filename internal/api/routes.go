package api

import (
	"net/http"

	"github.com/minsuklee/fundscope/internal/config"
	"github.com/minsuklee/fundscope/pkg/openapi"
	"github.com/minsuklee/fundscope/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	routes.Register(
		mux,
		domain.Projects.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)

	specBytes, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
