package api

import (
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

const OpenAPIPath = "/api/v1/openapi.json"

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("validators").
			To(handler.ListValidators).
			Doc("List configured validators").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validate"}).
			Writes(ValidatorsResponse{}).
			Returns(200, "OK", ValidatorsResponse{}))

	ws.
		Route(ws.POST("/validate").
			To(handler.Validate).
			Doc("Run validators over a text").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validate"}).
			Reads(models.ValidationRequest{}).
			Writes(models.GuardResult{}).
			Returns(200, "OK", models.GuardResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Validator Not Found", middleware.ErrorResponse{}).
			Returns(422, "Rejected By Exception Policy", models.GuardResult{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/validate/{validator_name}").
			To(handler.ValidateSingle).
			Doc("Run a single validator").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validate"}).
			Param(ws.PathParameter("validator_name", "Validator name (toxic-words, toxic-language, detect-pii, detect-jailbreak, detect-sensitive-topic)").DataType("string")).
			Reads(models.ValidationRequest{}).
			Writes(models.GuardResult{}).
			Returns(200, "OK", models.GuardResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Validator Not Found", middleware.ErrorResponse{}).
			Returns(422, "Rejected By Exception Policy", models.GuardResult{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("audit").
			To(handler.Audit).
			Doc("Recent guard results").
			Metadata(restfulspec.KeyOpenAPITags, []string{"audit"}).
			Param(ws.QueryParameter("limit", "Maximum number of results (default: 50)").DataType("integer").Required(false)).
			Writes(AuditResponse{}).
			Returns(200, "OK", AuditResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the OpenAPI document of every web service added so far.
func RegisterOpenAPI(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       OpenAPIPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(config))
}

// RegisterMetrics exposes a Prometheus handler at /metrics.
func RegisterMetrics(container *restful.Container, handler http.Handler) {
	container.Handle("/metrics", handler)
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Guard Agent API",
			Description: "Content validators for LLM inputs and outputs",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "validate", Description: "Validation operations"}},
		{TagProps: spec.TagProps{Name: "audit", Description: "Recorded guard results"}},
	}
}
