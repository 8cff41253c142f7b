package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func HandleError(resp *restful.Response, err error, status int) {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
	}
	if writeErr := resp.WriteHeaderAndEntity(status, ErrorResponse{Code: status, Message: message}); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// Logger logs one line per request.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")
}

// RecoverPanic turns a handler panic into a 500.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("path", req.Request.URL.Path).
				Str("stack", string(debug.Stack())).
				Msgf("Recovered from panic: %v", r)
			HandleError(resp, fmt.Errorf("internal server error"), http.StatusInternalServerError)
		}
	}()
	chain.ProcessFilter(req, resp)
}
