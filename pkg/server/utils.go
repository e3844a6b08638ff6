package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/server/results"
	"github.com/aleksaelezovic/grom/pkg/store"
)

// Response formats
const (
	FormatJSON     = "json"
	FormatNTriples = "nt"
	FormatCSV      = "csv"
	FormatTSV      = "tsv"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.logger.Warn("request failed", "status", statusCode, "error", message)

	data, err := results.MarshalJSON(errorBody{Error: errorDetail{Code: statusCode, Message: message}})
	if err != nil {
		data = []byte(`{"error":{"code":500,"message":"internal error"}}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data) // #nosec G104 - error writing response is logged elsewhere if needed
}

// errorStatus maps a fetch or build failure to the status the endpoint
// answers with
func errorStatus(err error) int {
	var upstream *graph.UpstreamError
	switch {
	case errors.Is(err, graph.ErrUpstreamServer):
		return http.StatusBadGateway
	case errors.As(err, &upstream) && errors.Is(err, graph.ErrUpstreamClient):
		// a redirect that reaches this point could not be followed
		if upstream.StatusCode >= 400 {
			return upstream.StatusCode
		}
		return http.StatusBadGateway
	case errors.Is(err, graph.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, graph.ErrMalformedStatement),
		errors.Is(err, graph.ErrMalformedEdge),
		errors.Is(err, graph.ErrMalformedPayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		// transport failures
		return http.StatusBadGateway
	}
}

// negotiateFormat determines the response format from the format parameter,
// falling back to the Accept header
func (s *Server) negotiateFormat(param, acceptHeader string) (string, error) {
	switch strings.ToLower(param) {
	case FormatJSON, FormatNTriples, FormatCSV, FormatTSV:
		return strings.ToLower(param), nil
	case "ntriples", "n-triples":
		return FormatNTriples, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q", param)
	}

	accept := strings.ToLower(acceptHeader)
	if strings.Contains(accept, "application/n-triples") {
		return FormatNTriples, nil
	}
	if strings.Contains(accept, "text/csv") {
		return FormatCSV, nil
	}
	if strings.Contains(accept, "text/tab-separated-values") {
		return FormatTSV, nil
	}

	// Default to JSON
	return FormatJSON, nil
}

// writeResult writes the graph in the specified format
func (s *Server) writeResult(w http.ResponseWriter, uri string, result *graph.Result, format string) {
	var data []byte
	var err error
	var contentType string

	switch format {
	case FormatNTriples:
		contentType = "application/n-triples; charset=utf-8"
		data, err = results.FormatNTriples(result.Nodes())
	case FormatCSV:
		contentType = "text/csv; charset=utf-8"
		data, err = results.FormatCSV(result.Nodes())
	case FormatTSV:
		contentType = "text/tab-separated-values; charset=utf-8"
		data, err = results.FormatTSV(result.Nodes())
	default: // json
		contentType = "application/json; charset=utf-8"
		data, err = results.FormatJSON(uri, result)
	}

	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Formatting error: %v", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data) // #nosec G104 - error writing response is logged elsewhere if needed
}

// filterParam collects the filter parameter, repeated or comma-separated
func filterParam(values []string) []string {
	var filters []string
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				filters = append(filters, f)
			}
		}
	}
	return filters
}
