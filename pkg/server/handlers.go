package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/server/results"
	"github.com/aleksaelezovic/grom/pkg/store"
)

// handleRoot provides information about the endpoint
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// Get current endpoint URL from request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := html.EscapeString(fmt.Sprintf("%s://%s", scheme, r.Host))

	archived := "disabled"
	if s.archive != nil {
		if count, err := s.archive.Count(); err == nil {
			archived = fmt.Sprintf("%d payloads", count)
		}
	}

	page := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Grom Graph Endpoint</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; }
        .header { background: #2c3e50; color: white; padding: 15px 20px; }
        .header h1 { margin: 0; font-size: 24px; font-weight: 500; }
        main { padding: 10px 20px; }
        code { background: #eee; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <div class="header"><h1>Grom Graph Endpoint</h1></div>
    <main>
        <p><code>GET ` + base + `/graph?uri=...&amp;filter=Type&amp;format=json|nt|csv|tsv</code> fetches a statement set and returns the linked graph.</p>
        <p><code>GET ` + base + `/archive</code> lists archived payloads (` + archived + `); add <code>uri=...</code> to rebuild one.</p>
    </main>
</body>
</html>`

	_, _ = w.Write([]byte(page)) // #nosec G104 - error writing response is logged elsewhere if needed
}

// handleGraph fetches the requested URI and returns the built graph
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	// Enable CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use GET")
		return
	}

	query := r.URL.Query()
	uri := query.Get("uri")
	if uri == "" {
		s.writeError(w, http.StatusBadRequest, "Missing 'uri' parameter")
		return
	}
	if s.resolve != nil {
		resolved, err := s.resolve(uri)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid uri: %v", err))
			return
		}
		uri = resolved
	}

	format, err := s.negotiateFormat(query.Get("format"), r.Header.Get("Accept"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.client.FetchGraph(r.Context(), uri, s.headers, filterParam(query["filter"]), s.decorator)
	if err != nil {
		s.writeError(w, errorStatus(err), err.Error())
		return
	}

	s.writeResult(w, uri, result, format)
}

// handleArchive lists archived payloads, or rebuilds the graph of one
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	// Enable CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use GET")
		return
	}
	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, "Archive not configured")
		return
	}

	query := r.URL.Query()
	if uri := query.Get("uri"); uri != "" {
		s.serveArchived(w, r, uri)
		return
	}

	entries, err := s.archive.List(query.Get("q"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Archive error: %v", err))
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}

	data, err := results.MarshalJSON(map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Formatting error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data) // #nosec G104 - error writing response is logged elsewhere if needed
}

func (s *Server) serveArchived(w http.ResponseWriter, r *http.Request, uri string) {
	query := r.URL.Query()

	format, err := s.negotiateFormat(query.Get("format"), r.Header.Get("Accept"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.archive.Load(uri)
	if err != nil {
		s.writeError(w, errorStatus(err), err.Error())
		return
	}

	b := graph.Builder{Logger: s.logger}
	result, err := b.Build(record.Payload, filterParam(query["filter"]), s.decorator)
	if err != nil {
		s.writeError(w, errorStatus(err), err.Error())
		return
	}

	s.writeResult(w, uri, result, format)
}
