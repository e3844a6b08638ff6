package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aleksaelezovic/grom/pkg/store"
)

const people = `<https://id.example.org/p1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <https://id.example.org/schema/Person> .
<https://id.example.org/p1> <https://id.example.org/schema/personGivenName> "Ada" .
<https://id.example.org/p1> <https://id.example.org/schema/memberOf> <https://id.example.org/o1> .
<https://id.example.org/o1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <https://id.example.org/schema/Org> .
<https://id.example.org/o1> <https://id.example.org/schema/orgName> "Analytical Engines" .
`

// setup starts an upstream and writes a config pointing at it
func setup(t *testing.T) (configPath, archivePath string) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/query/people", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/n-triples")
		_, _ = w.Write([]byte(people))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	configPath = filepath.Join(dir, "grom.hcl")
	archivePath = filepath.Join(dir, "archive")
	src := `endpoint {
  base_url = "` + srv.URL + `/query/"
  headers  = { "X-Api-Key" = "k" }
}

decorator "Person" {
  aliases = { givenName = "personGivenName" }
}
`
	if err := os.WriteFile(configPath, []byte(src), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, archivePath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFetch(t *testing.T) {
	configPath, _ := setup(t)

	out, err := run(t, "fetch", "people", "--config", configPath, "--filter", "Person")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(out, `"givenName":"Ada"`) || !strings.Contains(out, `"count":1`) {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, "fetch", "people", "--config", configPath, "--format", "csv", "--filter", "Org")
	if err != nil {
		t.Fatalf("fetch csv: %v", err)
	}
	want := "@id,graph_id,type,orgName\n" +
		"https://id.example.org/o1,o1,https://id.example.org/schema/Org,Analytical Engines\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchPretty(t *testing.T) {
	configPath, _ := setup(t)

	out, err := run(t, "fetch", "people", "--config", configPath, "--filter", "Org", "--pretty")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(out, "\n  \"count\": 1,") {
		t.Errorf("expected indented output:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour codes written to a non-terminal")
	}
}

func TestFetchErrors(t *testing.T) {
	configPath, _ := setup(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"header override", []string{"fetch", "people", "-H", "X-Api-Key: wrong"}, "Client error: missing key"},
		{"bad header", []string{"fetch", "people", "-H", "no colon"}, "invalid header"},
		{"bad format", []string{"fetch", "people", "--format", "xml"}, `unsupported format "xml"`},
		{"no args", []string{"fetch"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "--config", configPath)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestFetchSaveAndArchive(t *testing.T) {
	configPath, archivePath := setup(t)
	flags := []string{"--config", configPath, "--archive-path", archivePath}

	if _, err := run(t, append([]string{"fetch", "people", "--save"}, flags...)...); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	out, err := run(t, append([]string{"archive", "list"}, flags...)...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "/query/people") || !strings.Contains(out, "URI") {
		t.Errorf("unexpected listing:\n%s", out)
	}

	out, err = run(t, append([]string{"build", "--archived", "people", "--format", "nt", "--filter", "Org"}, flags...)...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, `<https://id.example.org/o1> <https://id.example.org/schema/orgName> "Analytical Engines" .`) {
		t.Errorf("unexpected rebuilt graph:\n%s", out)
	}
	if strings.Contains(out, "Ada") {
		t.Errorf("filtered node in output:\n%s", out)
	}

	out, err = run(t, append([]string{"archive", "show", "people"}, flags...)...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, `"statementsBySubject"`) {
		t.Errorf("unexpected payload:\n%s", out)
	}

	if _, err := run(t, append([]string{"archive", "delete", "people"}, flags...)...); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = run(t, append([]string{"archive", "list"}, flags...)...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No archived payloads") {
		t.Errorf("expected empty archive:\n%s", out)
	}

	if _, err := run(t, append([]string{"archive", "delete", "people"}, flags...)...); err == nil {
		t.Error("expected error deleting a missing record")
	}
}

func TestBuildFromFile(t *testing.T) {
	configPath, _ := setup(t)

	path := filepath.Join(t.TempDir(), "payload.json")
	payload := `{"statementsBySubject": {"s1": [{"subject":"s1","predicate":"name","object":"\"Jane\""}]}, "edgesBySubject": {}, "status_code": 200, "error": ""}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := run(t, "build", path, "--config", configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, `"name":"Jane"`) {
		t.Errorf("unexpected output:\n%s", out)
	}

	upstreamErr := `{"statementsBySubject": {}, "edgesBySubject": {}, "status_code": 503, "error": "down"}`
	if err := os.WriteFile(path, []byte(upstreamErr), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, "build", path, "--config", configPath); err == nil || err.Error() != "Server error: down" {
		t.Errorf("err = %v", err)
	}

	if _, err := run(t, "build", "--config", configPath); err == nil {
		t.Error("expected error without input")
	}
}

func TestParseHeaders(t *testing.T) {
	got, err := parseHeaders([]string{"Accept: text/plain", "X-Key:  a:b "})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{"Accept": "text/plain", "X-Key": "a:b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	if got, err := parseHeaders(nil); err != nil || got != nil {
		t.Errorf("parseHeaders(nil) = %v, %v", got, err)
	}
}

func TestWriteEntries(t *testing.T) {
	var buf bytes.Buffer
	entries := []store.Entry{{
		URI:        "https://api.example.org/query/people",
		FetchedAt:  time.Now().Add(-3 * time.Hour),
		StatusCode: 200,
		Subjects:   1200,
		Size:       2048,
	}}
	if err := writeEntries(&buf, entries); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"3 hours ago", "1,200", "2.0 kB", "https://api.example.org/query/people"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}
