package verifier

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/model-updater/internal/config"
	"github.com/oshokin/model-updater/internal/console"
)

// hub fakes the Hugging Face model API for a fixed set of known models.
type hub struct {
	mu         sync.Mutex
	known      map[string]bool
	userAgents []string
}

// ServeHTTP answers 200 for known models and 404 otherwise.
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.userAgents = append(h.userAgents, r.Header.Get("User-Agent"))

	name := strings.TrimPrefix(r.URL.Path, "/api/models/")
	if h.known[name] {
		_, _ = w.Write([]byte(`{"id":"` + name + `"}`))
		return
	}

	http.NotFound(w, r)
}

// agents returns the User-Agent headers received so far.
func (h *hub) agents() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.userAgents...)
}

// newTestVerifier points a verifier at srv with no delay.
func newTestVerifier(t *testing.T, srv *httptest.Server, out *bytes.Buffer) *verifier {
	t.Helper()

	v, err := newVerifier(&config.Verify{
		Endpoint:  srv.URL + "/api/models/",
		UserAgent: config.DefaultUserAgent,
		Timeout:   time.Second,
	}, console.New(out))
	require.NoError(t, err)

	t.Cleanup(v.client.CloseIdleConnections)

	return v
}

// TestVerify_ReportsMissing separates present and missing models.
func TestVerify_ReportsMissing(t *testing.T) {
	t.Parallel()

	h := &hub{known: map[string]bool{"meta-llama/Llama-3.1-8B": true}}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	var out bytes.Buffer

	v := newTestVerifier(t, srv, &out)

	result, err := v.Verify(context.Background(), []string{"meta-llama/Llama-3.1-8B", "ghost/model"})
	require.NoError(t, err)
	require.Equal(t, 2, result.Checked)
	require.Equal(t, []Missing{{Name: "ghost/model", Status: http.StatusNotFound}}, result.Missing)
	require.Contains(t, out.String(), "[1/2] meta-llama/Llama-3.1-8B")
	require.Contains(t, out.String(), "[2/2] ghost/model (HTTP 404)")
	require.Equal(t, []string{config.DefaultUserAgent, config.DefaultUserAgent}, h.agents())

	err = v.report(context.Background(), result)
	require.ErrorIs(t, err, ErrModelsMissing)
	require.Contains(t, out.String(), "FAIL")
}

// TestVerify_Unreachable reports transport errors as status -1.
func TestVerify_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	var out bytes.Buffer

	v := newTestVerifier(t, srv, &out)

	result, err := v.Verify(context.Background(), []string{"a/b"})
	require.NoError(t, err)
	require.Equal(t, []Missing{{Name: "a/b", Status: statusUnreachable}}, result.Missing)
}

// TestVerify_Canceled stops between requests.
func TestVerify_Canceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&hub{known: map[string]bool{}})
	t.Cleanup(srv.Close)

	var out bytes.Buffer

	v := newTestVerifier(t, srv, &out)
	v.delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := v.Verify(ctx, []string{"a/one", "a/two"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, result.Missing, 1)
}

// TestRun_AllPresent drives the entry point against a project catalog.
func TestRun_AllPresent(t *testing.T) {
	t.Parallel()

	names := []string{"Qwen/Qwen2.5-7B-Instruct", "mistralai/Mistral-7B-v0.3"}
	h := &hub{known: map[string]bool{names[0]: true, names[1]: true}}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))

	catalogJSON := fmt.Sprintf(`[{"name":%q},{"name":%q},{"name":%q}]`, names[0], names[1], names[0])
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "hf_models.json"), []byte(catalogJSON), 0o644))

	settings := fmt.Sprintf("verify:\n  endpoint: %s/api/models/\n  delay: 1ms\n", srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultConfigFilename), []byte(settings), 0o600))

	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), &Options{ProjectRoot: root, Stdout: &out}))
	require.Contains(t, out.String(), "checking 2 models")
	require.Contains(t, out.String(), "PASS: All models verified.")
}

// TestRun_MissingCatalog aborts with a readable message.
func TestRun_MissingCatalog(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Run(context.Background(), &Options{ProjectRoot: t.TempDir(), Stdout: &out})
	require.Error(t, err)
	require.Contains(t, out.String(), "Could not read the model names from data/hf_models.json")
}
