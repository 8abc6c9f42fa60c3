package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a minimal config pointing the engine at engineURL.
func writeConfig(t *testing.T, engineURL, extra string) string {
	t.Helper()
	data := fmt.Sprintf(`
http:
  port: 8090
engine:
  url: %s
bulk:
  max_batch_size: 2
search:
  soft_delete: true
  soft_delete_field: deleted
  index_prefix: app_
%s`, engineURL, extra)

	path := filepath.Join(t.TempDir(), "querykit.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--env", "test"}, args...))
	err := cmd.Execute()
	return out.String(), err
}
