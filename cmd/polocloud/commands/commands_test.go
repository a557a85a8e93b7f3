package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin []byte, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand("test", "none", "now")
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("polocloud %s: %v", strings.Join(args, " "), err)
	}
	return out.Bytes()
}

func TestEncodeDecodeTemplate(t *testing.T) {
	frame := run(t, []byte(`{"name": "lobby", "size": "12 MB"} // shared`), "encode", "--kind", "template")
	if len(frame) == 0 {
		t.Fatal("encode wrote nothing")
	}

	out := run(t, frame, "decode")
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode output is not JSON: %v\n%s", err, out)
	}
	if doc["name"] != "lobby" || doc["size"] != "12 MB" {
		t.Errorf("decoded document = %v", doc)
	}
}

func TestModuleValidate(t *testing.T) {
	dir := t.TempDir()
	mod := filepath.Join(dir, "signs")
	if err := os.Mkdir(mod, 0o755); err != nil {
		t.Fatal(err)
	}
	meta := "id: signs\nname: Signs\ndescription: Server signs\nauthor: polocloud\nmain: signs.Module\n"
	if err := os.WriteFile(filepath.Join(mod, "module.yaml"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}

	out := run(t, nil, "module", "validate", dir)
	if !strings.Contains(string(out), "signs.Module") {
		t.Errorf("output does not list the module: %q", out)
	}
}

func TestNodeCheckDefaults(t *testing.T) {
	configPath = ""
	out := run(t, nil, "node", "check")
	if !strings.Contains(string(out), "store:   memory") {
		t.Errorf("unexpected summary: %q", out)
	}
}
