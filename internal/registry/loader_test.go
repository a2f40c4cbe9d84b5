package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFile_Formats(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"types.yaml": "event_types:\n  - class: A\n    channels: [email, notification]\n",
		"types.json": `{"event_types":[{"class":"A","channels":["email","notification"]}]}`,
		"types.toml": "[[event_types]]\nclass = \"A\"\nchannels = [\"email\", \"notification\"]\n",
	}
	for name, content := range cases {
		p := writeTempFile(t, d, name, content)
		descs, err := LoadFile(p)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(descs) != 1 || descs[0].Class != "A" || len(descs[0].Channels) != 2 {
			t.Fatalf("%s: unexpected descriptors %+v", name, descs)
		}
	}
}

func TestLoadFile_Errors(t *testing.T) {
	d := t.TempDir()
	if _, err := LoadFile(writeTempFile(t, d, "x.txt", "nope")); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := LoadFile(writeTempFile(t, d, "bad.json", "{")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := LoadFile(filepath.Join(d, "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLoadDir_LexicalOrderAndFilter(t *testing.T) {
	d := t.TempDir()
	writeTempFile(t, d, "10-base.yaml", "event_types:\n  - class: A\n    channels: [email]\n")
	writeTempFile(t, d, "20-override.json", `{"event_types":[{"class":"A","channels":["notification"]}]}`)
	writeTempFile(t, d, "README.md", "ignored")
	if err := os.Mkdir(filepath.Join(d, "sub.yaml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	descs, err := LoadDir(d)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("expected 2 descriptors, got %+v", descs)
	}
	r, err := New(descs...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ch, ok := r.Lookup("A")
	if !ok || ch.Email || !ch.Notification {
		t.Fatalf("later file should override earlier: %+v ok=%v", ch, ok)
	}
}

func TestLoad_DefaultsPlusFile(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "extra.yaml", "event_types:\n  - class: Decidim::Dev::DummyResourceEvent\n    channels: [email, notification]\n")
	r, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.Len() != len(Defaults())+1 {
		t.Fatalf("len=%d want %d", r.Len(), len(Defaults())+1)
	}
	if _, ok := r.Lookup("Decidim::Dev::DummyResourceEvent"); !ok {
		t.Fatalf("extra class not registered")
	}
	if _, ok := r.Lookup("Decidim::Proposals::AcceptedProposalEvent"); !ok {
		t.Fatalf("default class missing")
	}
}

func TestLoad_EmptyPathAndMissingPath(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if r.Len() != len(Defaults()) {
		t.Fatalf("len=%d", r.Len())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestLoad_UnknownChannelRejected(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "event_types:\n  - class: X\n    channels: [sms]\n")
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "sms") {
		t.Fatalf("expected unknown channel error, got %v", err)
	}
}

func TestLoadDir_ExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir on this platform: %v", err)
	}
	hTmp, err := os.MkdirTemp(home, "eventgate-registry-*")
	if err != nil {
		t.Skipf("cannot create temp under home: %v", err)
	}
	defer os.RemoveAll(hTmp)
	writeTempFile(t, hTmp, "x.yaml", "event_types:\n  - class: X\n    channels: [email]\n")
	descs, err := LoadDir("~/" + filepath.Base(hTmp))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(descs) != 1 || descs[0].Class != "X" {
		t.Fatalf("unexpected: %+v", descs)
	}
}
