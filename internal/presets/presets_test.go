package presets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/secretstore"
)

const testKey = "RySCKAybPsBEVVZFj/x9NIhzub1L683th6Nh6bnzeMU="

// memStore is an in-memory SecretStore.
type memStore map[string]string

func (m memStore) Save(label, secret string) (string, error) {
	m[secretstore.Label(label)] = secret
	return secretstore.Token(label), nil
}

func (m memStore) Fetch(v string) (string, bool, error) {
	s, ok := m[secretstore.Label(v)]
	return s, ok, nil
}

func (m memStore) Delete(v string) error {
	delete(m, secretstore.Label(v))
	return nil
}

func presetSnapshot() *deviceconfig.Snapshot {
	return &deviceconfig.Snapshot{
		LoRa: &deviceconfig.LoRaSection{Region: deviceconfig.Ptr("EU_868"), HopLimit: deviceconfig.Ptr(4)},
		Channels: []deviceconfig.Channel{
			{Index: 0, PSK: deviceconfig.Ptr("default")},
			{Index: 1, Name: deviceconfig.Ptr("ops"), PSK: deviceconfig.Ptr(testKey)},
		},
	}
}

func TestIsSafeName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Field", true},
		{"field-2024_v1", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
		{"a:b", false},
		{"what?", false},
		{"con", false},
		{"COM1", false},
		{"lpt9", false},
		{"COM10", true},
	}
	for _, tt := range tests {
		if got := IsSafeName(tt.name); got != tt.want {
			t.Errorf("IsSafeName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCleanName(t *testing.T) {
	if got := CleanName("  hill top relay "); got != "hilltoprelay" {
		t.Errorf("CleanName() = %q", got)
	}
}

func TestManager_SaveMovesKeysToStore(t *testing.T) {
	dir := t.TempDir()
	store := memStore{}
	m := NewManager(dir, store, nil)

	name, err := m.Save(" Field ", presetSnapshot())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if name != "Field" {
		t.Errorf("name = %q, want Field", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Field.yaml"))
	if err != nil {
		t.Fatalf("read preset: %v", err)
	}
	if strings.Contains(string(data), testKey) {
		t.Error("preset file contains the channel key")
	}
	if !strings.Contains(string(data), "secret://Field:ch1") {
		t.Errorf("preset file lacks the token:\n%s", data)
	}
	if store["Field:ch1"] != testKey {
		t.Errorf("store = %v", store)
	}

	raw, err := m.Load("Field")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *raw.Channels[0].PSK != "default" {
		t.Error("default key should be stored as is")
	}

	resolved, err := m.LoadResolved("Field")
	if err != nil {
		t.Fatalf("LoadResolved() error = %v", err)
	}
	if *resolved.Channels[1].PSK != testKey {
		t.Errorf("resolved psk = %q", *resolved.Channels[1].PSK)
	}
	if *resolved.LoRa.HopLimit != 4 {
		t.Error("preset fields lost")
	}
}

func TestManager_ListDeleteRename(t *testing.T) {
	dir := t.TempDir()
	store := memStore{}
	m := NewManager(dir, store, nil)

	if names, err := m.List(); err != nil || len(names) != 0 {
		t.Errorf("List() on empty dir = %v, %v", names, err)
	}

	for _, n := range []string{"beta", "alpha"} {
		if _, err := m.Save(n, presetSnapshot()); err != nil {
			t.Fatalf("Save(%s) error = %v", n, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	names, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "beta"}) {
		t.Errorf("List() = %v", names)
	}

	if err := m.Rename("alpha", "beta"); !errors.Is(err, ErrExists) {
		t.Errorf("rename onto existing: got %v", err)
	}
	if err := m.Rename("gamma", "delta"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rename missing: got %v", err)
	}

	if err := m.Rename("alpha", "gamma"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if _, ok := store["alpha:ch1"]; ok {
		t.Error("old secret label still present after rename")
	}
	if store["gamma:ch1"] != testKey {
		t.Error("secret did not follow the rename")
	}
	if _, err := m.Load("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old preset still loadable: %v", err)
	}

	if err := m.Delete("beta"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store["beta:ch1"]; ok {
		t.Error("delete left the preset secret behind")
	}
	if err := m.Delete("beta"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}

	if _, err := m.Save("COM1", presetSnapshot()); !errors.Is(err, ErrUnsafeName) {
		t.Errorf("unsafe name: got %v", err)
	}
}

func TestResolveSecrets(t *testing.T) {
	store := memStore{"p:ch1": testKey}
	snap := &deviceconfig.Snapshot{Channels: []deviceconfig.Channel{
		{Index: 0, PSK: deviceconfig.Ptr("AQ==")},
		{Index: 1, PSK: deviceconfig.Ptr("secret://p:ch1")},
		{Index: 2, PSK: deviceconfig.Ptr("secret://gone")},
	}}

	ResolveSecrets(snap, store, nil)

	if *snap.Channels[0].PSK != "AQ==" {
		t.Error("plain key changed")
	}
	if *snap.Channels[1].PSK != testKey {
		t.Errorf("token not resolved: %q", *snap.Channels[1].PSK)
	}
	if snap.Channels[2].PSK != nil {
		t.Error("unresolvable token should leave the key absent")
	}

	ResolveSecrets(nil, store, nil)
}

func TestManager_NoStoreKeepsKeys(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, nil, nil)
	if _, err := m.Save("plain", presetSnapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	snap, err := m.Load("plain")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *snap.Channels[1].PSK != testKey {
		t.Error("key should be kept inline without a store")
	}
}
