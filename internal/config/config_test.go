package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadSecretsSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodeaccess.yaml")
	content := `rpc: http://localhost:8545
secrets:
  strongBlockContractAddress: "0x1000000000000000000000000000000000000001"
  strongerContractAddress: "0x2000000000000000000000000000000000000002"
  streamContractAddress: "0x3000000000000000000000000000000000000003"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessGate != "0x1000000000000000000000000000000000000001" ||
		cfg.FeeToken != "0x2000000000000000000000000000000000000002" ||
		cfg.PoolSigner != "0x3000000000000000000000000000000000000003" {
		t.Fatalf("addresses mismatch: %+v", cfg)
	}
	if cfg.ReceiptTimeout != 5*time.Minute {
		t.Fatalf("defaults mismatch: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadFlagsOverrideSecrets(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("access-gate", "", "")
	flags.String("listen", ":8080", "")
	if err := flags.Parse([]string{"--access-gate", "0xabc", "--listen", ":9090"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadServe("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessGate != "0xabc" {
		t.Fatalf("access gate mismatch: %q", cfg.AccessGate)
	}
	if cfg.Listen != ":9090" {
		t.Fatalf("listen mismatch: %q", cfg.Listen)
	}
}

func TestValidateRequiresAddresses(t *testing.T) {
	if err := (Config{RPCURL: "http://localhost:8545"}).Validate(); err == nil {
		t.Fatalf("expected error for missing addresses")
	}
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for missing rpc")
	}
}
