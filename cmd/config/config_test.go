package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Contract.AccountID != "keypom.near" {
		t.Fatalf("unexpected contract account id: %s", AppConfig.Contract.AccountID)
	}
	if AppConfig.Server.Port != "8082" {
		t.Fatalf("unexpected server port: %s", AppConfig.Server.Port)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Contract.MaxLenPayout != 25 {
		t.Fatalf("expected max_len_payout 25, got %d", AppConfig.Contract.MaxLenPayout)
	}
	if AppConfig.Server.Port != "8090" {
		t.Fatalf("expected overridden port 8090, got %s", AppConfig.Server.Port)
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Mkdir(dir+"/config", 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	data := []byte("contract:\n  account_id: sandbox.near\n  max_len_payout: 42\n")
	if err := os.WriteFile(dir+"/config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Contract.AccountID != "sandbox.near" {
		t.Fatalf("expected contract account id sandbox.near, got %s", AppConfig.Contract.AccountID)
	}
	if AppConfig.Contract.MaxLenPayout != 42 {
		t.Fatalf("expected max_len_payout 42, got %d", AppConfig.Contract.MaxLenPayout)
	}
}
