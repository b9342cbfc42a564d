package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ServerConfig holds the HTTP server's listen port and the contract account
// id the in-process Store should behave as, mirroring the pair of settings
// the CLI binary reads from pkg/config's Server and Contract sections.
type ServerConfig struct {
	Port            string
	ContractAccount string
}

var AppConfig ServerConfig

func Load() error {
	if err := godotenv.Load("walletserver/.env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading env: %w", err)
	}
	port := os.Getenv("KEYPOM_HTTP_PORT")
	if port == "" {
		port = "8082"
	}
	contract := os.Getenv("KEYPOM_CONTRACT_ACCOUNT")
	if contract == "" {
		contract = "keypom.near"
	}
	AppConfig = ServerConfig{Port: port, ContractAccount: contract}
	return nil
}
