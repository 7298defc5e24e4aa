// Package main is a CLI for producing signed-request tokens and derived record
// addresses against a local credledger. Keys generated here are for development.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"credledger/internal/ledger/address"
	"credledger/internal/platform/config"
	"credledger/pkg/domain"
	"credledger/pkg/platform/middleware/auth"
)

const defaultTokenTTL = 2 * time.Minute

type keyOutput struct {
	Pubkey string `json:"pubkey"`
	Seed   string `json:"seed"`
}

type tokenOutput struct {
	Token      string            `json:"token"`
	Caller     string            `json:"caller"`
	BodySHA256 string            `json:"body_sha256"`
	ExpiresIn  string            `json:"expires_in"`
	Usage      map[string]string `json:"usage"`
}

type addressOutput struct {
	Record  string `json:"record"`
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

func main() {
	keygenCmd := flag.NewFlagSet("keygen", flag.ExitOnError)
	keygenJSON := keygenCmd.Bool("json", false, "Output as JSON")

	signCmd := flag.NewFlagSet("sign", flag.ExitOnError)
	signSeed := signCmd.String("seed", os.Getenv("CALLER_SEED"), "Hex ed25519 seed (32 bytes). Defaults to $CALLER_SEED.")
	signData := signCmd.String("data", "", "Request body to sign. Use @file to read a file or @- for stdin.")
	signTTL := signCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	signJSON := signCmd.Bool("json", false, "Output as JSON")

	addrCmd := flag.NewFlagSet("address", flag.ExitOnError)
	addrProgram := addrCmd.String("program", config.DefaultProgramID, "Program id (base58)")
	addrIssuer := addrCmd.String("issuer", "", "Issuer authority (base58)")
	addrHolder := addrCmd.String("holder", "", "Credential holder (base58); requires -issuer")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "keygen":
		_ = keygenCmd.Parse(os.Args[2:])
		err = generateKey(*keygenJSON)
	case "sign":
		_ = signCmd.Parse(os.Args[2:])
		err = signBody(*signSeed, *signData, *signTTL, *signJSON)
	case "address":
		_ = addrCmd.Parse(os.Args[2:])
		err = deriveAddresses(*addrProgram, *addrIssuer, *addrHolder)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - signed-request helper for credledger

Usage:
  tokengen keygen [-json]
  tokengen sign -seed <hex> [-data <body>|@file|@-] [-ttl 2m] [-json]
  tokengen address [-program <id>] [-issuer <pubkey>] [-holder <pubkey>]

Examples:
  SEED=$(tokengen keygen -json | jq -r .seed)
  BODY='{"issuer":"<pubkey>"}'
  curl -X POST localhost:8080/v1/registry/issuers \
    -H "Authorization: Bearer $(tokengen sign -seed $SEED -data "$BODY")" \
    -H "Content-Type: application/json" -d "$BODY"`)
}

func generateKey(asJSON bool) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	pk, err := domain.PubkeyFromEd25519(pub)
	if err != nil {
		return err
	}
	out := keyOutput{Pubkey: pk.String(), Seed: hex.EncodeToString(priv.Seed())}
	if asJSON {
		return printJSON(out)
	}
	fmt.Printf("pubkey: %s\nseed:   %s\n", out.Pubkey, out.Seed)
	return nil
}

func signBody(seedHex, data string, ttl time.Duration, asJSON bool) error {
	seed, err := hex.DecodeString(strings.TrimPrefix(seedHex, "0x"))
	if err != nil || len(seed) != ed25519.SeedSize {
		return fmt.Errorf("seed must be %d hex encoded bytes", ed25519.SeedSize)
	}
	body, err := readData(data)
	if err != nil {
		return err
	}
	priv := ed25519.NewKeyFromSeed(seed)
	token, err := auth.SignRequest(priv, body, time.Now(), ttl)
	if err != nil {
		return err
	}
	if !asJSON {
		fmt.Println(token)
		return nil
	}
	caller, err := domain.PubkeyFromEd25519(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}
	return printJSON(tokenOutput{
		Token:      token,
		Caller:     caller.String(),
		BodySHA256: auth.BodyDigest(body),
		ExpiresIn:  ttl.String(),
		Usage: map[string]string{
			"header": "Authorization: Bearer " + token,
			"note":   "send exactly the signed body; the token is accepted once",
		},
	})
}

func readData(data string) ([]byte, error) {
	switch {
	case data == "@-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(data, "@"):
		return os.ReadFile(strings.TrimPrefix(data, "@"))
	default:
		return []byte(data), nil
	}
}

func deriveAddresses(program, issuer, holder string) error {
	programID, err := domain.ParsePubkey(program)
	if err != nil {
		return fmt.Errorf("program: %w", err)
	}
	d := address.NewDeriver(programID)

	var out []addressOutput
	add := func(record string, derived address.Derived, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", record, err)
		}
		out = append(out, addressOutput{Record: record, Address: derived.Address.String(), Bump: derived.Bump})
		return nil
	}

	cfgAddr, err := d.Config()
	if err := add("program_config", cfgAddr, err); err != nil {
		return err
	}
	regAddr, err := d.Registry()
	if err := add("issuer_registry", regAddr, err); err != nil {
		return err
	}
	if issuer != "" {
		authority, err := domain.ParsePubkey(issuer)
		if err != nil {
			return fmt.Errorf("issuer: %w", err)
		}
		issuerAddr, err := d.Issuer(authority)
		if err := add("issuer_account", issuerAddr, err); err != nil {
			return err
		}
		if holder != "" {
			h, err := domain.ParsePubkey(holder)
			if err != nil {
				return fmt.Errorf("holder: %w", err)
			}
			credAddr, err := d.Credential(h, issuerAddr.Address)
			if err := add("user_credential", credAddr, err); err != nil {
				return err
			}
		}
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
