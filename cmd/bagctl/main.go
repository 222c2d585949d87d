// Package main provides bagctl, an offline companion to the loot server.
//
// The traits and uri commands recompute a bag's traits and metadata from
// on-record data alone (a credential and, for uri, the identifier), so anyone
// can check what the server displays. The token command mints caller tokens
// signed with the dev key for local use; they will NOT work in production.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"loot/internal/bag/models"
	"loot/internal/bag/pluck"
	"loot/internal/bag/render"
	"loot/internal/bag/traits"
	"loot/internal/caller"
	"loot/internal/platform/config"
	"loot/pkg/domain"
)

const (
	defaultIssuer   = "loot"
	defaultTokenTTL = 15 * time.Minute
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "traits":
		err = runTraits(args[1:], stdout, stderr)
	case "uri":
		err = runURI(args[1:], stdout, stderr)
	case "token":
		err = runToken(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		// the flag set already printed its defaults
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `bagctl - offline tools for loot bags

Usage:
  bagctl <command> [flags]

Commands:
  traits    Derive traits from a credential
  uri       Render the token URI for an identifier and credential
  token     Mint a caller token signed with the dev key

Examples:
  bagctl traits -credential 42
  bagctl traits -credential 42 -category ring -scheme keccak256
  bagctl uri -id 5 -credential 42 -decode
  bagctl token -address 0x00000000000000000000000000000000000000ad
  bagctl token -address 0x...a1 -actor relayer -json

Use "bagctl <command> -h" for more information about a command.`)
}

type deriveFlags struct {
	credential string
	scheme     string
	tables     string
}

func (d *deriveFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.credential, "credential", "", "Credential in decimal (required)")
	fs.StringVar(&d.scheme, "scheme", string(pluck.SchemeSHA256), "Derivation scheme: sha256, keccak256, xor")
	fs.StringVar(&d.tables, "tables", "", "Optional trait table YAML override")
}

func (d *deriveFlags) deriver() (*pluck.Deriver, domain.Credential, error) {
	cred, err := domain.ParseCredential(d.credential)
	if err != nil {
		return nil, domain.Credential{}, err
	}
	scheme, err := pluck.ParseScheme(d.scheme)
	if err != nil {
		return nil, domain.Credential{}, err
	}
	tables := traits.Default()
	if d.tables != "" {
		if tables, err = traits.Load(d.tables); err != nil {
			return nil, domain.Credential{}, err
		}
	}
	return pluck.New(tables, scheme), cred, nil
}

func runTraits(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("traits", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var d deriveFlags
	d.register(fs)
	category := fs.String("category", "", "Single category (WEAPON, CHEST, ...); all when empty")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deriver, cred, err := d.deriver()
	if err != nil {
		return err
	}

	var out models.Traits
	if *category != "" {
		c, err := models.ParseCategory(*category)
		if err != nil {
			return err
		}
		v, err := deriver.Derive(cred, c)
		if err != nil {
			return err
		}
		out = models.Traits{{Category: c, Value: v}}
	} else if out, err = deriver.DeriveAll(cred); err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(stdout, map[string]any{
			"credential": cred,
			"scheme":     deriver.Scheme(),
			"traits":     out,
		})
	}
	for _, t := range out {
		fmt.Fprintf(stdout, "%-7s %s\n", t.Category, t.Value)
	}
	return nil
}

func runURI(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("uri", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var d deriveFlags
	d.register(fs)
	idFlag := fs.String("id", "", "Bag identifier (required)")
	decode := fs.Bool("decode", false, "Print the decoded metadata and SVG instead of the URI")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := domain.ParseTokenID(*idFlag)
	if err != nil {
		return err
	}
	deriver, cred, err := d.deriver()
	if err != nil {
		return err
	}
	all, err := deriver.DeriveAll(cred)
	if err != nil {
		return err
	}
	uri, err := render.TokenURI(id, all)
	if err != nil {
		return err
	}
	if !*decode {
		fmt.Fprintln(stdout, uri)
		return nil
	}
	meta, svg, err := render.Decode(uri)
	if err != nil {
		return err
	}
	if err := printJSON(stdout, meta); err != nil {
		return err
	}
	fmt.Fprintln(stdout, svg)
	return nil
}

type tokenOutput struct {
	Token     string            `json:"token"`
	Address   string            `json:"address"`
	Actor     string            `json:"actor,omitempty"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func runToken(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	address := fs.String("address", config.DevAdminAddress, "Caller address (0x + 40 hex chars)")
	actor := fs.String("actor", "", "Intermediary acting for the caller (sets the act claim)")
	key := fs.String("key", config.DevJWTSigningKey, "HS256 signing key")
	issuer := fs.String("issuer", defaultIssuer, "Token issuer")
	ttl := fs.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr, err := domain.ParseAddress(*address)
	if err != nil {
		return err
	}
	p := caller.Principal{Address: addr, Actor: *actor}
	token, err := caller.NewTokenService(*key, *issuer, *ttl).Issue(context.Background(), p)
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(stdout, tokenOutput{
			Token:     token,
			Address:   addr.String(),
			Actor:     *actor,
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
	}
	fmt.Fprintln(stdout, "Caller Token (JWT)")
	fmt.Fprintln(stdout, "==================")
	fmt.Fprintf(stdout, "Address:    %s\n", addr)
	if *actor != "" {
		fmt.Fprintf(stdout, "Actor:      %s\n", *actor)
	}
	fmt.Fprintf(stdout, "Expires In: %s\n", *ttl)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Token:")
	fmt.Fprintln(stdout, token)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintln(stdout, `  curl -X POST -H "Authorization: Bearer <token>" http://localhost:8080/v1/bags/1/claim`)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
