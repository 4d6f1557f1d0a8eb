//	@title			AppLink OAuth API
//	@version		1.0
//	@description	OAuth 1.0a provider (RFC 5849) for application links between build servers and source hosts
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/go-authgate/applink

//	@license.name	MIT
//	@license.url	https://github.com/go-authgate/applink/blob/main/LICENSE

//	@host		localhost:8080
//	@BasePath	/

//	@securityDefinitions.apikey	OAuth1
//	@in							header
//	@name						Authorization
//	@description				OAuth 1.0a signature: "OAuth" followed by the protocol parameters.

//	@securityDefinitions.apikey	SessionAuth
//	@in							cookie
//	@name						applink_session
//	@description				Session cookie for logged-in users

package main

import (
	"embed"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/go-authgate/applink/api" // swagger docs
	"github.com/go-authgate/applink/internal/bootstrap"
	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/version"
)

//go:embed internal/templates/static/*
var staticFS embed.FS

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		runServer()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("OAuth 1.0a provider for linking build servers and other applications")
	fmt.Println("\nCommands:")
	fmt.Println("  server    Start the OAuth provider")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	cfg := config.Load()
	log.Printf("Starting %s", version.Info())

	if err := bootstrap.Run(cfg, staticFS); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
