// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command unmark drives the region-select / remote-process workflow against
// a watermark removal backend.
package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/ManuGH/unmark/internal/version"
)

const usage = `usage: unmark <command> [flags]

commands:
  serve        run the control API, dropzone watcher and sync loop (default)
  run          one-shot upload, region, process and download
  healthcheck  probe a running control API
  version      print version and exit
`

// maskURL removes user info from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	return parsedURL.String()
}

func main() {
	os.Exit(dispatch(os.Args[1:], os.Stdout, os.Stderr))
}

func dispatch(args []string, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		return runServe(args, stdout, stderr)
	case "run":
		return runOneShot(args, stdout, stderr)
	case "healthcheck":
		return runHealthcheckCLI(args, stdout, stderr)
	case "version":
		printVersion(stdout)
		return 0
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, version.String())
}
