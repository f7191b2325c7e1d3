//go:build validate_snapshot
// +build validate_snapshot

package main

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/steamstat/steamstat/internal/status"
)

// main checks a captured status gateway payload against the snapshot schema the client enforces.
// A schema file may be passed to try out changes before they are embedded.
func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "Usage: go run -tags=validate_snapshot ./tools/validate/snapshot.go <payload.json> [schema.json]\n")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading payload file: %v\n", err)
		os.Exit(1)
	}

	schema := status.Schema()
	if len(os.Args) == 3 {
		if schema, err = os.ReadFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading schema file: %v\n", err)
			os.Exit(1)
		}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error validating: %v\n", err)
		os.Exit(1)
	}

	if !result.Valid() {
		fmt.Println("❌ Validation failed:")
		for _, err := range result.Errors() {
			fmt.Printf("  - %s: %s\n", err.Field(), err.Description())
		}
		os.Exit(1)
	}

	if _, err := status.Decode(data); err != nil {
		fmt.Printf("❌ Payload matches the schema but does not decode: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Status snapshot validation succeeded")
}
