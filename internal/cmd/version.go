package cmd

// version is set at build time using -ldflags "-X github.com/steamstat/steamstat/internal/cmd.version=...".
var version = "dev"

// Version returns the steamstat build version.
func Version() string {
	return version
}
