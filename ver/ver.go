package ver

import "fmt"

// Populated via -ldflags at build time.
var (
	Git     string
	Compile string
	Date    string
)

// Version .
func Version() string {
	return fmt.Sprintf("Git: %s\nCompile: %s\nBuilt: %s", Git, Compile, Date)
}
