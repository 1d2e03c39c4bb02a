// Package main provides the entry point for the hosts-page-blocker application.
package main

import (
	"fmt"
	"os"

	"github.com/lukaszraczylo/hosts-page-blocker/internal/app"
)

// version is set at compile time via ldflags
var appVersion = "dev"

func main() {
	if err := app.New(appVersion).Command().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
