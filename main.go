package main

import (
	"fmt"
	"log"
	"os"
)

var debugMode bool

// debugLog prints only when --debug or LIGHTBOX_DEBUG is set
func debugLog(format string, args ...interface{}) {
	if debugMode || os.Getenv("LIGHTBOX_DEBUG") != "" {
		log.Printf("DEBUG: "+format, args...)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
