// Command ublu runs a complete escrow session: setup, key generation, a
// sequence of increments, and the threshold test.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
