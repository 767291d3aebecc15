/*
Package main provides contactctl, a command line client for the contact form API.
*/
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
