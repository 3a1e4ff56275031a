// muwaffaq - a terminal client for cited Islamic knowledge.
//
// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
