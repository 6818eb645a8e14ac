// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package main

import "github.com/asazato/bndl/cmd/bndl/cmd"

func main() {
	cmd.Execute()
}
