// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/snapenv/snapenv/cmd/snapenv"

func main() {
	cmd.Execute()
}
