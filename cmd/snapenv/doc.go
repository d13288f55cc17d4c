// SPDX-License-Identifier: MPL-2.0

// Package cmd is the snapenv command line.
//
// A run loads snapenv's own configuration and reads the snap session from the
// environment. It then queries snapd for the snap's env, envfile and apps
// settings and resolves them into an environment mutation. Finally it either
// prints the result (--print-env) or launches the target command.
package cmd
