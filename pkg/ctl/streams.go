/*
Copyright 2024 The certpath Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package ctl implements the certpathctl subcommands.
package ctl

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// IOStreams carries the command's input and output streams, so tests can
// substitute buffers.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// NewCommand is the constructor signature every subcommand exposes.
type NewCommand func(ctx context.Context, ioStreams IOStreams) *cobra.Command

// Commands returns the constructors of all subcommands.
func Commands() []NewCommand {
	return []NewCommand{
		NewCmdValidate,
		NewCmdValidateBatch,
		NewCmdParseCert,
		NewCmdDiffResults,
		NewCmdVersion,
	}
}
