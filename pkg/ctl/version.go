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

package ctl

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/certpath/certpath/pkg/build"
)

// NewCmdVersion returns the version command.
func NewCmdVersion(setupCtx context.Context, ioStreams IOStreams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(ioStreams.Out, "%s %s %s/%s\n", build.Name(cmd.Context()), build.Version, runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
