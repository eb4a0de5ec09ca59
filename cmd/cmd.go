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

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/certpath/certpath/internal/logf"
	"github.com/certpath/certpath/pkg/build"
	"github.com/certpath/certpath/pkg/ctl"
)

// NewCertPathCtlCommand assembles the root command.
func NewCertPathCtlCommand(ctx context.Context, in io.Reader, out, err io.Writer) *cobra.Command {
	ctx = logf.NewContext(ctx, logf.Log)

	cmds := &cobra.Command{
		Use:   build.Name(ctx),
		Short: "CLI tool to validate X.509 certificate chains against browser and library policies",
		Long: build.WithTemplate(ctx, `
{{.BuildName}} validates X.509 certificate chains against a trust store under
a Chrome-, Firefox-, or OpenSSL-compatible policy`),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true, // Errors are already logged when calling cmd.Execute()
		SilenceUsage:  true, // Don't print usage when an error occurs
	}
	cmds.SetUsageTemplate(usageTemplate(ctx))

	logf.AddFlags(cmds.PersistentFlags())

	ioStreams := ctl.IOStreams{In: in, Out: out, ErrOut: err}
	for _, registerCmd := range ctl.Commands() {
		cmds.AddCommand(registerCmd(ctx, ioStreams))
	}

	return cmds
}

func usageTemplate(ctx context.Context) string {
	name := build.Name(ctx)
	return fmt.Sprintf(`Usage:{{if .Runnable}} %s {{end}}{{if .HasAvailableSubCommands}} %s [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "%s [command] --help" for more information about a command.{{end}}
`, name, name, name)
}
