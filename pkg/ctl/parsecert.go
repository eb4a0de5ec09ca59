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

	"github.com/spf13/cobra"

	"github.com/certpath/certpath/internal/logf"
	"github.com/certpath/certpath/pkg/build"
	"github.com/certpath/certpath/pkg/pemutil"
	"github.com/certpath/certpath/pkg/policy"
	"github.com/certpath/certpath/pkg/x509cert"
)

type parseCertOptions struct {
	ignoreParseErrors bool

	IOStreams
}

func parseCertDescription(ctx context.Context) string {
	return build.WithTemplate(ctx, `Read PEM certificates from stdin, parse them, and print a summary
of each.

Some example uses:
	$ cat chain.pem | {{.BuildName}} parse-cert
or
	$ cat chain.pem | {{.BuildName}} parse-cert --ignore-parse-errors
`)
}

// NewCmdParseCert returns the parse-cert command.
func NewCmdParseCert(setupCtx context.Context, ioStreams IOStreams) *cobra.Command {
	options := parseCertOptions{IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "parse-cert",
		Short: "Parse PEM certificates from stdin and print them",
		Long:  parseCertDescription(setupCtx),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParseCert(cmd.Context(), options)
		},
	}

	cmd.Flags().BoolVarP(&options.ignoreParseErrors, "ignore-parse-errors", "e", false, "Skip certificates that fail to parse instead of aborting")

	return cmd
}

func runParseCert(ctx context.Context, options parseCertOptions) error {
	log := logf.FromContext(ctx, "parse-cert")

	ders, err := pemutil.ReadCertificatesDER(options.In)
	if err != nil {
		return err
	}

	for i, der := range ders {
		cert, err := x509cert.ParseCertificate(der)
		if err != nil {
			if options.ignoreParseErrors {
				log.Info("skipping certificate that failed to parse", "index", i, "error", err.Error())
				continue
			}
			return fmt.Errorf("parsing certificate %d: %w", i, err)
		}

		abs, err := policy.FromParsed(cert)
		if err != nil {
			if options.ignoreParseErrors {
				log.Info("skipping certificate that failed to abstract", "index", i, "error", err.Error())
				continue
			}
			return fmt.Errorf("abstracting certificate %d: %w", i, err)
		}

		fmt.Fprintf(options.Out, "certificate %d:\n", i)
		fmt.Fprintf(options.Out, "  subject: %s\n", cert.TBS.Subject)
		fmt.Fprintf(options.Out, "  issuer: %s\n", cert.TBS.Issuer)
		fmt.Fprintf(options.Out, "  version: %d\n", abs.Version)
		fmt.Fprintf(options.Out, "  serial: %s\n", abs.Serial)
		fmt.Fprintf(options.Out, "  signature algorithm: %s\n", abs.SigAlgOuter.ID)
		fmt.Fprintf(options.Out, "  validity: %d to %d\n", abs.NotBefore, abs.NotAfter)
		fmt.Fprintf(options.Out, "  fingerprint: %s\n", abs.Fingerprint)
		if abs.SubjectAltName != nil {
			for _, name := range abs.SubjectAltName.Names {
				if name.Kind == policy.GeneralNameDNS {
					fmt.Fprintf(options.Out, "  dns name: %s\n", name.DNS)
				}
			}
		}
	}
	return nil
}
