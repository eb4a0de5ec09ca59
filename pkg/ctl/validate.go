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
	"time"

	"github.com/spf13/cobra"

	"github.com/certpath/certpath/internal/logf"
	"github.com/certpath/certpath/pkg/bench"
	"github.com/certpath/certpath/pkg/build"
	"github.com/certpath/certpath/pkg/pemutil"
	"github.com/certpath/certpath/pkg/policy"
	"github.com/certpath/certpath/pkg/validate"
)

type validateOptions struct {
	policyName   string
	rootsPath    string
	chainPath    string
	domain       string
	overrideTime int64
	repeat       int
	debug        bool

	IOStreams
}

func validateDescription(ctx context.Context) string {
	return build.WithTemplate(ctx, `Validate an X.509 certificate chain against a trust store.

The chain file holds PEM certificates, leaf first, followed by any
intermediates in any order. The validation answers whether some path from
the leaf through the intermediates to a trusted root satisfies the chosen
policy.

Some example uses:
	$ {{.BuildName}} validate openssl roots.pem chain.pem example.com
or
	$ {{.BuildName}} validate chrome roots.pem chain.pem example.com -t 1725029869
or
	$ {{.BuildName}} validate firefox roots.pem chain.pem --repeat 100
`)
}

// NewCmdValidate returns the validate command.
func NewCmdValidate(setupCtx context.Context, ioStreams IOStreams) *cobra.Command {
	options := validateOptions{IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "validate policy roots.pem chain.pem [domain]",
		Short: "Validate a certificate chain against a policy",
		Long:  validateDescription(setupCtx),
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.policyName = args[0]
			options.rootsPath = args[1]
			options.chainPath = args[2]
			if len(args) == 4 {
				options.domain = args[3]
			}
			return runValidate(cmd.Context(), options)
		},
	}

	cmd.Flags().Int64VarP(&options.overrideTime, "override-time", "t", 0, "Validate at the given UNIX timestamp instead of now")
	cmd.Flags().IntVarP(&options.repeat, "repeat", "n", 1, "Repeat the validation and report latency statistics")
	cmd.Flags().BoolVar(&options.debug, "debug", false, "Log the issuing relation and per-certificate summaries")

	return cmd
}

func runValidate(ctx context.Context, options validateOptions) error {
	log := logf.FromContext(ctx, "validate")

	now := uint64(time.Now().Unix())
	if options.overrideTime != 0 {
		if options.overrideTime < 0 {
			return fmt.Errorf("override time %d is negative", options.overrideTime)
		}
		now = uint64(options.overrideTime)
	}

	validator, err := newValidator(options.policyName, options.rootsPath)
	if err != nil {
		return err
	}
	if options.debug {
		validator = validator.WithLogger(log)
	}

	chain, err := pemutil.ReadFileBase64(options.chainPath)
	if err != nil {
		return err
	}

	task := &policy.Task{Purpose: policy.PurposeServerAuth, Now: now}
	if options.domain != "" {
		domain := options.domain
		task.Hostname = &domain
	}

	if options.debug {
		if err := validator.DebugInfo(log, chain); err != nil {
			return err
		}
	}

	var result bool
	run := func() error {
		var err error
		result, err = validator.ValidateBase64(chain, task)
		return err
	}

	if options.repeat > 1 {
		stats, err := bench.Run(options.repeat, run)
		if err != nil {
			return err
		}
		fmt.Fprintf(options.ErrOut, "timing: %s\n", stats)
	} else if err := run(); err != nil {
		return err
	}

	fmt.Fprintf(options.Out, "result: %t\n", result)
	if !result {
		return errInvalidChain
	}
	return nil
}

// errInvalidChain makes the process exit non-zero on an invalid chain;
// main logs it like any other command error.
var errInvalidChain = fmt.Errorf("chain did not validate")

func newValidator(policyName, rootsPath string) (*validate.Validator, error) {
	roots, err := pemutil.ReadFileBase64(rootsPath)
	if err != nil {
		return nil, err
	}
	store, err := validate.NewRootStoreFromBase64(roots)
	if err != nil {
		return nil, err
	}
	return validate.New(policy.Choice(policyName), store)
}
