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
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/certpath/certpath/internal/logf"
	"github.com/certpath/certpath/pkg/build"
	"github.com/certpath/certpath/pkg/pemutil"
	"github.com/certpath/certpath/pkg/policy"
)

type validateBatchOptions struct {
	policyName   string
	rootsPath    string
	tasksPath    string
	workers      int
	overrideTime int64

	IOStreams
}

func validateBatchDescription(ctx context.Context) string {
	return build.WithTemplate(ctx, `Validate many certificate chains listed in a CSV file.

Each row is 'key,chain-file,domain' where chain-file holds the PEM chain,
leaf first, and domain may be empty to skip hostname checking. The rows
are validated concurrently against one shared validator, and a
'key,domain,result' CSV is written to stdout in input order.

Some example uses:
	$ {{.BuildName}} validate-batch openssl roots.pem tasks.csv
or
	$ {{.BuildName}} validate-batch chrome roots.pem tasks.csv --workers 8 -t 1725029869
`)
}

// NewCmdValidateBatch returns the validate-batch command.
func NewCmdValidateBatch(setupCtx context.Context, ioStreams IOStreams) *cobra.Command {
	options := validateBatchOptions{IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "validate-batch policy roots.pem tasks.csv",
		Short: "Validate many chains from a CSV task list",
		Long:  validateBatchDescription(setupCtx),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.policyName = args[0]
			options.rootsPath = args[1]
			options.tasksPath = args[2]
			return runValidateBatch(cmd.Context(), options)
		},
	}

	cmd.Flags().IntVar(&options.workers, "workers", 4, "Number of concurrent validations")
	cmd.Flags().Int64VarP(&options.overrideTime, "override-time", "t", 0, "Validate at the given UNIX timestamp instead of now")

	return cmd
}

type batchRow struct {
	key    string
	chain  string
	domain string
}

func runValidateBatch(ctx context.Context, options validateBatchOptions) error {
	log := logf.FromContext(ctx, "validate-batch")

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

	f, err := os.Open(options.tasksPath)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading %s: %w", options.tasksPath, err)
	}

	rows := make([]batchRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, batchRow{key: rec[0], chain: rec[1], domain: rec[2]})
	}

	results := make([]string, len(rows))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(options.workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			chain, err := pemutil.ReadFileBase64(row.chain)
			if err != nil {
				return fmt.Errorf("task %s: %w", row.key, err)
			}

			task := &policy.Task{Purpose: policy.PurposeServerAuth, Now: now}
			if row.domain != "" {
				domain := row.domain
				task.Hostname = &domain
			}

			valid, err := validator.ValidateBase64(chain, task)
			if err != nil {
				// A per-task failure becomes a row, not an abort; the
				// batch keeps going.
				log.Info("task failed", "key", row.key, "error", err.Error())
				valid = false
			}

			mu.Lock()
			results[i] = strconv.FormatBool(valid)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	writer := csv.NewWriter(options.Out)
	for i, row := range rows {
		if err := writer.Write([]string{row.key, row.domain, results[i]}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
