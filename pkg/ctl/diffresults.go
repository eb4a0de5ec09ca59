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
	"io"
	"os"
	"regexp"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/certpath/certpath/pkg/build"
)

type diffResultsOptions struct {
	file1       string
	file2       string
	keyColumn   int
	valueColumn int
	classes     []string

	IOStreams
}

func diffResultsDescription(ctx context.Context) string {
	return build.WithTemplate(ctx, `Compare two CSV files of validation results.

Every row of the second file must have a matching key in the first file;
rows whose result strings fall into different classes are reported with a
character-level diff. Classes are regular expressions that group result
strings meaning the same thing (e.g. 'OK|true'); a result matching no
class forms a singleton class of itself.

Some example uses:
	$ {{.BuildName}} diff-results ours.csv theirs.csv
or
	$ {{.BuildName}} validate-batch openssl roots.pem tasks.csv | {{.BuildName}} diff-results expected.csv
or
	$ {{.BuildName}} diff-results ours.csv theirs.csv --class 'OK|true' --class 'ERR.*|false'
`)
}

// NewCmdDiffResults returns the diff-results command.
func NewCmdDiffResults(setupCtx context.Context, ioStreams IOStreams) *cobra.Command {
	options := diffResultsOptions{IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:   "diff-results file1.csv [file2.csv]",
		Short: "Compare two CSV result files",
		Long:  diffResultsDescription(setupCtx),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.file1 = args[0]
			if len(args) == 2 {
				options.file2 = args[1]
			}
			return runDiffResults(cmd.Context(), options)
		},
	}

	cmd.Flags().IntVarP(&options.keyColumn, "key", "k", 0, "Column holding the row key")
	cmd.Flags().IntVarP(&options.valueColumn, "value", "v", 2, "Column holding the result string")
	cmd.Flags().StringArrayVarP(&options.classes, "class", "c", nil, "Regex classes of equivalent result strings")

	return cmd
}

// diffClass buckets a result string: the index of the first matching class
// regex, or the string itself as a singleton.
type diffClass struct {
	class     int
	singleton string
}

func classOf(classes []*regexp.Regexp, s string) diffClass {
	for i, re := range classes {
		if re.MatchString(s) {
			return diffClass{class: i}
		}
	}
	return diffClass{class: -1, singleton: s}
}

func runDiffResults(_ context.Context, options diffResultsOptions) error {
	classes := make([]*regexp.Regexp, 0, len(options.classes))
	for _, pat := range options.classes {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("compiling class %q: %w", pat, err)
		}
		classes = append(classes, re)
	}

	maxColumn := options.keyColumn
	if options.valueColumn > maxColumn {
		maxColumn = options.valueColumn
	}

	readRows := func(r io.Reader) ([][]string, error) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, err
		}
		for i, row := range rows {
			if len(row) <= maxColumn {
				return nil, fmt.Errorf("row %d has %d columns, need %d", i, len(row), maxColumn+1)
			}
		}
		return rows, nil
	}

	f1, err := os.Open(options.file1)
	if err != nil {
		return err
	}
	defer f1.Close()
	rows1, err := readRows(f1)
	if err != nil {
		return fmt.Errorf("reading %s: %w", options.file1, err)
	}

	baseline := make(map[string]string, len(rows1))
	for _, row := range rows1 {
		baseline[row[options.keyColumn]] = row[options.valueColumn]
	}

	var in io.Reader = options.In
	if options.file2 != "" {
		f2, err := os.Open(options.file2)
		if err != nil {
			return err
		}
		defer f2.Close()
		in = f2
	}
	rows2, err := readRows(in)
	if err != nil {
		return fmt.Errorf("reading second input: %w", err)
	}

	dmp := diffmatchpatch.New()
	matchCount := map[diffClass]int{}
	mismatches := 0

	for _, row := range rows2 {
		key := row[options.keyColumn]
		value := row[options.valueColumn]

		baseValue, ok := baseline[key]
		if !ok {
			fmt.Fprintf(options.Out, "%s does not exist in %s\n", key, options.file1)
			mismatches++
			continue
		}

		if classOf(classes, baseValue) != classOf(classes, value) {
			diffs := dmp.DiffMain(baseValue, value, false)
			fmt.Fprintf(options.Out, "mismatch at %s: %s\n", key, dmp.DiffPrettyText(diffs))
			mismatches++
			continue
		}
		matchCount[classOf(classes, baseValue)]++
	}

	for class, count := range matchCount {
		if class.class >= 0 {
			fmt.Fprintf(options.Out, "matching class %s: %d\n", options.classes[class.class], count)
		} else {
			fmt.Fprintf(options.Out, "matching value %q: %d\n", class.singleton, count)
		}
	}

	if mismatches > 0 {
		return fmt.Errorf("%d mismatching result(s)", mismatches)
	}
	return nil
}
