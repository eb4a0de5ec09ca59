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

package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"text/template"
)

var defaultCtlName string = "certpathctl"

// Version is stamped by the build.
var Version = "dev"

// DetectCtlInfo returns the name the binary was invoked as.
func DetectCtlInfo() string {
	return filepath.Base(os.Args[0])
}

// contextNameKey is how we find the ctl name in a context.Context.
type contextNameKey struct{}

// WithCtlInfo stores the ctl name in the context.
func WithCtlInfo(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextNameKey{}, name)
}

// Name returns the configured ctl name.
func Name(ctx context.Context) string {
	name, ok := ctx.Value(contextNameKey{}).(string)
	if !ok {
		return defaultCtlName
	}

	return name
}

// WithTemplate returns a string that has the build name templated out with
// the configured build name. Build name templates on '{{ .BuildName }}'
// variable.
func WithTemplate(ctx context.Context, str string) string {
	buildName := Name(ctx)
	tmpl := template.Must(template.New("build-name").Parse(str))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ BuildName string }{buildName}); err != nil {
		// We panic here as it should never be possible that this template fails.
		panic(err)
	}
	return buf.String()
}
