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

// Package logf centralizes logging setup: logr as the logging interface
// everywhere, klog as the sink the CLI configures.
package logf

import (
	"context"
	"flag"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// Log is the base logger.
var Log = klog.Background()

// NewContext attaches a logger to a context.
func NewContext(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// FromContext returns the context's logger, optionally descended into the
// given names, falling back to Log.
func FromContext(ctx context.Context, names ...string) logr.Logger {
	log, err := logr.FromContext(ctx)
	if err != nil {
		log = Log
	}
	for _, name := range names {
		log = log.WithName(name)
	}
	return log
}

// AddFlags registers the klog verbosity flags on a pflag set.
func AddFlags(fs *pflag.FlagSet) {
	var goFlags flag.FlagSet
	klog.InitFlags(&goFlags)
	goFlags.VisitAll(func(f *flag.Flag) {
		// Only the verbosity knob is exposed; the file-output flags make
		// no sense for a ctl binary.
		if f.Name == "v" {
			fs.AddGoFlag(f)
		}
	})
}
