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

// Package validate builds and validates certificate chains: given a trust
// store, an unordered bundle of certificates with the leaf first, and a
// policy, it decides whether any simple path from the leaf through the
// bundle to a trusted root satisfies the policy.
package validate

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrEmptyChain reports a validation query with no leaf certificate.
var ErrEmptyChain = errors.New("validate: empty certificate bundle")

// RootStore owns the DER encodings of the trusted root certificates. It is
// immutable after construction and may be shared by any number of
// validators.
type RootStore struct {
	ders [][]byte
}

// NewRootStoreFromDER builds a store from DER blobs. The blobs are copied.
func NewRootStoreFromDER(ders [][]byte) *RootStore {
	owned := make([][]byte, len(ders))
	for i, der := range ders {
		owned[i] = append([]byte(nil), der...)
	}
	return &RootStore{ders: owned}
}

// NewRootStoreFromBase64 decodes standard Base64 blobs into a store.
func NewRootStoreFromBase64(encoded []string) (*RootStore, error) {
	ders := make([][]byte, len(encoded))
	for i, b64 := range encoded {
		der, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("validate: decoding root %d: %w", i, err)
		}
		ders[i] = der
	}
	return &RootStore{ders: ders}, nil
}

// Len reports the number of roots.
func (s *RootStore) Len() int { return len(s.ders) }
