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

package validate

import (
	"encoding/base64"
	"fmt"

	"github.com/certpath/certpath/pkg/policy"
	"github.com/certpath/certpath/pkg/x509cert"
)

// Validate decides whether any simple path from bundle[0] through the
// bundle to a trusted root satisfies the policy. The bundle order past the
// leaf does not affect the answer.
func (v *Validator) Validate(bundle []*x509cert.Certificate, task *policy.Task) (bool, error) {
	if len(bundle) == 0 {
		return false, ErrEmptyChain
	}

	cache, err := v.newCache(bundle)
	if err != nil {
		return false, err
	}

	// Depth-first search over path prefixes, leaf first. The stack holds
	// simple paths of bundle indices.
	stack := [][]int{{0}}
	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		last := path[len(path)-1]

		// Try to complete the path with each plausible root.
		for _, rootIdx := range cache.rootIssuers[last] {
			ok, err := v.checkChainPolicy(cache, path, rootIdx, task)
			if err != nil {
				return false, err
			}
			if ok {
				v.log.V(1).Info("found valid chain", "path", path, "root", rootIdx)
				return true, nil
			}
		}

		// Extend the path with every unused bundle certificate that
		// plausibly issued its tail. Ascending index order keeps the
		// exploration deterministic.
		for i := 0; i < len(bundle); i++ {
			if containsIndex(path, i) {
				continue
			}
			if !v.checkInterimLikelyIssued(cache, i, last) {
				continue
			}
			next := make([]int, len(path), len(path)+1)
			copy(next, path)
			stack = append(stack, append(next, i))
		}
	}
	return false, nil
}

func (v *Validator) checkChainPolicy(cache *queryCache, path []int, rootIdx int, task *policy.Task) (bool, error) {
	candidate := make([]*policy.Certificate, 0, len(path)+1)
	for _, idx := range path {
		candidate = append(candidate, cache.bundleAbs[idx])
	}
	candidate = append(candidate, v.rootsAbs[rootIdx])

	ok, err := v.pol.ValidChain(candidate, task)
	if err != nil {
		return false, fmt.Errorf("validate: policy error: %w", err)
	}
	return ok, nil
}

// ValidateDER parses a DER bundle and validates it. bundle[0] is the leaf.
func (v *Validator) ValidateDER(bundle [][]byte, task *policy.Task) (bool, error) {
	if len(bundle) == 0 {
		return false, ErrEmptyChain
	}
	parsed := make([]*x509cert.Certificate, 0, len(bundle))
	for i, der := range bundle {
		cert, err := x509cert.ParseCertificate(der)
		if err != nil {
			return false, fmt.Errorf("validate: parsing bundle certificate %d: %w", i, err)
		}
		parsed = append(parsed, cert)
	}
	return v.Validate(parsed, task)
}

// ValidateBase64 decodes a standard-Base64 bundle and validates it.
func (v *Validator) ValidateBase64(bundle []string, task *policy.Task) (bool, error) {
	if len(bundle) == 0 {
		return false, ErrEmptyChain
	}
	ders := make([][]byte, 0, len(bundle))
	for i, b64 := range bundle {
		der, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return false, fmt.Errorf("validate: decoding bundle certificate %d: %w", i, err)
		}
		ders = append(ders, der)
	}
	return v.ValidateDER(ders, task)
}

func containsIndex(path []int, idx int) bool {
	for _, p := range path {
		if p == idx {
			return true
		}
	}
	return false
}
