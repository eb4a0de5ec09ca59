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
	"crypto/rsa"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/certpath/certpath/pkg/der"
	"github.com/certpath/certpath/pkg/policy"
	"github.com/certpath/certpath/pkg/signature"
	"github.com/certpath/certpath/pkg/x509cert"
)

// Validator binds a policy to a root store. It is immutable after New and
// safe for concurrent use; each validation call owns its own caches.
type Validator struct {
	pol   policy.Policy
	log   logr.Logger
	roots []*x509cert.Certificate

	// rootsRSA caches the parsed public key of RSA roots; nil entries
	// fall back to generic verification.
	rootsRSA []*rsa.PublicKey
	rootsAbs []*policy.Certificate
}

// New parses every root in the store, derives its abstract view, and
// preloads public keys for RSA roots.
func New(choice policy.Choice, store *RootStore) (*Validator, error) {
	pol, err := policy.New(choice)
	if err != nil {
		return nil, err
	}
	return NewWithPolicy(pol, store)
}

// NewWithPolicy is New with an explicit policy implementation.
func NewWithPolicy(pol policy.Policy, store *RootStore) (*Validator, error) {
	v := &Validator{
		pol:      pol,
		log:      logr.Discard(),
		roots:    make([]*x509cert.Certificate, 0, store.Len()),
		rootsRSA: make([]*rsa.PublicKey, 0, store.Len()),
		rootsAbs: make([]*policy.Certificate, 0, store.Len()),
	}

	for i, rootDER := range store.ders {
		cert, err := x509cert.ParseCertificate(rootDER)
		if err != nil {
			return nil, fmt.Errorf("validate: parsing root %d: %w", i, err)
		}
		abs, err := policy.FromParsed(cert)
		if err != nil {
			return nil, fmt.Errorf("validate: abstracting root %d: %w", i, err)
		}

		var pub *rsa.PublicKey
		if cert.TBS.PublicKey.Algorithm.OID.Equal(x509cert.OIDRSAEncryption) {
			// A root whose key fails to parse stays usable through the
			// generic path, which will reject it then.
			pub, _ = signature.LoadRSAPublicKey(cert.TBS.PublicKey.PublicKey.Bytes())
		}

		v.roots = append(v.roots, cert)
		v.rootsRSA = append(v.rootsRSA, pub)
		v.rootsAbs = append(v.rootsAbs, abs)
	}
	return v, nil
}

// WithLogger returns a copy of the validator that traces path exploration
// through log.
func (v *Validator) WithLogger(log logr.Logger) *Validator {
	out := *v
	out.log = log
	return &out
}

// Policy exposes the bound policy.
func (v *Validator) Policy() policy.Policy { return v.pol }

// Roots exposes the parsed roots, for diagnostics.
func (v *Validator) Roots() []*x509cert.Certificate { return v.roots }

// queryCache holds the per-validation derived state.
type queryCache struct {
	bundle    []*x509cert.Certificate
	bundleAbs []*policy.Certificate

	// rootIssuers[i] lists the root indices that likely issued bundle[i],
	// with the signature already verified.
	rootIssuers [][]int
}

func (v *Validator) newCache(bundle []*x509cert.Certificate) (*queryCache, error) {
	cache := &queryCache{
		bundle:      bundle,
		bundleAbs:   make([]*policy.Certificate, 0, len(bundle)),
		rootIssuers: make([][]int, len(bundle)),
	}
	for i, cert := range bundle {
		abs, err := policy.FromParsed(cert)
		if err != nil {
			return nil, fmt.Errorf("validate: abstracting bundle certificate %d: %w", i, err)
		}
		cache.bundleAbs = append(cache.bundleAbs, abs)
	}
	for i := range bundle {
		cache.rootIssuers[i] = v.rootIssuersOf(cache, i)
	}
	return cache, nil
}

func (v *Validator) rootIssuersOf(cache *queryCache, idx int) []int {
	var issuers []int
	for r := range v.roots {
		if v.checkRootLikelyIssued(cache, r, idx) {
			issuers = append(issuers, r)
		}
	}
	return issuers
}

// checkInterimLikelyIssued is the name check plus signature verification
// between two bundle certificates.
func (v *Validator) checkInterimLikelyIssued(cache *queryCache, issuerIdx, subjectIdx int) bool {
	return v.pol.LikelyIssued(cache.bundleAbs[issuerIdx], cache.bundleAbs[subjectIdx]) &&
		signature.Verify(cache.bundle[issuerIdx], cache.bundle[subjectIdx])
}

// checkRootLikelyIssued is checkInterimLikelyIssued against a root, going
// through the per-root RSA key cache when one exists.
func (v *Validator) checkRootLikelyIssued(cache *queryCache, rootIdx, subjectIdx int) bool {
	if !v.pol.LikelyIssued(v.rootsAbs[rootIdx], cache.bundleAbs[subjectIdx]) {
		return false
	}

	subject := cache.bundle[subjectIdx]
	if pub := v.rootsRSA[rootIdx]; pub != nil {
		sigAlg := subject.SignatureAlgorithm.OID
		if !isRSASignature(sigAlg) {
			return false
		}
		return signature.VerifyRSAPKCS1v15(sigAlg, pub, subject.Signature.Bytes(), subject.TBS.Raw) == nil
	}
	return signature.Verify(v.roots[rootIdx], subject)
}

func isRSASignature(oid der.OID) bool {
	return oid.Equal(x509cert.OIDRSASignatureSHA224) ||
		oid.Equal(x509cert.OIDRSASignatureSHA256) ||
		oid.Equal(x509cert.OIDRSASignatureSHA384) ||
		oid.Equal(x509cert.OIDRSASignatureSHA512)
}
