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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certpath/certpath/internal/testca"
	"github.com/certpath/certpath/pkg/policy"
)

var (
	notBefore = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notAfter  = time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC)
	testNow   = uint64(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Unix())
)

var allPolicies = []policy.Choice{policy.ChoiceChrome, policy.ChoiceFirefox, policy.ChoiceOpenSSL}

func newRoot(cn string, ski []byte) *testca.Entity {
	spec := testca.CASpec(cn, notBefore, notAfter, ski)
	// Give roots an AKI matching their own SKI so they also pass the
	// leaf-position checks when trusted directly.
	spec.AuthorityKeyID = ski
	return testca.New(spec, nil)
}

func newValidatorFor(t *testing.T, choice policy.Choice, roots ...*testca.Entity) *Validator {
	t.Helper()
	ders := make([][]byte, 0, len(roots))
	for _, root := range roots {
		ders = append(ders, root.DER)
	}
	v, err := New(choice, NewRootStoreFromDER(ders))
	require.NoError(t, err)
	return v
}

func task(hostname string, now uint64) *policy.Task {
	task := &policy.Task{Purpose: policy.PurposeServerAuth, Now: now}
	if hostname != "" {
		task.Hostname = &hostname
	}
	return task
}

func validateDER(t *testing.T, v *Validator, bundle []*testca.Entity, task *policy.Task) bool {
	t.Helper()
	ders := make([][]byte, 0, len(bundle))
	for _, entity := range bundle {
		ders = append(ders, entity.DER)
	}
	ok, err := v.ValidateDER(ders, task)
	require.NoError(t, err)
	return ok
}

// Scenario: a self-signed root trusted directly validates as a chain of
// one.
func TestSelfSignedRootTrustedDirectly(t *testing.T) {
	root := newRoot("Direct Trust Root", []byte{0x11, 0x22})

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		assert.True(t, validateDER(t, v, []*testca.Entity{root}, task("", testNow)), choice)
	}
}

// Scenario: leaf signed by an intermediate signed by a root, with a
// matching hostname.
func TestSingleIntermediateMatchingHostname(t *testing.T) {
	root := newRoot("Chain Root", []byte{1})
	interm := testca.New(testca.CASpec("Chain Intermediate", notBefore, notAfter, []byte{2}), root)
	leaf := testca.New(testca.LeafSpec("example.com", []string{"example.com"}, notBefore, notAfter), interm)

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		assert.True(t, validateDER(t, v, []*testca.Entity{leaf, interm}, task("example.com", testNow)), choice)
		assert.False(t, validateDER(t, v, []*testca.Entity{leaf, interm}, task("other.com", testNow)), choice)
		// Without the intermediate there is no path.
		assert.False(t, validateDER(t, v, []*testca.Entity{leaf}, task("example.com", testNow)), choice)
	}
}

// Scenario: wildcard SANs match one label, not two.
func TestWildcardHostname(t *testing.T) {
	root := newRoot("Wildcard Root", []byte{3})
	interm := testca.New(testca.CASpec("Wildcard Intermediate", notBefore, notAfter, []byte{4}), root)
	leaf := testca.New(testca.LeafSpec("*.example.com", []string{"*.example.com"}, notBefore, notAfter), interm)

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		bundle := []*testca.Entity{leaf, interm}
		assert.True(t, validateDER(t, v, bundle, task("www.example.com", testNow)), choice)
		assert.False(t, validateDER(t, v, bundle, task("a.b.example.com", testNow)), choice)
	}
}

// Scenario: an expired leaf is invalid under all three policies.
func TestExpiredLeaf(t *testing.T) {
	root := newRoot("Expiry Root", []byte{5})
	expired := testca.New(testca.LeafSpec("expired.example.com", []string{"expired.example.com"},
		notBefore, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), root)

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		assert.False(t, validateDER(t, v, []*testca.Entity{expired}, task("expired.example.com", testNow)), choice)
	}
}

// The notAfter boundary is strict under OpenSSL and inclusive under
// Chrome and Firefox.
func TestNotAfterBoundary(t *testing.T) {
	boundary := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	root := newRoot("Boundary Root", []byte{6})
	leaf := testca.New(testca.LeafSpec("edge.example.com", []string{"edge.example.com"}, notBefore, boundary), root)

	at := uint64(boundary.Unix())
	bundle := []*testca.Entity{leaf}

	assert.False(t, validateDER(t, newValidatorFor(t, policy.ChoiceOpenSSL, root), bundle, task("edge.example.com", at)))
	assert.True(t, validateDER(t, newValidatorFor(t, policy.ChoiceChrome, root), bundle, task("edge.example.com", at)))
	assert.True(t, validateDER(t, newValidatorFor(t, policy.ChoiceFirefox, root), bundle, task("edge.example.com", at)))
}

// Scenario: a name-constrained intermediate admits covered names and
// rejects the rest.
func TestNameConstraintViolation(t *testing.T) {
	root := newRoot("NC Root", []byte{7})
	spec := testca.CASpec("NC Intermediate", notBefore, notAfter, []byte{8})
	spec.PermittedDNS = []string{"example.com"}
	interm := testca.New(spec, root)

	good := testca.New(testca.LeafSpec("api.example.com", []string{"api.example.com"}, notBefore, notAfter), interm)
	evil := testca.New(testca.LeafSpec("evil.com", []string{"evil.com"}, notBefore, notAfter), interm)

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		assert.True(t, validateDER(t, v, []*testca.Entity{good, interm}, task("api.example.com", testNow)), choice)
		assert.False(t, validateDER(t, v, []*testca.Entity{evil, interm}, task("evil.com", testNow)), choice)
	}
}

// Scenario: a root with pathLen 0 signs leaves, not intermediates.
func TestPathLengthConstraint(t *testing.T) {
	spec := testca.CASpec("PathLen Root", notBefore, notAfter, []byte{9})
	spec.AuthorityKeyID = []byte{9}
	spec.MaxPathLen = 0
	root := testca.New(spec, nil)

	interm := testca.New(testca.CASpec("PathLen Intermediate", notBefore, notAfter, []byte{10}), root)
	deep := testca.New(testca.LeafSpec("deep.example.com", []string{"deep.example.com"}, notBefore, notAfter), interm)
	direct := testca.New(testca.LeafSpec("direct.example.com", []string{"direct.example.com"}, notBefore, notAfter), root)

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		assert.False(t, validateDER(t, v, []*testca.Entity{deep, interm}, task("deep.example.com", testNow)), choice)
		assert.True(t, validateDER(t, v, []*testca.Entity{direct}, task("direct.example.com", testNow)), choice)
	}
}

// Adding unrelated intermediates cannot turn a valid bundle invalid, and
// the answer does not depend on bundle order past the leaf.
func TestMonotonicityAndOrderInvariance(t *testing.T) {
	root := newRoot("Mono Root", []byte{11})
	i2 := testca.New(testca.CASpec("Mono Intermediate 2", notBefore, notAfter, []byte{12}), root)
	i1 := testca.New(testca.CASpec("Mono Intermediate 1", notBefore, notAfter, []byte{13}), i2)
	leaf := testca.New(testca.LeafSpec("mono.example.com", []string{"mono.example.com"}, notBefore, notAfter), i1)

	unrelated := newRoot("Unrelated Self-Signed", []byte{14})

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		tk := task("mono.example.com", testNow)

		assert.True(t, validateDER(t, v, []*testca.Entity{leaf, i1, i2}, tk), choice)
		assert.True(t, validateDER(t, v, []*testca.Entity{leaf, i2, i1}, tk), choice)
		assert.True(t, validateDER(t, v, []*testca.Entity{leaf, unrelated, i2, i1}, tk), choice)
		assert.True(t, validateDER(t, v, []*testca.Entity{leaf, i1, unrelated, i2}, tk), choice)
	}
}

func TestEmptyBundle(t *testing.T) {
	root := newRoot("Empty Root", []byte{15})
	v := newValidatorFor(t, policy.ChoiceChrome, root)

	_, err := v.ValidateDER(nil, task("", testNow))
	require.ErrorIs(t, err, ErrEmptyChain)

	_, err = v.Validate(nil, task("", testNow))
	require.ErrorIs(t, err, ErrEmptyChain)
}

func TestValidateBase64(t *testing.T) {
	root := newRoot("B64 Root", []byte{16})
	leaf := testca.New(testca.LeafSpec("b64.example.com", []string{"b64.example.com"}, notBefore, notAfter), root)

	store, err := NewRootStoreFromBase64([]string{root.Base64()})
	require.NoError(t, err)
	v, err := New(policy.ChoiceOpenSSL, store)
	require.NoError(t, err)

	ok, err := v.ValidateBase64([]string{leaf.Base64()}, task("b64.example.com", testNow))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = v.ValidateBase64([]string{"!!!not base64!!!"}, task("", testNow))
	require.Error(t, err)
}

func TestMalformedBundleCertificate(t *testing.T) {
	root := newRoot("Malformed Root", []byte{17})
	v := newValidatorFor(t, policy.ChoiceChrome, root)

	_, err := v.ValidateDER([][]byte{{0x30, 0x01}}, task("", testNow))
	require.Error(t, err)
}

// The RSA root key cache takes the fast path and agrees with generic
// verification.
func TestRSARootKeyCache(t *testing.T) {
	spec := testca.CASpec("RSA Cache Root", notBefore, notAfter, []byte{18})
	spec.AuthorityKeyID = []byte{18}
	spec.RSABits = 2048
	root := testca.New(spec, nil)

	leafSpec := testca.LeafSpec("rsacache.example.com", []string{"rsacache.example.com"}, notBefore, notAfter)
	leafSpec.RSABits = 2048
	leaf := testca.New(leafSpec, root)

	for _, choice := range allPolicies {
		v := newValidatorFor(t, choice, root)
		assert.True(t, validateDER(t, v, []*testca.Entity{leaf}, task("rsacache.example.com", testNow)), choice)
	}
}

// A leaf signed by an untrusted look-alike of the trusted root fails
// even though the names line up.
func TestUntrustedTwinRoot(t *testing.T) {
	trusted := newRoot("Twin Root", []byte{19})
	twin := newRoot("Twin Root", []byte{19})
	leaf := testca.New(testca.LeafSpec("twin.example.com", []string{"twin.example.com"}, notBefore, notAfter), twin)

	v := newValidatorFor(t, policy.ChoiceChrome, trusted)
	assert.False(t, validateDER(t, v, []*testca.Entity{leaf}, task("twin.example.com", testNow)))
}
