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

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"  a  ", "a"},
		{"   aa b   C  ", "aa b c"},
		{"  a  b  c  ", "a b c"},
		{"Example CA", "example ca"},
		// Only the ASCII space folds; other whitespace stays.
		{"a\tb", "a\tb"},
	}
	for _, tc := range tests {
		got := NormalizeString(tc.in)
		assert.Equal(t, tc.want, got, "normalize %q", tc.in)

		// Idempotence.
		assert.Equal(t, got, NormalizeString(got))
	}
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"a.b", "a.b", true},
		{"*.b", "a.b", true},
		{"*.b", "b", true},
		{"*.b", "a.c.b", false}, // the wildcard must not span dots
		{"*", "a", false},       // a bare asterisk matches nothing
		{"*.", "a.", false},
		{"a.b", "c.b", false},
		{"*.example.com", "www.example.com", true},
		{"*.example.com", "example.com", true},
		{"*.example.com", "a.b.example.com", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MatchName(tc.pattern, tc.name), "MatchName(%q, %q)", tc.pattern, tc.name)
	}
}

func TestPermitName(t *testing.T) {
	tests := []struct {
		constraint string
		name       string
		want       bool
	}{
		{"", "anything.com", true},
		{".example.com", "www.example.com", true},
		{".example.com", "example.com", false},
		{"example.com", "example.com", true},
		{"example.com", "www.example.com", true},
		{"example.com", "wwwexample.com", false},
		{"example.com", "evil.com", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PermitName(tc.constraint, tc.name), "PermitName(%q, %q)", tc.constraint, tc.name)
	}
}

func TestMatchDNSNameOpenSSL(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"", "anything.com", true},
		{"example.com", "api.example.com", true},
		{"example.com", "wwwexample.com", false},
		{".example.com", "wwwa.example.com", true},
		{"example.com", "Example.COM", true},
		{"example.com", "evil.com", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MatchDNSNameOpenSSL(tc.pattern, tc.name), "MatchDNSNameOpenSSL(%q, %q)", tc.pattern, tc.name)
	}
}

func TestIPAddrInRange(t *testing.T) {
	addr := []byte{192, 168, 1, 17}
	mask := []byte{255, 255, 255, 0}

	// An address concatenated with any mask covers itself.
	assert.True(t, IPAddrInRange(append(append([]byte{}, addr...), mask...), addr))

	// The all-zero mask accepts everything of the right length.
	zero := append([]byte{10, 0, 0, 0}, []byte{0, 0, 0, 0}...)
	assert.True(t, IPAddrInRange(zero, []byte{172, 16, 0, 1}))
	assert.False(t, IPAddrInRange(zero, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}))

	// Subnet membership.
	subnet := append([]byte{192, 168, 1, 0}, mask...)
	assert.True(t, IPAddrInRange(subnet, []byte{192, 168, 1, 200}))
	assert.False(t, IPAddrInRange(subnet, []byte{192, 168, 2, 1}))

	// Length mismatches never match.
	assert.False(t, IPAddrInRange(subnet, []byte{192, 168, 1}))
}

func TestSameDN(t *testing.T) {
	a := DistinguishedName{{{OID: "2.5.4.3", Value: "Example  CA"}}}
	b := DistinguishedName{{{OID: "2.5.4.3", Value: "example ca"}}}

	assert.True(t, SameDN(a, a, false))
	assert.False(t, SameDN(a, b, false))
	assert.True(t, SameDN(a, b, true))

	c := DistinguishedName{{{OID: "2.5.4.10", Value: "Example  CA"}}}
	assert.False(t, SameDN(a, c, true))

	assert.False(t, SameDN(a, DistinguishedName{}, true))
}

func TestIsSubtreeOf(t *testing.T) {
	base := DistinguishedName{
		{{OID: "2.5.4.6", Value: "US"}},
		{{OID: "2.5.4.10", Value: "Example Org"}},
	}
	deeper := DistinguishedName{
		{{OID: "2.5.4.6", Value: "US"}},
		{{OID: "2.5.4.10", Value: "Example Org"}},
		{{OID: "2.5.4.3", Value: "host.example.com"}},
	}

	assert.True(t, IsSubtreeOf(base, deeper, false))
	assert.False(t, IsSubtreeOf(deeper, base, false))
	assert.True(t, IsSubtreeOf(DistinguishedName{}, base, false))
}

func TestCheckAuthKeyID(t *testing.T) {
	keyID := "AABB"
	serial := "01"
	issuer := &Certificate{
		Serial:       "01",
		SubjectKeyID: &SubjectKeyIdentifier{KeyID: "AABB"},
	}

	assert.True(t, CheckAuthKeyID(issuer, &Certificate{}))
	assert.True(t, CheckAuthKeyID(issuer, &Certificate{
		AuthorityKeyID: &AuthorityKeyIdentifier{KeyID: &keyID, Serial: &serial},
	}))

	wrongKey := "CCDD"
	assert.False(t, CheckAuthKeyID(issuer, &Certificate{
		AuthorityKeyID: &AuthorityKeyIdentifier{KeyID: &wrongKey},
	}))

	wrongSerial := "02"
	assert.False(t, CheckAuthKeyID(issuer, &Certificate{
		AuthorityKeyID: &AuthorityKeyIdentifier{Serial: &wrongSerial},
	}))

	// Without an issuer SKI the key id is not comparable and passes.
	bareIssuer := &Certificate{Serial: "01"}
	assert.True(t, CheckAuthKeyID(bareIssuer, &Certificate{
		AuthorityKeyID: &AuthorityKeyIdentifier{KeyID: &keyID},
	}))
}
