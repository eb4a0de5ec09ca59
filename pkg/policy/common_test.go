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
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestCheckCA(t *testing.T) {
	tests := []struct {
		name string
		cert *Certificate
		want int
	}{
		{
			name: "key usage without certSign",
			cert: &Certificate{Version: 3, KeyUsage: &KeyUsage{DigitalSignature: true}},
			want: 0,
		},
		{
			name: "basic constraints CA",
			cert: &Certificate{
				Version:     3,
				BasicConstr: &BasicConstraints{IsCA: true},
				KeyUsage:    &KeyUsage{KeyCertSign: true},
			},
			want: 1,
		},
		{
			name: "basic constraints non-CA",
			cert: &Certificate{Version: 3, BasicConstr: &BasicConstraints{IsCA: false}},
			want: 0,
		},
		{
			name: "v1 certificate",
			cert: &Certificate{Version: 1},
			want: 2,
		},
		{
			name: "certSign without basic constraints",
			cert: &Certificate{Version: 3, KeyUsage: &KeyUsage{KeyCertSign: true}},
			want: 2,
		},
		{
			name: "no extensions v3",
			cert: &Certificate{Version: 3},
			want: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, checkCA(tc.cert))
		})
	}
}

func TestCheckBasicConstraints(t *testing.T) {
	// Path length requires both the CA bit and keyCertSign.
	cert := &Certificate{
		BasicConstr: &BasicConstraints{Critical: boolPtr(true), IsCA: true, PathLen: int64Ptr(1)},
		KeyUsage:    &KeyUsage{KeyCertSign: true},
	}
	assert.True(t, checkBasicConstraints(cert))

	cert.KeyUsage = &KeyUsage{DigitalSignature: true}
	assert.False(t, checkBasicConstraints(cert))

	cert.KeyUsage = nil
	assert.False(t, checkBasicConstraints(cert))

	// A CA's basicConstraints must be critical.
	assert.False(t, checkBasicConstraints(&Certificate{
		BasicConstr: &BasicConstraints{IsCA: true},
	}))
	assert.True(t, checkBasicConstraints(&Certificate{
		BasicConstr: &BasicConstraints{Critical: boolPtr(true), IsCA: true},
	}))
}

func TestCheckCertTimeBounds(t *testing.T) {
	cert := &Certificate{NotBefore: 100, NotAfter: 200}

	strict := &NewOpenSSLPolicy().p
	inclusive := &NewChromePolicy().p

	assert.False(t, strict.checkCertTime(cert, 99))
	assert.True(t, strict.checkCertTime(cert, 100))
	assert.True(t, strict.checkCertTime(cert, 199))
	// OpenSSL treats notAfter == now as expired; Chrome and Firefox
	// accept it.
	assert.False(t, strict.checkCertTime(cert, 200))
	assert.True(t, inclusive.checkCertTime(cert, 200))
	assert.True(t, (&NewFirefoxPolicy().p).checkCertTime(cert, 200))
	assert.False(t, inclusive.checkCertTime(cert, 201))
}

func TestV1CertificateWithExtensionsIsFatal(t *testing.T) {
	for _, p := range []*profile{&NewOpenSSLPolicy().p, &NewChromePolicy().p, &NewFirefoxPolicy().p} {
		cert := &Certificate{Version: 1}
		assert.True(t, p.checkAuthSubjectKeyID(cert, false, true), "%s: bare v1", p.name)

		cert.HasExts = true
		cert.AllExts = []ExtensionInfo{{OID: oidExtBasicConstraints}}
		assert.False(t, p.checkAuthSubjectKeyID(cert, false, true), "%s: v1 with extensions", p.name)
	}
}

func TestV3KeyIDPresence(t *testing.T) {
	keyID := "AA"
	withAKI := &Certificate{
		Version:        3,
		HasExts:        true,
		AuthorityKeyID: &AuthorityKeyIdentifier{KeyID: &keyID},
	}
	bare := &Certificate{Version: 3, HasExts: true}

	openssl := &NewOpenSSLPolicy().p
	firefox := &NewFirefoxPolicy().p

	// Leaf position: needs AKI under OpenSSL/Chrome, not under Firefox.
	assert.True(t, openssl.checkAuthSubjectKeyID(withAKI, false, true))
	assert.False(t, openssl.checkAuthSubjectKeyID(bare, false, true))
	assert.True(t, firefox.checkAuthSubjectKeyID(bare, false, true))

	// Non-leaf also needs an SKI under OpenSSL/Chrome.
	assert.False(t, openssl.checkAuthSubjectKeyID(withAKI, false, false))
	withBoth := &Certificate{
		Version:        3,
		HasExts:        true,
		AuthorityKeyID: &AuthorityKeyIdentifier{KeyID: &keyID},
		SubjectKeyID:   &SubjectKeyIdentifier{KeyID: "BB"},
	}
	assert.True(t, openssl.checkAuthSubjectKeyID(withBoth, false, false))

	// Roots are exempt from the AKI requirement.
	rootNoAKI := &Certificate{
		Version:      3,
		HasExts:      true,
		SubjectKeyID: &SubjectKeyIdentifier{KeyID: "BB"},
	}
	assert.True(t, openssl.checkAuthSubjectKeyID(rootNoAKI, true, false))
}

func TestSKICriticality(t *testing.T) {
	// The AKI key id satisfies Chrome's v3 presence rule, so only the SKI's
	// criticality differs between the policies.
	keyID := "BB"
	cert := &Certificate{
		Version:        3,
		HasExts:        true,
		AuthorityKeyID: &AuthorityKeyIdentifier{KeyID: &keyID},
		SubjectKeyID:   &SubjectKeyIdentifier{Critical: boolPtr(true), KeyID: "AA"},
	}

	// Firefox and OpenSSL reject a critical SKI; Chrome tolerates it.
	assert.False(t, (&NewFirefoxPolicy().p).checkAuthSubjectKeyID(cert, false, true))
	assert.False(t, (&NewOpenSSLPolicy().p).checkAuthSubjectKeyID(cert, false, true))
	assert.True(t, (&NewChromePolicy().p).checkAuthSubjectKeyID(cert, false, true))

	// A critical AKI is fatal everywhere.
	akiCert := &Certificate{
		Version:        3,
		HasExts:        true,
		AuthorityKeyID: &AuthorityKeyIdentifier{Critical: boolPtr(true)},
	}
	for _, p := range []*profile{&NewOpenSSLPolicy().p, &NewChromePolicy().p, &NewFirefoxPolicy().p} {
		assert.False(t, p.checkAuthSubjectKeyID(akiCert, false, true), p.name)
	}
}

func TestDuplicateAndUnknownCriticalExtensions(t *testing.T) {
	p := &NewOpenSSLPolicy().p

	dup := &Certificate{HasExts: true, AllExts: []ExtensionInfo{
		{OID: oidExtKeyUsage},
		{OID: oidExtKeyUsage},
	}}
	assert.False(t, checkDuplicateExtensions(dup))

	unknownCritical := &Certificate{HasExts: true, AllExts: []ExtensionInfo{
		{OID: "1.2.3.4", Critical: boolPtr(true)},
	}}
	assert.False(t, p.checkUnhandledExtensions(unknownCritical))

	unknownNonCritical := &Certificate{HasExts: true, AllExts: []ExtensionInfo{
		{OID: "1.2.3.4"},
	}}
	assert.True(t, p.checkUnhandledExtensions(unknownNonCritical))

	// The Netscape cert type may be critical under OpenSSL but not
	// Chrome.
	netscape := &Certificate{HasExts: true, AllExts: []ExtensionInfo{
		{OID: oidExtNetscapeCertType, Critical: boolPtr(true)},
	}}
	assert.True(t, p.checkUnhandledExtensions(netscape))
	assert.False(t, (&NewChromePolicy().p).checkUnhandledExtensions(netscape))
}

func TestKeyStrengthFloor(t *testing.T) {
	assert.True(t, checkCertKeyLevel(&Certificate{SubjectKey: SubjectKey{Kind: SubjectKeyRSA, ModLength: 1024}}))
	assert.False(t, checkCertKeyLevel(&Certificate{SubjectKey: SubjectKey{Kind: SubjectKeyRSA, ModLength: 1016}}))
	assert.True(t, checkCertKeyLevel(&Certificate{SubjectKey: SubjectKey{Kind: SubjectKeyOther}}))
	assert.True(t, checkCertKeyLevel(&Certificate{SubjectKey: SubjectKey{Kind: SubjectKeyDSA, PLen: 512}}))
}

func TestNameConstraintCommonNameFallback(t *testing.T) {
	p := &NewOpenSSLPolicy().p

	nc := &NameConstraints{
		Permitted: []GeneralName{{Kind: GeneralNameDNS, DNS: "example.com"}},
	}

	// A leaf without DNS SANs has its common name checked as a DNS name.
	leaf := &Certificate{
		Subject: DistinguishedName{{{OID: oidCommonName, Value: "host.example.com"}}},
	}
	assert.True(t, p.checkNameConstraintsForCert(leaf, nc, true))

	evil := &Certificate{
		Subject: DistinguishedName{{{OID: oidCommonName, Value: "evil.com"}}},
	}
	assert.False(t, p.checkNameConstraintsForCert(evil, nc, true))

	// The same certificate in a non-leaf position skips the CN check.
	assert.True(t, p.checkNameConstraintsForCert(evil, nc, false))

	// With a DNS SAN present, the SAN decides and the CN is ignored.
	withSAN := &Certificate{
		Subject: DistinguishedName{{{OID: oidCommonName, Value: "evil.com"}}},
		SubjectAltName: &SubjectAltName{
			Names: []GeneralName{{Kind: GeneralNameDNS, DNS: "api.example.com"}},
		},
	}
	assert.True(t, p.checkNameConstraintsForCert(withSAN, nc, true))
}

func TestNameConstraintsSkipSelfIssued(t *testing.T) {
	p := &NewOpenSSLPolicy().p

	nc := &NameConstraints{Permitted: []GeneralName{{Kind: GeneralNameDNS, DNS: "example.com"}}}
	selfIssued := &Certificate{
		Subject: DistinguishedName{{{OID: oidCommonName, Value: "evil.com"}}},
		Issuer:  DistinguishedName{{{OID: oidCommonName, Value: "evil.com"}}},
		SubjectAltName: &SubjectAltName{
			Names: []GeneralName{{Kind: GeneralNameDNS, DNS: "evil.com"}},
		},
	}
	constrainer := &Certificate{NameConstraints: nc}

	// chain: [selfIssued, constrainer] with constrainer carrying the
	// constraints: the self-issued certificate is not subject to them.
	assert.True(t, p.checkNameConstraints([]*Certificate{selfIssued, constrainer}))
}

func TestValidChainRefusesUnsupportedTask(t *testing.T) {
	pol := NewChromePolicy()
	_, err := pol.ValidChain(nil, &Task{Purpose: Purpose(42), Now: 100})
	require.ErrorIs(t, err, ErrUnsupportedTask)
}

func TestValidChainNeedsLeafAndRoot(t *testing.T) {
	pol := NewOpenSSLPolicy()
	ok, err := pol.ValidChain([]*Certificate{{}}, &Task{Purpose: PurposeServerAuth, Now: 100})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHostnameCheck(t *testing.T) {
	p := &NewOpenSSLPolicy().p

	leaf := &Certificate{
		SubjectAltName: &SubjectAltName{Names: []GeneralName{
			{Kind: GeneralNameDNS, DNS: "*.example.com"},
		}},
	}
	assert.True(t, p.checkHostname(leaf, "WWW.Example.com"))
	assert.False(t, p.checkHostname(leaf, "a.b.example.com"))

	// With a DNS SAN present the common name is never consulted.
	leaf.Subject = DistinguishedName{{{OID: oidCommonName, Value: "a.b.example.com"}}}
	assert.False(t, p.checkHostname(leaf, "a.b.example.com"))

	// Without DNS SANs the common name is matched as a DNS pattern.
	cnOnly := &Certificate{
		Subject: DistinguishedName{{{OID: oidCommonName, Value: "host.example.com"}}},
	}
	assert.True(t, p.checkHostname(cnOnly, "host.example.com"))

	// OpenSSL requires a dot after the wildcard label.
	bareWildcard := &Certificate{
		SubjectAltName: &SubjectAltName{Names: []GeneralName{
			{Kind: GeneralNameDNS, DNS: "*.com"},
		}},
	}
	assert.False(t, p.checkHostname(bareWildcard, "example.com"))
	assert.True(t, (&NewChromePolicy().p).checkHostname(bareWildcard, "example.com"))
}
