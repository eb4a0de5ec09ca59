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

// Extension OIDs that may legitimately be critical.
const (
	oidExtBasicConstraints     = "2.5.29.19"
	oidExtKeyUsage             = "2.5.29.15"
	oidExtSubjectAltName       = "2.5.29.17"
	oidExtNameConstraints      = "2.5.29.30"
	oidExtCertificatePolicies  = "2.5.29.32"
	oidExtCRLDistributionPoint = "2.5.29.31"
	oidExtExtendedKeyUsage     = "2.5.29.37"
	oidExtPolicyMappings       = "2.5.29.33"
	oidExtPolicyConstraints    = "2.5.29.36"
	oidExtInhibitAnyPolicy     = "2.5.29.54"
	oidExtNetscapeCertType     = "2.16.840.1.113730.1.1"
	oidExtOCSPNoCheck          = "1.3.6.1.5.5.7.48.1.5"
	oidExtProxyCertInfo        = "1.3.6.1.5.5.7.1.14"
)

// OpenSSLPolicy models OpenSSL's verifier configured for
// X509_PURPOSE_SSL_SERVER with X509_V_FLAG_X509_STRICT, no policy
// checking, no CRL checking, and auth_level 0.
type OpenSSLPolicy struct {
	p profile
}

// NewOpenSSLPolicy returns the OpenSSL policy.
func NewOpenSSLPolicy() *OpenSSLPolicy {
	return &OpenSSLPolicy{p: profile{
		name:        "openssl",
		normalizeDN: true,
		// X509_cmp_time treats notAfter == now as expired.
		inclusiveNotAfter:    false,
		requireV3KeyIDs:      true,
		skiCriticalFatal:     true,
		hostnamePatternGuard: true,
		nameCountGuard:       true,
		ncDNSMatch:           MatchDNSNameOpenSSL,
		allowedCritical: map[string]struct{}{
			oidExtNetscapeCertType:     {},
			oidExtKeyUsage:             {},
			oidExtSubjectAltName:       {},
			oidExtBasicConstraints:     {},
			oidExtCertificatePolicies:  {},
			oidExtCRLDistributionPoint: {},
			oidExtExtendedKeyUsage:     {},
			oidExtOCSPNoCheck:          {},
			oidExtPolicyConstraints:    {},
			oidExtProxyCertInfo:        {},
			oidExtNameConstraints:      {},
			oidExtPolicyMappings:       {},
			oidExtInhibitAnyPolicy:     {},
		},
	}}
}

// Name implements Policy.
func (o *OpenSSLPolicy) Name() string { return o.p.name }

// LikelyIssued implements Policy.
func (o *OpenSSLPolicy) LikelyIssued(issuer, subject *Certificate) bool {
	return o.p.likelyIssued(issuer, subject)
}

// ValidChain implements Policy.
func (o *OpenSSLPolicy) ValidChain(chain []*Certificate, task *Task) (bool, error) {
	return o.p.validChain(chain, task)
}
