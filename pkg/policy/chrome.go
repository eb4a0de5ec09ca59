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

// ChromePolicy models Chrome's verifier. It shares OpenSSL's DN equality:
// both fold attribute values before every DN comparison, issuer/subject
// matching included. Relative to OpenSSL it accepts now == notAfter and
// drops the legacy Netscape and proxy-certificate critical extensions from
// the tolerated set.
type ChromePolicy struct {
	p profile
}

// NewChromePolicy returns the Chrome policy.
func NewChromePolicy() *ChromePolicy {
	return &ChromePolicy{p: profile{
		name:                 "chrome",
		normalizeDN:          true,
		inclusiveNotAfter:    true,
		requireV3KeyIDs:      true,
		skiCriticalFatal:     false,
		hostnamePatternGuard: false,
		nameCountGuard:       false,
		ncDNSMatch:           PermitName,
		allowedCritical: map[string]struct{}{
			oidExtKeyUsage:             {},
			oidExtSubjectAltName:       {},
			oidExtBasicConstraints:     {},
			oidExtCertificatePolicies:  {},
			oidExtCRLDistributionPoint: {},
			oidExtExtendedKeyUsage:     {},
			oidExtOCSPNoCheck:          {},
			oidExtPolicyConstraints:    {},
			oidExtNameConstraints:      {},
			oidExtPolicyMappings:       {},
			oidExtInhibitAnyPolicy:     {},
		},
	}}
}

// Name implements Policy.
func (c *ChromePolicy) Name() string { return c.p.name }

// LikelyIssued implements Policy.
func (c *ChromePolicy) LikelyIssued(issuer, subject *Certificate) bool {
	return c.p.likelyIssued(issuer, subject)
}

// ValidChain implements Policy.
func (c *ChromePolicy) ValidChain(chain []*Certificate, task *Task) (bool, error) {
	return c.p.validChain(chain, task)
}
