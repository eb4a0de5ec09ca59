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

// FirefoxPolicy models mozpkix. Relative to Chrome it compares attribute
// values without normalization, does not demand v3 AKI/SKI presence, and
// treats a critical SKI as fatal on every certificate.
type FirefoxPolicy struct {
	p profile
}

// NewFirefoxPolicy returns the Firefox policy.
func NewFirefoxPolicy() *FirefoxPolicy {
	return &FirefoxPolicy{p: profile{
		name:                 "firefox",
		normalizeDN:          false,
		inclusiveNotAfter:    true,
		requireV3KeyIDs:      false,
		skiCriticalFatal:     true,
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
func (f *FirefoxPolicy) Name() string { return f.p.name }

// LikelyIssued implements Policy.
func (f *FirefoxPolicy) LikelyIssued(issuer, subject *Certificate) bool {
	return f.p.likelyIssued(issuer, subject)
}

// ValidChain implements Policy.
func (f *FirefoxPolicy) ValidChain(chain []*Certificate, task *Task) (bool, error) {
	return f.p.validChain(chain, task)
}
