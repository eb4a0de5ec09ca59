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

import "strings"

// profile parameterizes the chain-validation skeleton the three policies
// share. Each knob corresponds to a documented behavioral difference
// between the modeled validators.
type profile struct {
	name string

	// normalizeDN folds attribute values before DN comparison.
	normalizeDN bool
	// inclusiveNotAfter accepts now == notAfter; when false the upper
	// bound is strict, as in OpenSSL's X509_cmp_time.
	inclusiveNotAfter bool
	// requireV3KeyIDs enforces the v3 AKI/SKI presence rules (non-root
	// needs AKI with a key id, non-leaf needs SKI).
	requireV3KeyIDs bool
	// skiCriticalFatal rejects certificates whose SKI is marked critical.
	skiCriticalFatal bool
	// hostnamePatternGuard requires a dot after "*." in hostname
	// patterns, as OpenSSL's valid_star does.
	hostnamePatternGuard bool
	// nameCountGuard applies OpenSSL's quadratic-blowup guard on the
	// product of names and constraints.
	nameCountGuard bool
	// ncDNSMatch matches a DNS name constraint against a DNS name.
	ncDNSMatch func(constraint, name string) bool
	// allowedCritical lists the extension OIDs that may be critical.
	allowedCritical map[string]struct{}
}

const oidCommonName = "2.5.4.3"

func (p *profile) likelyIssued(issuer, subject *Certificate) bool {
	return SameDN(issuer.Subject, subject.Issuer, p.normalizeDN) &&
		CheckAuthKeyID(issuer, subject)
}

func (p *profile) validChain(chain []*Certificate, task *Task) (bool, error) {
	if task.Purpose != PurposeServerAuth {
		return false, ErrUnsupportedTask
	}
	if len(chain) < 2 {
		return false, nil
	}

	last := len(chain) - 1
	if !p.validCertCommon(task, chain[0], true, false, 0) {
		return false, nil
	}
	for i := 1; i < last; i++ {
		if !p.validCertCommon(task, chain[i], false, false, i-1) {
			return false, nil
		}
	}
	if !p.validCertCommon(task, chain[last], false, true, last-1) {
		return false, nil
	}

	if !p.checkNameConstraints(chain) {
		return false, nil
	}
	if task.Hostname != nil && !p.checkHostname(chain[0], *task.Hostname) {
		return false, nil
	}
	return true, nil
}

// checkCertKeyLevel floors the key strength at 80 security bits: RSA
// moduli of at least 1024 bits; EC and DSA pass unchecked.
func checkCertKeyLevel(cert *Certificate) bool {
	if cert.SubjectKey.Kind == SubjectKeyRSA {
		return cert.SubjectKey.ModLength >= 1024
	}
	return true
}

func (p *profile) checkCertTime(cert *Certificate, now uint64) bool {
	if cert.NotBefore > now {
		return false
	}
	if p.inclusiveNotAfter {
		return now <= cert.NotAfter
	}
	return now < cert.NotAfter
}

// checkCA mirrors OpenSSL's check_ca: 0 not a CA, 1 a CA, 2 the
// historically tolerated cases (v1 certificates and bare key usage).
func checkCA(cert *Certificate) int {
	if cert.KeyUsage != nil && !cert.KeyUsage.KeyCertSign {
		return 0
	}
	if cert.BasicConstr != nil {
		if cert.BasicConstr.IsCA {
			return 1
		}
		return 0
	}
	if cert.Version == 1 || cert.KeyUsage != nil {
		return 2
	}
	return 0
}

func checkBasicConstraints(cert *Certificate) bool {
	bc := cert.BasicConstr
	if bc == nil {
		return true
	}
	if bc.PathLen != nil {
		if !bc.IsCA {
			return false
		}
		if cert.KeyUsage == nil || !cert.KeyUsage.KeyCertSign {
			return false
		}
	}
	if bc.IsCA && !criticalSet(bc.Critical) {
		return false
	}
	return true
}

func checkKeyUsage(cert *Certificate) bool {
	if cert.BasicConstr != nil && cert.BasicConstr.IsCA {
		return cert.KeyUsage != nil
	}
	return cert.KeyUsage == nil || !cert.KeyUsage.KeyCertSign
}

func checkSAN(cert *Certificate) bool {
	return cert.SubjectAltName == nil || len(cert.SubjectAltName.Names) != 0
}

func (p *profile) checkAuthSubjectKeyID(cert *Certificate, isRoot, isLeaf bool) bool {
	if cert.AuthorityKeyID != nil && criticalSet(cert.AuthorityKeyID.Critical) {
		return false
	}
	if p.skiCriticalFatal && cert.SubjectKeyID != nil && criticalSet(cert.SubjectKeyID.Critical) {
		return false
	}

	if cert.Version >= 2 {
		if p.requireV3KeyIDs {
			if !isRoot && (cert.AuthorityKeyID == nil || cert.AuthorityKeyID.KeyID == nil) {
				return false
			}
			if !isLeaf && cert.SubjectKeyID == nil {
				return false
			}
		}
		return true
	}

	// v1 certificates must carry no extensions at all.
	return !cert.HasExts &&
		cert.AuthorityKeyID == nil && cert.SubjectKeyID == nil &&
		cert.ExtKeyUsage == nil && cert.BasicConstr == nil &&
		cert.KeyUsage == nil && cert.SubjectAltName == nil &&
		cert.NameConstraints == nil && cert.CertPolicies == nil &&
		cert.AuthorityInfo == nil
}

func (p *profile) checkPurpose(cert *Certificate, isLeaf bool) bool {
	if cert.ExtKeyUsage != nil && !cert.ExtKeyUsage.HasServerAuth() {
		return false
	}
	if isLeaf {
		if ku := cert.KeyUsage; ku != nil {
			return ku.DigitalSignature || ku.KeyEncipherment || ku.KeyAgreement
		}
		return true
	}
	return checkCA(cert) == 1
}

func (p *profile) checkUnhandledExtensions(cert *Certificate) bool {
	for _, ext := range cert.AllExts {
		if !criticalSet(ext.Critical) {
			continue
		}
		if _, ok := p.allowedCritical[ext.OID]; !ok {
			return false
		}
	}
	return true
}

func checkDuplicateExtensions(cert *Certificate) bool {
	seen := make(map[string]struct{}, len(cert.AllExts))
	for _, ext := range cert.AllExts {
		if _, dup := seen[ext.OID]; dup {
			return false
		}
		seen[ext.OID] = struct{}{}
	}
	return true
}

func (p *profile) validCertCommon(task *Task, cert *Certificate, isLeaf, isRoot bool, depth int) bool {
	if !checkCertKeyLevel(cert) {
		return false
	}
	if !p.checkCertTime(cert, task.Now) {
		return false
	}
	if !checkBasicConstraints(cert) {
		return false
	}
	if !checkKeyUsage(cert) {
		return false
	}

	if isLeaf {
		if checkCA(cert) == 2 {
			return false
		}
	} else if checkCA(cert) != 1 {
		return false
	}

	if len(cert.Issuer) == 0 {
		return false
	}
	if len(cert.Subject) == 0 {
		san := cert.SubjectAltName
		if san == nil || len(san.Names) == 0 || !criticalSet(san.Critical) {
			return false
		}
		if cert.BasicConstr != nil && cert.BasicConstr.IsCA {
			return false
		}
		if cert.KeyUsage != nil && cert.KeyUsage.KeyCertSign {
			return false
		}
	}

	if !checkSAN(cert) {
		return false
	}
	if cert.SigAlgInner.Bytes != cert.SigAlgOuter.Bytes {
		return false
	}
	if !p.checkPurpose(cert, isLeaf) {
		return false
	}
	if !p.checkAuthSubjectKeyID(cert, isRoot, isLeaf) {
		return false
	}

	if bc := cert.BasicConstr; bc != nil && bc.PathLen != nil {
		if *bc.PathLen < 0 {
			return false
		}
		if !isLeaf && int64(depth) > *bc.PathLen {
			return false
		}
	}

	return p.checkUnhandledExtensions(cert) && checkDuplicateExtensions(cert)
}

func (p *profile) isGeneralSubtreeOf(constraint, name GeneralName) bool {
	switch {
	case constraint.Kind == GeneralNameDNS && name.Kind == GeneralNameDNS:
		return p.ncDNSMatch(constraint.DNS, name.DNS)
	case constraint.Kind == GeneralNameDirectory && name.Kind == GeneralNameDirectory:
		return IsSubtreeOf(constraint.Directory, name.Directory, p.normalizeDN)
	case constraint.Kind == GeneralNameIP && name.Kind == GeneralNameIP:
		return IPAddrInRange(constraint.IP, name.IP)
	}
	return false
}

func sameGeneralNameKind(a, b GeneralName) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case GeneralNameDNS, GeneralNameDirectory, GeneralNameIP:
		return true
	}
	return false
}

func (p *profile) ncMatch(name GeneralName, nc *NameConstraints) bool {
	if name.Kind == GeneralNameOther {
		return false
	}

	permittedEnabled := false
	for _, constraint := range nc.Permitted {
		if sameGeneralNameKind(name, constraint) {
			permittedEnabled = true
			break
		}
	}
	if permittedEnabled {
		found := false
		for _, constraint := range nc.Permitted {
			if p.isGeneralSubtreeOf(constraint, name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, constraint := range nc.Excluded {
		if p.isGeneralSubtreeOf(constraint, name) {
			return false
		}
	}
	return true
}

func sanHasDNS(cert *Certificate) bool {
	if cert.SubjectAltName == nil {
		return false
	}
	for _, name := range cert.SubjectAltName.Names {
		if name.Kind == GeneralNameDNS {
			return true
		}
	}
	return false
}

func (p *profile) checkNameConstraintsForCert(cert *Certificate, nc *NameConstraints, isLeaf bool) bool {
	if p.nameCountGuard {
		nameCount := len(cert.Subject)
		if cert.SubjectAltName != nil {
			nameCount += len(cert.SubjectAltName.Names)
		}
		constraintCount := len(nc.Permitted) + len(nc.Excluded)
		if nameCount != 0 && constraintCount > 1<<20/nameCount {
			return false
		}
	}

	if !p.ncMatch(GeneralName{Kind: GeneralNameDirectory, Directory: cert.Subject}, nc) {
		return false
	}
	if cert.SubjectAltName != nil {
		for _, name := range cert.SubjectAltName.Names {
			if !p.ncMatch(name, nc) {
				return false
			}
		}
	}

	// A leaf without DNS SANs gets its common names checked as DNS names.
	if isLeaf && !sanHasDNS(cert) {
		for _, rdn := range cert.Subject {
			for _, attr := range rdn {
				if attr.OID != oidCommonName {
					continue
				}
				if !p.ncMatch(GeneralName{Kind: GeneralNameDNS, DNS: attr.Value}, nc) {
					return false
				}
			}
		}
	}
	return true
}

func (p *profile) checkNameConstraints(chain []*Certificate) bool {
	for i := 1; i < len(chain); i++ {
		nc := chain[i].NameConstraints
		if nc == nil {
			continue
		}
		for j := 0; j < i; j++ {
			// Name constraints do not apply to self-issued certificates.
			if SameDN(chain[j].Subject, chain[j].Issuer, p.normalizeDN) {
				continue
			}
			if !p.checkNameConstraintsForCert(chain[j], nc, j == 0) {
				return false
			}
		}
	}
	return true
}

// checkValidPattern rejects wildcard patterns whose part after "*." holds
// no further dot, such as "*.com".
func checkValidPattern(pattern string) bool {
	if strings.HasPrefix(pattern, "*.") {
		return strings.Contains(pattern[2:], ".")
	}
	return true
}

func (p *profile) checkHostname(cert *Certificate, hostname string) bool {
	host := strings.ToLower(hostname)

	if cert.SubjectAltName != nil {
		for _, name := range cert.SubjectAltName.Names {
			if name.Kind != GeneralNameDNS {
				continue
			}
			if p.hostnamePatternGuard && !checkValidPattern(name.DNS) {
				continue
			}
			if MatchName(strings.ToLower(name.DNS), host) {
				return true
			}
		}
	}

	// The common name is consulted only when the SAN offers no DNS names.
	if sanHasDNS(cert) {
		return false
	}
	for _, rdn := range cert.Subject {
		for _, attr := range rdn {
			if attr.OID != oidCommonName {
				continue
			}
			if p.hostnamePatternGuard && !checkValidPattern(attr.Value) {
				continue
			}
			if MatchName(strings.ToLower(attr.Value), host) {
				return true
			}
		}
	}
	return false
}
