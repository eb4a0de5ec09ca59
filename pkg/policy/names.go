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
	"strings"
	"unicode"
)

// NormalizeString folds an attribute value for comparison:
// per-rune Unicode lower-casing, leading/trailing ASCII spaces removed,
// and inner runs of ASCII spaces squeezed to one. Only U+0020 counts as a
// space. The function is idempotent.
func NormalizeString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	seenNonSpace := false
	pendingSpace := false
	for _, r := range s {
		if r == ' ' {
			pendingSpace = true
			continue
		}
		if seenNonSpace && pendingSpace {
			sb.WriteByte(' ')
		}
		sb.WriteRune(unicode.ToLower(r))
		seenNonSpace = true
		pendingSpace = false
	}
	return sb.String()
}

// MatchName matches a certificate name pattern, possibly with a leading
// "*." wildcard, against a hostname. The wildcard covers exactly one
// label: it must not span a dot, and "*.a.com" also matches "a.com".
func MatchName(pattern, name string) bool {
	if !strings.HasPrefix(pattern, "*.") {
		return pattern == name
	}
	if len(pattern) <= 2 {
		return false
	}
	if name == pattern[2:] {
		return true
	}
	// name must be longer than ".suffix" and the wildcard part must stay
	// within one label.
	suffix := pattern[1:]
	return len(name) > len(suffix) &&
		strings.HasSuffix(name, suffix) &&
		!strings.Contains(name[:len(name)-len(suffix)], ".")
}

// PermitName is the DNS name-constraint matcher used by the Chrome and
// Firefox policies: an empty constraint admits everything; a constraint
// starting with '.' must be a suffix of the name; otherwise the name must
// equal the constraint or end with ".<constraint>".
func PermitName(constraint, name string) bool {
	if len(constraint) == 0 {
		return true
	}
	if constraint[0] == '.' {
		return len(constraint) <= len(name) && strings.HasSuffix(name, constraint)
	}
	if name == constraint {
		return true
	}
	return len(name) > len(constraint) &&
		name[len(name)-len(constraint)-1] == '.' &&
		strings.HasSuffix(name, constraint)
}

// MatchDNSNameOpenSSL is OpenSSL's nc_dns matcher: an empty pattern admits
// everything; a longer name matches when the pattern is a suffix starting
// at a label boundary (or the pattern begins with '.'); equal-length
// strings compare case-insensitively.
func MatchDNSNameOpenSSL(pattern, name string) bool {
	if len(pattern) == 0 {
		return true
	}
	if len(name) > len(pattern) {
		if (name[len(name)-len(pattern)-1] == '.' || pattern[0] == '.') &&
			name[len(name)-len(pattern):] == pattern {
			return true
		}
	}
	return len(name) == len(pattern) && strings.EqualFold(pattern, name)
}

// IPAddrInRange reports whether addr falls in range, where range is an
// address concatenated with its mask (8 octets for IPv4, 32 for IPv6).
func IPAddrInRange(ipRange, addr []byte) bool {
	var half int
	switch {
	case len(ipRange) == 8 && len(addr) == 4:
		half = 4
	case len(ipRange) == 32 && len(addr) == 16:
		half = 16
	default:
		return false
	}
	for i := 0; i < half; i++ {
		if ipRange[i]&ipRange[i+half] != addr[i]&ipRange[i+half] {
			return false
		}
	}
	return true
}

func sameAttr(a, b Attribute, normalize bool) bool {
	if a.OID != b.OID {
		return false
	}
	if normalize {
		return a.Value == b.Value || NormalizeString(a.Value) == NormalizeString(b.Value)
	}
	return a.Value == b.Value
}

func sameRDN(a, b RDN, normalize bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameAttr(a[i], b[i], normalize) {
			return false
		}
	}
	return true
}

// SameDN reports positional equality of two distinguished names, with
// optional value normalization.
func SameDN(a, b DistinguishedName, normalize bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameRDN(a[i], b[i], normalize) {
			return false
		}
	}
	return true
}

func rdnHasName(rdn RDN, name Attribute, normalize bool) bool {
	for _, attr := range rdn {
		if attr.OID != name.OID {
			continue
		}
		if normalize {
			if NormalizeString(attr.Value) == NormalizeString(name.Value) {
				return true
			}
		} else if attr.Value == name.Value {
			return true
		}
	}
	return false
}

func isSubtreeRDN(sub, super RDN, normalize bool) bool {
	if len(sub) > len(super) {
		return false
	}
	for _, attr := range sub {
		if !rdnHasName(super, attr, normalize) {
			return false
		}
	}
	return true
}

// IsSubtreeOf reports whether sub is an ancestor-or-equal of super in the
// directory tree: every RDN of sub must be covered by the RDN of super at
// the same position.
func IsSubtreeOf(sub, super DistinguishedName, normalize bool) bool {
	if len(sub) > len(super) {
		return false
	}
	for i := range sub {
		if !isSubtreeRDN(sub[i], super[i], normalize) {
			return false
		}
	}
	return true
}

// CheckAuthKeyID checks the AKI/SKI linkage between a subject and its
// candidate issuer: when both ends are present, the subject's AKI key id
// must equal the issuer's SKI, and the subject's AKI serial must equal the
// issuer's serial.
func CheckAuthKeyID(issuer, subject *Certificate) bool {
	aki := subject.AuthorityKeyID
	if aki == nil {
		return true
	}
	if aki.KeyID != nil && issuer.SubjectKeyID != nil {
		if issuer.SubjectKeyID.KeyID != *aki.KeyID {
			return false
		}
	}
	if aki.Serial != nil && *aki.Serial != issuer.Serial {
		return false
	}
	return true
}

// criticalSet reads an optional criticality as a bool.
func criticalSet(c *bool) bool { return c != nil && *c }
