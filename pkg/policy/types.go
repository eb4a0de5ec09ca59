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

// Package policy decides whether candidate certificate chains are
// acceptable under one of three validation policies modeled on Chrome,
// Firefox, and OpenSSL.
//
// Policies never look at raw DER. They consume the abstract certificate
// built by FromParsed: a pure derivation of the facts a policy can act on,
// with hex renderings for everything compared byte-wise.
package policy

import "errors"

// Errors surfaced while deriving the abstract certificate.
var (
	// ErrTimeParse reports a validity time that does not declare UTC or
	// falls before the epoch.
	ErrTimeParse = errors.New("policy: validity time not convertible to UNIX seconds")
	// ErrRSAPubKeyParse reports a malformed RSAPublicKey inside an
	// rsaEncryption subjectPublicKeyInfo.
	ErrRSAPubKeyParse = errors.New("policy: malformed RSA public key")
	// ErrUnexpectedExtParam reports an extension whose parsed parameter
	// does not match its OID.
	ErrUnexpectedExtParam = errors.New("policy: extension parameter does not match its OID")
	// ErrIntegerOverflow reports a size beyond machine limits.
	ErrIntegerOverflow = errors.New("policy: integer overflow")

	// ErrUnsupportedTask is the only domain-level policy refusal.
	ErrUnsupportedTask = errors.New("policy: unsupported task")
)

// Attribute is one AttributeTypeAndValue with its OID rendered dotted and
// its value as UTF-8 text.
type Attribute struct {
	OID   string
	Value string
}

// RDN is one relative distinguished name.
type RDN []Attribute

// DistinguishedName is an ordered sequence of RDNs.
type DistinguishedName []RDN

// GeneralNameKind classifies an abstract general name.
type GeneralNameKind int

const (
	GeneralNameDNS GeneralNameKind = iota
	GeneralNameDirectory
	GeneralNameIP
	GeneralNameOther
	GeneralNameUnsupported
)

// GeneralName is an abstract general name. Only the field matching Kind is
// meaningful.
type GeneralName struct {
	Kind      GeneralNameKind
	DNS       string
	Directory DistinguishedName
	IP        []byte
}

// SubjectKeyKind classifies the subject public key algorithm.
type SubjectKeyKind int

const (
	SubjectKeyRSA SubjectKeyKind = iota
	SubjectKeyDSA
	SubjectKeyOther
)

// SubjectKey carries the bit lengths a policy may floor-check.
type SubjectKey struct {
	Kind SubjectKeyKind

	ModLength int // RSA modulus bits

	PLen, QLen, GLen int // DSA parameter bits
}

// SignatureAlgorithm is an algorithm identifier: the dotted OID and the
// upper-hex rendering of its full DER encoding.
type SignatureAlgorithm struct {
	ID    string
	Bytes string
}

// AuthorityKeyIdentifier is the abstract AKI payload.
type AuthorityKeyIdentifier struct {
	Critical *bool
	KeyID    *string
	Issuer   *string
	Serial   *string
}

// SubjectKeyIdentifier is the abstract SKI payload.
type SubjectKeyIdentifier struct {
	Critical *bool
	KeyID    string
}

// ExtendedKeyUsageKind enumerates recognized EKU purposes.
type ExtendedKeyUsageKind int

const (
	EKUServerAuth ExtendedKeyUsageKind = iota
	EKUClientAuth
	EKUCodeSigning
	EKUEmailProtection
	EKUTimeStamping
	EKUOCSPSigning
	EKUAny
	EKUOther
)

// ExtendedKeyUsageType is one EKU entry; Other carries the dotted OID for
// unrecognized purposes.
type ExtendedKeyUsageType struct {
	Kind  ExtendedKeyUsageKind
	Other string
}

// ExtendedKeyUsage is the abstract EKU payload.
type ExtendedKeyUsage struct {
	Critical *bool
	Usages   []ExtendedKeyUsageType
}

// HasServerAuth reports whether any entry is id-kp-serverAuth.
func (e *ExtendedKeyUsage) HasServerAuth() bool {
	for _, u := range e.Usages {
		if u.Kind == EKUServerAuth {
			return true
		}
	}
	return false
}

// BasicConstraints is the abstract basicConstraints payload.
type BasicConstraints struct {
	Critical *bool
	IsCA     bool
	PathLen  *int64
}

// KeyUsage is the abstract keyUsage payload.
type KeyUsage struct {
	Critical *bool

	DigitalSignature bool
	NonRepudiation   bool
	KeyEncipherment  bool
	DataEncipherment bool
	KeyAgreement     bool
	KeyCertSign      bool
	CRLSign          bool
	EncipherOnly     bool
	DecipherOnly     bool
}

// Any reports whether at least one usage bit is set.
func (k *KeyUsage) Any() bool {
	return k.DigitalSignature || k.NonRepudiation || k.KeyEncipherment ||
		k.DataEncipherment || k.KeyAgreement || k.KeyCertSign ||
		k.CRLSign || k.EncipherOnly || k.DecipherOnly
}

// SubjectAltName is the abstract SAN payload.
type SubjectAltName struct {
	Critical *bool
	Names    []GeneralName
}

// NameConstraints is the abstract nameConstraints payload with the
// GeneralSubtree entries flattened to their base names.
type NameConstraints struct {
	Critical  *bool
	Permitted []GeneralName
	Excluded  []GeneralName
}

// CertificatePolicies keeps the policy OIDs as dotted strings.
type CertificatePolicies struct {
	Critical *bool
	Policies []string
}

// AuthorityInfoAccess records presence and criticality only.
type AuthorityInfoAccess struct {
	Critical *bool
}

// ExtensionInfo is the (oid, criticality) projection of one extension,
// preserving certificate order.
type ExtensionInfo struct {
	OID      string
	Critical *bool
}

// Certificate is the abstract certificate: a pure function of the DER
// bytes, holding exactly the facts policies consume.
type Certificate struct {
	Fingerprint string
	Version     uint32 // human version: 1, 2, or 3
	Serial      string

	SigAlgOuter SignatureAlgorithm
	SigAlgInner SignatureAlgorithm

	NotBefore uint64
	NotAfter  uint64

	Issuer  DistinguishedName
	Subject DistinguishedName

	SubjectKey SubjectKey

	IssuerUID  *string
	SubjectUID *string

	AuthorityKeyID  *AuthorityKeyIdentifier
	SubjectKeyID    *SubjectKeyIdentifier
	ExtKeyUsage     *ExtendedKeyUsage
	BasicConstr     *BasicConstraints
	KeyUsage        *KeyUsage
	SubjectAltName  *SubjectAltName
	NameConstraints *NameConstraints
	CertPolicies    *CertificatePolicies
	AuthorityInfo   *AuthorityInfoAccess

	// AllExts is nil when the certificate carries no extensions block.
	AllExts []ExtensionInfo
	HasExts bool
}

// Purpose is the validation purpose. Only server authentication is
// supported.
type Purpose int

// PurposeServerAuth is TLS server authentication.
const PurposeServerAuth Purpose = iota

// Task describes one validation query.
type Task struct {
	// Hostname is the DNS name the leaf must cover; nil skips hostname
	// checking.
	Hostname *string
	Purpose  Purpose
	// Now is the validation time in UNIX seconds.
	Now uint64
}

// Policy evaluates candidate chains.
type Policy interface {
	// Name returns the policy's short name.
	Name() string

	// LikelyIssued is the cheap, name-only necessary condition for
	// "issuer issued subject", used to prune path search before signature
	// verification.
	LikelyIssued(issuer, subject *Certificate) bool

	// ValidChain reports whether the chain (leaf first, trusted root
	// last) satisfies the policy for the task. A false result keeps path
	// search going; an error aborts it.
	ValidChain(chain []*Certificate, task *Task) (bool, error)
}
