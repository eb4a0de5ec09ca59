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

package x509cert

import (
	"fmt"

	"github.com/certpath/certpath/pkg/der"
)

// Extension is one certificate extension. Recognized extensions carry a
// parsed Param; the rest keep only their raw value octets.
type Extension struct {
	OID      der.OID
	Critical bool
	// CriticalPresent records whether the critical BOOLEAN was encoded.
	// DER forbids encoding the DEFAULT FALSE, so when present it is true.
	CriticalPresent bool
	Value           []byte // extnValue OCTET STRING contents

	Param ExtensionParam // nil for unrecognized extensions
}

// ExtensionParam is one parsed extension payload.
type ExtensionParam interface {
	extensionParam()
}

// AuthorityKeyIdentifier is the parsed AKI payload.
type AuthorityKeyIdentifier struct {
	KeyID        []byte
	KeyIDPresent bool
	// Issuer keeps the content octets of the authorityCertIssuer element
	// when present; its GeneralNames content is never interpreted.
	Issuer        []byte
	IssuerPresent bool
	Serial        *der.Int
}

// SubjectKeyIdentifier is the parsed SKI payload.
type SubjectKeyIdentifier struct {
	KeyID []byte
}

// ExtendedKeyUsage is the parsed EKU payload.
type ExtendedKeyUsage struct {
	OIDs []der.OID
}

// BasicConstraints is the parsed basicConstraints payload.
type BasicConstraints struct {
	IsCA    bool
	PathLen *der.Int
}

// KeyUsage is the parsed keyUsage BIT STRING.
type KeyUsage struct {
	Bits der.BitString
}

// SubjectAltName is the parsed SAN payload.
type SubjectAltName struct {
	Names []GeneralName
}

// NameConstraints is the parsed nameConstraints payload.
type NameConstraints struct {
	Permitted        []GeneralSubtree
	PermittedPresent bool
	Excluded         []GeneralSubtree
	ExcludedPresent  bool
}

// CertificatePolicies keeps the policy OIDs; qualifiers are validated and
// dropped.
type CertificatePolicies struct {
	OIDs []der.OID
}

// AuthorityInfoAccess records only that the extension was present and
// well-formed.
type AuthorityInfoAccess struct{}

func (AuthorityKeyIdentifier) extensionParam() {}
func (SubjectKeyIdentifier) extensionParam()   {}
func (ExtendedKeyUsage) extensionParam()       {}
func (BasicConstraints) extensionParam()       {}
func (KeyUsage) extensionParam()               {}
func (SubjectAltName) extensionParam()         {}
func (NameConstraints) extensionParam()        {}
func (CertificatePolicies) extensionParam()    {}
func (AuthorityInfoAccess) extensionParam()    {}

func parseExtensions(wrapper der.Element) ([]Extension, error) {
	seq, err := der.Explicit(wrapper, "extensions")
	if err != nil {
		return nil, err
	}
	if seq.Tag != der.TagSequence {
		return nil, der.Malformed("extensions", fmt.Errorf("%w: %v", der.ErrBadTag, seq.Tag))
	}
	if len(seq.Body) == 0 {
		return nil, der.Malformed("extensions", fmt.Errorf("empty extension sequence"))
	}

	exts := []Extension{}
	body := seq.Body
	for len(body) > 0 {
		extElem, rest, err := der.ReadElementTag(body, der.TagSequence)
		if err != nil {
			return nil, der.Malformed("extension", err)
		}
		body = rest

		ext, err := parseExtension(extElem)
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

func parseExtension(elem der.Element) (Extension, error) {
	var ext Extension

	oidElem, body, err := der.ReadElementTag(elem.Body, der.TagObjectIdentifier)
	if err != nil {
		return Extension{}, der.Malformed("extension id", err)
	}
	if ext.OID, err = der.ParseOID(oidElem); err != nil {
		return Extension{}, err
	}

	if tag, ok := der.PeekTag(body); ok && tag == der.TagBoolean {
		var critElem der.Element
		critElem, body, err = der.ReadElement(body)
		if err != nil {
			return Extension{}, der.Malformed("extension critical", err)
		}
		crit, err := der.ParseBoolean(critElem)
		if err != nil {
			return Extension{}, err
		}
		if !crit {
			return Extension{}, der.Malformed("extension critical", fmt.Errorf("%w: DEFAULT FALSE encoded explicitly", der.ErrNonminimal))
		}
		ext.Critical = true
		ext.CriticalPresent = true
	}

	valElem, body, err := der.ReadElementTag(body, der.TagOctetString)
	if err != nil {
		return Extension{}, der.Malformed("extension value", err)
	}
	ext.Value = valElem.Body

	if len(body) != 0 {
		return Extension{}, der.Malformed("extension", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}

	if ext.Param, err = parseExtensionParam(ext.OID, ext.Value); err != nil {
		return Extension{}, err
	}
	return ext, nil
}

// parseExtensionParam parses the payloads of recognized extensions. The
// payload must fill the OCTET STRING exactly.
func parseExtensionParam(oid der.OID, value []byte) (ExtensionParam, error) {
	parseWhole := func(context string) (der.Element, error) {
		elem, rest, err := der.ReadElement(value)
		if err != nil {
			return der.Element{}, der.Malformed(context, err)
		}
		if len(rest) != 0 {
			return der.Element{}, der.Malformed(context, fmt.Errorf("%w: trailing bytes in extension value", der.ErrBadLength))
		}
		return elem, nil
	}

	switch {
	case oid.Equal(OIDAuthorityKeyIdentifier):
		elem, err := parseWhole("authority key identifier")
		if err != nil {
			return nil, err
		}
		return parseAKI(elem)

	case oid.Equal(OIDSubjectKeyIdentifier):
		elem, err := parseWhole("subject key identifier")
		if err != nil {
			return nil, err
		}
		keyID, err := der.ParseOctetString(elem)
		if err != nil {
			return nil, err
		}
		return SubjectKeyIdentifier{KeyID: keyID}, nil

	case oid.Equal(OIDExtendedKeyUsage):
		elem, err := parseWhole("extended key usage")
		if err != nil {
			return nil, err
		}
		return parseEKU(elem)

	case oid.Equal(OIDBasicConstraints):
		elem, err := parseWhole("basic constraints")
		if err != nil {
			return nil, err
		}
		return parseBasicConstraints(elem)

	case oid.Equal(OIDKeyUsage):
		elem, err := parseWhole("key usage")
		if err != nil {
			return nil, err
		}
		bits, err := der.ParseBitString(elem)
		if err != nil {
			return nil, err
		}
		return KeyUsage{Bits: bits}, nil

	case oid.Equal(OIDSubjectAltName):
		elem, err := parseWhole("subject alternative name")
		if err != nil {
			return nil, err
		}
		names, err := parseGeneralNames(elem)
		if err != nil {
			return nil, err
		}
		return SubjectAltName{Names: names}, nil

	case oid.Equal(OIDNameConstraints):
		elem, err := parseWhole("name constraints")
		if err != nil {
			return nil, err
		}
		return parseNameConstraints(elem)

	case oid.Equal(OIDCertificatePolicies):
		elem, err := parseWhole("certificate policies")
		if err != nil {
			return nil, err
		}
		return parseCertificatePolicies(elem)

	case oid.Equal(OIDAuthorityInfoAccess):
		elem, err := parseWhole("authority info access")
		if err != nil {
			return nil, err
		}
		if err := parseAIA(elem); err != nil {
			return nil, err
		}
		return AuthorityInfoAccess{}, nil
	}
	return nil, nil
}

var (
	tagAKIKeyID  = der.ContextTag(0, false)
	tagAKIIssuer = der.ContextTag(1, true)
	tagAKISerial = der.ContextTag(2, false)
)

func parseAKI(elem der.Element) (ExtensionParam, error) {
	if elem.Tag != der.TagSequence {
		return nil, der.Malformed("authority key identifier", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}
	var aki AuthorityKeyIdentifier
	body := elem.Body

	if tag, ok := der.PeekTag(body); ok && tag == tagAKIKeyID {
		var kidElem der.Element
		var err error
		kidElem, body, err = der.ReadElement(body)
		if err != nil {
			return nil, der.Malformed("authority key identifier", err)
		}
		aki.KeyID = kidElem.Body
		aki.KeyIDPresent = true
	}
	if tag, ok := der.PeekTag(body); ok && tag == tagAKIIssuer {
		var issElem der.Element
		var err error
		issElem, body, err = der.ReadElement(body)
		if err != nil {
			return nil, der.Malformed("authority cert issuer", err)
		}
		aki.Issuer = issElem.Body
		aki.IssuerPresent = true
	}
	if tag, ok := der.PeekTag(body); ok && tag == tagAKISerial {
		var serElem der.Element
		var err error
		serElem, body, err = der.ReadElement(body)
		if err != nil {
			return nil, der.Malformed("authority cert serial", err)
		}
		serial, err := der.ParseIntBody(serElem.Body, "authority cert serial")
		if err != nil {
			return nil, err
		}
		aki.Serial = &serial
	}
	if len(body) != 0 {
		return nil, der.Malformed("authority key identifier", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}
	return aki, nil
}

func parseEKU(elem der.Element) (ExtensionParam, error) {
	if elem.Tag != der.TagSequence {
		return nil, der.Malformed("extended key usage", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}
	var eku ExtendedKeyUsage
	body := elem.Body
	for len(body) > 0 {
		oidElem, rest, err := der.ReadElementTag(body, der.TagObjectIdentifier)
		if err != nil {
			return nil, der.Malformed("extended key usage", err)
		}
		body = rest
		oid, err := der.ParseOID(oidElem)
		if err != nil {
			return nil, err
		}
		eku.OIDs = append(eku.OIDs, oid)
	}
	return eku, nil
}

func parseBasicConstraints(elem der.Element) (ExtensionParam, error) {
	if elem.Tag != der.TagSequence {
		return nil, der.Malformed("basic constraints", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}
	var bc BasicConstraints
	body := elem.Body

	if tag, ok := der.PeekTag(body); ok && tag == der.TagBoolean {
		var caElem der.Element
		var err error
		caElem, body, err = der.ReadElement(body)
		if err != nil {
			return nil, der.Malformed("basic constraints", err)
		}
		isCA, err := der.ParseBoolean(caElem)
		if err != nil {
			return nil, err
		}
		if !isCA {
			return nil, der.Malformed("basic constraints", fmt.Errorf("%w: DEFAULT FALSE encoded explicitly", der.ErrNonminimal))
		}
		bc.IsCA = true
	}
	if tag, ok := der.PeekTag(body); ok && tag == der.TagInteger {
		var lenElem der.Element
		var err error
		lenElem, body, err = der.ReadElement(body)
		if err != nil {
			return nil, der.Malformed("basic constraints", err)
		}
		pathLen, err := der.ParseInt(lenElem)
		if err != nil {
			return nil, err
		}
		bc.PathLen = &pathLen
	}
	if len(body) != 0 {
		return nil, der.Malformed("basic constraints", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}
	return bc, nil
}

var (
	tagNCPermitted = der.ContextTag(0, true)
	tagNCExcluded  = der.ContextTag(1, true)
)

func parseNameConstraints(elem der.Element) (ExtensionParam, error) {
	if elem.Tag != der.TagSequence {
		return nil, der.Malformed("name constraints", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}
	var nc NameConstraints
	body := elem.Body

	if tag, ok := der.PeekTag(body); ok && tag == tagNCPermitted {
		var sub der.Element
		var err error
		sub, body, err = der.ReadElement(body)
		if err != nil {
			return nil, der.Malformed("permitted subtrees", err)
		}
		if nc.Permitted, err = parseGeneralSubtrees(sub); err != nil {
			return nil, err
		}
		nc.PermittedPresent = true
	}
	if tag, ok := der.PeekTag(body); ok && tag == tagNCExcluded {
		var sub der.Element
		var err error
		sub, body, err = der.ReadElement(body)
		if err != nil {
			return nil, der.Malformed("excluded subtrees", err)
		}
		if nc.Excluded, err = parseGeneralSubtrees(sub); err != nil {
			return nil, err
		}
		nc.ExcludedPresent = true
	}
	if len(body) != 0 {
		return nil, der.Malformed("name constraints", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}
	return nc, nil
}

func parseCertificatePolicies(elem der.Element) (ExtensionParam, error) {
	if elem.Tag != der.TagSequence {
		return nil, der.Malformed("certificate policies", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}
	var cp CertificatePolicies
	body := elem.Body
	for len(body) > 0 {
		infoElem, rest, err := der.ReadElementTag(body, der.TagSequence)
		if err != nil {
			return nil, der.Malformed("policy information", err)
		}
		body = rest

		oidElem, inner, err := der.ReadElementTag(infoElem.Body, der.TagObjectIdentifier)
		if err != nil {
			return nil, der.Malformed("policy identifier", err)
		}
		oid, err := der.ParseOID(oidElem)
		if err != nil {
			return nil, err
		}
		cp.OIDs = append(cp.OIDs, oid)

		// Optional qualifiers, validated as a well-framed SEQUENCE and
		// dropped.
		if tag, ok := der.PeekTag(inner); ok && tag == der.TagSequence {
			if _, inner, err = der.ReadElement(inner); err != nil {
				return nil, der.Malformed("policy qualifiers", err)
			}
		}
		if len(inner) != 0 {
			return nil, der.Malformed("policy information", fmt.Errorf("%w: extra field", der.ErrBadTag))
		}
	}
	return cp, nil
}

func parseAIA(elem der.Element) error {
	if elem.Tag != der.TagSequence {
		return der.Malformed("authority info access", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}
	body := elem.Body
	for len(body) > 0 {
		descElem, rest, err := der.ReadElementTag(body, der.TagSequence)
		if err != nil {
			return der.Malformed("access description", err)
		}
		body = rest

		oidElem, inner, err := der.ReadElementTag(descElem.Body, der.TagObjectIdentifier)
		if err != nil {
			return der.Malformed("access method", err)
		}
		if _, err := der.ParseOID(oidElem); err != nil {
			return err
		}
		if _, inner, err = parseGeneralName(inner); err != nil {
			return err
		}
		if len(inner) != 0 {
			return der.Malformed("access description", fmt.Errorf("%w: extra field", der.ErrBadTag))
		}
	}
	return nil
}
