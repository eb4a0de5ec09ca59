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
	"fmt"
	"time"

	"github.com/certpath/certpath/pkg/der"
	"github.com/certpath/certpath/pkg/signature"
	"github.com/certpath/certpath/pkg/x509cert"
)

// FromParsed derives the abstract certificate from a parsed one. The
// result depends only on the certificate's DER bytes.
func FromParsed(c *x509cert.Certificate) (*Certificate, error) {
	notBefore, err := timeToUnix(c.TBS.Validity.NotBefore)
	if err != nil {
		return nil, err
	}
	notAfter, err := timeToUnix(c.TBS.Validity.NotAfter)
	if err != nil {
		return nil, err
	}

	subjectKey, err := subjectKeyFrom(&c.TBS.PublicKey)
	if err != nil {
		return nil, err
	}

	abs := &Certificate{
		Fingerprint: signature.HexUpper(signature.SHA256Digest(c.Raw)),
		Version:     uint32(c.TBS.Version) + 1,
		Serial:      signature.HexUpper(c.TBS.Serial.Bytes()),

		SigAlgOuter: SignatureAlgorithm{
			ID:    c.SignatureAlgorithm.OID.String(),
			Bytes: signature.HexUpper(c.SignatureAlgorithm.Raw),
		},
		SigAlgInner: SignatureAlgorithm{
			ID:    c.TBS.SignatureAlgorithm.OID.String(),
			Bytes: signature.HexUpper(c.TBS.SignatureAlgorithm.Raw),
		},

		NotBefore: notBefore,
		NotAfter:  notAfter,

		Issuer:  dnFrom(c.TBS.Issuer),
		Subject: dnFrom(c.TBS.Subject),

		SubjectKey: subjectKey,
	}

	if c.TBS.IssuerUID != nil {
		abs.IssuerUID = strPtr(signature.HexUpper(c.TBS.IssuerUID.Bytes()))
	}
	if c.TBS.SubjectUID != nil {
		abs.SubjectUID = strPtr(signature.HexUpper(c.TBS.SubjectUID.Bytes()))
	}

	if err := convertExtensions(c, abs); err != nil {
		return nil, err
	}
	return abs, nil
}

// timeToUnix converts a parsed validity time to UNIX seconds. Only times
// that explicitly declare UTC convert; everything else fails.
func timeToUnix(t der.Time) (uint64, error) {
	if !t.UTC {
		return 0, fmt.Errorf("%w: zone is not UTC", ErrTimeParse)
	}
	unix := time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, time.UTC).Unix()
	if unix < 0 {
		return 0, fmt.Errorf("%w: before the epoch", ErrTimeParse)
	}
	return uint64(unix), nil
}

func subjectKeyFrom(spki *x509cert.PublicKeyInfo) (SubjectKey, error) {
	switch {
	case spki.Algorithm.OID.Equal(x509cert.OIDRSAEncryption):
		// The modulus width is read off the encoded INTEGER, sign byte
		// removed, in whole bytes.
		elem, rest, err := der.ReadElementTag(spki.PublicKey.Bytes(), der.TagSequence)
		if err != nil || len(rest) != 0 {
			return SubjectKey{}, ErrRSAPubKeyParse
		}
		modElem, _, err := der.ReadElementTag(elem.Body, der.TagInteger)
		if err != nil {
			return SubjectKey{}, ErrRSAPubKeyParse
		}
		mod, err := der.ParseInt(modElem)
		if err != nil {
			return SubjectKey{}, ErrRSAPubKeyParse
		}
		return SubjectKey{Kind: SubjectKeyRSA, ModLength: mod.BitLen()}, nil

	case spki.Algorithm.ParamKind == x509cert.ParamDSA:
		dsa := spki.Algorithm.DSA
		return SubjectKey{
			Kind: SubjectKeyDSA,
			PLen: dsa.P.BitLen(),
			QLen: dsa.Q.BitLen(),
			GLen: dsa.G.BitLen(),
		}, nil
	}
	return SubjectKey{Kind: SubjectKeyOther}, nil
}

func dnFrom(name x509cert.Name) DistinguishedName {
	dn := DistinguishedName{}
	for _, rdn := range name.RDNs {
		abs := RDN{}
		for _, atv := range rdn {
			// Teletex, Universal, and BMP values are dropped.
			text, ok := atv.Value.Text()
			if !ok {
				continue
			}
			abs = append(abs, Attribute{OID: atv.Type.String(), Value: text})
		}
		dn = append(dn, abs)
	}
	return dn
}

func generalNameFrom(name x509cert.GeneralName) GeneralName {
	switch name.Kind {
	case x509cert.GeneralNameDNS:
		return GeneralName{Kind: GeneralNameDNS, DNS: name.DNS}
	case x509cert.GeneralNameDirectory:
		return GeneralName{Kind: GeneralNameDirectory, Directory: dnFrom(name.Directory)}
	case x509cert.GeneralNameIP:
		ip := make([]byte, len(name.IP))
		copy(ip, name.IP)
		return GeneralName{Kind: GeneralNameIP, IP: ip}
	case x509cert.GeneralNameOther:
		return GeneralName{Kind: GeneralNameOther}
	}
	return GeneralName{Kind: GeneralNameUnsupported}
}

func convertExtensions(c *x509cert.Certificate, abs *Certificate) error {
	if !c.TBS.HasExtensions() {
		return nil
	}

	abs.HasExts = true
	abs.AllExts = []ExtensionInfo{}
	for _, ext := range c.TBS.Extensions {
		abs.AllExts = append(abs.AllExts, ExtensionInfo{
			OID:      ext.OID.String(),
			Critical: criticalOf(ext),
		})
	}

	// First extension with a matching OID wins, as in path building.
	find := func(oid der.OID) *x509cert.Extension {
		for i := range c.TBS.Extensions {
			if c.TBS.Extensions[i].OID.Equal(oid) {
				return &c.TBS.Extensions[i]
			}
		}
		return nil
	}

	if ext := find(x509cert.OIDAuthorityKeyIdentifier); ext != nil {
		param, ok := ext.Param.(x509cert.AuthorityKeyIdentifier)
		if !ok {
			return ErrUnexpectedExtParam
		}
		aki := &AuthorityKeyIdentifier{Critical: criticalOf(*ext)}
		if param.KeyIDPresent {
			aki.KeyID = strPtr(signature.HexUpper(param.KeyID))
		}
		if param.IssuerPresent {
			aki.Issuer = strPtr(signature.HexUpper(param.Issuer))
		}
		if param.Serial != nil {
			aki.Serial = strPtr(signature.HexUpper(param.Serial.Bytes()))
		}
		abs.AuthorityKeyID = aki
	}

	if ext := find(x509cert.OIDSubjectKeyIdentifier); ext != nil {
		param, ok := ext.Param.(x509cert.SubjectKeyIdentifier)
		if !ok {
			return ErrUnexpectedExtParam
		}
		abs.SubjectKeyID = &SubjectKeyIdentifier{
			Critical: criticalOf(*ext),
			KeyID:    signature.HexUpper(param.KeyID),
		}
	}

	if ext := find(x509cert.OIDExtendedKeyUsage); ext != nil {
		param, ok := ext.Param.(x509cert.ExtendedKeyUsage)
		if !ok {
			return ErrUnexpectedExtParam
		}
		eku := &ExtendedKeyUsage{Critical: criticalOf(*ext)}
		for _, oid := range param.OIDs {
			eku.Usages = append(eku.Usages, ekuTypeFrom(oid))
		}
		abs.ExtKeyUsage = eku
	}

	if ext := find(x509cert.OIDBasicConstraints); ext != nil {
		param, ok := ext.Param.(x509cert.BasicConstraints)
		if !ok {
			return ErrUnexpectedExtParam
		}
		bc := &BasicConstraints{Critical: criticalOf(*ext), IsCA: param.IsCA}
		if param.PathLen != nil {
			n, ok := param.PathLen.Int64()
			if !ok {
				return ErrIntegerOverflow
			}
			bc.PathLen = &n
		}
		abs.BasicConstr = bc
	}

	if ext := find(x509cert.OIDKeyUsage); ext != nil {
		param, ok := ext.Param.(x509cert.KeyUsage)
		if !ok {
			return ErrUnexpectedExtParam
		}
		bits := param.Bits
		abs.KeyUsage = &KeyUsage{
			Critical:         criticalOf(*ext),
			DigitalSignature: bits.Bit(0),
			NonRepudiation:   bits.Bit(1),
			KeyEncipherment:  bits.Bit(2),
			DataEncipherment: bits.Bit(3),
			KeyAgreement:     bits.Bit(4),
			KeyCertSign:      bits.Bit(5),
			CRLSign:          bits.Bit(6),
			EncipherOnly:     bits.Bit(7),
			DecipherOnly:     bits.Bit(8),
		}
	}

	if ext := find(x509cert.OIDSubjectAltName); ext != nil {
		param, ok := ext.Param.(x509cert.SubjectAltName)
		if !ok {
			return ErrUnexpectedExtParam
		}
		san := &SubjectAltName{Critical: criticalOf(*ext), Names: []GeneralName{}}
		for _, name := range param.Names {
			san.Names = append(san.Names, generalNameFrom(name))
		}
		abs.SubjectAltName = san
	}

	if ext := find(x509cert.OIDNameConstraints); ext != nil {
		param, ok := ext.Param.(x509cert.NameConstraints)
		if !ok {
			return ErrUnexpectedExtParam
		}
		nc := &NameConstraints{
			Critical:  criticalOf(*ext),
			Permitted: []GeneralName{},
			Excluded:  []GeneralName{},
		}
		for _, subtree := range param.Permitted {
			nc.Permitted = append(nc.Permitted, generalNameFrom(subtree.Base))
		}
		for _, subtree := range param.Excluded {
			nc.Excluded = append(nc.Excluded, generalNameFrom(subtree.Base))
		}
		abs.NameConstraints = nc
	}

	if ext := find(x509cert.OIDCertificatePolicies); ext != nil {
		param, ok := ext.Param.(x509cert.CertificatePolicies)
		if !ok {
			return ErrUnexpectedExtParam
		}
		cp := &CertificatePolicies{Critical: criticalOf(*ext)}
		for _, oid := range param.OIDs {
			cp.Policies = append(cp.Policies, oid.String())
		}
		abs.CertPolicies = cp
	}

	if ext := find(x509cert.OIDAuthorityInfoAccess); ext != nil {
		if _, ok := ext.Param.(x509cert.AuthorityInfoAccess); !ok {
			return ErrUnexpectedExtParam
		}
		abs.AuthorityInfo = &AuthorityInfoAccess{Critical: criticalOf(*ext)}
	}
	return nil
}

func ekuTypeFrom(oid der.OID) ExtendedKeyUsageType {
	switch {
	case oid.Equal(x509cert.OIDServerAuth):
		return ExtendedKeyUsageType{Kind: EKUServerAuth}
	case oid.Equal(x509cert.OIDClientAuth):
		return ExtendedKeyUsageType{Kind: EKUClientAuth}
	case oid.Equal(x509cert.OIDCodeSigning):
		return ExtendedKeyUsageType{Kind: EKUCodeSigning}
	case oid.Equal(x509cert.OIDEmailProtection):
		return ExtendedKeyUsageType{Kind: EKUEmailProtection}
	case oid.Equal(x509cert.OIDTimeStamping):
		return ExtendedKeyUsageType{Kind: EKUTimeStamping}
	case oid.Equal(x509cert.OIDOCSPSigning):
		return ExtendedKeyUsageType{Kind: EKUOCSPSigning}
	case oid.Equal(x509cert.OIDExtendedKeyUsage), oid.Equal(x509cert.OIDAnyExtendedKeyUsage):
		return ExtendedKeyUsageType{Kind: EKUAny}
	}
	return ExtendedKeyUsageType{Kind: EKUOther, Other: oid.String()}
}

func criticalOf(ext x509cert.Extension) *bool {
	if !ext.CriticalPresent {
		return nil
	}
	v := ext.Critical
	return &v
}

func strPtr(s string) *string { return &s }
