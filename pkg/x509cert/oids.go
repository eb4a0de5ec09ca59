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

import "github.com/certpath/certpath/pkg/der"

// Extension OIDs.
var (
	OIDSubjectKeyIdentifier   = der.OID{2, 5, 29, 14}
	OIDKeyUsage               = der.OID{2, 5, 29, 15}
	OIDSubjectAltName         = der.OID{2, 5, 29, 17}
	OIDBasicConstraints       = der.OID{2, 5, 29, 19}
	OIDNameConstraints        = der.OID{2, 5, 29, 30}
	OIDCertificatePolicies    = der.OID{2, 5, 29, 32}
	OIDAuthorityKeyIdentifier = der.OID{2, 5, 29, 35}
	OIDExtendedKeyUsage       = der.OID{2, 5, 29, 37}
	OIDAuthorityInfoAccess    = der.OID{1, 3, 6, 1, 5, 5, 7, 1, 1}
)

// Signature algorithm OIDs.
var (
	OIDRSASignatureSHA1   = der.OID{1, 2, 840, 113549, 1, 1, 5}
	OIDRSASignatureSHA256 = der.OID{1, 2, 840, 113549, 1, 1, 11}
	OIDRSASignatureSHA384 = der.OID{1, 2, 840, 113549, 1, 1, 12}
	OIDRSASignatureSHA512 = der.OID{1, 2, 840, 113549, 1, 1, 13}
	OIDRSASignatureSHA224 = der.OID{1, 2, 840, 113549, 1, 1, 14}

	OIDECDSASignatureSHA224 = der.OID{1, 2, 840, 10045, 4, 3, 1}
	OIDECDSASignatureSHA256 = der.OID{1, 2, 840, 10045, 4, 3, 2}
	OIDECDSASignatureSHA384 = der.OID{1, 2, 840, 10045, 4, 3, 3}
	OIDECDSASignatureSHA512 = der.OID{1, 2, 840, 10045, 4, 3, 4}

	OIDDSASignature = der.OID{1, 2, 840, 10040, 4, 1}
)

// Public key algorithm OIDs.
var (
	OIDRSAEncryption = der.OID{1, 2, 840, 113549, 1, 1, 1}
	OIDECPublicKey   = der.OID{1, 2, 840, 10045, 2, 1}
)

// Named curves.
var (
	OIDCurveP256 = der.OID{1, 2, 840, 10045, 3, 1, 7}
	OIDCurveP384 = der.OID{1, 3, 132, 0, 34}
)

// Directory attribute types.
var (
	OIDCommonName         = der.OID{2, 5, 4, 3}
	OIDCountryName        = der.OID{2, 5, 4, 6}
	OIDLocalityName       = der.OID{2, 5, 4, 7}
	OIDStateName          = der.OID{2, 5, 4, 8}
	OIDOrganizationName   = der.OID{2, 5, 4, 10}
	OIDOrganizationalUnit = der.OID{2, 5, 4, 11}
	OIDSerialNumber       = der.OID{2, 5, 4, 5}
)

// Extended key usage purposes.
var (
	OIDServerAuth          = der.OID{1, 3, 6, 1, 5, 5, 7, 3, 1}
	OIDClientAuth          = der.OID{1, 3, 6, 1, 5, 5, 7, 3, 2}
	OIDCodeSigning         = der.OID{1, 3, 6, 1, 5, 5, 7, 3, 3}
	OIDEmailProtection     = der.OID{1, 3, 6, 1, 5, 5, 7, 3, 4}
	OIDTimeStamping        = der.OID{1, 3, 6, 1, 5, 5, 7, 3, 8}
	OIDOCSPSigning         = der.OID{1, 3, 6, 1, 5, 5, 7, 3, 9}
	OIDAnyExtendedKeyUsage = der.OID{2, 5, 29, 37, 0}
)
