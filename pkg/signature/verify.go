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

package signature

import (
	"github.com/certpath/certpath/pkg/der"
	"github.com/certpath/certpath/pkg/x509cert"
)

// Verify reports whether subject's signature was produced by issuer's
// subject public key, over subject's tbsCertificate bytes.
//
// The supported matrix:
//
//	RSA key:   sha{224,256,384,512}WithRSAEncryption
//	P-256 key: ecdsa-with-SHA{256,384,512}
//	P-384 key: ecdsa-with-SHA{256,384}
//
// Any other combination verifies false. The comparison of the subject's
// inner and outer signature algorithms belongs to the policy, not here.
func Verify(issuer, subject *x509cert.Certificate) bool {
	tbs := subject.TBS.Raw
	sigAlg := subject.SignatureAlgorithm.OID
	sig := subject.Signature.Bytes()
	spki := &issuer.TBS.PublicKey

	switch {
	case spki.Algorithm.OID.Equal(x509cert.OIDRSAEncryption):
		if !isRSASignatureOID(sigAlg) {
			return false
		}
		pub, err := LoadRSAPublicKey(spki.PublicKey.Bytes())
		if err != nil {
			return false
		}
		return VerifyRSAPKCS1v15(sigAlg, pub, sig, tbs) == nil

	case spki.Algorithm.OID.Equal(x509cert.OIDECPublicKey) && spki.Algorithm.ParamKind == x509cert.ParamNamedCurve:
		switch {
		case spki.Algorithm.Curve.Equal(x509cert.OIDCurveP256):
			return VerifyECDSAP256(sigAlg, spki.PublicKey.Bytes(), sig, tbs) == nil
		case spki.Algorithm.Curve.Equal(x509cert.OIDCurveP384):
			return VerifyECDSAP384(sigAlg, spki.PublicKey.Bytes(), sig, tbs) == nil
		}
	}
	return false
}

func isRSASignatureOID(oid der.OID) bool {
	_, ok := rsaHashForOID(oid)
	return ok
}
