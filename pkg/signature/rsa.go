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
	"crypto"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/certpath/certpath/pkg/der"
	"github.com/certpath/certpath/pkg/x509cert"
)

// ErrRSAPubKeyParse reports a malformed RSAPublicKey structure.
var ErrRSAPubKeyParse = errors.New("signature: malformed RSA public key")

// ErrUnsupportedAlgorithm reports a signature algorithm outside the
// supported matrix.
var ErrUnsupportedAlgorithm = errors.New("signature: unsupported algorithm")

// LoadRSAPublicKey parses a DER-encoded PKCS#1 RSAPublicKey:
//
//	RSAPublicKey ::= SEQUENCE {
//	    modulus            INTEGER,  -- n
//	    publicExponent     INTEGER   -- e
//	}
//
// The whole input must be consumed.
func LoadRSAPublicKey(derBytes []byte) (*rsa.PublicKey, error) {
	input := cryptobyte.String(derBytes)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, ErrRSAPubKeyParse
	}

	n := new(big.Int)
	e := new(big.Int)
	if !seq.ReadASN1Integer(n) || !seq.ReadASN1Integer(e) || !seq.Empty() {
		return nil, ErrRSAPubKeyParse
	}
	if n.Sign() <= 0 || e.Sign() <= 0 || !e.IsInt64() {
		return nil, ErrRSAPubKeyParse
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

// rsaHashForOID maps the four RSA-with-SHA-2 signature OIDs to digests.
func rsaHashForOID(oid der.OID) (crypto.Hash, bool) {
	switch {
	case oid.Equal(x509cert.OIDRSASignatureSHA224):
		return crypto.SHA224, true
	case oid.Equal(x509cert.OIDRSASignatureSHA256):
		return crypto.SHA256, true
	case oid.Equal(x509cert.OIDRSASignatureSHA384):
		return crypto.SHA384, true
	case oid.Equal(x509cert.OIDRSASignatureSHA512):
		return crypto.SHA512, true
	}
	return 0, false
}

// VerifyRSAPKCS1v15 verifies sig over msg with the digest selected by the
// signature algorithm OID. The PKCS#1 padding, DigestInfo encoding, and
// digest equality checks are delegated to the crypto/rsa oracle.
func VerifyRSAPKCS1v15(sigAlg der.OID, pub *rsa.PublicKey, sig, msg []byte) error {
	h, ok := rsaHashForOID(sigAlg)
	if !ok {
		return fmt.Errorf("%w: %s with RSA key", ErrUnsupportedAlgorithm, sigAlg)
	}
	if err := rsa.VerifyPKCS1v15(pub, h, digestFor(h, msg), sig); err != nil {
		return fmt.Errorf("signature: rsa verification failed: %w", err)
	}
	return nil
}
