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
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/certpath/certpath/pkg/der"
	"github.com/certpath/certpath/pkg/x509cert"
)

// ErrECDSAVerification reports a bad point, signature encoding, or a
// failed verification.
var ErrECDSAVerification = errors.New("signature: ecdsa verification failed")

// parseECDSASignature decodes an ECDSA-Sig-Value{r, s}. cryptobyte's
// integer reader enforces DER minimality; leading sign-zero octets are
// handled by big.Int before the scalars reach the curve oracle.
func parseECDSASignature(sig []byte) (r, s *big.Int, err error) {
	input := cryptobyte.String(sig)
	var seq cryptobyte.String
	r, s = new(big.Int), new(big.Int)
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) ||
		!input.Empty() ||
		!seq.ReadASN1Integer(r) ||
		!seq.ReadASN1Integer(s) ||
		!seq.Empty() {
		return nil, nil, fmt.Errorf("%w: bad ECDSA-Sig-Value", ErrECDSAVerification)
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: non-positive scalar", ErrECDSAVerification)
	}
	return r, s, nil
}

// ecdsaHashForOID maps ecdsa-with-SHA2 signature OIDs to digests.
func ecdsaHashForOID(oid der.OID) (crypto.Hash, bool) {
	switch {
	case oid.Equal(x509cert.OIDECDSASignatureSHA256):
		return crypto.SHA256, true
	case oid.Equal(x509cert.OIDECDSASignatureSHA384):
		return crypto.SHA384, true
	case oid.Equal(x509cert.OIDECDSASignatureSHA512):
		return crypto.SHA512, true
	}
	return 0, false
}

func verifyECDSA(curve elliptic.Curve, h crypto.Hash, pubKey, sig, msg []byte) error {
	x, y := elliptic.Unmarshal(curve, pubKey)
	if x == nil {
		return fmt.Errorf("%w: bad public key point", ErrECDSAVerification)
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}

	r, s, err := parseECDSASignature(sig)
	if err != nil {
		return err
	}
	if !ecdsa.Verify(pub, digestFor(h, msg), r, s) {
		return ErrECDSAVerification
	}
	return nil
}

// VerifyECDSAP256 verifies an ECDSA signature with a P-256 public key.
// SHA-256, SHA-384, and SHA-512 digests are accepted.
func VerifyECDSAP256(sigAlg der.OID, pubKey, sig, msg []byte) error {
	h, ok := ecdsaHashForOID(sigAlg)
	if !ok {
		return fmt.Errorf("%w: %s with P-256 key", ErrUnsupportedAlgorithm, sigAlg)
	}
	return verifyECDSA(elliptic.P256(), h, pubKey, sig, msg)
}

// VerifyECDSAP384 verifies an ECDSA signature with a P-384 public key.
// Only SHA-256 and SHA-384 digests are accepted.
func VerifyECDSAP384(sigAlg der.OID, pubKey, sig, msg []byte) error {
	h, ok := ecdsaHashForOID(sigAlg)
	if !ok || h == crypto.SHA512 {
		return fmt.Errorf("%w: %s with P-384 key", ErrUnsupportedAlgorithm, sigAlg)
	}
	return verifyECDSA(elliptic.P384(), h, pubKey, sig, msg)
}
