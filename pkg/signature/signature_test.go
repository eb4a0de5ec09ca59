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
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certpath/certpath/internal/testca"
	"github.com/certpath/certpath/pkg/x509cert"
)

var (
	notBefore = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notAfter  = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
)

func TestHexUpper(t *testing.T) {
	assert.Equal(t, "", HexUpper(nil))
	assert.Equal(t, "BEEF", HexUpper([]byte{0xbe, 0xef}))
	assert.Equal(t, "000102", HexUpper([]byte{0x00, 0x01, 0x02}))
}

func TestDigestLengths(t *testing.T) {
	msg := []byte("digest me")
	assert.Len(t, SHA224Digest(msg), 28)
	assert.Len(t, SHA256Digest(msg), 32)
	assert.Len(t, SHA384Digest(msg), 48)
	assert.Len(t, SHA512Digest(msg), 64)

	// Known vector: SHA-256 of the empty string.
	assert.Equal(t,
		"E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855",
		HexUpper(SHA256Digest(nil)))
}

func TestLoadRSAPublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der := x509.MarshalPKCS1PublicKey(&key.PublicKey)
	pub, err := LoadRSAPublicKey(der)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey.N, pub.N)
	assert.Equal(t, key.PublicKey.E, pub.E)

	_, err = LoadRSAPublicKey(der[:len(der)-1])
	require.ErrorIs(t, err, ErrRSAPubKeyParse)

	_, err = LoadRSAPublicKey(append(der, 0x00))
	require.ErrorIs(t, err, ErrRSAPubKeyParse)
}

func mustParse(t *testing.T, der []byte) *x509cert.Certificate {
	t.Helper()
	cert, err := x509cert.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestVerifyECDSAChain(t *testing.T) {
	root := testca.New(testca.CASpec("Sig Root", notBefore, notAfter, []byte{1}), nil)
	leaf := testca.New(testca.LeafSpec("sig.example.com", []string{"sig.example.com"}, notBefore, notAfter), root)
	other := testca.New(testca.CASpec("Other Root", notBefore, notAfter, []byte{2}), nil)

	rootCert := mustParse(t, root.DER)
	leafCert := mustParse(t, leaf.DER)
	otherCert := mustParse(t, other.DER)

	assert.True(t, Verify(rootCert, leafCert))
	assert.True(t, Verify(rootCert, rootCert), "self-signed root")
	assert.False(t, Verify(otherCert, leafCert), "wrong issuer key")
	assert.False(t, Verify(leafCert, rootCert), "reversed direction")
}

func TestVerifyRSAChain(t *testing.T) {
	spec := testca.CASpec("RSA Sig Root", notBefore, notAfter, []byte{3})
	spec.RSABits = 2048
	root := testca.New(spec, nil)

	leafSpec := testca.LeafSpec("rsa.example.com", []string{"rsa.example.com"}, notBefore, notAfter)
	leafSpec.RSABits = 2048
	leaf := testca.New(leafSpec, root)

	rootCert := mustParse(t, root.DER)
	leafCert := mustParse(t, leaf.DER)

	assert.True(t, Verify(rootCert, leafCert))
	assert.True(t, Verify(rootCert, rootCert))

	// Tampering with the TBS bytes breaks verification.
	tampered := append([]byte{}, leaf.DER...)
	tampered[len(tampered)/2] ^= 0x01
	if cert, err := x509cert.ParseCertificate(tampered); err == nil {
		assert.False(t, Verify(rootCert, cert))
	}
}

func TestVerifyMixedKeyKinds(t *testing.T) {
	// An EC-signed subject under an RSA issuer never verifies: the
	// algorithm matrix rejects the combination.
	rsaSpec := testca.CASpec("RSA Mixed Root", notBefore, notAfter, []byte{4})
	rsaSpec.RSABits = 2048
	rsaRoot := testca.New(rsaSpec, nil)
	ecRoot := testca.New(testca.CASpec("EC Mixed Root", notBefore, notAfter, []byte{5}), nil)

	rsaCert := mustParse(t, rsaRoot.DER)
	ecCert := mustParse(t, ecRoot.DER)

	assert.False(t, Verify(rsaCert, ecCert))
	assert.False(t, Verify(ecCert, rsaCert))
}
