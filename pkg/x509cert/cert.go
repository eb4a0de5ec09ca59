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

// Package x509cert parses DER-encoded X.509 certificates into a typed view
// that keeps byte-range slices into the original encoding for the parts the
// validator needs verbatim: the tbsCertificate block for signature
// verification and the two AlgorithmIdentifier encodings for the
// inner-equals-outer check.
//
// The parser is strict: the whole input must be consumed, DEFAULT values
// must not be encoded explicitly, and every DER minimality rule enforced by
// package der applies. Semantic constraints (negative path lengths, v1
// certificates carrying extensions) are left to the policy layer.
package x509cert

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/certpath/certpath/pkg/der"
)

// ErrTrailingBytes reports input bytes past the end of the certificate.
var ErrTrailingBytes = errors.New("x509cert: trailing bytes after certificate")

// Certificate is a parsed X.509 certificate.
//
// Raw, TBS.Raw, and the AlgorithmIdentifier Raw fields alias the DER buffer
// given to ParseCertificate; the buffer must outlive the certificate.
type Certificate struct {
	Raw []byte

	TBS                TBSCertificate
	SignatureAlgorithm AlgorithmIdentifier // outer signatureAlgorithm
	Signature          der.BitString
}

// TBSCertificate is the to-be-signed block.
type TBSCertificate struct {
	Raw []byte // the full tbsCertificate element, as signed

	Version            int64 // raw field value: 0 (v1), 1 (v2), 2 (v3)
	Serial             der.Int
	SignatureAlgorithm AlgorithmIdentifier // inner signature field
	Issuer             Name
	Validity           Validity
	Subject            Name
	PublicKey          PublicKeyInfo

	IssuerUID  *der.BitString
	SubjectUID *der.BitString

	// Extensions is nil when the [3] block is absent, and non-nil (possibly
	// holding unparsed variants) when present.
	Extensions []Extension
}

// HasExtensions reports whether the extensions block was present at all.
func (t *TBSCertificate) HasExtensions() bool { return t.Extensions != nil }

// Validity is the notBefore/notAfter pair.
type Validity struct {
	NotBefore der.Time
	NotAfter  der.Time
}

var (
	tagVersion    = der.ContextTag(0, true)
	tagIssuerUID  = der.ContextTag(1, false)
	tagSubjectUID = der.ContextTag(2, false)
	tagExtensions = der.ContextTag(3, true)
)

// ParseCertificate parses a DER-encoded certificate, consuming the entire
// input.
func ParseCertificate(input []byte) (*Certificate, error) {
	outer, rest, err := der.ReadElementTag(input, der.TagSequence)
	if err != nil {
		return nil, der.Malformed("certificate", err)
	}
	if len(rest) != 0 {
		return nil, ErrTrailingBytes
	}

	cert := &Certificate{Raw: outer.Raw}

	tbsElem, body, err := der.ReadElementTag(outer.Body, der.TagSequence)
	if err != nil {
		return nil, der.Malformed("tbsCertificate", err)
	}

	if cert.SignatureAlgorithm, body, err = parseAlgorithmIdentifier(body); err != nil {
		return nil, der.Malformed("signatureAlgorithm", err)
	}

	sigElem, body, err := der.ReadElementTag(body, der.TagBitString)
	if err != nil {
		return nil, der.Malformed("signatureValue", err)
	}
	if cert.Signature, err = der.ParseBitString(sigElem); err != nil {
		return nil, err
	}
	if len(body) != 0 {
		return nil, der.Malformed("certificate", fmt.Errorf("%w: extra field after signatureValue", der.ErrBadTag))
	}

	if err := parseTBS(tbsElem, &cert.TBS); err != nil {
		return nil, err
	}
	return cert, nil
}

// ParseCertificateBase64 decodes standard Base64 and parses the result. The
// parsed certificate owns the decoded buffer.
func ParseCertificateBase64(encoded string) (*Certificate, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("x509cert: decoding base64: %w", err)
	}
	return ParseCertificate(raw)
}

func parseTBS(elem der.Element, tbs *TBSCertificate) error {
	tbs.Raw = elem.Raw
	body := elem.Body

	// version [0] EXPLICIT INTEGER DEFAULT v1
	if tag, ok := der.PeekTag(body); ok && tag == tagVersion {
		var wrapper der.Element
		var err error
		wrapper, body, err = der.ReadElement(body)
		if err != nil {
			return der.Malformed("version", err)
		}
		inner, err := der.Explicit(wrapper, "version")
		if err != nil {
			return err
		}
		v, err := der.ParseInt(inner)
		if err != nil {
			return err
		}
		n, ok := v.Int64()
		if !ok || n < 0 || n > 2 {
			return der.Malformed("version", fmt.Errorf("value out of range"))
		}
		if n == 0 {
			return der.Malformed("version", fmt.Errorf("%w: DEFAULT v1 encoded explicitly", der.ErrNonminimal))
		}
		tbs.Version = n
	}

	serialElem, body, err := der.ReadElementTag(body, der.TagInteger)
	if err != nil {
		return der.Malformed("serialNumber", err)
	}
	if tbs.Serial, err = der.ParseInt(serialElem); err != nil {
		return err
	}

	if tbs.SignatureAlgorithm, body, err = parseAlgorithmIdentifier(body); err != nil {
		return der.Malformed("signature", err)
	}

	if tbs.Issuer, body, err = parseName(body); err != nil {
		return der.Malformed("issuer", err)
	}

	if tbs.Validity, body, err = parseValidity(body); err != nil {
		return err
	}

	if tbs.Subject, body, err = parseName(body); err != nil {
		return der.Malformed("subject", err)
	}

	if tbs.PublicKey, body, err = parsePublicKeyInfo(body); err != nil {
		return err
	}

	if tag, ok := der.PeekTag(body); ok && tag == tagIssuerUID {
		var elem der.Element
		elem, body, err = der.ReadElement(body)
		if err != nil {
			return der.Malformed("issuerUniqueID", err)
		}
		bits, err := der.ParseBitStringBody(elem.Body, "issuerUniqueID")
		if err != nil {
			return err
		}
		tbs.IssuerUID = &bits
	}

	if tag, ok := der.PeekTag(body); ok && tag == tagSubjectUID {
		var elem der.Element
		elem, body, err = der.ReadElement(body)
		if err != nil {
			return der.Malformed("subjectUniqueID", err)
		}
		bits, err := der.ParseBitStringBody(elem.Body, "subjectUniqueID")
		if err != nil {
			return err
		}
		tbs.SubjectUID = &bits
	}

	if tag, ok := der.PeekTag(body); ok && tag == tagExtensions {
		var wrapper der.Element
		wrapper, body, err = der.ReadElement(body)
		if err != nil {
			return der.Malformed("extensions", err)
		}
		if tbs.Extensions, err = parseExtensions(wrapper); err != nil {
			return err
		}
	}

	if len(body) != 0 {
		return der.Malformed("tbsCertificate", fmt.Errorf("%w: unrecognized trailing field", der.ErrBadTag))
	}
	return nil
}

func parseValidity(input []byte) (Validity, []byte, error) {
	elem, rest, err := der.ReadElementTag(input, der.TagSequence)
	if err != nil {
		return Validity{}, nil, der.Malformed("validity", err)
	}

	nbElem, body, err := der.ReadElement(elem.Body)
	if err != nil {
		return Validity{}, nil, der.Malformed("notBefore", err)
	}
	notBefore, err := der.ParseTime(nbElem)
	if err != nil {
		return Validity{}, nil, err
	}

	naElem, body, err := der.ReadElement(body)
	if err != nil {
		return Validity{}, nil, der.Malformed("notAfter", err)
	}
	notAfter, err := der.ParseTime(naElem)
	if err != nil {
		return Validity{}, nil, err
	}

	if len(body) != 0 {
		return Validity{}, nil, der.Malformed("validity", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}
	return Validity{NotBefore: notBefore, NotAfter: notAfter}, rest, nil
}
