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

// AlgorithmParamKind classifies the parameters field of an
// AlgorithmIdentifier.
type AlgorithmParamKind int

const (
	// ParamAbsent: no parameters field.
	ParamAbsent AlgorithmParamKind = iota
	// ParamNull: an explicit NULL, as RSA algorithms carry.
	ParamNull
	// ParamNamedCurve: id-ecPublicKey with a named curve OID.
	ParamNamedCurve
	// ParamDSA: DSA domain parameters {p, q, g}.
	ParamDSA
	// ParamOther: anything else, retained raw.
	ParamOther
)

// AlgorithmIdentifier is a parsed AlgorithmIdentifier with its original
// encoding retained.
type AlgorithmIdentifier struct {
	OID der.OID
	Raw []byte // the whole SEQUENCE as encoded

	ParamKind AlgorithmParamKind
	Curve     der.OID    // set for ParamNamedCurve
	DSA       *DSAParams // set for ParamDSA
	ParamRaw  []byte     // set for ParamOther
}

// DSAParams are DSA domain parameters.
type DSAParams struct {
	P, Q, G der.Int
}

func parseAlgorithmIdentifier(input []byte) (AlgorithmIdentifier, []byte, error) {
	elem, rest, err := der.ReadElementTag(input, der.TagSequence)
	if err != nil {
		return AlgorithmIdentifier{}, nil, err
	}

	alg := AlgorithmIdentifier{Raw: elem.Raw}

	oidElem, body, err := der.ReadElementTag(elem.Body, der.TagObjectIdentifier)
	if err != nil {
		return AlgorithmIdentifier{}, nil, der.Malformed("algorithm identifier", err)
	}
	if alg.OID, err = der.ParseOID(oidElem); err != nil {
		return AlgorithmIdentifier{}, nil, err
	}

	if len(body) == 0 {
		alg.ParamKind = ParamAbsent
		return alg, rest, nil
	}

	paramElem, body, err := der.ReadElement(body)
	if err != nil {
		return AlgorithmIdentifier{}, nil, der.Malformed("algorithm parameters", err)
	}
	if len(body) != 0 {
		return AlgorithmIdentifier{}, nil, der.Malformed("algorithm identifier", fmt.Errorf("%w: extra field after parameters", der.ErrBadTag))
	}

	switch {
	case paramElem.Tag == der.TagNull:
		if err := der.ParseNull(paramElem); err != nil {
			return AlgorithmIdentifier{}, nil, err
		}
		alg.ParamKind = ParamNull

	case alg.OID.Equal(OIDECPublicKey) && paramElem.Tag == der.TagObjectIdentifier:
		if alg.Curve, err = der.ParseOID(paramElem); err != nil {
			return AlgorithmIdentifier{}, nil, err
		}
		alg.ParamKind = ParamNamedCurve

	case alg.OID.Equal(OIDDSASignature) && paramElem.Tag == der.TagSequence:
		params, err := parseDSAParams(paramElem)
		if err != nil {
			return AlgorithmIdentifier{}, nil, err
		}
		alg.DSA = params
		alg.ParamKind = ParamDSA

	default:
		alg.ParamKind = ParamOther
		alg.ParamRaw = paramElem.Raw
	}
	return alg, rest, nil
}

func parseDSAParams(elem der.Element) (*DSAParams, error) {
	var params DSAParams
	body := elem.Body
	for _, field := range []*der.Int{&params.P, &params.Q, &params.G} {
		intElem, rest, err := der.ReadElementTag(body, der.TagInteger)
		if err != nil {
			return nil, der.Malformed("dsa parameters", err)
		}
		if *field, err = der.ParseInt(intElem); err != nil {
			return nil, err
		}
		body = rest
	}
	if len(body) != 0 {
		return nil, der.Malformed("dsa parameters", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}
	return &params, nil
}

// PublicKeyInfo is a parsed SubjectPublicKeyInfo.
type PublicKeyInfo struct {
	Algorithm AlgorithmIdentifier
	PublicKey der.BitString
}

func parsePublicKeyInfo(input []byte) (PublicKeyInfo, []byte, error) {
	elem, rest, err := der.ReadElementTag(input, der.TagSequence)
	if err != nil {
		return PublicKeyInfo{}, nil, der.Malformed("subjectPublicKeyInfo", err)
	}

	var spki PublicKeyInfo
	body := elem.Body
	if spki.Algorithm, body, err = parseAlgorithmIdentifier(body); err != nil {
		return PublicKeyInfo{}, nil, der.Malformed("subjectPublicKeyInfo algorithm", err)
	}

	keyElem, body, err := der.ReadElementTag(body, der.TagBitString)
	if err != nil {
		return PublicKeyInfo{}, nil, der.Malformed("subjectPublicKey", err)
	}
	if spki.PublicKey, err = der.ParseBitString(keyElem); err != nil {
		return PublicKeyInfo{}, nil, err
	}

	if len(body) != 0 {
		return PublicKeyInfo{}, nil, der.Malformed("subjectPublicKeyInfo", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}
	return spki, rest, nil
}
