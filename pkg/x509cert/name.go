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
	"strings"

	"github.com/certpath/certpath/pkg/der"
)

// Name is an X.501 distinguished name: an ordered sequence of relative
// distinguished names.
type Name struct {
	RDNs []RDN
	Raw  []byte
}

// RDN is one relative distinguished name. DER encodes it as a SET; the
// parser preserves encoding order.
type RDN []AttributeTypeAndValue

// AttributeTypeAndValue is one attribute of an RDN.
type AttributeTypeAndValue struct {
	Type  der.OID
	Value der.StringValue
}

// Empty reports whether the name has no RDNs.
func (n Name) Empty() bool { return len(n.RDNs) == 0 }

// String renders the name for diagnostics only; it is not a canonical
// RFC 2253 encoding.
func (n Name) String() string {
	var parts []string
	for _, rdn := range n.RDNs {
		for _, atv := range rdn {
			text, ok := atv.Value.Text()
			if !ok {
				text = fmt.Sprintf("<%s>", atv.Value.Kind)
			}
			parts = append(parts, fmt.Sprintf("%s=%s", attributeName(atv.Type), text))
		}
	}
	return strings.Join(parts, ", ")
}

func attributeName(oid der.OID) string {
	switch {
	case oid.Equal(OIDCommonName):
		return "CN"
	case oid.Equal(OIDCountryName):
		return "C"
	case oid.Equal(OIDLocalityName):
		return "L"
	case oid.Equal(OIDStateName):
		return "ST"
	case oid.Equal(OIDOrganizationName):
		return "O"
	case oid.Equal(OIDOrganizationalUnit):
		return "OU"
	case oid.Equal(OIDSerialNumber):
		return "SERIALNUMBER"
	}
	return oid.String()
}

func parseName(input []byte) (Name, []byte, error) {
	elem, rest, err := der.ReadElementTag(input, der.TagSequence)
	if err != nil {
		return Name{}, nil, err
	}
	name, err := parseNameElement(elem)
	if err != nil {
		return Name{}, nil, err
	}
	return name, rest, nil
}

func parseNameElement(elem der.Element) (Name, error) {
	name := Name{Raw: elem.Raw, RDNs: []RDN{}}
	body := elem.Body
	for len(body) > 0 {
		setElem, restBody, err := der.ReadElementTag(body, der.TagSet)
		if err != nil {
			return Name{}, der.Malformed("relative distinguished name", err)
		}
		body = restBody

		var rdn RDN
		setBody := setElem.Body
		if len(setBody) == 0 {
			return Name{}, der.Malformed("relative distinguished name", fmt.Errorf("empty SET"))
		}
		for len(setBody) > 0 {
			atvElem, restSet, err := der.ReadElementTag(setBody, der.TagSequence)
			if err != nil {
				return Name{}, der.Malformed("attribute", err)
			}
			setBody = restSet

			atv, err := parseAttribute(atvElem)
			if err != nil {
				return Name{}, err
			}
			rdn = append(rdn, atv)
		}
		name.RDNs = append(name.RDNs, rdn)
	}
	return name, nil
}

func parseAttribute(elem der.Element) (AttributeTypeAndValue, error) {
	typElem, body, err := der.ReadElementTag(elem.Body, der.TagObjectIdentifier)
	if err != nil {
		return AttributeTypeAndValue{}, der.Malformed("attribute type", err)
	}
	typ, err := der.ParseOID(typElem)
	if err != nil {
		return AttributeTypeAndValue{}, err
	}

	valElem, body, err := der.ReadElement(body)
	if err != nil {
		return AttributeTypeAndValue{}, der.Malformed("attribute value", err)
	}
	val, err := der.ParseString(valElem)
	if err != nil {
		return AttributeTypeAndValue{}, der.Malformed("attribute value", err)
	}

	if len(body) != 0 {
		return AttributeTypeAndValue{}, der.Malformed("attribute", fmt.Errorf("%w: extra field", der.ErrBadTag))
	}
	return AttributeTypeAndValue{Type: typ, Value: val}, nil
}
