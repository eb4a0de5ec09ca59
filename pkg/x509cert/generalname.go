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

// GeneralNameKind classifies a GeneralName choice.
type GeneralNameKind int

const (
	GeneralNameOther GeneralNameKind = iota // otherName [0]
	GeneralNameDNS                          // dNSName [2]
	GeneralNameDirectory                    // directoryName [4]
	GeneralNameIP                           // iPAddress [7]
	GeneralNameUnsupported                  // every other choice, kept raw
)

// GeneralName is one parsed GeneralName choice. Only the fields for the
// matching kind are set.
type GeneralName struct {
	Kind      GeneralNameKind
	DNS       string
	Directory Name
	IP        []byte
	Raw       []byte // the whole tagged element
}

func parseGeneralName(input []byte) (GeneralName, []byte, error) {
	elem, rest, err := der.ReadElement(input)
	if err != nil {
		return GeneralName{}, nil, der.Malformed("general name", err)
	}
	if elem.Tag.Class != der.ClassContextSpecific {
		return GeneralName{}, nil, der.Malformed("general name", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}

	name := GeneralName{Raw: elem.Raw}
	switch elem.Tag.Number {
	case 0:
		name.Kind = GeneralNameOther

	case 2:
		if elem.Tag.Constructed {
			return GeneralName{}, nil, der.Malformed("dns name", fmt.Errorf("%w: constructed IA5String", der.ErrBadTag))
		}
		s, err := der.ParseStringBody(der.KindIA5String, elem.Body)
		if err != nil {
			return GeneralName{}, nil, err
		}
		name.Kind = GeneralNameDNS
		name.DNS, _ = s.Text()

	case 4:
		// directoryName is an EXPLICIT Name: the context tag wraps the
		// SEQUENCE.
		inner, err := der.Explicit(elem, "directory name")
		if err != nil {
			return GeneralName{}, nil, err
		}
		if inner.Tag != der.TagSequence {
			return GeneralName{}, nil, der.Malformed("directory name", fmt.Errorf("%w: %v", der.ErrBadTag, inner.Tag))
		}
		dir, err := parseNameElement(inner)
		if err != nil {
			return GeneralName{}, nil, err
		}
		name.Kind = GeneralNameDirectory
		name.Directory = dir

	case 7:
		if elem.Tag.Constructed {
			return GeneralName{}, nil, der.Malformed("ip address", fmt.Errorf("%w: constructed OCTET STRING", der.ErrBadTag))
		}
		name.Kind = GeneralNameIP
		name.IP = elem.Body

	default:
		name.Kind = GeneralNameUnsupported
	}
	return name, rest, nil
}

func parseGeneralNames(elem der.Element) ([]GeneralName, error) {
	if elem.Tag != der.TagSequence {
		return nil, der.Malformed("general names", fmt.Errorf("%w: %v", der.ErrBadTag, elem.Tag))
	}
	names := []GeneralName{}
	body := elem.Body
	for len(body) > 0 {
		var name GeneralName
		var err error
		name, body, err = parseGeneralName(body)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// GeneralSubtree is a NameConstraints subtree. The minimum and maximum
// fields are validated during parsing but not retained; the policy layer
// only ever consults the base name.
type GeneralSubtree struct {
	Base GeneralName
}

var (
	tagSubtreeMin = der.ContextTag(0, false)
	tagSubtreeMax = der.ContextTag(1, false)
)

func parseGeneralSubtrees(elem der.Element) ([]GeneralSubtree, error) {
	subtrees := []GeneralSubtree{}
	body := elem.Body
	for len(body) > 0 {
		subtreeElem, rest, err := der.ReadElementTag(body, der.TagSequence)
		if err != nil {
			return nil, der.Malformed("general subtree", err)
		}
		body = rest

		base, inner, err := parseGeneralName(subtreeElem.Body)
		if err != nil {
			return nil, err
		}

		// minimum [0] DEFAULT 0, maximum [1] OPTIONAL
		if tag, ok := der.PeekTag(inner); ok && tag == tagSubtreeMin {
			var minElem der.Element
			minElem, inner, err = der.ReadElement(inner)
			if err != nil {
				return nil, der.Malformed("general subtree minimum", err)
			}
			v, err := der.ParseIntBody(minElem.Body, "general subtree minimum")
			if err != nil {
				return nil, err
			}
			if n, ok := v.Int64(); ok && n == 0 {
				return nil, der.Malformed("general subtree minimum", fmt.Errorf("%w: DEFAULT 0 encoded explicitly", der.ErrNonminimal))
			}
		}
		if tag, ok := der.PeekTag(inner); ok && tag == tagSubtreeMax {
			var maxElem der.Element
			maxElem, inner, err = der.ReadElement(inner)
			if err != nil {
				return nil, der.Malformed("general subtree maximum", err)
			}
			if _, err := der.ParseIntBody(maxElem.Body, "general subtree maximum"); err != nil {
				return nil, err
			}
		}
		if len(inner) != 0 {
			return nil, der.Malformed("general subtree", fmt.Errorf("%w: extra field", der.ErrBadTag))
		}

		subtrees = append(subtrees, GeneralSubtree{Base: base})
	}
	return subtrees, nil
}
