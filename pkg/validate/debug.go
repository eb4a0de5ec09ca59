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

package validate

import (
	"encoding/base64"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/certpath/certpath/pkg/policy"
	"github.com/certpath/certpath/pkg/x509cert"
)

// DebugInfo logs the issuing relation between the chain certificates and
// the roots, plus a summary of each certificate involved.
func (v *Validator) DebugInfo(log logr.Logger, chainBase64 []string) error {
	log.Info("task info", "roots", len(v.roots), "chain", len(chainBase64))

	chain := make([]*x509cert.Certificate, 0, len(chainBase64))
	chainAbs := make([]*policy.Certificate, 0, len(chainBase64))
	for i, b64 := range chainBase64 {
		der, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return fmt.Errorf("validate: decoding chain certificate %d: %w", i, err)
		}
		cert, err := x509cert.ParseCertificate(der)
		if err != nil {
			return fmt.Errorf("validate: parsing chain certificate %d: %w", i, err)
		}
		abs, err := policy.FromParsed(cert)
		if err != nil {
			return err
		}
		chain = append(chain, cert)
		chainAbs = append(chainAbs, abs)
	}

	for i := range chainAbs {
		for j := range chainAbs {
			if v.pol.LikelyIssued(chainAbs[i], chainAbs[j]) {
				log.Info("issuing relation in chain", "issuer", i, "subject", j)
			}
		}
	}

	for r, rootAbs := range v.rootsAbs {
		for j := range chainAbs {
			if v.pol.LikelyIssued(rootAbs, chainAbs[j]) {
				log.Info("issuing relation from root", "root", r, "subject", j)
			}
		}
	}

	for i, cert := range chain {
		abs := chainAbs[i]
		log.Info("chain certificate",
			"index", i,
			"subject", cert.TBS.Subject.String(),
			"issuer", cert.TBS.Issuer.String(),
			"serial", abs.Serial,
			"sigAlg", abs.SigAlgOuter.ID,
			"notBefore", abs.NotBefore,
			"notAfter", abs.NotAfter,
			"fingerprint", abs.Fingerprint,
		)
	}
	return nil
}
