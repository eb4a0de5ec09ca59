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

package policy

import "fmt"

// Choice selects one of the known policies.
type Choice string

// Known policy choices.
const (
	ChoiceChrome  Choice = "chrome"
	ChoiceFirefox Choice = "firefox"
	ChoiceOpenSSL Choice = "openssl"
)

// New builds the policy for a choice.
func New(choice Choice) (Policy, error) {
	switch choice {
	case ChoiceChrome:
		return NewChromePolicy(), nil
	case ChoiceFirefox:
		return NewFirefoxPolicy(), nil
	case ChoiceOpenSSL:
		return NewOpenSSLPolicy(), nil
	}
	return nil, fmt.Errorf("policy: unknown policy %q (want chrome, firefox, or openssl)", choice)
}
