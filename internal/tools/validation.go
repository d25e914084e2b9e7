// Copyright (C) 2026 the codepilot authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import "strings"

// ValidationRule checks typed tool arguments beyond what the schema's
// type validation covers, and returns an error if invalid.
type ValidationRule func(args Args) error

// ChainValidation runs rules in order until the first error.
func ChainValidation(rules ...ValidationRule) ValidationRule {
	return func(args Args) error {
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if err := rule(args); err != nil {
				return err
			}
		}
		return nil
	}
}

// RequireNonBlank rejects a present-but-blank string argument.
func RequireNonBlank(key string) ValidationRule {
	return func(args Args) error {
		if !args.Has(key) {
			return nil
		}
		if strings.TrimSpace(args.String(key)) == "" {
			return &ArgumentError{Parameter: key, Reason: "must not be blank"}
		}
		return nil
	}
}

// RequirePositive rejects a present integer argument below 1.
func RequirePositive(key string) ValidationRule {
	return func(args Args) error {
		if !args.Has(key) {
			return nil
		}
		if args.Int(key) < 1 {
			return &ArgumentError{Parameter: key, Reason: "must be a positive integer"}
		}
		return nil
	}
}
