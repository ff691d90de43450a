package scy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StrToRaw converts a string representation of a token amount to its raw
// value.
//
// An error is returned if the value string is invalid, or it cannot be
// accurately represented in raw units. For example, a value smaller than one
// raw unit, or a value _far_ greater than the supply.
func StrToRaw(val string) (uint64, error) {
	parts := strings.Split(val, ".")
	if len(parts) > 2 {
		return 0, errors.New("invalid token value")
	}

	if len(parts[0]) > 10 {
		return 0, errors.New("value cannot be represented")
	}

	tokens, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, err
	}

	var raw uint64
	if len(parts) == 2 {
		if len(parts[1]) > Decimals {
			return 0, errors.New("value cannot be represented")
		}

		padded := fmt.Sprintf("%s%s", parts[1], strings.Repeat("0", Decimals-len(parts[1])))
		raw, err = strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "invalid decimal component")
		}
	}

	return tokens*RawPerToken + raw, nil
}

// MustStrToRaw calls StrToRaw, panicking if there's an error.
//
// This should only be used if you know for sure this will not panic.
func MustStrToRaw(val string) uint64 {
	result, err := StrToRaw(val)
	if err != nil {
		panic(err)
	}

	return result
}

// StrFromRaw converts a raw amount to the string representation of tokens.
func StrFromRaw(amount uint64) string {
	if amount < RawPerToken {
		return fmt.Sprintf("0.%09d", amount)
	}

	return fmt.Sprintf("%d.%09d", amount/RawPerToken, amount%RawPerToken)
}
