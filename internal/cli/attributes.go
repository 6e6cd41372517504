// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secureelement.
//
// go-secureelement is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secureelement/pkg/types"
)

// addAttributeFlags registers the key attribute flags shared by the probe
// and key create commands.
func addAttributeFlags(cmd *cobra.Command) {
	cmd.Flags().String("key-type", "ecc_key_pair",
		"software key type (raw_data, hmac, aes, ecc_key_pair, ecc_public_key, derive, dh_key_pair, dh_public_key)")
	cmd.Flags().String("curve", "secp_r1",
		"ecc curve family (secp_r1, secp_k1, brainpool_p_r1, montgomery)")
	cmd.Flags().Int("bits", 256, "key size in bits")
	cmd.Flags().String("algorithm", "ecdsa-sha256",
		"permitted algorithm (e.g. sha256, hmac-sha256, cmac, gcm, ecdsa-sha256, ecdh)")
	cmd.Flags().StringSlice("usage", nil,
		"usage flags (export, copy, cache, encrypt, decrypt, sign-hash, verify-hash, sign-message, verify-message, derive)")
}

// attributesFromFlags builds key attributes from the registered flags.
func attributesFromFlags(cmd *cobra.Command, cn string) (*types.KeyAttributes, error) {
	keyTypeStr, _ := cmd.Flags().GetString("key-type")
	curveStr, _ := cmd.Flags().GetString("curve")
	bits, _ := cmd.Flags().GetInt("bits")
	algorithmStr, _ := cmd.Flags().GetString("algorithm")
	usage, _ := cmd.Flags().GetStringSlice("usage")

	keyType, err := types.ParseKeyType(keyTypeStr)
	if err != nil {
		return nil, err
	}
	algorithm, err := types.ParseAlgorithm(algorithmStr)
	if err != nil {
		return nil, err
	}

	attrs := &types.KeyAttributes{
		CN:      cn,
		KeyType: keyType,
		Bits:    bits,
		Policy: types.Policy{
			PermittedAlgorithm: algorithm,
		},
	}
	if attrs.IsECC() {
		family, err := types.ParseECCFamily(curveStr)
		if err != nil {
			return nil, err
		}
		attrs.ECCFamily = family
	}
	if err := applyUsageFlags(&attrs.Policy.Usage, usage); err != nil {
		return nil, err
	}
	return attrs, nil
}

// applyUsageFlags sets the named usage flags on u.
func applyUsageFlags(u *types.UsageFlags, names []string) error {
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "export":
			u.Export = true
		case "copy":
			u.Copy = true
		case "cache":
			u.Cache = true
		case "encrypt":
			u.Encrypt = true
		case "decrypt":
			u.Decrypt = true
		case "sign-hash":
			u.SignHash = true
		case "verify-hash":
			u.VerifyHash = true
		case "sign-message":
			u.SignMessage = true
		case "verify-message":
			u.VerifyMessage = true
		case "derive":
			u.Derive = true
		default:
			return fmt.Errorf("unknown usage flag: %q", name)
		}
	}
	return nil
}
