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

// Package types contains the portable key-attribute model shared across the
// secure element slot manager: software key types, usage policies, and the
// permitted-algorithm descriptor. This package is hardware-agnostic and has
// no dependency on pkg/slot or pkg/provider to prevent import cycles.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrUnknownKeyType is returned when a key type string is not recognized.
	ErrUnknownKeyType = errors.New("types: unknown key type")

	// ErrUnknownECCFamily is returned when an ECC curve family string is not recognized.
	ErrUnknownECCFamily = errors.New("types: unknown ecc curve family")

	// ErrInvalidAttributes is returned when key attributes are incomplete or
	// internally inconsistent.
	ErrInvalidAttributes = errors.New("types: invalid key attributes")
)

// =============================================================================
// Key Type
// =============================================================================

// KeyType identifies the software-level type of a key, independent of any
// hardware backend. This mirrors the portable attribute model used by
// clients; the secure element decides separately whether a given type can
// live in a given slot.
type KeyType string

const (
	// KeyTypeRawData is an opaque data blob with no cryptographic structure.
	KeyTypeRawData KeyType = "raw_data"

	// KeyTypeHMAC is a secret key for HMAC operations.
	KeyTypeHMAC KeyType = "hmac"

	// KeyTypeAES is a symmetric AES key.
	KeyTypeAES KeyType = "aes"

	// KeyTypeECCKeyPair is an elliptic curve key pair (private + public part).
	KeyTypeECCKeyPair KeyType = "ecc_key_pair"

	// KeyTypeECCPublicKey is the public part of an elliptic curve key pair.
	KeyTypeECCPublicKey KeyType = "ecc_public_key"

	// KeyTypeDerive is a secret used only as key-derivation input.
	KeyTypeDerive KeyType = "derive"

	// KeyTypeDHKeyPair is a finite-field Diffie-Hellman key pair.
	KeyTypeDHKeyPair KeyType = "dh_key_pair"

	// KeyTypeDHPublicKey is the public part of a Diffie-Hellman key pair.
	KeyTypeDHPublicKey KeyType = "dh_public_key"
)

// KeyTypes lists all recognized key types for iteration.
var KeyTypes = []KeyType{
	KeyTypeRawData,
	KeyTypeHMAC,
	KeyTypeAES,
	KeyTypeECCKeyPair,
	KeyTypeECCPublicKey,
	KeyTypeDerive,
	KeyTypeDHKeyPair,
	KeyTypeDHPublicKey,
}

// String returns the string representation of the key type.
func (kt KeyType) String() string {
	return string(kt)
}

// IsValid returns true if the key type is recognized.
func (kt KeyType) IsValid() bool {
	switch kt {
	case KeyTypeRawData, KeyTypeHMAC, KeyTypeAES, KeyTypeECCKeyPair,
		KeyTypeECCPublicKey, KeyTypeDerive, KeyTypeDHKeyPair, KeyTypeDHPublicKey:
		return true
	default:
		return false
	}
}

// IsPublic returns true if the key type carries only public material.
func (kt KeyType) IsPublic() bool {
	return kt == KeyTypeECCPublicKey || kt == KeyTypeDHPublicKey
}

// ParseKeyType converts a string to a KeyType.
// Returns ErrUnknownKeyType if the string is not a valid key type.
func ParseKeyType(s string) (KeyType, error) {
	kt := KeyType(strings.ToLower(strings.TrimSpace(s)))
	if !kt.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKeyType, s)
	}
	return kt, nil
}

// =============================================================================
// ECC Curve Family
// =============================================================================

// ECCFamily identifies the elliptic curve family of an ECC key. Only SecpR1
// is meaningful to the secure element; the remaining families exist so that
// client requests can be described faithfully before being rejected.
type ECCFamily string

const (
	// ECCFamilySecpR1 is the SEC random-curve family (includes NIST P-256).
	ECCFamilySecpR1 ECCFamily = "secp_r1"

	// ECCFamilySecpK1 is the SEC Koblitz-curve family (includes secp256k1).
	ECCFamilySecpK1 ECCFamily = "secp_k1"

	// ECCFamilyBrainpoolPR1 is the Brainpool random-curve family.
	ECCFamilyBrainpoolPR1 ECCFamily = "brainpool_p_r1"

	// ECCFamilyMontgomery is the Montgomery-curve family (Curve25519/448).
	ECCFamilyMontgomery ECCFamily = "montgomery"
)

// String returns the string representation of the curve family.
func (f ECCFamily) String() string {
	return string(f)
}

// IsValid returns true if the curve family is recognized.
func (f ECCFamily) IsValid() bool {
	switch f {
	case ECCFamilySecpR1, ECCFamilySecpK1, ECCFamilyBrainpoolPR1, ECCFamilyMontgomery:
		return true
	default:
		return false
	}
}

// ParseECCFamily converts a string to an ECCFamily.
// Returns ErrUnknownECCFamily if the string is not a valid curve family.
func ParseECCFamily(s string) (ECCFamily, error) {
	f := ECCFamily(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownECCFamily, s)
	}
	return f, nil
}

// =============================================================================
// Usage Flags
// =============================================================================

// UsageFlags describes the operations a key's policy permits. The zero value
// permits nothing.
type UsageFlags struct {
	// Export permits exporting the key material outside the backend.
	Export bool `yaml:"export" json:"export"`

	// Copy permits copying the key to another location.
	Copy bool `yaml:"copy" json:"copy"`

	// Cache permits caching the key material in volatile memory.
	Cache bool `yaml:"cache" json:"cache"`

	// Encrypt permits encryption with the key.
	Encrypt bool `yaml:"encrypt" json:"encrypt"`

	// Decrypt permits decryption with the key.
	Decrypt bool `yaml:"decrypt" json:"decrypt"`

	// SignMessage permits signing a message with the key.
	SignMessage bool `yaml:"sign_message" json:"sign_message"`

	// VerifyMessage permits verifying a message signature with the key.
	VerifyMessage bool `yaml:"verify_message" json:"verify_message"`

	// SignHash permits signing a pre-computed hash with the key.
	SignHash bool `yaml:"sign_hash" json:"sign_hash"`

	// VerifyHash permits verifying a signature over a pre-computed hash.
	VerifyHash bool `yaml:"verify_hash" json:"verify_hash"`

	// Derive permits deriving other keys from the key.
	Derive bool `yaml:"derive" json:"derive"`
}

// WantsExport returns true if the policy asks for the key material to leave
// the backend, either by export or by copy.
func (u UsageFlags) WantsExport() bool {
	return u.Export || u.Copy
}

// WantsSigning returns true if the policy asks for signing in any form.
func (u UsageFlags) WantsSigning() bool {
	return u.SignHash || u.SignMessage
}

// =============================================================================
// Policy & Key Attributes
// =============================================================================

// Policy combines the usage flags with the single permitted algorithm of a
// key. The portable model allows exactly one permitted algorithm per key.
type Policy struct {
	// Usage lists the operations the key may perform.
	Usage UsageFlags `yaml:"usage" json:"usage"`

	// PermittedAlgorithm is the one algorithm the key may be used with.
	PermittedAlgorithm Algorithm `yaml:"permitted_algorithm" json:"permitted_algorithm"`
}

// KeyAttributes is the portable description of a requested key: what it is,
// how large it is, and what it is allowed to do. The slot manager matches
// these attributes against hardware slot configurations.
type KeyAttributes struct {
	// CN is the common name identifier for the key.
	CN string `yaml:"cn" json:"cn"`

	// KeyType specifies the software-level type of the key.
	KeyType KeyType `yaml:"key_type" json:"key_type"`

	// ECCFamily specifies the curve family for ECC key types.
	// Ignored for non-ECC key types.
	ECCFamily ECCFamily `yaml:"ecc_family,omitempty" json:"ecc_family,omitempty"`

	// Bits is the key size in bits. For ECC keys this is the private key
	// size, not the uncompressed public key size.
	Bits int `yaml:"bits" json:"bits"`

	// Policy holds the usage flags and the permitted algorithm.
	Policy Policy `yaml:"policy" json:"policy"`
}

// IsECC returns true if the attributes describe an elliptic curve key.
func (a *KeyAttributes) IsECC() bool {
	return a.KeyType == KeyTypeECCKeyPair || a.KeyType == KeyTypeECCPublicKey
}

// Validate checks the attributes for completeness. It does not decide
// hardware compatibility; that is pkg/slot's job.
func (a *KeyAttributes) Validate() error {
	if a.CN == "" {
		return fmt.Errorf("%w: missing common name", ErrInvalidAttributes)
	}
	if !a.KeyType.IsValid() {
		return fmt.Errorf("%w: key type %q", ErrInvalidAttributes, a.KeyType)
	}
	if a.IsECC() && !a.ECCFamily.IsValid() {
		return fmt.Errorf("%w: ecc key without curve family", ErrInvalidAttributes)
	}
	if a.Bits <= 0 {
		return fmt.Errorf("%w: bits must be positive", ErrInvalidAttributes)
	}
	return nil
}

// String returns a loggable one-line summary of the attributes.
func (a *KeyAttributes) String() string {
	if a.IsECC() {
		return fmt.Sprintf("%s/%s/%d/%s", a.KeyType, a.ECCFamily, a.Bits,
			a.Policy.PermittedAlgorithm)
	}
	return fmt.Sprintf("%s/%d/%s", a.KeyType, a.Bits, a.Policy.PermittedAlgorithm)
}
