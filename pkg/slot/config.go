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

package slot

import (
	"fmt"
	"strings"
)

// =============================================================================
// Hardware Key Type
// =============================================================================

// HardwareKeyType is the chip's fixed interpretation of a slot's contents,
// burned in at provisioning time. It is unrelated to the software-level key
// type in pkg/types; mapping one onto the other is the compatibility
// checker's job.
type HardwareKeyType string

const (
	// HardwareKeyTypeShaOrText holds SHA digest input or opaque text/data.
	HardwareKeyTypeShaOrText HardwareKeyType = "sha_or_text"

	// HardwareKeyTypeAES holds an AES symmetric key.
	HardwareKeyTypeAES HardwareKeyType = "aes"

	// HardwareKeyTypeP256ECC holds a P-256 ECC key. The same tag is used for
	// private and public keys; ECCKeyAttr.IsPrivate tells them apart.
	HardwareKeyTypeP256ECC HardwareKeyType = "p256_ecc_key"

	// HardwareKeyTypeRFU is reserved for future hardware use.
	HardwareKeyTypeRFU HardwareKeyType = "rfu"
)

// String returns the string representation of the hardware key type.
func (t HardwareKeyType) String() string {
	return string(t)
}

// IsValid returns true if the hardware key type is recognized.
func (t HardwareKeyType) IsValid() bool {
	switch t {
	case HardwareKeyTypeShaOrText, HardwareKeyTypeAES, HardwareKeyTypeP256ECC, HardwareKeyTypeRFU:
		return true
	default:
		return false
	}
}

// ParseHardwareKeyType converts a string to a HardwareKeyType.
// Returns ErrUnknownHardwareKeyType if the string is not recognized.
func ParseHardwareKeyType(s string) (HardwareKeyType, error) {
	t := HardwareKeyType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownHardwareKeyType, s)
	}
	return t, nil
}

// =============================================================================
// Provisioning Fields
// =============================================================================

// WriteConfig describes the chip's write policy for a slot. Carried verbatim
// from provisioning data; not interpreted by the compatibility checker.
type WriteConfig string

const (
	WriteConfigAlways     WriteConfig = "always"
	WriteConfigPubInvalid WriteConfig = "pub_invalid"
	WriteConfigNever      WriteConfig = "never"
	WriteConfigEncrypt    WriteConfig = "encrypt"
)

// ReadKey describes how slot contents may be read back from the chip.
type ReadKey struct {
	// EncryptRead requires reads to be encrypted with the key in SlotNumber.
	EncryptRead bool `yaml:"encrypt_read" json:"encrypt_read"`

	// SlotNumber is the slot holding the read-encryption key.
	SlotNumber uint8 `yaml:"slot_number" json:"slot_number"`
}

// ECCKeyAttr carries the ECC-specific provisioning attributes of a slot.
// Only IsPrivate is interpreted by the compatibility checker; the signing and
// ECDH flags are retained verbatim for the driver layer.
type ECCKeyAttr struct {
	// IsPrivate indicates the slot stores an ECC private key.
	IsPrivate bool `yaml:"is_private" json:"is_private"`

	// ExtSign permits external signing with the key.
	ExtSign bool `yaml:"ext_sign" json:"ext_sign"`

	// IntSign permits internal signing with the key.
	IntSign bool `yaml:"int_sign" json:"int_sign"`

	// ECDHOperation permits ECDH with the key.
	ECDHOperation bool `yaml:"ecdh_operation" json:"ecdh_operation"`

	// ECDHSecretOut permits the ECDH shared secret to leave the chip.
	ECDHSecretOut bool `yaml:"ecdh_secret_out" json:"ecdh_secret_out"`
}

// =============================================================================
// Slot Hardware Configuration
// =============================================================================

// Config is the immutable hardware configuration of one physical slot,
// sourced from chip provisioning data outside this package's control. It is
// never mutated after a KeySlot is constructed.
type Config struct {
	// KeyType is the chip's interpretation of the slot contents.
	KeyType HardwareKeyType `yaml:"key_type" json:"key_type"`

	// WriteConfig is the chip's write policy for the slot.
	WriteConfig WriteConfig `yaml:"write_config" json:"write_config"`

	// ReadKey describes the read-back policy for the slot.
	ReadKey ReadKey `yaml:"read_key" json:"read_key"`

	// ECCKeyAttr carries ECC-specific provisioning attributes.
	ECCKeyAttr ECCKeyAttr `yaml:"ecc_key_attr" json:"ecc_key_attr"`

	// X509ID is the X.509 certificate identifier associated with the slot.
	X509ID uint8 `yaml:"x509_id" json:"x509_id"`

	// AuthKey is the slot number of the authorizing key.
	AuthKey uint8 `yaml:"auth_key" json:"auth_key"`

	// WriteKey is the slot number of the write-encryption key.
	WriteKey uint8 `yaml:"write_key" json:"write_key"`

	// IsSecret indicates the slot contents are not readable by software.
	IsSecret bool `yaml:"is_secret" json:"is_secret"`

	// LimitedUse restricts the number of uses of the slot contents.
	LimitedUse bool `yaml:"limited_use" json:"limited_use"`

	// NoMAC disables the slot for MAC/HMAC use.
	NoMAC bool `yaml:"no_mac" json:"no_mac"`

	// PersistentDisable permanently disables the slot when set.
	PersistentDisable bool `yaml:"persistent_disable" json:"persistent_disable"`

	// ReqAuth requires prior authorization before using the slot.
	ReqAuth bool `yaml:"req_auth" json:"req_auth"`

	// ReqRandom requires a random nonce for operations on the slot.
	ReqRandom bool `yaml:"req_random" json:"req_random"`

	// Lockable indicates the slot can be individually locked.
	Lockable bool `yaml:"lockable" json:"lockable"`

	// PubInfo indicates the slot may export public-key material.
	PubInfo bool `yaml:"pub_info" json:"pub_info"`
}

// DefaultConfig returns the hardware configuration of an unprovisioned slot.
func DefaultConfig() Config {
	return Config{
		KeyType:     HardwareKeyTypeShaOrText,
		WriteConfig: WriteConfigAlways,
	}
}
