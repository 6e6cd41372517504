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

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned when an algorithm string is not recognized.
var ErrUnknownAlgorithm = errors.New("types: unknown algorithm")

// =============================================================================
// Algorithm Classes
// =============================================================================

// AlgorithmClass is the discriminant of the tagged Algorithm variant. Every
// permitted algorithm belongs to exactly one class; consumers switch on the
// class first and on the class-specific fields second, with a default
// "unsupported" arm so that newly added variants fail safe.
type AlgorithmClass string

const (
	// AlgorithmClassNone marks an unset algorithm.
	AlgorithmClassNone AlgorithmClass = ""

	// AlgorithmClassHash are plain hash algorithms.
	AlgorithmClassHash AlgorithmClass = "hash"

	// AlgorithmClassMAC are message authentication codes.
	AlgorithmClassMAC AlgorithmClass = "mac"

	// AlgorithmClassCipher are unauthenticated symmetric cipher modes.
	AlgorithmClassCipher AlgorithmClass = "cipher"

	// AlgorithmClassAEAD are authenticated encryption modes.
	AlgorithmClassAEAD AlgorithmClass = "aead"

	// AlgorithmClassAsymmetricSignature are public-key signature schemes.
	AlgorithmClassAsymmetricSignature AlgorithmClass = "asymmetric_signature"

	// AlgorithmClassAsymmetricEncryption are public-key encryption schemes.
	AlgorithmClassAsymmetricEncryption AlgorithmClass = "asymmetric_encryption"

	// AlgorithmClassKeyAgreement are key agreement schemes.
	AlgorithmClassKeyAgreement AlgorithmClass = "key_agreement"
)

// =============================================================================
// Algorithm Variants
// =============================================================================

// HashAlg identifies a hash function.
type HashAlg string

const (
	HashSHA256 HashAlg = "sha256"
	HashSHA384 HashAlg = "sha384"
	HashSHA512 HashAlg = "sha512"
)

// MACAlg identifies a MAC construction.
type MACAlg string

const (
	MACHMAC   MACAlg = "hmac"
	MACCBCMAC MACAlg = "cbc_mac"
	MACCMAC   MACAlg = "cmac"
)

// CipherMode identifies an unauthenticated symmetric cipher mode.
type CipherMode string

const (
	CipherCBCPKCS7 CipherMode = "cbc_pkcs7"
	CipherCTR      CipherMode = "ctr"
	CipherCFB      CipherMode = "cfb"
	CipherOFB      CipherMode = "ofb"
	CipherECB      CipherMode = "ecb_no_padding"
)

// AEADAlg identifies an authenticated encryption algorithm.
type AEADAlg string

const (
	AEADCCM              AEADAlg = "ccm"
	AEADGCM              AEADAlg = "gcm"
	AEADChaCha20Poly1305 AEADAlg = "chacha20_poly1305"
)

// SignScheme identifies an asymmetric signature scheme.
type SignScheme string

const (
	SignECDSA              SignScheme = "ecdsa"
	SignDeterministicECDSA SignScheme = "deterministic_ecdsa"
	SignRSAPKCS1v15        SignScheme = "rsa_pkcs1v15"
	SignRSAPSS             SignScheme = "rsa_pss"
	SignEd25519            SignScheme = "ed25519"
)

// EncryptScheme identifies an asymmetric encryption scheme.
type EncryptScheme string

const (
	EncryptRSAPKCS1v15 EncryptScheme = "rsa_pkcs1v15"
	EncryptRSAOAEP     EncryptScheme = "rsa_oaep"
)

// AgreementAlg identifies a raw key agreement algorithm.
type AgreementAlg string

const (
	AgreementECDH AgreementAlg = "ecdh"
	AgreementFFDH AgreementAlg = "ffdh"
)

// =============================================================================
// Algorithm
// =============================================================================

// Algorithm is a tagged variant describing the single algorithm a key policy
// permits. Class selects the variant; only the fields belonging to that class
// are meaningful, all others stay zero. Use the constructor functions rather
// than building the struct by hand.
type Algorithm struct {
	// Class selects the algorithm family.
	Class AlgorithmClass `yaml:"class" json:"class"`

	// Hash is the hash function for Hash, HMAC, and signature variants.
	Hash HashAlg `yaml:"hash,omitempty" json:"hash,omitempty"`

	// MAC is the MAC construction for the MAC class.
	MAC MACAlg `yaml:"mac,omitempty" json:"mac,omitempty"`

	// TruncatedMAC indicates a truncated MAC output.
	TruncatedMAC bool `yaml:"truncated_mac,omitempty" json:"truncated_mac,omitempty"`

	// MACLength is the truncated MAC length in bytes; zero means full length.
	MACLength int `yaml:"mac_length,omitempty" json:"mac_length,omitempty"`

	// Cipher is the mode for the Cipher class.
	Cipher CipherMode `yaml:"cipher,omitempty" json:"cipher,omitempty"`

	// AEAD is the algorithm for the AEAD class.
	AEAD AEADAlg `yaml:"aead,omitempty" json:"aead,omitempty"`

	// ShortenedTag indicates an AEAD tag shorter than the default.
	ShortenedTag bool `yaml:"shortened_tag,omitempty" json:"shortened_tag,omitempty"`

	// TagLength is the shortened AEAD tag length in bytes; zero means default.
	TagLength int `yaml:"tag_length,omitempty" json:"tag_length,omitempty"`

	// Sign is the scheme for the AsymmetricSignature class.
	Sign SignScheme `yaml:"sign,omitempty" json:"sign,omitempty"`

	// Encrypt is the scheme for the AsymmetricEncryption class.
	Encrypt EncryptScheme `yaml:"encrypt,omitempty" json:"encrypt,omitempty"`

	// Agreement is the scheme for the KeyAgreement class.
	Agreement AgreementAlg `yaml:"agreement,omitempty" json:"agreement,omitempty"`

	// WithKeyDerivation marks a key agreement combined with a KDF step.
	WithKeyDerivation bool `yaml:"with_key_derivation,omitempty" json:"with_key_derivation,omitempty"`
}

// HashAlgorithm returns a plain hash Algorithm.
func HashAlgorithm(h HashAlg) Algorithm {
	return Algorithm{Class: AlgorithmClassHash, Hash: h}
}

// HMACAlgorithm returns a full-length HMAC Algorithm over the given hash.
func HMACAlgorithm(h HashAlg) Algorithm {
	return Algorithm{Class: AlgorithmClassMAC, MAC: MACHMAC, Hash: h}
}

// TruncatedHMACAlgorithm returns an HMAC Algorithm truncated to length bytes.
func TruncatedHMACAlgorithm(h HashAlg, length int) Algorithm {
	return Algorithm{
		Class:        AlgorithmClassMAC,
		MAC:          MACHMAC,
		Hash:         h,
		TruncatedMAC: true,
		MACLength:    length,
	}
}

// MACAlgorithm returns a full-length block-cipher MAC Algorithm (CBC-MAC or CMAC).
func MACAlgorithm(mac MACAlg) Algorithm {
	return Algorithm{Class: AlgorithmClassMAC, MAC: mac}
}

// TruncatedMACAlgorithm returns a block-cipher MAC Algorithm truncated to
// length bytes.
func TruncatedMACAlgorithm(mac MACAlg, length int) Algorithm {
	return Algorithm{
		Class:        AlgorithmClassMAC,
		MAC:          mac,
		TruncatedMAC: true,
		MACLength:    length,
	}
}

// CipherAlgorithm returns an unauthenticated cipher Algorithm.
func CipherAlgorithm(mode CipherMode) Algorithm {
	return Algorithm{Class: AlgorithmClassCipher, Cipher: mode}
}

// AEADAlgorithm returns an AEAD Algorithm with the default tag length.
func AEADAlgorithm(a AEADAlg) Algorithm {
	return Algorithm{Class: AlgorithmClassAEAD, AEAD: a}
}

// AEADWithShortenedTag returns an AEAD Algorithm with a shortened tag.
func AEADWithShortenedTag(a AEADAlg, tagLength int) Algorithm {
	return Algorithm{
		Class:        AlgorithmClassAEAD,
		AEAD:         a,
		ShortenedTag: true,
		TagLength:    tagLength,
	}
}

// ECDSAAlgorithm returns an ECDSA signature Algorithm over the given hash.
func ECDSAAlgorithm(h HashAlg) Algorithm {
	return Algorithm{Class: AlgorithmClassAsymmetricSignature, Sign: SignECDSA, Hash: h}
}

// DeterministicECDSAAlgorithm returns a deterministic (RFC 6979) ECDSA
// signature Algorithm over the given hash.
func DeterministicECDSAAlgorithm(h HashAlg) Algorithm {
	return Algorithm{
		Class: AlgorithmClassAsymmetricSignature,
		Sign:  SignDeterministicECDSA,
		Hash:  h,
	}
}

// AsymmetricEncryptionAlgorithm returns a public-key encryption Algorithm.
func AsymmetricEncryptionAlgorithm(scheme EncryptScheme) Algorithm {
	return Algorithm{Class: AlgorithmClassAsymmetricEncryption, Encrypt: scheme}
}

// ECDHAlgorithm returns a raw ECDH key agreement Algorithm.
func ECDHAlgorithm() Algorithm {
	return Algorithm{Class: AlgorithmClassKeyAgreement, Agreement: AgreementECDH}
}

// ECDHWithDerivationAlgorithm returns an ECDH key agreement Algorithm
// combined with a key derivation step.
func ECDHWithDerivationAlgorithm() Algorithm {
	return Algorithm{
		Class:             AlgorithmClassKeyAgreement,
		Agreement:         AgreementECDH,
		WithKeyDerivation: true,
	}
}

// ParseAlgorithm converts a short algorithm name, as accepted by operator
// tooling, to an Algorithm. Returns ErrUnknownAlgorithm for anything it does
// not recognize.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sha256":
		return HashAlgorithm(HashSHA256), nil
	case "hmac-sha256":
		return HMACAlgorithm(HashSHA256), nil
	case "cbc-mac":
		return MACAlgorithm(MACCBCMAC), nil
	case "cmac":
		return MACAlgorithm(MACCMAC), nil
	case "cbc-pkcs7":
		return CipherAlgorithm(CipherCBCPKCS7), nil
	case "ctr":
		return CipherAlgorithm(CipherCTR), nil
	case "cfb":
		return CipherAlgorithm(CipherCFB), nil
	case "ofb":
		return CipherAlgorithm(CipherOFB), nil
	case "ccm":
		return AEADAlgorithm(AEADCCM), nil
	case "gcm":
		return AEADAlgorithm(AEADGCM), nil
	case "ecdsa-sha256":
		return ECDSAAlgorithm(HashSHA256), nil
	case "deterministic-ecdsa-sha256":
		return DeterministicECDSAAlgorithm(HashSHA256), nil
	case "rsa-pkcs1v15":
		return AsymmetricEncryptionAlgorithm(EncryptRSAPKCS1v15), nil
	case "rsa-oaep":
		return AsymmetricEncryptionAlgorithm(EncryptRSAOAEP), nil
	case "ecdh":
		return ECDHAlgorithm(), nil
	case "ecdh-kdf":
		return ECDHWithDerivationAlgorithm(), nil
	default:
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// IsNone returns true if no algorithm is set.
func (a Algorithm) IsNone() bool {
	return a.Class == AlgorithmClassNone
}

// String returns a loggable representation of the algorithm.
func (a Algorithm) String() string {
	switch a.Class {
	case AlgorithmClassNone:
		return "none"
	case AlgorithmClassHash:
		return string(a.Hash)
	case AlgorithmClassMAC:
		name := string(a.MAC)
		if a.MAC == MACHMAC {
			name = fmt.Sprintf("hmac-%s", a.Hash)
		}
		if a.TruncatedMAC {
			return fmt.Sprintf("%s-%d", name, a.MACLength)
		}
		return name
	case AlgorithmClassCipher:
		return string(a.Cipher)
	case AlgorithmClassAEAD:
		if a.ShortenedTag {
			return fmt.Sprintf("%s-tag%d", a.AEAD, a.TagLength)
		}
		return string(a.AEAD)
	case AlgorithmClassAsymmetricSignature:
		return fmt.Sprintf("%s-%s", a.Sign, a.Hash)
	case AlgorithmClassAsymmetricEncryption:
		return string(a.Encrypt)
	case AlgorithmClassKeyAgreement:
		if a.WithKeyDerivation {
			return fmt.Sprintf("%s+kdf", a.Agreement)
		}
		return string(a.Agreement)
	default:
		return fmt.Sprintf("unknown(%s)", string(a.Class))
	}
}
