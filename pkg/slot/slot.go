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
	"github.com/jeremyhahn/go-secureelement/pkg/types"
)

// KeySlot represents one physical key slot of the secure element: its
// immutable hardware configuration, its software-visible lifecycle status,
// and a diagnostic reference counter used as a single-use claim guard.
//
// KeySlot performs no I/O and holds no lock of its own. The owning Table
// serializes the free-check / compatibility-check / claim / status-change
// sequence; see Table.Allocate.
type KeySlot struct {
	config   Config
	status   Status
	refCount uint8
}

// New creates a KeySlot for the given hardware configuration. The slot
// starts free and unclaimed.
func New(config Config) *KeySlot {
	return &KeySlot{
		config: config,
		status: StatusFree,
	}
}

// Config returns the slot's hardware configuration.
func (s *KeySlot) Config() Config {
	return s.config
}

// Status returns the slot's current lifecycle status.
func (s *KeySlot) Status() Status {
	return s.status
}

// RefCount returns the diagnostic count of logical keys pointing at the slot.
func (s *KeySlot) RefCount() uint8 {
	return s.refCount
}

// IsFree returns true if the slot is unclaimed and eligible for binding.
// The allocator uses this as the first filter before running the
// compatibility check; a busy or locked slot is never offered.
func (s *KeySlot) IsFree() bool {
	return s.status == StatusFree
}

// CheckCompatibility decides whether a key with the given software attributes
// could legally live in this slot. It returns nil on success and
// ErrNotSupported otherwise. Incompatibility is a routine outcome during slot
// search, not an error condition in the caller's control flow.
//
// The verdict is the conjunction of three independent predicates: storage
// interpretation (key type), export/sign permissions (usage flags), and
// algorithmic capability (permitted algorithm). They are order-insensitive
// for correctness but evaluated type-first as a cheap reject.
func (s *KeySlot) CheckCompatibility(attrs *types.KeyAttributes) error {
	if !s.keyTypeOK(attrs) {
		return ErrNotSupported
	}
	if !s.usageFlagsOK(attrs) {
		return ErrNotSupported
	}
	if !s.permittedAlgorithmOK(attrs) {
		return ErrNotSupported
	}
	return nil
}

// SetStatus transitions the slot to the requested status. A locked slot
// never changes status again, and locking is not reachable through this
// path; both attempts fail with ErrNotPermitted. Hardware locking happens
// through the table's privileged operation instead.
func (s *KeySlot) SetStatus(next Status) error {
	if s.status == StatusLocked {
		return ErrNotPermitted
	}
	if next == StatusLocked {
		return ErrNotPermitted
	}
	s.status = next
	return nil
}

// Claim is the single-use, non-idempotent guard against binding two
// unrelated logical keys to one slot. It succeeds only when the reference
// count is zero, setting it to one; a second call fails with
// ErrAlreadyClaimed until the owner releases the slot. Claim is orthogonal
// to Status: a locked-but-unclaimed slot still accepts a claim.
func (s *KeySlot) Claim() error {
	if s.refCount > 0 {
		return ErrAlreadyClaimed
	}
	s.refCount = 1
	return nil
}

// releaseClaim drops the reference count back to zero. Releasing is the
// table's responsibility, which is why this is not part of the exported
// entity surface.
func (s *KeySlot) releaseClaim() {
	s.refCount = 0
}

// lockHardware marks the slot as under hardware-level permanent protection.
// This is the privileged path that bypasses SetStatus.
func (s *KeySlot) lockHardware() {
	s.status = StatusLocked
}

// keyTypeOK maps the software key type to the one hardware key type that may
// host it.
func (s *KeySlot) keyTypeOK(attrs *types.KeyAttributes) bool {
	switch attrs.KeyType {
	case types.KeyTypeRawData:
		return s.config.KeyType == HardwareKeyTypeShaOrText
	case types.KeyTypeHMAC:
		return !s.config.NoMAC
	case types.KeyTypeAES:
		return s.config.KeyType == HardwareKeyTypeAES
	case types.KeyTypeECCKeyPair, types.KeyTypeECCPublicKey:
		// Is this right? The P-256 private key has 256 bits (32 bytes), but
		// the uncompressed public key is 512 bits (64 bytes).
		return attrs.ECCFamily == types.ECCFamilySecpR1 &&
			attrs.Bits == 256 &&
			s.config.KeyType == HardwareKeyTypeP256ECC
	case types.KeyTypeDerive, types.KeyTypeDHKeyPair, types.KeyTypeDHPublicKey:
		// Not supported by this hardware family. This may change.
		return false
	default:
		return false
	}
}

// usageFlagsOK checks the export/copy and signing permissions of the policy
// against the slot. Evaluated as a running conjunction that short-circuits
// on the first violation.
func (s *KeySlot) usageFlagsOK(attrs *types.KeyAttributes) bool {
	usage := attrs.Policy.Usage
	if usage.WantsExport() {
		switch s.config.KeyType {
		case HardwareKeyTypeAES:
			// AES slots always pass.
		case HardwareKeyTypeP256ECC:
			// Exporting a private key is never permitted by flags alone:
			// the slot must advertise public info and the software type
			// must itself be public.
			if !s.config.PubInfo || !attrs.KeyType.IsPublic() {
				return false
			}
		default:
			// Other hardware key types pass trivially.
		}
	}
	if usage.WantsSigning() {
		// Only a private EC slot may sign.
		if s.config.KeyType != HardwareKeyTypeP256ECC || !s.config.ECCKeyAttr.IsPrivate {
			return false
		}
	}
	return true
}

// permittedAlgorithmOK matches the key's single permitted algorithm against
// the fixed hardware capability rules. Anything not explicitly listed is
// unsupported; the default arms keep newly added algorithm variants failing
// safe rather than silently matching a wrong branch.
func (s *KeySlot) permittedAlgorithmOK(attrs *types.KeyAttributes) bool {
	alg := attrs.Policy.PermittedAlgorithm
	switch alg.Class {
	case types.AlgorithmClassHash:
		return alg.Hash == types.HashSHA256
	case types.AlgorithmClassMAC:
		switch alg.MAC {
		case types.MACHMAC:
			// Truncated or full-length HMAC-SHA-256.
			return alg.Hash == types.HashSHA256 &&
				!s.config.NoMAC &&
				s.config.KeyType != HardwareKeyTypeP256ECC &&
				!s.config.ECCKeyAttr.IsPrivate
		case types.MACCBCMAC, types.MACCMAC:
			return !s.config.NoMAC && s.config.KeyType == HardwareKeyTypeAES
		default:
			return false
		}
	case types.AlgorithmClassCipher:
		switch alg.Cipher {
		case types.CipherCBCPKCS7, types.CipherCTR, types.CipherCFB, types.CipherOFB:
			return s.config.KeyType == HardwareKeyTypeAES
		default:
			return false
		}
	case types.AlgorithmClassAEAD:
		switch alg.AEAD {
		case types.AEADCCM, types.AEADGCM:
			// Default or shortened tag.
			return s.config.KeyType == HardwareKeyTypeAES
		default:
			return false
		}
	case types.AlgorithmClassAsymmetricSignature:
		switch alg.Sign {
		case types.SignECDSA:
			// TODO: what is external or internal hashing?
			return alg.Hash == types.HashSHA256 &&
				s.config.IsSecret &&
				s.config.KeyType == HardwareKeyTypeP256ECC &&
				s.config.ECCKeyAttr.IsPrivate
		case types.SignDeterministicECDSA:
			// RFC 6979: the hardware lacks deterministic-nonce signing.
			return false
		default:
			return false
		}
	case types.AlgorithmClassAsymmetricEncryption:
		// Why only RSA? It could work with ECC...
		return false
	case types.AlgorithmClassKeyAgreement:
		switch alg.Agreement {
		case types.AgreementECDH:
			// Raw or with key derivation.
			return s.config.KeyType == HardwareKeyTypeP256ECC
		default:
			return false
		}
	default:
		// Nothing else is known to be supported by the chip.
		return false
	}
}
