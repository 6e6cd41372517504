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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-secureelement/pkg/types"
)

// p256Config returns a P-256 ECC slot configuration. The flag arguments
// mirror the provisioning fields the compatibility checker interprets.
func p256Config(isPrivate, isSecret, pubInfo, noMAC bool) Config {
	cfg := DefaultConfig()
	cfg.KeyType = HardwareKeyTypeP256ECC
	cfg.ECCKeyAttr.IsPrivate = isPrivate
	cfg.IsSecret = isSecret
	cfg.PubInfo = pubInfo
	cfg.NoMAC = noMAC
	return cfg
}

func aesConfig(noMAC bool) Config {
	cfg := DefaultConfig()
	cfg.KeyType = HardwareKeyTypeAES
	cfg.NoMAC = noMAC
	return cfg
}

func shaOrTextConfig(noMAC bool) Config {
	cfg := DefaultConfig()
	cfg.KeyType = HardwareKeyTypeShaOrText
	cfg.NoMAC = noMAC
	return cfg
}

func eccKeyPairAttrs() *types.KeyAttributes {
	return &types.KeyAttributes{
		CN:        "test",
		KeyType:   types.KeyTypeECCKeyPair,
		ECCFamily: types.ECCFamilySecpR1,
		Bits:      256,
		Policy: types.Policy{
			PermittedAlgorithm: types.ECDSAAlgorithm(types.HashSHA256),
		},
	}
}

func TestKeyTypeCompatibility(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		keyType types.KeyType
		family  types.ECCFamily
		bits    int
		want    bool
	}{
		{
			name:    "ECC key pair on P256 slot",
			config:  p256Config(false, false, false, true),
			keyType: types.KeyTypeECCKeyPair,
			family:  types.ECCFamilySecpR1,
			bits:    256,
			want:    true,
		},
		{
			name:    "ECC public key on P256 slot",
			config:  p256Config(false, false, false, true),
			keyType: types.KeyTypeECCPublicKey,
			family:  types.ECCFamilySecpR1,
			bits:    256,
			want:    true,
		},
		{
			name:    "ECC key pair with wrong bit length",
			config:  p256Config(false, false, false, true),
			keyType: types.KeyTypeECCKeyPair,
			family:  types.ECCFamilySecpR1,
			bits:    384,
			want:    false,
		},
		{
			name:    "ECC key pair with Koblitz curve family",
			config:  p256Config(false, false, false, true),
			keyType: types.KeyTypeECCKeyPair,
			family:  types.ECCFamilySecpK1,
			bits:    256,
			want:    false,
		},
		{
			name:    "AES key on P256 slot",
			config:  p256Config(false, false, false, true),
			keyType: types.KeyTypeAES,
			bits:    128,
			want:    false,
		},
		{
			name:    "raw data on P256 slot",
			config:  p256Config(false, false, false, true),
			keyType: types.KeyTypeRawData,
			bits:    64,
			want:    false,
		},
		{
			name:    "ECC key pair on AES slot",
			config:  aesConfig(false),
			keyType: types.KeyTypeECCKeyPair,
			family:  types.ECCFamilySecpR1,
			bits:    256,
			want:    false,
		},
		{
			name:    "AES key on AES slot",
			config:  aesConfig(false),
			keyType: types.KeyTypeAES,
			bits:    128,
			want:    true,
		},
		{
			name:    "raw data on AES slot",
			config:  aesConfig(false),
			keyType: types.KeyTypeRawData,
			bits:    64,
			want:    false,
		},
		{
			name:    "ECC key pair on sha/text slot",
			config:  shaOrTextConfig(false),
			keyType: types.KeyTypeECCKeyPair,
			family:  types.ECCFamilySecpR1,
			bits:    256,
			want:    false,
		},
		{
			name:    "AES key on sha/text slot",
			config:  shaOrTextConfig(false),
			keyType: types.KeyTypeAES,
			bits:    128,
			want:    false,
		},
		{
			name:    "raw data on sha/text slot",
			config:  shaOrTextConfig(false),
			keyType: types.KeyTypeRawData,
			bits:    64,
			want:    true,
		},
		{
			name:    "HMAC key on MAC-enabled slot of any type",
			config:  shaOrTextConfig(false),
			keyType: types.KeyTypeHMAC,
			bits:    256,
			want:    true,
		},
		{
			name:    "HMAC key on MAC-disabled slot",
			config:  shaOrTextConfig(true),
			keyType: types.KeyTypeHMAC,
			bits:    256,
			want:    false,
		},
		{
			name:    "derive key never hosted",
			config:  aesConfig(false),
			keyType: types.KeyTypeDerive,
			bits:    256,
			want:    false,
		},
		{
			name:    "DH key pair never hosted",
			config:  p256Config(true, true, true, false),
			keyType: types.KeyTypeDHKeyPair,
			bits:    2048,
			want:    false,
		},
		{
			name:    "DH public key never hosted",
			config:  p256Config(true, true, true, false),
			keyType: types.KeyTypeDHPublicKey,
			bits:    2048,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.config)
			attrs := &types.KeyAttributes{
				CN:        "test",
				KeyType:   tt.keyType,
				ECCFamily: tt.family,
				Bits:      tt.bits,
			}
			assert.Equal(t, tt.want, s.keyTypeOK(attrs))
		})
	}
}

func TestUsageFlagsCompatibility(t *testing.T) {
	t.Run("export of public key from P256 slot requires pub_info", func(t *testing.T) {
		attrs := eccKeyPairAttrs()
		attrs.KeyType = types.KeyTypeECCPublicKey
		attrs.Policy.Usage.Export = true
		attrs.Policy.Usage.Copy = true

		s := New(p256Config(true, false, true, true))
		assert.True(t, s.usageFlagsOK(attrs))

		// pub_info cleared: rejected even with all other flags default
		s = New(p256Config(true, false, false, true))
		assert.False(t, s.usageFlagsOK(attrs))
	})

	t.Run("export of private key from P256 slot never permitted by flags", func(t *testing.T) {
		attrs := eccKeyPairAttrs()
		attrs.Policy.Usage.Export = true

		s := New(p256Config(true, false, true, true))
		assert.False(t, s.usageFlagsOK(attrs))

		// dropping export/copy makes the same request acceptable
		attrs.Policy.Usage.Export = false
		assert.True(t, s.usageFlagsOK(attrs))
	})

	t.Run("export from AES slot always passes", func(t *testing.T) {
		attrs := &types.KeyAttributes{
			CN:      "test",
			KeyType: types.KeyTypeAES,
			Bits:    128,
		}
		attrs.Policy.Usage.Export = true
		s := New(aesConfig(false))
		assert.True(t, s.usageFlagsOK(attrs))
	})

	t.Run("export from sha/text slot passes trivially", func(t *testing.T) {
		attrs := &types.KeyAttributes{
			CN:      "test",
			KeyType: types.KeyTypeRawData,
			Bits:    64,
		}
		attrs.Policy.Usage.Copy = true
		s := New(shaOrTextConfig(false))
		assert.True(t, s.usageFlagsOK(attrs))
	})

	t.Run("sign flags require private P256 slot", func(t *testing.T) {
		attrs := eccKeyPairAttrs()
		attrs.Policy.Usage.SignHash = true
		attrs.Policy.Usage.SignMessage = true

		s := New(p256Config(true, false, false, true))
		assert.True(t, s.usageFlagsOK(attrs))

		// public P256 slot rejects signing
		s = New(p256Config(false, false, true, true))
		assert.False(t, s.usageFlagsOK(attrs))
	})

	t.Run("sign flags rejected on AES and sha/text slots regardless of settings", func(t *testing.T) {
		attrs := &types.KeyAttributes{
			CN:      "test",
			KeyType: types.KeyTypeHMAC,
			Bits:    256,
		}
		attrs.Policy.Usage.SignHash = true

		assert.False(t, New(aesConfig(false)).usageFlagsOK(attrs))
		assert.False(t, New(shaOrTextConfig(false)).usageFlagsOK(attrs))

		// without sign flags the same slots pass
		attrs.Policy.Usage.SignHash = false
		assert.True(t, New(aesConfig(false)).usageFlagsOK(attrs))
		assert.True(t, New(shaOrTextConfig(false)).usageFlagsOK(attrs))
	})
}

func TestPermittedAlgorithmCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		algorithm types.Algorithm
		want      bool
	}{
		{
			name:      "plain SHA-256 always allowed",
			config:    shaOrTextConfig(true),
			algorithm: types.HashAlgorithm(types.HashSHA256),
			want:      true,
		},
		{
			name:      "SHA-384 never supported",
			config:    shaOrTextConfig(false),
			algorithm: types.HashAlgorithm(types.HashSHA384),
			want:      false,
		},
		{
			name:      "HMAC-SHA-256 on MAC-enabled AES slot",
			config:    aesConfig(false),
			algorithm: types.HMACAlgorithm(types.HashSHA256),
			want:      true,
		},
		{
			name:      "truncated HMAC-SHA-256 on MAC-enabled sha/text slot",
			config:    shaOrTextConfig(false),
			algorithm: types.TruncatedHMACAlgorithm(types.HashSHA256, 16),
			want:      true,
		},
		{
			name:      "HMAC-SHA-256 on MAC-disabled slot",
			config:    shaOrTextConfig(true),
			algorithm: types.HMACAlgorithm(types.HashSHA256),
			want:      false,
		},
		{
			name:      "HMAC-SHA-256 on P256 slot",
			config:    p256Config(false, false, false, false),
			algorithm: types.HMACAlgorithm(types.HashSHA256),
			want:      false,
		},
		{
			name:      "CMAC on AES slot",
			config:    aesConfig(false),
			algorithm: types.MACAlgorithm(types.MACCMAC),
			want:      true,
		},
		{
			name:      "truncated CBC-MAC on AES slot",
			config:    aesConfig(false),
			algorithm: types.TruncatedMACAlgorithm(types.MACCBCMAC, 8),
			want:      true,
		},
		{
			name:      "CMAC on MAC-disabled AES slot",
			config:    aesConfig(true),
			algorithm: types.MACAlgorithm(types.MACCMAC),
			want:      false,
		},
		{
			name:      "CBC-MAC on sha/text slot",
			config:    shaOrTextConfig(false),
			algorithm: types.MACAlgorithm(types.MACCBCMAC),
			want:      false,
		},
		{
			name:      "CBC-PKCS7 on AES slot",
			config:    aesConfig(true),
			algorithm: types.CipherAlgorithm(types.CipherCBCPKCS7),
			want:      true,
		},
		{
			name:      "CTR on AES slot",
			config:    aesConfig(false),
			algorithm: types.CipherAlgorithm(types.CipherCTR),
			want:      true,
		},
		{
			name:      "OFB on P256 slot",
			config:    p256Config(true, true, false, false),
			algorithm: types.CipherAlgorithm(types.CipherOFB),
			want:      false,
		},
		{
			name:      "ECB never supported",
			config:    aesConfig(false),
			algorithm: types.CipherAlgorithm(types.CipherECB),
			want:      false,
		},
		{
			name:      "CCM on AES slot",
			config:    aesConfig(false),
			algorithm: types.AEADAlgorithm(types.AEADCCM),
			want:      true,
		},
		{
			name:      "GCM with shortened tag on AES slot",
			config:    aesConfig(false),
			algorithm: types.AEADWithShortenedTag(types.AEADGCM, 8),
			want:      true,
		},
		{
			name:      "GCM on sha/text slot",
			config:    shaOrTextConfig(false),
			algorithm: types.AEADAlgorithm(types.AEADGCM),
			want:      false,
		},
		{
			name:      "ChaCha20-Poly1305 never supported",
			config:    aesConfig(false),
			algorithm: types.AEADAlgorithm(types.AEADChaCha20Poly1305),
			want:      false,
		},
		{
			name:      "ECDSA-SHA-256 on secret private P256 slot",
			config:    p256Config(true, true, false, false),
			algorithm: types.ECDSAAlgorithm(types.HashSHA256),
			want:      true,
		},
		{
			name:      "ECDSA-SHA-256 on non-secret P256 slot",
			config:    p256Config(true, false, false, false),
			algorithm: types.ECDSAAlgorithm(types.HashSHA256),
			want:      false,
		},
		{
			name:      "ECDSA-SHA-256 on public P256 slot",
			config:    p256Config(false, true, true, false),
			algorithm: types.ECDSAAlgorithm(types.HashSHA256),
			want:      false,
		},
		{
			name:      "deterministic ECDSA never supported",
			config:    p256Config(true, true, false, false),
			algorithm: types.DeterministicECDSAAlgorithm(types.HashSHA256),
			want:      false,
		},
		{
			name:      "RSA PKCS1v15 encryption never supported",
			config:    p256Config(true, true, false, false),
			algorithm: types.AsymmetricEncryptionAlgorithm(types.EncryptRSAPKCS1v15),
			want:      false,
		},
		{
			name:      "RSA OAEP never supported",
			config:    aesConfig(false),
			algorithm: types.AsymmetricEncryptionAlgorithm(types.EncryptRSAOAEP),
			want:      false,
		},
		{
			name:      "raw ECDH on P256 slot",
			config:    p256Config(true, true, false, false),
			algorithm: types.ECDHAlgorithm(),
			want:      true,
		},
		{
			name:      "ECDH with derivation on P256 slot",
			config:    p256Config(true, true, false, false),
			algorithm: types.ECDHWithDerivationAlgorithm(),
			want:      true,
		},
		{
			name:      "ECDH on AES slot",
			config:    aesConfig(false),
			algorithm: types.ECDHAlgorithm(),
			want:      false,
		},
		{
			name:      "FFDH never supported",
			config:    p256Config(true, true, false, false),
			algorithm: types.Algorithm{Class: types.AlgorithmClassKeyAgreement, Agreement: types.AgreementFFDH},
			want:      false,
		},
		{
			name:      "unset algorithm never supported",
			config:    aesConfig(false),
			algorithm: types.Algorithm{},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.config)
			attrs := &types.KeyAttributes{
				CN:      "test",
				KeyType: types.KeyTypeAES,
				Bits:    128,
				Policy:  types.Policy{PermittedAlgorithm: tt.algorithm},
			}
			assert.Equal(t, tt.want, s.permittedAlgorithmOK(attrs))
		})
	}
}

func TestCheckCompatibility(t *testing.T) {
	t.Run("ECDSA key pair on secret private P256 slot", func(t *testing.T) {
		s := New(p256Config(true, true, false, false))
		attrs := eccKeyPairAttrs()
		attrs.Policy.Usage.SignHash = true
		attrs.Policy.Usage.VerifyHash = true
		assert.NoError(t, s.CheckCompatibility(attrs))
	})

	t.Run("deterministic ECDSA rejected on the same slot", func(t *testing.T) {
		s := New(p256Config(true, true, false, false))
		attrs := eccKeyPairAttrs()
		attrs.Policy.PermittedAlgorithm = types.DeterministicECDSAAlgorithm(types.HashSHA256)
		assert.ErrorIs(t, s.CheckCompatibility(attrs), ErrNotSupported)
	})

	t.Run("HMAC key with HMAC-SHA-256 on AES slot", func(t *testing.T) {
		// HMAC is independent of the AES-specific cipher rules: the HMAC
		// rule wants a MAC-enabled, non-ECC, non-private slot, which an
		// AES slot satisfies.
		s := New(aesConfig(false))
		attrs := &types.KeyAttributes{
			CN:      "test",
			KeyType: types.KeyTypeHMAC,
			Bits:    256,
			Policy: types.Policy{
				Usage:              types.UsageFlags{Encrypt: true, Decrypt: true},
				PermittedAlgorithm: types.HMACAlgorithm(types.HashSHA256),
			},
		}
		assert.NoError(t, s.CheckCompatibility(attrs))
	})

	t.Run("type check rejects before usage and algorithm run", func(t *testing.T) {
		s := New(shaOrTextConfig(false))
		attrs := eccKeyPairAttrs()
		assert.ErrorIs(t, s.CheckCompatibility(attrs), ErrNotSupported)
	})

	t.Run("usage check rejects a type-compatible slot", func(t *testing.T) {
		s := New(p256Config(false, true, false, false))
		attrs := eccKeyPairAttrs()
		attrs.Policy.Usage.Export = true
		assert.ErrorIs(t, s.CheckCompatibility(attrs), ErrNotSupported)
	})
}

func TestSetStatus(t *testing.T) {
	t.Run("free and busy are freely interconvertible", func(t *testing.T) {
		s := New(DefaultConfig())
		require.Equal(t, StatusFree, s.Status())

		assert.NoError(t, s.SetStatus(StatusBusy))
		assert.Equal(t, StatusBusy, s.Status())

		assert.NoError(t, s.SetStatus(StatusFree))
		assert.Equal(t, StatusFree, s.Status())

		assert.NoError(t, s.SetStatus(StatusFree))
		assert.Equal(t, StatusFree, s.Status())
	})

	t.Run("locking is unreachable through the ordinary path", func(t *testing.T) {
		s := New(DefaultConfig())
		assert.ErrorIs(t, s.SetStatus(StatusLocked), ErrNotPermitted)
		assert.Equal(t, StatusFree, s.Status())
	})

	t.Run("locked is terminal", func(t *testing.T) {
		s := New(DefaultConfig())
		s.lockHardware()
		require.Equal(t, StatusLocked, s.Status())

		for _, next := range []Status{StatusFree, StatusBusy, StatusLocked} {
			assert.ErrorIs(t, s.SetStatus(next), ErrNotPermitted)
			assert.Equal(t, StatusLocked, s.Status())
		}
	})
}

func TestClaim(t *testing.T) {
	t.Run("claim is single-use and not idempotent", func(t *testing.T) {
		s := New(DefaultConfig())
		require.Equal(t, uint8(0), s.RefCount())

		assert.NoError(t, s.Claim())
		assert.Equal(t, uint8(1), s.RefCount())

		assert.ErrorIs(t, s.Claim(), ErrAlreadyClaimed)
		assert.Equal(t, uint8(1), s.RefCount())

		// external reset returns the slot to claimable
		s.releaseClaim()
		assert.NoError(t, s.Claim())
	})

	t.Run("claim is orthogonal to status", func(t *testing.T) {
		s := New(DefaultConfig())
		s.lockHardware()
		require.Equal(t, StatusLocked, s.Status())

		// locked but unclaimed: the claim guard still accepts
		assert.NoError(t, s.Claim())
		assert.ErrorIs(t, s.Claim(), ErrAlreadyClaimed)
	})
}

func TestIsFree(t *testing.T) {
	s := New(DefaultConfig())
	assert.True(t, s.IsFree())

	require.NoError(t, s.SetStatus(StatusBusy))
	assert.False(t, s.IsFree())

	require.NoError(t, s.SetStatus(StatusFree))
	assert.True(t, s.IsFree())

	s.lockHardware()
	assert.False(t, s.IsFree())
}

func TestConfigImmutable(t *testing.T) {
	cfg := p256Config(true, true, false, false)
	s := New(cfg)

	// mutating the returned copy must not affect the slot
	got := s.Config()
	got.KeyType = HardwareKeyTypeAES
	got.IsSecret = false

	assert.Equal(t, HardwareKeyTypeP256ECC, s.Config().KeyType)
	assert.True(t, s.Config().IsSecret)
}
