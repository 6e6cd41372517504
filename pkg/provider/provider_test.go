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

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-secureelement/pkg/slot"
	"github.com/jeremyhahn/go-secureelement/pkg/storage"
	"github.com/jeremyhahn/go-secureelement/pkg/types"
)

func testConfigs() []slot.Config {
	sha := slot.DefaultConfig()

	aes := slot.DefaultConfig()
	aes.KeyType = slot.HardwareKeyTypeAES

	p256 := slot.DefaultConfig()
	p256.KeyType = slot.HardwareKeyTypeP256ECC
	p256.IsSecret = true
	p256.ECCKeyAttr.IsPrivate = true

	return []slot.Config{sha, aes, p256}
}

func testProvider(t *testing.T) (*Provider, storage.Backend) {
	t.Helper()
	store := storage.NewMemory()
	table := slot.NewTable(testConfigs(), nil)
	return New(table, store, nil), store
}

func signerAttrs(cn string) *types.KeyAttributes {
	return &types.KeyAttributes{
		CN:        cn,
		KeyType:   types.KeyTypeECCKeyPair,
		ECCFamily: types.ECCFamilySecpR1,
		Bits:      256,
		Policy: types.Policy{
			Usage:              types.UsageFlags{SignHash: true, VerifyHash: true},
			PermittedAlgorithm: types.ECDSAAlgorithm(types.HashSHA256),
		},
	}
}

func TestProviderCreate(t *testing.T) {
	p, _ := testProvider(t)

	binding, err := p.Create(signerAttrs("tls-server"))
	require.NoError(t, err)
	assert.Equal(t, "tls-server", binding.CN)
	assert.Equal(t, 2, binding.Slot)
	assert.Equal(t, types.KeyTypeECCKeyPair, binding.KeyType)
	assert.Equal(t, "ecdsa-sha256", binding.Algorithm)
	assert.NotEmpty(t, binding.ID)
	assert.False(t, binding.CreatedAt.IsZero())
}

func TestProviderCreateDuplicate(t *testing.T) {
	p, _ := testProvider(t)

	_, err := p.Create(signerAttrs("tls-server"))
	require.NoError(t, err)

	_, err = p.Create(signerAttrs("tls-server"))
	assert.ErrorIs(t, err, ErrBindingExists)
}

func TestProviderCreateNoFreeSlot(t *testing.T) {
	p, _ := testProvider(t)

	// the single private P256 slot fills on the first binding
	_, err := p.Create(signerAttrs("first"))
	require.NoError(t, err)

	_, err = p.Create(signerAttrs("second"))
	assert.ErrorIs(t, err, slot.ErrNoFreeSlot)
}

func TestProviderCreateInvalidAttributes(t *testing.T) {
	p, _ := testProvider(t)

	attrs := signerAttrs("")
	_, err := p.Create(attrs)
	assert.ErrorIs(t, err, types.ErrInvalidAttributes)
}

func TestProviderGet(t *testing.T) {
	p, _ := testProvider(t)

	created, err := p.Create(signerAttrs("tls-server"))
	require.NoError(t, err)

	got, err := p.Get("tls-server")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Slot, got.Slot)

	_, err = p.Get("missing")
	assert.ErrorIs(t, err, ErrBindingNotFound)
}

func TestProviderList(t *testing.T) {
	p, _ := testProvider(t)

	bindings, err := p.List()
	require.NoError(t, err)
	assert.Empty(t, bindings)

	_, err = p.Create(signerAttrs("signer"))
	require.NoError(t, err)

	aead := &types.KeyAttributes{
		CN:      "sealer",
		KeyType: types.KeyTypeAES,
		Bits:    128,
		Policy:  types.Policy{PermittedAlgorithm: types.AEADAlgorithm(types.AEADGCM)},
	}
	_, err = p.Create(aead)
	require.NoError(t, err)

	bindings, err = p.List()
	require.NoError(t, err)
	assert.Len(t, bindings, 2)
}

func TestProviderDestroy(t *testing.T) {
	p, _ := testProvider(t)

	created, err := p.Create(signerAttrs("tls-server"))
	require.NoError(t, err)

	require.NoError(t, p.Destroy("tls-server"))

	_, err = p.Get("tls-server")
	assert.ErrorIs(t, err, ErrBindingNotFound)

	// the slot is back in circulation
	again, err := p.Create(signerAttrs("tls-server"))
	require.NoError(t, err)
	assert.Equal(t, created.Slot, again.Slot)
}

func TestProviderDestroyMissing(t *testing.T) {
	p, _ := testProvider(t)
	assert.ErrorIs(t, p.Destroy("missing"), ErrBindingNotFound)
}

func TestProviderDestroyLockedSlot(t *testing.T) {
	p, _ := testProvider(t)

	binding, err := p.Create(signerAttrs("tls-server"))
	require.NoError(t, err)

	require.NoError(t, p.Table().HardwareLock(binding.Slot))

	// the record is kept so the slot's occupant stays known
	assert.ErrorIs(t, p.Destroy("tls-server"), slot.ErrNotPermitted)
	_, err = p.Get("tls-server")
	assert.NoError(t, err)
}

func TestProviderRestore(t *testing.T) {
	store := storage.NewMemory()
	table := slot.NewTable(testConfigs(), nil)
	p := New(table, store, nil)

	created, err := p.Create(signerAttrs("tls-server"))
	require.NoError(t, err)

	// a fresh session over the same store re-claims the bound slot
	table2 := slot.NewTable(testConfigs(), nil)
	p2 := New(table2, store, nil)
	require.NoError(t, p2.Restore())

	snapshot := table2.Snapshot()
	assert.Equal(t, slot.StatusBusy, snapshot[created.Slot].Status)
	assert.Equal(t, uint8(1), snapshot[created.Slot].RefCount)

	// the occupied slot is not offered to new keys
	_, err = p2.Create(signerAttrs("other"))
	assert.ErrorIs(t, err, slot.ErrNoFreeSlot)
}
