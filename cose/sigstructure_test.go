package cose

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSigStructureDeterministic(t *testing.T) {
	bodyProtected := []byte{0xa1, 0x01, 0x26} // {1: -7}
	payload := []byte("hello")

	a, err := BuildSigStructure(false, bodyProtected, nil, nil, payload)
	require.NoError(t, err)
	b, err := BuildSigStructure(false, bodyProtected, nil, nil, payload)
	require.NoError(t, err)
	require.Equal(t, a, b, "Sig_structure must be a pure function of its inputs")

	c, err := BuildSigStructure(false, bodyProtected, nil, []byte("aad"), payload)
	require.NoError(t, err)
	require.NotEqual(t, a, c, "changing external AAD must change the Sig_structure bytes")
}

func TestBuildSigStructureMultiSignerIncludesSignerProtected(t *testing.T) {
	bodyProtected := []byte{0xa0}
	signerProtected := []byte{0xa1, 0x01, 0x26}
	payload := []byte("hello")

	withSigner, err := BuildSigStructure(true, bodyProtected, signerProtected, nil, payload)
	require.NoError(t, err)
	withoutSigner, err := BuildSigStructure(true, bodyProtected, nil, nil, payload)
	require.NoError(t, err)
	require.NotEqual(t, withSigner, withoutSigner)
}
