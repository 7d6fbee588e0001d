package utils

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewBackupCodeShape(t *testing.T) {
    code, err := NewBackupCode()
    require.NoError(t, err)

    require.Len(t, code, 9)
    assert.Equal(t, byte('-'), code[4])
    for _, r := range strings.ReplaceAll(code, "-", "") {
        assert.Contains(t, backupAlphabet, string(r))
    }
}

func TestNormalizeBackupCode(t *testing.T) {
    // Door staff typing is forgiving: case, hyphens and spaces all
    // collapse to the same lookup key.
    assert.Equal(t, "AB3D9KQF", NormalizeBackupCode("ab3d-9kqf"))
    assert.Equal(t, "AB3D9KQF", NormalizeBackupCode(" AB3D 9KQF "))
    assert.Equal(t, "AB3D9KQF", NormalizeBackupCode("AB3D9KQF"))
}

func TestFormatBackupCode(t *testing.T) {
    assert.Equal(t, "AB3D-9KQF", FormatBackupCode("AB3D9KQF"))
    assert.Equal(t, "SHORT", FormatBackupCode("SHORT"))
}

func TestNewGroupPurchaseID(t *testing.T) {
    id, err := NewGroupPurchaseID()
    require.NoError(t, err)

    parts := strings.Split(id, "-")
    require.Len(t, parts, 3)
    assert.Equal(t, "TBL", parts[0])
    assert.Len(t, parts[2], 5)

    other, err := NewGroupPurchaseID()
    require.NoError(t, err)
    assert.NotEqual(t, id, other)
}

func TestNewClaimCode(t *testing.T) {
    a, err := NewClaimCode()
    require.NoError(t, err)
    b, err := NewClaimCode()
    require.NoError(t, err)

    assert.Len(t, a, 32)
    assert.NotEqual(t, a, b)
}
