package utils

import (
    "crypto/rand" // secure random generation for codes
    "fmt"
    "math/big"
    "strings"
    "time"
)

// backupAlphabet excludes 0/O and 1/I so door staff never have to guess
// which character a smudged printout shows.
const backupAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewClaimCode returns the random code stored on a ticket row and embedded
// in its signed claim link.  32 hex characters gives 128 bits, which is
// plenty to make blind guessing pointless.
func NewClaimCode() (string, error) {
    return randomHex(16)
}

// NewBackupCode generates a human‑enterable fallback code in the form
// XXXX-XXXX.  Eight characters over a 32‑symbol alphabet is about 40 bits;
// uniqueness is still enforced by the database index, and callers retry on
// the rare collision.
func NewBackupCode() (string, error) {
    chars := make([]byte, 8)
    max := big.NewInt(int64(len(backupAlphabet)))
    for i := range chars {
        n, err := rand.Int(rand.Reader, max)
        if err != nil {
            return "", err
        }
        chars[i] = backupAlphabet[n.Int64()]
    }
    return string(chars[:4]) + "-" + string(chars[4:]), nil
}

// NormalizeBackupCode uppercases a code and strips spaces and hyphens so
// "ab3d-9kqf", "AB3D 9KQF" and "ab3d9kqf" all look up the same ticket.
func NormalizeBackupCode(code string) string {
    code = strings.ToUpper(strings.TrimSpace(code))
    code = strings.ReplaceAll(code, "-", "")
    code = strings.ReplaceAll(code, " ", "")
    return code
}

// FormatBackupCode renders a normalized 8‑character code back into the
// XXXX-XXXX display form.  Codes of other lengths are returned unchanged.
func FormatBackupCode(code string) string {
    if len(code) != 8 {
        return code
    }
    return code[:4] + "-" + code[4:]
}

// NewGroupPurchaseID returns the identifier shared by every ticket of one
// table sale, e.g. "TBL-1735689600000-K3QZV".  The millisecond timestamp
// keeps IDs sortable by sale time; the random suffix disambiguates sales
// landing in the same millisecond.
func NewGroupPurchaseID() (string, error) {
    suffix := make([]byte, 5)
    max := big.NewInt(int64(len(backupAlphabet)))
    for i := range suffix {
        n, err := rand.Int(rand.Reader, max)
        if err != nil {
            return "", err
        }
        suffix[i] = backupAlphabet[n.Int64()]
    }
    return fmt.Sprintf("TBL-%d-%s", time.Now().UTC().UnixMilli(), suffix), nil
}
