package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA‑256 hashing for refresh tokens
    "encoding/hex"  // hex encoding and decoding functions
    "errors"        // sentinel errors for claim token parsing
    "fmt"           // claim subject formatting
    "strconv"       // claim subject parsing
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short‑lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long‑lived token used to obtain new access tokens.
// The Raw field contains the raw token string returned to the client.  The Exp
// field records when it expires.  In the database only a SHA‑256 hash of the
// raw string is stored for security reasons.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, the user's role, and a TTL in minutes.  It
// returns an AccessToken structure containing the signed token and its
// expiration time.  The JWT includes standard claims: subject (sub), role,
// expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    // Calculate the expiration time by adding the TTL to the current UTC time.
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    // Construct the JWT claims.  Using MapClaims allows arbitrary key/value
    // pairs.  We set sub to the user ID, role to the user's role, exp to
    // the expiration Unix timestamp, and iat to the issued at time.
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    // Create a new token object specifying the signing method (HS256) and
    // include the claims.
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    // Sign the token with the provided secret and obtain the string form.  If
    // signing fails, return the error and a zero AccessToken.
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw) and
// its expiration time.  Refresh tokens live longer than access tokens and
// are used to obtain new access tokens.  The ttlDays parameter controls
// how many days the refresh token is valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    // Generate a random 48‑byte string and encode it as hex (96 characters).
    raw, err := randomHex(48) // 48 bytes -> 96 hex chars
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        // Set the expiration by adding the specified number of days to the current UTC time.
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the SHA‑256 hash of the raw refresh token as a hex
// string.  Storing only the hash in the database prevents attackers from
// using stolen database entries to refresh sessions.
func HashRefreshRaw(raw string) string {
    // Compute the SHA‑256 digest of the raw bytes.
    sum := sha256.Sum256([]byte(raw))
    // Convert the binary digest to a hex string.
    return hex.EncodeToString(sum[:])
}

// Claim token errors returned by ParseClaimToken.  Callers translate these
// into user‑facing claim failure reasons.
var (
    ErrClaimTokenInvalid = errors.New("claim token invalid")
    ErrClaimTokenExpired = errors.New("claim token expired")
)

// ClaimToken is the decoded payload of a signed seat claim token.  The
// token binds a ticket ID to the per‑ticket claim code stored in the
// database, so a leaked or forged URL cannot transfer a seat: the code in
// the token must still match the row, and the signature proves the link
// was minted by this server.
type ClaimToken struct {
    TicketID  uint64    // ticket the link transfers
    ClaimCode string    // per‑ticket random code, compared against the row
    Exp       time.Time // UTC expiration of the link
}

// NewClaimToken signs an HS256 JWT embedding the ticket ID (sub) and its
// claim code (jti).  ttlDays controls how long the claim link stays
// redeemable.  The returned string is safe to embed directly in a URL
// path segment.
func NewClaimToken(secret string, ticketID uint64, claimCode string, ttlDays int) (string, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
    claims := jwt.MapClaims{
        "sub": fmt.Sprintf("%d", ticketID),
        "jti": claimCode,
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseClaimToken verifies the signature and expiry of a claim token and
// returns its decoded payload.  Expired tokens yield ErrClaimTokenExpired;
// any other verification failure (bad signature, wrong algorithm, garbled
// payload) yields ErrClaimTokenInvalid so callers never leak parser
// internals to the client.
func ParseClaimToken(secret, token string) (ClaimToken, error) {
    parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
        // Reject any algorithm other than HMAC to prevent downgrade tricks.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrClaimTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return ClaimToken{}, ErrClaimTokenExpired
        }
        return ClaimToken{}, ErrClaimTokenInvalid
    }
    claims, ok := parsed.Claims.(jwt.MapClaims)
    if !ok || !parsed.Valid {
        return ClaimToken{}, ErrClaimTokenInvalid
    }
    sub, _ := claims["sub"].(string)
    ticketID, err := strconv.ParseUint(sub, 10, 64)
    if err != nil || ticketID == 0 {
        return ClaimToken{}, ErrClaimTokenInvalid
    }
    code, _ := claims["jti"].(string)
    if code == "" {
        return ClaimToken{}, ErrClaimTokenInvalid
    }
    expNum, err := claims.GetExpirationTime()
    if err != nil || expNum == nil {
        return ClaimToken{}, ErrClaimTokenInvalid
    }
    return ClaimToken{TicketID: ticketID, ClaimCode: code, Exp: expNum.Time.UTC()}, nil
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.  It is used to produce refresh
// tokens and claim codes.  If the random number generator fails, an error
// is returned.
func randomHex(n int) (string, error) {
    // Allocate a slice of n bytes.
    buf := make([]byte, n)
    // Fill the slice with secure random data.  rand.Read returns the number
    // of bytes read and an error.  We ignore the count since we request
    // exactly n bytes.
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    // Convert the random bytes to a hex string and return.
    return hex.EncodeToString(buf), nil
}
