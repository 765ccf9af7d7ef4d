package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// tokenResponse is the body of the token-exchange endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// oauthToken converts the response into an oauth2.Token, backfilling the
// expiry from the access token's exp claim when the server omits
// expires_in.
func (tr tokenResponse) oauthToken(now func() time.Time) oauth2.Token {
	tok := oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = now().Add(time.Duration(tr.ExpiresIn) * time.Second)
		return tok
	}
	if exp, ok := jwtExpiry(tr.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok
}

// jwtExpiry reads the exp claim without verifying the signature. The
// client only needs the expiry hint; it is not the token's audience
// validator.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
