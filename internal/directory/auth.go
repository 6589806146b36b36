package directory

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Authorizer attaches directory credentials to an outgoing request.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// APITokenAuth authorizes requests with a static SSWS API token.
type APITokenAuth struct {
	Token string
}

func (a APITokenAuth) Authorize(req *http.Request) error {
	if a.Token == "" {
		return fmt.Errorf("api token is empty")
	}
	req.Header.Set("Authorization", "SSWS "+a.Token)
	return nil
}

// PrivateKeyJWTAuth authorizes requests with OAuth2 access tokens obtained
// through the private-key-JWT client credentials flow. Tokens are cached
// until shortly before expiry.
type PrivateKeyJWTAuth struct {
	OrgURL   string
	ClientID string
	Scopes   []string
	Key      *rsa.PrivateKey
	HTTP     *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// ParseRSAPrivateKey reads a PEM-encoded RSA private key (PKCS#1 or PKCS#8).
func ParseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, not RSA", parsed)
	}
	return key, nil
}

func (a *PrivateKeyJWTAuth) Authorize(req *http.Request) error {
	token, err := a.accessToken(req)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (a *PrivateKeyJWTAuth) accessToken(req *http.Request) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expires) {
		return a.token, nil
	}

	assertion, err := a.clientAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", strings.Join(a.Scopes, " "))
	form.Set("client_assertion_type", "urn:ietf:params:oauth:client-assertion-type:jwt-bearer")
	form.Set("client_assertion", assertion)

	httpClient := a.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	tokenURL := strings.TrimRight(a.OrgURL, "/") + "/oauth2/v1/token"
	tokenReq, err := http.NewRequestWithContext(req.Context(), http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	tokenReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(tokenReq)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(payload, &grant); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if grant.AccessToken == "" {
		return "", fmt.Errorf("token response is missing access_token")
	}

	a.token = grant.AccessToken
	// Renew a minute early so in-flight calls never carry a stale token.
	a.expires = time.Now().Add(time.Duration(grant.ExpiresIn)*time.Second - time.Minute)
	return a.token, nil
}

// clientAssertion signs the RS256 JWT the token endpoint expects.
func (a *PrivateKeyJWTAuth) clientAssertion() (string, error) {
	if a.Key == nil {
		return "", fmt.Errorf("private key is not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.ClientID,
		Subject:   a.ClientID,
		Audience:  jwt.ClaimStrings{strings.TrimRight(a.OrgURL, "/") + "/oauth2/v1/token"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.Key)
}
