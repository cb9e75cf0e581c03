package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medibook/medibook_backend/config"
)

type Config struct {
	Issuer    string
	Audience  string
	AccessTTL time.Duration
}

type Manager struct {
	cfg  Config
	keys Keys
	now  func() time.Time
}

func New(cfg Config, keys Keys) (*Manager, error) {
	if cfg.AccessTTL <= 0 {
		return nil, ErrConfig{Msg: "access ttl must be positive"}
	}

	switch keys.Mode {
	case ModeJWT:
		if len(keys.HMAC) == 0 {
			return nil, ErrConfig{Msg: "jwt mode needs an HMAC secret"}
		}
	case ModeLocal:
		if keys.Symmetric == nil {
			return nil, ErrConfig{Msg: "local mode needs a symmetric key"}
		}
	case ModePublic:
		if keys.Public == nil {
			return nil, ErrConfig{Msg: "public mode needs at least the public key"}
		}
	default:
		return nil, ErrConfig{Msg: "unknown token mode " + string(keys.Mode)}
	}

	return &Manager{cfg: cfg, keys: keys, now: time.Now}, nil
}

// NewFromConfig builds a Manager from the authentication section.
func NewFromConfig(cfg *config.Config) (*Manager, error) {
	a := cfg.Authentication
	keys, err := LoadKeys(KeyStrings{
		Mode:         Mode(a.Token.Mode),
		JWTSecret:    a.Token.JWTSecret,
		SymmetricHex: a.Token.LocalKeyHex,
		Seed:         a.SessionSecret,
		SecretHex:    a.Token.SecretKeyHex,
		PublicHex:    a.Token.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(a.Token.AccessTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	return New(Config{
		Issuer:    a.Token.Issuer,
		Audience:  a.Token.Audience,
		AccessTTL: ttl,
	}, keys)
}

// WithClock replaces the time source. Tests only.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Mode() Mode { return m.keys.Mode }

func (m *Manager) AccessTTL() time.Duration { return m.cfg.AccessTTL }

// IssueAccess returns a signed token carrying the user id and role.
func (m *Manager) IssueAccess(userID uuid.UUID, role string, sessionID *uuid.UUID) (string, *Claims, error) {
	if userID == uuid.Nil {
		return "", nil, errors.New("userID is required")
	}
	if role == "" {
		return "", nil, errors.New("role is required")
	}

	now := m.now().UTC()
	c := &Claims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		Issuer:    m.cfg.Issuer,
		Audience:  m.cfg.Audience,
		IssuedAt:  now,
		NotBefore: now,
		ExpiresAt: now.Add(m.cfg.AccessTTL),
		TokenID:   uuid.NewString(),
		Subject:   userID.String(),
	}

	var (
		tok string
		err error
	)
	if m.keys.Mode == ModeJWT {
		tok, err = m.signJWT(c)
	} else {
		tok, err = m.signPaseto(c)
	}
	if err != nil {
		return "", nil, err
	}
	return tok, c, nil
}

// Verify checks signature, issuer, audience and expiry and returns the claims.
func (m *Manager) Verify(tok string) (*Claims, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, ErrInvalidToken{Err: errors.New("empty token")}
	}

	var (
		c   *Claims
		err error
	)
	if m.keys.Mode == ModeJWT {
		c, err = m.verifyJWT(tok)
	} else {
		c, err = m.verifyPaseto(tok)
	}
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	return c, nil
}

// ----- jwt -----

type jwtClaims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	SID  string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

func (m *Manager) signJWT(c *Claims) (string, error) {
	jc := jwtClaims{
		ID:   c.UserID.String(),
		Role: c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.Issuer,
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			NotBefore: jwt.NewNumericDate(c.NotBefore),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
			ID:        c.TokenID,
		},
	}
	if c.Audience != "" {
		jc.Audience = jwt.ClaimStrings{c.Audience}
	}
	if c.SessionID != nil {
		jc.SID = c.SessionID.String()
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jc).SignedString(m.keys.HMAC)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return s, nil
}

func (m *Manager) verifyJWT(tok string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}
	if m.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.cfg.Audience))
	}

	var jc jwtClaims
	_, err := jwt.ParseWithClaims(tok, &jc, func(*jwt.Token) (any, error) {
		return m.keys.HMAC, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(jc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id claim: %w", err)
	}
	if jc.Role == "" {
		return nil, errors.New("missing role claim")
	}

	c := &Claims{
		UserID:  uid,
		Role:    jc.Role,
		Issuer:  jc.Issuer,
		TokenID: jc.RegisteredClaims.ID,
		Subject: jc.Subject,
	}
	if len(jc.Audience) > 0 {
		c.Audience = jc.Audience[0]
	}
	if jc.IssuedAt != nil {
		c.IssuedAt = jc.IssuedAt.Time
	}
	if jc.NotBefore != nil {
		c.NotBefore = jc.NotBefore.Time
	}
	if jc.ExpiresAt != nil {
		c.ExpiresAt = jc.ExpiresAt.Time
	}
	if jc.SID != "" {
		sid, err := uuid.Parse(jc.SID)
		if err != nil {
			return nil, fmt.Errorf("invalid sid claim: %w", err)
		}
		c.SessionID = &sid
	}
	return c, nil
}

// ----- paseto -----

func (m *Manager) signPaseto(c *Claims) (string, error) {
	t := paseto.NewToken()
	t.SetIssuer(c.Issuer)
	if c.Audience != "" {
		t.SetAudience(c.Audience)
	}
	t.SetSubject(c.Subject)
	t.SetJti(c.TokenID)
	t.SetIssuedAt(c.IssuedAt)
	t.SetNotBefore(c.NotBefore)
	t.SetExpiration(c.ExpiresAt)

	if err := t.SetString("id", c.UserID.String()); err != nil {
		return "", err
	}
	if err := t.SetString("role", c.Role); err != nil {
		return "", err
	}
	if c.SessionID != nil {
		if err := t.SetString("sid", c.SessionID.String()); err != nil {
			return "", err
		}
	}

	switch m.keys.Mode {
	case ModeLocal:
		return t.V4Encrypt(*m.keys.Symmetric, nil), nil
	case ModePublic:
		if m.keys.Secret == nil {
			return "", errors.New("public mode is verify-only (missing secret key)")
		}
		return t.V4Sign(*m.keys.Secret, nil), nil
	default:
		return "", errors.New("invalid mode")
	}
}

func (m *Manager) verifyPaseto(tok string) (*Claims, error) {
	p := paseto.NewParserWithoutExpiryCheck()
	if m.cfg.Issuer != "" {
		p.AddRule(paseto.IssuedBy(m.cfg.Issuer))
	}
	if m.cfg.Audience != "" {
		p.AddRule(paseto.ForAudience(m.cfg.Audience))
	}

	var (
		t   *paseto.Token
		err error
	)
	switch m.keys.Mode {
	case ModeLocal:
		t, err = p.ParseV4Local(*m.keys.Symmetric, tok, nil)
	case ModePublic:
		t, err = p.ParseV4Public(*m.keys.Public, tok, nil)
	default:
		return nil, errors.New("invalid mode")
	}
	if err != nil {
		return nil, err
	}

	return m.extractPaseto(t)
}

func (m *Manager) extractPaseto(t *paseto.Token) (*Claims, error) {
	c := &Claims{}

	c.Issuer, _ = t.GetIssuer()
	c.Audience, _ = t.GetAudience()
	c.Subject, _ = t.GetSubject()
	c.TokenID, _ = t.GetJti()
	c.IssuedAt, _ = t.GetIssuedAt()
	c.NotBefore, _ = t.GetNotBefore()

	exp, err := t.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("missing exp: %w", err)
	}
	c.ExpiresAt = exp

	// expiry against the manager clock so tests can move time
	now := m.now()
	if !now.Before(exp) {
		return nil, errors.New("token has expired")
	}
	if !c.NotBefore.IsZero() && now.Before(c.NotBefore) {
		return nil, errors.New("token not yet valid")
	}

	id, err := t.GetString("id")
	if err != nil {
		return nil, fmt.Errorf("missing id claim: %w", err)
	}
	c.UserID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid id claim: %w", err)
	}

	c.Role, err = t.GetString("role")
	if err != nil || c.Role == "" {
		return nil, errors.New("missing role claim")
	}

	if sid, err := t.GetString("sid"); err == nil && sid != "" {
		s, err := uuid.Parse(sid)
		if err != nil {
			return nil, fmt.Errorf("invalid sid claim: %w", err)
		}
		c.SessionID = &s
	}

	return c, nil
}
