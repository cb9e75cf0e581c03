package token

import (
	"crypto/sha256"
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

// Mode selects the token format.
type Mode string

const (
	ModeJWT    Mode = "jwt"    // HS256, the format issued by the legacy API
	ModeLocal  Mode = "local"  // PASETO v4.local
	ModePublic Mode = "public" // PASETO v4.public
)

// Keys holds the material for exactly one Mode.
type Keys struct {
	Mode Mode

	HMAC []byte

	Symmetric *paseto.V4SymmetricKey

	Secret *paseto.V4AsymmetricSecretKey
	Public *paseto.V4AsymmetricPublicKey
}

// KeyStrings is the textual form read from configuration.
type KeyStrings struct {
	Mode      Mode
	JWTSecret string

	// Seed derives the v4.local key when SymmetricHex is empty, so a plain
	// SESSION_SECRET is enough to run in local mode.
	SymmetricHex string
	Seed         string

	SecretHex string
	PublicHex string
}

func LoadKeys(in KeyStrings) (Keys, error) {
	switch in.Mode {
	case ModeJWT, "":
		return jwtKeys(in.JWTSecret)
	case ModeLocal:
		return localKeys(strings.TrimSpace(in.SymmetricHex), in.Seed)
	case ModePublic:
		return publicKeys(strings.TrimSpace(in.SecretHex), strings.TrimSpace(in.PublicHex))
	}
	return Keys{}, ErrConfig{Msg: "unknown token mode " + string(in.Mode)}
}

func jwtKeys(secret string) (Keys, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return Keys{}, ErrConfig{Msg: "jwt mode needs a secret"}
	}
	return NewJWTKeys(secret), nil
}

func localKeys(hex, seed string) (Keys, error) {
	var (
		k   paseto.V4SymmetricKey
		err error
	)
	switch {
	case hex != "":
		k, err = paseto.V4SymmetricKeyFromHex(hex)
	case seed != "":
		sum := sha256.Sum256([]byte(seed))
		k, err = paseto.V4SymmetricKeyFromBytes(sum[:])
	default:
		return Keys{}, ErrConfig{Msg: "local mode needs a symmetric key or a seed"}
	}
	if err != nil {
		return Keys{}, ErrConfig{Msg: "symmetric key: " + err.Error()}
	}
	return Keys{Mode: ModeLocal, Symmetric: &k}, nil
}

// publicKeys accepts a secret key (public half derived), a public key alone
// for verify-only deployments, or both.
func publicKeys(secretHex, publicHex string) (Keys, error) {
	if secretHex == "" && publicHex == "" {
		return Keys{}, ErrConfig{Msg: "public mode needs a secret or public key"}
	}
	out := Keys{Mode: ModePublic}
	if secretHex != "" {
		sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secretHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "secret key: " + err.Error()}
		}
		pk := sk.Public()
		out.Secret, out.Public = &sk, &pk
	}
	if publicHex != "" {
		pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "public key: " + err.Error()}
		}
		out.Public = &pk
	}
	return out, nil
}

func NewJWTKeys(secret string) Keys {
	return Keys{Mode: ModeJWT, HMAC: []byte(secret)}
}

func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}
