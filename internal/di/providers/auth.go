package providers

import (
	"github.com/samber/do/v2"

	"github.com/mydiary/mydiary/internal/account"
	"github.com/mydiary/mydiary/internal/auth"
	"github.com/mydiary/mydiary/internal/config"
	"github.com/mydiary/mydiary/internal/logger"
	"github.com/mydiary/mydiary/internal/validation"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey uses the configured key or loads, generating on first start,
// {DataDir}/token.key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.ServerConfig](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		key []byte
		err error
	)
	if cfg.Auth.TokenKeyHex != "" {
		key, err = auth.DecodeKey(cfg.Auth.TokenKeyHex)
	} else {
		key, err = auth.LoadOrGenerateKey(cfg.DataDir)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"from_env", cfg.Auth.TokenKeyHex != "",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.ServerConfig](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}

// ProvideHasher provides the argon2id password hasher.
func ProvideHasher(i do.Injector) (*auth.Hasher, error) {
	return auth.NewHasher(auth.DefaultParams), nil
}

// ProvideValidator provides the shared struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAccountService provides hosted account and session management.
func ProvideAccountService(i do.Injector) (*account.Service, error) {
	cfg := do.MustInvoke[*config.ServerConfig](i)
	storeHandle := do.MustInvoke[*CloudStoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	hasher := do.MustInvoke[*auth.Hasher](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return account.NewService(storeHandle.Store, tokens, hasher, v, log.Logger,
		account.WithResetTTL(cfg.Auth.ResetTokenDuration),
	), nil
}
