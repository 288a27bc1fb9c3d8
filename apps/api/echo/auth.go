package echoapi

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

const (
	jwtContextKey  = "userToken"
	contextUserKey = "user"
)

// newJWTConfig is the JWT auth middleware config.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Role     user.Role `json:"role,omitempty"`
	Access   string    `json:"access,omitempty"`
	Remember bool      `json:"remember,omitempty"`
}

func (c *Claims) IsTeacher() bool { return c.Role == user.RoleTeacher }

// GetUserClaims builds the Claims for a freshly authenticated user. The
// remember flag extends the token lifetime.
func GetUserClaims(conf *core.Config, usr user.User, remember bool) *Claims {
	now := time.Now()

	delta := conf.Server.JWTExpirationDelta
	if remember {
		delta = conf.Server.JWTRememberExpirationDelta
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(delta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
		Email:    usr.Email,
		Role:     usr.Role,
		Access:   usr.Access,
		Remember: remember,
	}
}

func authenticate(ctx echo.Context, conf *core.Config, data LoginRequest, svc user.Service) (*Claims, error) {
	usr, err := svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, err
		}
		return nil, errors.Wrap(err, "authenticating")
	}
	return GetUserClaims(conf, usr, data.Remember), nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

// isAuthed reports whether the request carries a valid bearer token. Used on
// the un-authed register/login endpoints to bounce already-authenticated users.
func isAuthed(ctx echo.Context, conf *core.Config) bool {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return false
	}
	token, err := jwt.ParseWithClaims(
		strings.TrimPrefix(header, "Bearer "),
		new(Claims),
		func(t *jwt.Token) (interface{}, error) { return []byte(conf.SecretKey), nil },
	)
	return err == nil && token.Valid
}
