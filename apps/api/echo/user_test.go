package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	echoapi "github.com/darasahq/darasa/apps/api/echo"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
)

func Test_userApi_register(t *testing.T) {
	setup(t)

	existing := createUser(t, "Hero", "Kid", "hero", "hero@test.cd", "", user.RoleStudent, "C1")

	form := func(uname, email, pwd, code string) []byte {
		return marchallObj(t, user.NewUser{
			Username:        uname,
			Email:           email,
			FirstName:       "Jane",
			LastName:        "Doe",
			Password:        pwd,
			PasswordConfirm: pwd,
			SecretCode:      code,
		})
	}
	created := marchallObj(t, echoapi.SuccessResponse{
		Success: "Your account has been created! You are now able to log in.",
	})

	type extraTest struct {
		email      string
		wantRole   user.Role
		wantAccess string
	}
	tests := []httpTest{
		{
			name: "required fields", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username":         "this field is required",
				"email":            "this field is required",
				"first_name":       "this field is required",
				"last_name":        "this field is required",
				"password":         "password must contain at least 8 characters",
				"password_confirm": "this field is required",
				"secret_code":      "this field is required",
			}),
		},
		{
			name: "unknown secret code creates no user", body: form("jane", "jane@test.cd", "LolC@t123", "NOPE"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"secret_code": "wrong register code"}),
			extra:    extraTest{email: "jane@test.cd"},
		},
		{
			name: "duplicate username", body: form("hero", "jane@test.cd", "LolC@t123", "C1"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "duplicate email", body: form("jane", existing.Email, "LolC@t123", "C1"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "all-numeric password", body: form("jane", "jane@test.cd", "12345678", "C1"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "student code (case-insensitive)", body: form("jane", "jane@test.cd", "LolC@t123", "c1"),
			wantCode: http.StatusCreated, wantData: created,
			extra: extraTest{email: "jane@test.cd", wantRole: user.RoleStudent, wantAccess: "C1"},
		},
		{
			name: "teacher code", body: form("profjohn", "john@test.cd", "LolC@t123", "T1"),
			wantCode: http.StatusCreated, wantData: created,
			extra: extraTest{email: "john@test.cd", wantRole: user.RoleTeacher, wantAccess: "T1"},
		},
		{
			name: "already authenticated", body: form("late", "late@test.cd", "LolC@t123", "C1"),
			token: getToken(t, existing), wantCode: http.StatusSeeOther,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				usr, err := usrRepo.GetUserByEmail(context.Background(), extra.email)
				if tt.wantCode != http.StatusCreated {
					if errors.Cause(err) != user.ErrNotFound {
						t.Errorf("failed! a user row was created; err = %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("GetUserByEmail(): %v", err)
				}
				if usr.Role != extra.wantRole {
					t.Errorf("failed! role = %v; want %v", usr.Role, extra.wantRole)
				}
				if usr.Access != extra.wantAccess {
					t.Errorf("failed! access = %v; want %v", usr.Access, extra.wantAccess)
				}
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	setup(t)

	student := createUser(t, "Hero", "Kid", "hero", "hero@test.cd", "LolC@t123", user.RoleStudent, "C1")

	loginFailed := marchallObj(t, httpErr{Error: "Login Unsuccessful. Please check email and password."})

	tests := []httpTest{
		{
			name: "required fields", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest, wantData: loginFailed,
			body: marchallObj(t, echoapi.LoginRequest{Email: "lol@test.cd", Password: "LolC@t123"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest, wantData: loginFailed,
			body: marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "nope"}),
		},
		{
			name: "valid credentials", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "LolC@t123"}),
		},
		{
			name: "remember extends expiry", wantCode: http.StatusOK,
			body:  marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "LolC@t123", Remember: true}),
			extra: "remember",
		},
		{
			name: "already authenticated", wantCode: http.StatusSeeOther,
			body: marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "LolC@t123"}), token: getToken(t, student),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}

			// cannot guess the token.. check it parses back to our claims
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			var respData echoapi.LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			if respData.Token == "" {
				t.Fatal("failed! empty token")
			}

			claims := new(echoapi.Claims)
			if _, err := jwt.ParseWithClaims(respData.Token, claims,
				func(*jwt.Token) (interface{}, error) { return []byte(conf.SecretKey), nil },
			); err != nil {
				t.Fatalf("jwt.ParseWithClaims(): %v", err)
			}
			if claims.Subject != student.ID {
				t.Errorf("failed! sub = %v; want %v", claims.Subject, student.ID)
			}

			minExpiry := time.Now().Add(conf.Server.JWTExpirationDelta)
			if tt.extra == "remember" {
				if got := time.Unix(claims.ExpiresAt, 0); !got.After(minExpiry) {
					t.Errorf("failed! remembered token expires at %v; want after %v", got, minExpiry)
				}
			}

			// login must update LastLogin
			refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
			if err != nil {
				t.Fatalf("GetUserByID(): %v", err)
			}
			if refreshed.LastLogin.IsZero() {
				t.Error("failed! LastLogin not set")
			}
		})
	}
}

func Test_userApi_account(t *testing.T) {
	setup(t)

	student := createUser(t, "Hero", "Kid", "hero", "hero@test.cd", "", user.RoleStudent, "C1")
	other := createUser(t, "Other", "Kid", "other", "other@test.cd", "", user.RoleStudent, "C1")
	token := getToken(t, student)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/account")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/account", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, student)}, rec)
	})

	updateReq := func(uname, email string) (*http.Request, *httptest.ResponseRecorder) {
		form := make(url.Values)
		form.Set("username", uname)
		form.Set("email", email)
		req := httptest.NewRequest(http.MethodPut, "/api/account", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		return req, httptest.NewRecorder()
	}

	t.Run("taken username rejected", func(t *testing.T) {
		req, rec := updateReq(other.Username, student.Email)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		}, rec)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := updateReq("superhero", "superhero@test.cd")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if usr.Username != "superhero" || usr.Email != "superhero@test.cd" {
			t.Errorf("failed! got %s/%s; want superhero/superhero@test.cd", usr.Username, usr.Email)
		}
	})
}

func Test_userApi_passwordResetFlow(t *testing.T) {
	setup(t)

	student := createUser(t, "Hero", "Kid", "hero", "hero@test.cd", "OldC@t123", user.RoleStudent, "C1")

	successData := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	// the response must not leak whether the email exists
	for _, email := range []string{"lol@test.cd", student.Email} {
		req, rec := newRequest(http.MethodPost, "/api/password-reset", marchallObj(t, echoapi.PasswordResetRequest{Email: email}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: successData}, rec)
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if got := msg.To[0].Address; got != student.Email {
		t.Fatalf("failed! To = %v; want %v", got, student.Email)
	}
	td, ok := msg.TemplateData.(struct{ UID, Token string })
	if !ok {
		t.Fatalf("failed! unexpected TemplateData %T", msg.TemplateData)
	}
	if !strings.Contains(msg.TextContent, td.UID+"/"+td.Token) {
		t.Error("failed! text content does not contain the reset link")
	}

	confirm := func(uid, token, pwd string) *httptest.ResponseRecorder {
		req, rec := newRequest(http.MethodPost, "/api/password-reset-confirm", marchallObj(t, user.ResetUserPassword{
			UID:             uid,
			Token:           token,
			Password:        pwd,
			PasswordConfirm: pwd,
		}))
		app.ServeHTTP(rec, req)
		return rec
	}

	t.Run("tampered token rejected", func(t *testing.T) {
		rec := confirm(td.UID, "HE4TS-sigsigsig", "NewC@t123")
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "That is an invalid or expired token."}),
		}, rec)
	})

	t.Run("valid token resets password", func(t *testing.T) {
		rec := confirm(td.UID, td.Token, "NewC@t123")
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Your password has been updated! You are now able to log in."}),
		}, rec)

		// the new password logs in
		req, lrec := newRequest(http.MethodPost, "/api/login", marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "NewC@t123"}))
		app.ServeHTTP(lrec, req)
		if lrec.Code != http.StatusOK {
			t.Errorf("failed! login code = %v; body %s", lrec.Code, lrec.Body.String())
		}
	})

	t.Run("token single-use", func(t *testing.T) {
		rec := confirm(td.UID, td.Token, "Third$C4t")
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "That is an invalid or expired token."}),
		}, rec)
	})
}
