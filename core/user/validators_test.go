package user

import (
	"sort"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Fatal(string, ...interface{}) {}

func newTestValidator() *validator.Validate {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	LoadCommonPasswords(noopLogger{})
	return validate
}

func hasFieldErr(err error, field, tag string) bool {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	for _, vErr := range vErrs {
		if vErr.Field() == field && vErr.Tag() == tag {
			return true
		}
	}
	return false
}

func TestPasswordPolicy(t *testing.T) {
	validate := newTestValidator()

	newUser := func(pwd string) NewUser {
		return NewUser{
			Username:        "jdoe",
			Email:           "jdoe@test.cd",
			FirstName:       "John",
			LastName:        "Doe",
			Password:        pwd,
			PasswordConfirm: pwd,
			SecretCode:      "C1",
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "aB1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "aB1! aB1!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "123456789", wantTag: pwdNotAllNumTag},
		{name: "no special", pwd: "abcDEF123", wantTag: pwdComplexityTag},
		{name: "no upper", pwd: "abcdef123!", wantTag: pwdComplexityTag},
		{name: "similar to email", pwd: "jDoe@test.cd1", wantTag: pwdAttrSimTag},
		{name: "ok", pwd: "G0od-pa$sw0rd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(newUser(tt.pwd))
			if tt.wantTag == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !hasFieldErr(err, "password", tt.wantTag) {
				t.Errorf("Validate() error = %v, want tag %s on password", err, tt.wantTag)
			}
		})
	}
}

func TestCommonPasswordRejected(t *testing.T) {
	validate := newTestValidator()

	// complexity gate runs first, so feed it a compliant-but-common password;
	// the embedded list is matched lower-cased
	commonPasswords = append(commonPasswords, "p@ssw0rdx!")
	sort.Strings(commonPasswords)
	defer LoadCommonPasswords(noopLogger{})
	err := validate.Struct(ResetUserPassword{
		UID:             "uid",
		Token:           "token",
		Password:        "P@ssw0rdX!",
		PasswordConfirm: "P@ssw0rdX!",
	})
	if err == nil || !hasFieldErr(err, "password", pwdNoCommonTag) {
		t.Errorf("Validate() error = %v, want tag %s on password", err, pwdNoCommonTag)
	}
}
