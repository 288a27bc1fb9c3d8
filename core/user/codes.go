package user

import (
	"strings"

	"github.com/darasahq/darasa/core"
)

// CodeRegistry maps registration secret codes to a role and, for students,
// a class section. A student code doubles as its class-section access key;
// the section a teacher registers with is not used for post filtering.
type CodeRegistry struct {
	studentCodes map[string]string // code -> class name
	teacherCodes map[string]struct{}
}

func NewCodeRegistry(conf *core.Config) CodeRegistry {
	reg := CodeRegistry{
		studentCodes: make(map[string]string, len(conf.StudentCodes)),
		teacherCodes: make(map[string]struct{}, len(conf.TeacherCodes)),
	}
	// viper lower-cases map keys; codes are case-insensitive, canonically upper
	for code, name := range conf.StudentCodes {
		reg.studentCodes[strings.ToUpper(code)] = name
	}
	for _, code := range conf.TeacherCodes {
		reg.teacherCodes[strings.ToUpper(code)] = struct{}{}
	}
	return reg
}

// Resolve maps a secret registration code to the role and access it grants.
func (reg CodeRegistry) Resolve(code string) (Role, string, error) {
	code = strings.ToUpper(core.CleanString(code))
	if _, ok := reg.teacherCodes[code]; ok {
		return RoleTeacher, code, nil
	}
	if _, ok := reg.studentCodes[code]; ok {
		return RoleStudent, code, nil
	}
	return "", "", ErrUnknownSecretCode
}

// Classes returns the known class sections, keyed by access code.
func (reg CodeRegistry) Classes() map[string]string {
	classes := make(map[string]string, len(reg.studentCodes))
	for code, name := range reg.studentCodes {
		classes[code] = name
	}
	return classes
}

// ClassName returns the display name of a class section, if known.
func (reg CodeRegistry) ClassName(access string) (string, bool) {
	name, ok := reg.studentCodes[strings.ToUpper(access)]
	return name, ok
}

func (reg CodeRegistry) IsClass(access string) bool {
	_, ok := reg.studentCodes[strings.ToUpper(access)]
	return ok
}
