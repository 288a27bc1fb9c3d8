package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasahq/darasa/core"
)

func newTestRegistry(t *testing.T) CodeRegistry {
	t.Helper()

	conf := &core.Config{
		StudentCodes: map[string]string{"c1": "Class One", "c2": "Class Two"}, // viper lower-cases keys
		TeacherCodes: []string{"T1"},
	}
	return NewCodeRegistry(conf)
}

func TestCodeRegistry_Resolve(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name       string
		code       string
		wantRole   Role
		wantAccess string
		wantErr    error
	}{
		{name: "student code", code: "C1", wantRole: RoleStudent, wantAccess: "C1"},
		{name: "student code is case-insensitive", code: "c2", wantRole: RoleStudent, wantAccess: "C2"},
		{name: "student code is trimmed", code: " c1 ", wantRole: RoleStudent, wantAccess: "C1"},
		{name: "teacher code", code: "t1", wantRole: RoleTeacher, wantAccess: "T1"},
		{name: "unknown code", code: "C9", wantErr: ErrUnknownSecretCode},
		{name: "empty code", code: "", wantErr: ErrUnknownSecretCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, access, err := reg.Resolve(tt.code)
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, role)
			assert.Equal(t, tt.wantAccess, access)
		})
	}
}

func TestCodeRegistry_Classes(t *testing.T) {
	reg := newTestRegistry(t)

	assert.Equal(t, map[string]string{"C1": "Class One", "C2": "Class Two"}, reg.Classes())

	name, ok := reg.ClassName("c1")
	require.True(t, ok)
	assert.Equal(t, "Class One", name)

	_, ok = reg.ClassName("T1")
	assert.False(t, ok)

	assert.True(t, reg.IsClass("C2"))
	assert.False(t, reg.IsClass("C9"))
}
