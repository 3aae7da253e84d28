package permissions_test

import (
	"net/http"
	"testing"

	"taskboard/permissions"
	"taskboard/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "valid",
			data: `{"rules":[{"path":"/api/tags","methods":["GET","POST"],"roles":["user"]}]}`,
		},
		{
			name:    "relative path",
			data:    `{"rules":[{"path":"api/tags","methods":["GET"]}]}`,
			wantErr: permissions.ErrInvalidRule,
		},
		{
			name:    "no methods",
			data:    `{"rules":[{"path":"/api/tags"}]}`,
			wantErr: permissions.ErrInvalidRule,
		},
		{
			name:    "same route twice",
			data:    `{"rules":[{"path":"/api/tags/","methods":["get"]},{"path":"/api/tags","methods":["GET"]}]}`,
			wantErr: permissions.ErrDuplicateRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := permissions.Load([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, policy)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, policy)
		})
	}

	t.Run("broken json", func(t *testing.T) {
		_, err := permissions.Load([]byte(`{"rules":`))
		require.Error(t, err)
	})
}

func TestPolicy_Find(t *testing.T) {
	policy, err := permissions.Load([]byte(`{"rules":[
		{"path":"/api/todos/","methods":["GET"],"roles":["user"]},
		{"path":"/api/users/me","methods":["*"],"roles":["user"]},
		{"path":"/api/users/me","methods":["DELETE"],"roles":["admin"]}
	]}`))
	require.NoError(t, err)

	rule, ok := policy.Find("/api/todos", http.MethodGet)
	require.True(t, ok, "trailing slashes are ignored")
	assert.Equal(t, []string{"user"}, rule.Roles)

	_, ok = policy.Find("/api/todos", http.MethodPost)
	assert.False(t, ok)

	rule, ok = policy.Find("/api/users/me", http.MethodPatch)
	require.True(t, ok)
	assert.Equal(t, []string{"user"}, rule.Roles)

	rule, ok = policy.Find("/api/users/me", http.MethodDelete)
	require.True(t, ok)
	assert.Equal(t, []string{"admin"}, rule.Roles, "an explicit method wins over the wildcard")

	var nilPolicy *permissions.Policy

	_, ok = nilPolicy.Find("/api/todos", http.MethodGet)
	assert.False(t, ok)
}

func TestRule_Allows(t *testing.T) {
	assert.True(t, permissions.Rule{Public: true, Roles: []string{constant.RoleAdmin}}.Allows(""))
	assert.True(t, permissions.Rule{}.Allows(constant.RoleUser))
	assert.True(t, permissions.Rule{Roles: []string{constant.RoleUser}}.Allows(constant.RoleUser))
	assert.False(t, permissions.Rule{Roles: []string{constant.RoleAdmin}}.Allows(constant.RoleUser))
}

func TestGet_EmbeddedPolicy(t *testing.T) {
	policy := permissions.Get()
	require.NotNil(t, policy)

	for _, path := range []string{"/api/auth/register", "/api/auth/login", "/api/auth/refresh-token"} {
		rule, ok := policy.Find(path, http.MethodPost)
		require.True(t, ok, path)
		assert.True(t, rule.Public, path)
	}

	routes := []struct{ path, method string }{
		{"/api/todos/", http.MethodGet},
		{"/api/todos/", http.MethodPost},
		{"/api/todos/{id}", http.MethodPatch},
		{"/api/todos/{id}/tags", http.MethodPost},
		{"/api/todos/{id}/tags/{tagId}", http.MethodDelete},
		{"/api/tags/", http.MethodGet},
		{"/api/tags/{id}", http.MethodDelete},
		{"/api/users/me", http.MethodGet},
		{"/api/infra/images", http.MethodPost},
	}

	for _, route := range routes {
		rule, ok := policy.Find(route.path, route.method)
		require.True(t, ok, route.method+" "+route.path)
		assert.False(t, rule.Public)
		assert.True(t, rule.Allows(constant.RoleUser))
	}
}
