package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"user:change_password",
	},
	"teacher": {
		"game:generate",
		"game:confirm",
		"game:view",
		"game:delete",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
