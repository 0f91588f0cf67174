package extract

import "strings"

// roleAliases maps role-valued fields, case-insensitively.
var roleAliases = map[string]Role{
	"user":      RoleUser,
	"human":     RoleUser,
	"assistant": RoleAssistant,
	"claude":    RoleAssistant,
	"ai":        RoleAssistant,
	"developer": RoleDeveloper,
	"dev":       RoleDeveloper,
	"system":    RoleSystem,
}

// typeAliases maps the record type discriminant, consulted only after every
// role-valued field failed to match.
var typeAliases = map[string]Role{
	"user":              RoleUser,
	"human_message":     RoleUser,
	"human":             RoleUser,
	"assistant":         RoleAssistant,
	"assistant_message": RoleAssistant,
	"system":            RoleSystem,
	"system_message":    RoleSystem,
}

// classifyRole infers a conversation role from a record's shape. The role
// inside a nested message object wins over top-level role/sender/author
// fields, which win over the type discriminant; the default is system.
func classifyRole(obj *record) Role {
	if msg, ok := obj.get("message").(*record); ok {
		if r, ok := lookupRole(msg.get("role"), roleAliases); ok {
			return r
		}
	}
	for _, key := range []string{"role", "sender", "author"} {
		if r, ok := lookupRole(obj.get(key), roleAliases); ok {
			return r
		}
	}
	if r, ok := lookupRole(obj.get("type"), typeAliases); ok {
		return r
	}
	return RoleSystem
}

func lookupRole(v any, table map[string]Role) (Role, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	r, ok := table[strings.ToLower(s)]
	return r, ok
}
