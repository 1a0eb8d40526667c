package model

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// RoleSetは正規化済みのロール集合。
// JWTや古いデータはroleを単体またはか配列で持つことがあるので、
// 読み込み時に一度だけParseRoleSetで変換して以降はこの型で扱う。
type RoleSet []Role

// ParseRoleSetは単体・配列どちらの表現もRoleSetへ正規化する。
// 未知の型や空値は空集合になる。
func ParseRoleSet(v interface{}) RoleSet {
	switch t := v.(type) {
	case Role:
		if t == "" {
			return RoleSet{}
		}
		return RoleSet{t}
	case RoleSet:
		return t.normalize()
	case []Role:
		return RoleSet(t).normalize()
	case string:
		if t == "" {
			return RoleSet{}
		}
		return RoleSet{Role(t)}
	case []string:
		set := make(RoleSet, 0, len(t))
		for _, s := range t {
			if s != "" {
				set = append(set, Role(s))
			}
		}
		return set.normalize()
	case []interface{}:
		set := make(RoleSet, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				set = append(set, Role(s))
			}
		}
		return set.normalize()
	default:
		return RoleSet{}
	}
}

// 重複を除く
func (s RoleSet) normalize() RoleSet {
	seen := make(map[Role]struct{}, len(s))
	out := make(RoleSet, 0, len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Hasはロールを含むかどうか。
func (s RoleSet) Has(r Role) bool {
	for _, have := range s {
		if have == r {
			return true
		}
	}
	return false
}

// Intersectsは要求集合と1つでも重なるかどうか。
func (s RoleSet) Intersects(required RoleSet) bool {
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// ログ出力用
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
