package config

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSeedUsers are the demo accounts available when SEED_USERS is unset.
const DefaultSeedUsers = "test_user1:1234:0:USER,admin:password123:100:ADMIN"

// SeedUser is an account created at startup.
type SeedUser struct {
	Username string
	Password string
	Points   int
	Role     string
}

// ParseSeedUsers parses "name:password[:points[:role]]" entries separated by
// commas.  Points default to 0 and role to USER.
func ParseSeedUsers(s string) ([]SeedUser, error) {
	var out []SeedUser
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("entry %q: want name:password[:points[:role]]", entry)
		}
		u := SeedUser{Username: parts[0], Password: parts[1], Role: "USER"}
		if len(parts) > 2 && parts[2] != "" {
			n, err := strconv.Atoi(parts[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("entry %q: invalid points %q", entry, parts[2])
			}
			u.Points = n
		}
		if len(parts) > 3 && parts[3] != "" {
			u.Role = strings.ToUpper(parts[3])
		}
		out = append(out, u)
	}
	return out, nil
}
