package postgres

import "fmt"

// TableNames holds environment-prefixed table names so dev, test and prod can
// share one database.
type TableNames struct {
	Users        string
	Groups       string
	GroupMembers string
	Resources    string
	UserGrants   string
	GroupGrants  string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:        fmt.Sprintf("%susers", prefix),
		Groups:       fmt.Sprintf("%sgroups", prefix),
		GroupMembers: fmt.Sprintf("%sgroup_members", prefix),
		Resources:    fmt.Sprintf("%sresources", prefix),
		UserGrants:   fmt.Sprintf("%suser_grants", prefix),
		GroupGrants:  fmt.Sprintf("%sgroup_grants", prefix),
	}
}
