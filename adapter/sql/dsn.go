package sql

import (
	"fmt"
	"strings"
)

// DSN holds the parts of a connection string understood by the driver.
type DSN struct {
	// Name is the data source name passed to SQLConnect.
	Name string

	// User is the login name.
	User string

	// Password is the login password.
	Password string
}

// ParseDSN parses a connection string of "key=value" pairs separated by
// semicolons. Keys are case-insensitive: DSN, UID (or User) and PWD (or
// Password). A string without any "=" is taken as a bare data source name.
//
// Parameters:
//   - s: The connection string
//
// Returns:
//   - DSN: The parsed connection parameters
//   - error: If a pair is malformed, a key is unknown or no name is given
func ParseDSN(s string) (DSN, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "=") {
		if s == "" {
			return DSN{}, fmt.Errorf("odbc: empty data source name")
		}
		return DSN{Name: s}, nil
	}

	var d DSN
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return DSN{}, fmt.Errorf("odbc: malformed connection string attribute %q", part)
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "DSN":
			d.Name = value
		case "UID", "USER":
			d.User = value
		case "PWD", "PASSWORD":
			d.Password = value
		default:
			return DSN{}, fmt.Errorf("odbc: unknown connection string attribute %q", key)
		}
	}

	if d.Name == "" {
		return DSN{}, fmt.Errorf("odbc: connection string %q has no DSN", s)
	}

	return d, nil
}

// String renders the DSN in the form ParseDSN accepts, without the password.
func (d DSN) String() string {
	s := "DSN=" + d.Name
	if d.User != "" {
		s += ";UID=" + d.User
	}

	return s
}
