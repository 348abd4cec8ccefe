//go:build cgo && unixodbc

package main

import (
	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/driver/unixodbc"
)

func init() {
	backends["unixodbc"] = func(Profile) (api.API, error) {
		return unixodbc.New(), nil
	}
}
