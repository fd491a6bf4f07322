//go:build cgo

package db

import _ "github.com/godror/godror"
