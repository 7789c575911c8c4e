package core

import (
	cryptorand "crypto/rand"
	"encoding/binary"
)

// RandUint32 returns random non zero value, zero is reserved for "no value"
func RandUint32() uint32 {
	b := make([]byte, 4)
	for {
		if _, err := cryptorand.Read(b); err != nil {
			panic(err)
		}
		if u := binary.BigEndian.Uint32(b); u != 0 {
			return u
		}
	}
}
