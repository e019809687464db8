package tplink

import (
	"bytes"
	"encoding/binary"
)

// The wire format is JSON under a rolling-XOR autokey cipher seeded with
// 0xAB. UDP payloads are bare; TCP payloads carry a 4 byte big-endian
// length prefix.

func encrypt(plaintext string) []byte {
	n := len(plaintext)
	payload := make([]byte, n)

	key := byte(0xAB)
	for i := 0; i < n; i++ {
		payload[i] = plaintext[i] ^ key
		key = payload[i]
	}

	return payload
}

func decrypt(ciphertext []byte) string {
	n := len(ciphertext)
	key := byte(0xAB)
	var nextKey byte
	for i := 0; i < n; i++ {
		nextKey = ciphertext[i]
		ciphertext[i] = ciphertext[i] ^ key
		key = nextKey
	}
	return string(ciphertext)
}

func encryptTCP(plaintext string) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, uint32(len(plaintext)))
	return append(buf.Bytes(), encrypt(plaintext)...)
}
