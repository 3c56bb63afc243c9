// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains helpers shared by the sensor packages, such as the
// CRC-8 used to protect measurement frames.
package common

const (
	// CRC8Polynomial is x^8 + x^5 + x^4 + 1 with the x^8 term dropped.
	CRC8Polynomial byte = 0x31
	// CRC8Init is the register value before the first byte is shifted in.
	CRC8Init byte = 0xff
)

// CRC8 calculates the 8-bit CRC of bytes, most significant bit first, with no
// reflection and no final XOR. This is the checksum appended by the AHT20 to
// its measurement frame (and by several Sensirion parts).
func CRC8(bytes []byte) byte {
	crc := CRC8Init
	for _, val := range bytes {
		crc ^= val
		for range 8 {
			if crc&0x80 == 0 {
				crc <<= 1
			} else {
				crc = crc<<1 ^ CRC8Polynomial
			}
		}
	}
	return crc
}

// CheckCRC8 reports whether the last byte of frame is the CRC8 of the bytes
// preceding it. Frames shorter than two bytes never match.
func CheckCRC8(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	n := len(frame) - 1
	return CRC8(frame[:n]) == frame[n]
}
