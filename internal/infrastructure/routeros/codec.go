// Package routeros implements the RouterOS API wire protocol: length-prefixed
// words framed into sentences over a single TCP connection, the plaintext and
// MD5-challenge login handshake, and the !re/!done/!trap/!fatal reply stream.
// It carries no billing or isolation semantics.
package routeros

import (
	"fmt"
	"io"
)

// Word length classes. The prefix encoding is a bit-exact protocol contract
// with the device, not a design choice:
//
//	< 0x80        1 byte   0xxxxxxx
//	< 0x4000      2 bytes  10xxxxxx xxxxxxxx
//	< 0x200000    3 bytes  110xxxxx ...
//	< 0x10000000  4 bytes  1110xxxx ...
//	otherwise     5 bytes  11110000 + 4 length bytes
const (
	len1Max = 0x80
	len2Max = 0x4000
	len3Max = 0x200000
	len4Max = 0x10000000
)

// appendLength appends the variable-length prefix for a word of l bytes
func appendLength(dst []byte, l int) []byte {
	switch {
	case l < len1Max:
		return append(dst, byte(l))
	case l < len2Max:
		v := uint32(l) | 0x8000
		return append(dst, byte(v>>8), byte(v))
	case l < len3Max:
		v := uint32(l) | 0xC00000
		return append(dst, byte(v>>16), byte(v>>8), byte(v))
	case l < len4Max:
		v := uint32(l) | 0xE0000000
		return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(dst, 0xF0, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
	}
}

// appendWord appends the full wire form of one word: length prefix plus raw
// bytes. A zero-length word is the sentence terminator.
func appendWord(dst []byte, word string) []byte {
	dst = appendLength(dst, len(word))
	return append(dst, word...)
}

// readLength decodes one variable-length word prefix from r
func readLength(r io.Reader) (int, error) {
	b0, err := readByte(r)
	if err != nil {
		return 0, err
	}

	switch {
	case b0 < 0x80:
		return int(b0), nil
	case b0 < 0xC0:
		rest, err := readBytes(r, 1)
		if err != nil {
			return 0, err
		}
		return int(b0&0x3F)<<8 | int(rest[0]), nil
	case b0 < 0xE0:
		rest, err := readBytes(r, 2)
		if err != nil {
			return 0, err
		}
		return int(b0&0x1F)<<16 | int(rest[0])<<8 | int(rest[1]), nil
	case b0 < 0xF0:
		rest, err := readBytes(r, 3)
		if err != nil {
			return 0, err
		}
		return int(b0&0x0F)<<24 | int(rest[0])<<16 | int(rest[1])<<8 | int(rest[2]), nil
	case b0 == 0xF0:
		rest, err := readBytes(r, 4)
		if err != nil {
			return 0, err
		}
		return int(rest[0])<<24 | int(rest[1])<<16 | int(rest[2])<<8 | int(rest[3]), nil
	default:
		// 0xF1..0xFF are reserved control bytes
		return 0, fmt.Errorf("routeros: invalid length prefix 0x%02X", b0)
	}
}

// readWord reads one length-prefixed word. An empty string with nil error is
// a sentence terminator.
func readWord(r io.Reader) (string, error) {
	l, err := readLength(r)
	if err != nil {
		return "", err
	}
	if l == 0 {
		return "", nil
	}
	buf, err := readBytes(r, l)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
