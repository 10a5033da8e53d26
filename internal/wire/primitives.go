// Package wire implements the robots game's on-the-wire encoding: the
// length-and-type-prefixed binary frames exchanged between the game
// server and its TCP clients, and the datagram messages exchanged
// between a client and its local GUI over UDP.
//
// All multi-byte integers are big-endian. A String is a u8 length
// prefix followed by that many raw bytes (no UTF-8 handling, bytes
// pass through untouched).
package wire

import (
	"fmt"
	"io"

	"github.com/msulimowicz/robots/internal/byteorder"
	"github.com/msulimowicz/robots/internal/debug"
)

// MaxStringLen is the largest String that fits the u8 length prefix.
const MaxStringLen = 255

// MaxUDPMessageSize bounds a single GUI datagram (spec: <= 65507 bytes,
// the largest UDP payload that fits in one IPv4 packet).
const MaxUDPMessageSize = 65507

func ReadU8(r io.Reader) (uint8, error) {
	buf := [1]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("could not read u8: %w", err)
	}
	return buf[0], nil
}

func WriteU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	if err != nil {
		return fmt.Errorf("could not write u8: %w", err)
	}
	return nil
}

func ReadU16(r io.Reader) (uint16, error) {
	buf := [2]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("could not read u16: %w", err)
	}
	return byteorder.Ntohs(buf[:]), nil
}

func WriteU16(w io.Writer, v uint16) error {
	_, err := w.Write(byteorder.Htons(v))
	if err != nil {
		return fmt.Errorf("could not write u16: %w", err)
	}
	return nil
}

func ReadU32(r io.Reader) (uint32, error) {
	buf := [4]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("could not read u32: %w", err)
	}
	return byteorder.Ntohl(buf[:]), nil
}

func WriteU32(w io.Writer, v uint32) error {
	_, err := w.Write(byteorder.Htonl(v))
	if err != nil {
		return fmt.Errorf("could not write u32: %w", err)
	}
	return nil
}

// ReadString reads a u8 length prefix followed by that many raw bytes.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadU8(r)
	if err != nil {
		return "", fmt.Errorf("could not read string length: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("could not read string body: %w", err)
	}
	return string(buf), nil
}

// WriteString writes a u8 length prefix followed by the raw bytes of s.
// s must be at most MaxStringLen bytes; callers that accept strings from
// an external source (CLI flags) must validate length themselves before
// reaching here, since by the time a String needs encoding the length
// violation is a programming bug, not a peer's fault.
func WriteString(w io.Writer, s string) error {
	debug.Assert(len(s) <= MaxStringLen, "string exceeds wire length limit")
	if err := WriteU8(w, uint8(len(s))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return fmt.Errorf("could not write string body: %w", err)
	}
	return nil
}

// ReadList reads a u32 length followed by that many T, decoded by readItem.
func ReadList[T any](r io.Reader, readItem func(io.Reader) (T, error)) ([]T, error) {
	n, err := ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("could not read list length: %w", err)
	}
	items := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		item, err := readItem(r)
		if err != nil {
			return nil, fmt.Errorf("could not read list item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// WriteList writes a u32 length followed by each item in order, encoded
// by writeItem.
func WriteList[T any](w io.Writer, items []T, writeItem func(io.Writer, T) error) error {
	if err := WriteU32(w, uint32(len(items))); err != nil {
		return err
	}
	for i, item := range items {
		if err := writeItem(w, item); err != nil {
			return fmt.Errorf("could not write list item %d: %w", i, err)
		}
	}
	return nil
}
