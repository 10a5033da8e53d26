package wire

import (
	"cmp"
	"fmt"
	"io"
	"slices"
)

// ReadMap reads a u32 length followed by that many (K,V) pairs.
func ReadMap[K cmp.Ordered, V any](
	r io.Reader,
	readKey func(io.Reader) (K, error),
	readVal func(io.Reader) (V, error),
) (map[K]V, error) {
	n, err := ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("could not read map length: %w", err)
	}
	m := make(map[K]V, n)
	for i := uint32(0); i < n; i++ {
		k, err := readKey(r)
		if err != nil {
			return nil, fmt.Errorf("could not read map key %d: %w", i, err)
		}
		v, err := readVal(r)
		if err != nil {
			return nil, fmt.Errorf("could not read map value %d: %w", i, err)
		}
		m[k] = v
	}
	return m, nil
}

// WriteMap writes a u32 length followed by each (K,V) pair in ascending
// key order, per spec.
func WriteMap[K cmp.Ordered, V any](
	w io.Writer,
	m map[K]V,
	writeKey func(io.Writer, K) error,
	writeVal func(io.Writer, V) error,
) error {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if err := WriteU32(w, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeKey(w, k); err != nil {
			return fmt.Errorf("could not write map key: %w", err)
		}
		if err := writeVal(w, m[k]); err != nil {
			return fmt.Errorf("could not write map value: %w", err)
		}
	}
	return nil
}
