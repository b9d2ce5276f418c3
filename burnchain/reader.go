package burnchain

// Bounds-checked cursor over an OP_RETURN payload, in the style of the
// teacher's consensus.readU32le/readBytes helpers (consensus/wire_read.go):
// every read advances an offset and fails closed on short input rather than
// panicking on an out-of-range slice.

func readByte(b []byte, off *int) (byte, error) {
	if *off+1 > len(b) {
		return 0, parseErr(ErrShortOperand, "unexpected EOF (byte)")
	}
	v := b[*off]
	*off++
	return v, nil
}

func readBytes(b []byte, off *int, n int) ([]byte, error) {
	if n < 0 || *off+n > len(b) {
		return nil, parseErr(ErrShortOperand, "unexpected EOF (bytes)")
	}
	v := b[*off : *off+n]
	*off += n
	return v, nil
}

func readHash32(b []byte, off *int) (hash [32]byte, err error) {
	raw, err := readBytes(b, off, 32)
	if err != nil {
		return hash, err
	}
	copy(hash[:], raw)
	return hash, nil
}
