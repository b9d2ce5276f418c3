package burnchain

// ParseTransaction runs Parse against tx.Outputs and records the result in
// tx.ParsedOperations, mirroring spec §3: "Parsed operations are derived by
// C3 from the leading OP_RETURN output if present." A malformed payload
// (err != nil) is not fatal to ingestion — per spec §7 the caller should log
// and continue; ParseTransaction reports the error so the caller can do so.
func ParseTransaction(tx *Transaction, blockHeight uint64, params NetworkParams) error {
	op, ok, err := Parse(tx.Outputs, blockHeight, params)
	if err != nil {
		return err
	}
	if !ok {
		tx.ParsedOperations = nil
		return nil
	}
	tx.ParsedOperations = []Operation{op}
	return nil
}
