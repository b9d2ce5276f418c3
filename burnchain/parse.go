package burnchain

import "github.com/chainwatch-dev/chainwatch/internal/hexid"

// minPayloadLen is the smallest pushed-data length that can hold the 2-byte
// magic plus the 1-byte opcode (spec §4.3); operand lengths beyond that are
// checked per-opcode below.
const minPayloadLen = 3

// isOpReturn reports whether script is an OP_RETURN output and, if so,
// returns the bytes it pushes — i.e. with the 0x6a opcode and the push
// framing that precedes the data stripped off. Real encoders push via a
// direct length byte (opcode 0x01-0x4b meaning "push this many bytes"),
// OP_PUSHDATA1 (0x4c, followed by a one-byte length), or OP_PUSHDATA2
// (0x4d, followed by a little-endian two-byte length); spec §4.3's magic
// bytes must land at the start of the pushed data in every case, so the
// framing has to be decoded correctly rather than assumed away.
func isOpReturn(script []byte) (payload []byte, ok bool) {
	const opReturn = 0x6a
	const pushData1 = 0x4c
	const pushData2 = 0x4d
	if len(script) < 2 || script[0] != opReturn {
		return nil, false
	}
	switch {
	case script[1] <= 0x4b:
		pushLen := int(script[1])
		data := script[2:]
		if pushLen > len(data) {
			return nil, false
		}
		return data[:pushLen], true

	case script[1] == pushData1:
		if len(script) < 3 {
			return nil, false
		}
		pushLen := int(script[2])
		data := script[3:]
		if pushLen > len(data) {
			return nil, false
		}
		return data[:pushLen], true

	case script[1] == pushData2:
		if len(script) < 4 {
			return nil, false
		}
		pushLen := int(script[2]) | int(script[3])<<8
		data := script[4:]
		if pushLen > len(data) {
			return nil, false
		}
		return data[:pushLen], true

	default:
		return nil, false
	}
}

// Parse implements spec §4.3: decode the leading output's OP_RETURN payload
// into a StacksBaseChainOperation. ok is false (with err nil) when the first
// output is not an OP_RETURN or the opcode is unrecognized — per spec, an
// unrecognized opcode is logged and ignored, not an error.
func Parse(outputs []Output, blockHeight uint64, params NetworkParams) (op Operation, ok bool, err error) {
	if len(outputs) == 0 {
		return Operation{}, false, nil
	}
	payload, isOR := isOpReturn(outputs[0].ScriptPubkey)
	if !isOR {
		return Operation{}, false, nil
	}
	if len(payload) < minPayloadLen {
		return Operation{}, false, parseErr(ErrPayloadTooShort, "payload shorter than 3 bytes")
	}
	if payload[0] != params.MagicBytes[0] || payload[1] != params.MagicBytes[1] {
		return Operation{}, false, nil
	}
	opcode := OpCode(payload[2])
	body := payload[3:]

	switch opcode {
	case OpKeyRegister:
		return Operation{Kind: KindKeyRegistration}, true, nil

	case OpPreStx:
		// Spec §4.3: PreStx is recognized but intentionally produces no
		// operation.
		return Operation{}, false, nil

	case OpTransferStx:
		if len(body) < 16 {
			return Operation{}, false, parseErr(ErrShortOperand, "TransferStx payload too short")
		}
		return Operation{Kind: KindTransferStx, Unparsed: true}, true, nil

	case OpStackStx:
		if len(body) < 16 {
			return Operation{}, false, parseErr(ErrShortOperand, "StackStx payload too short")
		}
		return Operation{Kind: KindLockStx, Unparsed: true}, true, nil

	case OpBlockCommit:
		return parseBlockCommit(body, outputs, blockHeight, params)

	default:
		// Unknown opcode: logged by the caller, no operation produced.
		return Operation{}, false, nil
	}
}

func parseBlockCommit(body []byte, outputs []Output, blockHeight uint64, params NetworkParams) (Operation, bool, error) {
	off := 0
	stacksBlockHash, err := readHash32(body, &off)
	if err != nil {
		return Operation{}, false, parseErr(ErrShortOperand, "BlockCommit: missing stacks_block_hash")
	}

	if params.PoxConfig != nil && params.PoxConfig.IsRewardingAt(blockHeight) {
		perBlock := params.PoxConfig.RewardedAddressesPerBlock()
		if len(outputs) < 1+perBlock {
			return Operation{}, false, parseErr(ErrNotEnoughOuts, "BlockCommit: not enough reward outputs")
		}
		rewards := make([]Reward, 0, perBlock)
		for _, o := range outputs[1 : 1+perBlock] {
			rewards = append(rewards, Reward{RecipientScript: o.ScriptPubkey, Amount: o.Value})
		}
		return Operation{
			Kind:            KindPoxBlockCommitment,
			StacksBlockHash: hexid.Hash32(stacksBlockHash),
			Rewards:         rewards,
		}, true, nil
	}

	if len(outputs) < 2 {
		return Operation{}, false, parseErr(ErrNotEnoughOuts, "BlockCommit: missing burn output")
	}
	return Operation{
		Kind:            KindPobBlockCommitment,
		StacksBlockHash: hexid.Hash32(stacksBlockHash),
		Amount:          outputs[1].Value,
	}, true, nil
}
