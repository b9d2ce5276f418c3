package dispatch

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/chainwatch-dev/chainwatch/predicate"
)

// matchPredicate reports whether tx satisfies p, and if so returns a
// human-inspectable detail payload to attach to the delivered Match.
// Unlike Validate, matching short-circuits on the first satisfied clause
// per predicate kind — spec §4.6 only requires one reported match per
// (predicate, transaction) pair, not an exhaustive account of every reason
// it matched.
func matchPredicate(p predicate.Predicate, tx TransactionView) (bool, interface{}) {
	switch p.Kind {
	case predicate.KindTxid:
		if strings.EqualFold(tx.Txid, p.TxidEquals) {
			return true, tx.Txid
		}

	case predicate.KindOpReturn:
		if len(tx.OpReturnData) == 0 {
			return false, nil
		}
		if matchRule(p.OpReturnRule, tx.OpReturnData) {
			return true, tx.OpReturnData
		}

	case predicate.KindP2pkh, predicate.KindP2sh, predicate.KindP2wpkh, predicate.KindP2wsh:
		want := []byte(p.ExactEquals)
		for _, script := range tx.OutputScripts {
			if bytes.Equal(script, want) {
				return true, script
			}
		}

	case predicate.KindOrdinalInscriptionRevealed:
		// Opaque marker predicate: matching requires chain-specific
		// inscription-envelope decoding this package does not perform.
		// Left unmatched rather than guessing at semantics.
		return false, nil

	case predicate.KindBlockHeight:
		if matchHeight(p.HeightRule, tx.BlockHeight) {
			return true, tx.BlockHeight
		}

	case predicate.KindContractCall:
		for _, c := range tx.ContractCalls {
			if matchesIdentifier(p.ContractIdentifier, c.ContractIdentifier) && c.Method == p.Method {
				return true, c
			}
		}

	case predicate.KindContractDeployment:
		for _, d := range tx.ContractDeployments {
			if matchesPrincipal(p.Deployer, d.Deployer) {
				return true, d
			}
		}

	case predicate.KindPrintEvent:
		for _, e := range tx.PrintEvents {
			if !matchesIdentifier(p.PrintEventContractIdentifier, e.ContractIdentifier) {
				continue
			}
			if matchBody(p.PrintEventBody, e.Body) {
				return true, e
			}
		}

	case predicate.KindFtEvent:
		for _, e := range tx.FtEvents {
			if e.AssetIdentifier == p.AssetIdentifier && containsAction(p.AssetActions, e.Action) {
				return true, e
			}
		}

	case predicate.KindNftEvent:
		for _, e := range tx.NftEvents {
			if e.AssetIdentifier == p.AssetIdentifier && containsAction(p.AssetActions, e.Action) {
				return true, e
			}
		}

	case predicate.KindStxEvent:
		for _, e := range tx.StxEvents {
			if containsAction(p.StxActions, e.Action) {
				return true, e
			}
		}
	}
	return false, nil
}

func matchRule(rule predicate.MatchingRule, data []byte) bool {
	switch rule.Kind {
	case predicate.RuleStartsWith:
		return bytes.HasPrefix(data, []byte(rule.Value))
	case predicate.RuleEndsWith:
		return bytes.HasSuffix(data, []byte(rule.Value))
	case predicate.RuleEquals:
		return bytes.Equal(data, []byte(rule.Value))
	default:
		return false
	}
}

func matchHeight(rule predicate.HeightRule, height uint64) bool {
	switch rule.Kind {
	case predicate.HeightLowerThan:
		return height < rule.N
	case predicate.HeightHigherThan:
		return height > rule.N
	case predicate.HeightEquals:
		return height == rule.N
	case predicate.HeightBetween:
		return height >= rule.Lo && height <= rule.Hi
	default:
		return false
	}
}

func matchBody(body predicate.PrintEventBody, value string) bool {
	switch body.Kind {
	case predicate.BodyContains:
		return strings.Contains(value, body.Value)
	case predicate.BodyMatchesRegex:
		re, err := regexp.Compile(body.Value)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	default:
		return false
	}
}

func matchesIdentifier(want, got string) bool {
	return want == "*" || want == got
}

func matchesPrincipal(want, got string) bool {
	return want == "*" || want == got
}

func containsAction(allowed []string, action string) bool {
	for _, a := range allowed {
		if a == action {
			return true
		}
	}
	return false
}
