package predicate

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
)

// Validation regexes, compiled once. Grounded on spec §4.5/§6's field
// descriptions; a fully-qualified contract identifier is a Stacks principal
// followed by ".contract-name", a method/contract-name is a limited ASCII
// symbol. Checksum validation of the principal's c32 encoding is out of
// scope — see DESIGN.md — so these only check syntactic shape.
var (
	principalRe = regexp.MustCompile(`^S[0123456789ABCDEFGHJKMNPQRSTVWXYZ]{25,40}$`)
	contractNameRe = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]|[-_])*$`)
	methodRe       = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]|[-_!?+<>=/*])*$`)
	txidRe         = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	headerValueRe  = regexp.MustCompile(`^[\x20-\x7E]+$`)

	validAssetAction = map[string]bool{"mint": true, "burn": true, "transfer": true}
	validStxAction   = map[string]bool{"lock": true, "mint": true, "transfer": true}
)

// Validate checks every network body in doc and returns one error string
// per defect found, each prefixed with the scope required by spec §4.5:
// "invalid <chain> predicate '<uuid>' for network <net>:". Validation does
// not stop at the first defect — spec property P5 requires that a spec
// exhibiting k distinct defects yields exactly k error strings.
func Validate(doc Document) []string {
	var errs []string

	networkNames := make([]string, 0, len(doc.Networks))
	for name := range doc.Networks {
		networkNames = append(networkNames, name)
	}
	sort.Strings(networkNames)

	for _, name := range networkNames {
		net := doc.Networks[name]
		prefix := fmt.Sprintf("invalid %s predicate '%s' for network %s:", doc.Chain, doc.ID, name)

		for _, detail := range validateNetworkSpec(net) {
			errs = append(errs, prefix+" "+detail)
		}
	}
	return errs
}

func validateNetworkSpec(net NetworkSpec) []string {
	var errs []string
	if net.EndBlock != nil && net.StartBlock != nil && *net.EndBlock <= *net.StartBlock {
		errs = append(errs, "invalid 'end_block' value: must be greater than 'start_block'")
	}
	for _, e := range validateAction(net.ThenThat) {
		errs = append(errs, "invalid 'then_that' value: "+e)
	}
	for _, e := range validatePredicate(net.IfThis) {
		errs = append(errs, "invalid 'if_this' value: "+e)
	}
	return errs
}

func validateAction(a Action) []string {
	var errs []string
	switch a.Kind {
	case ActionHttpPost:
		u, err := url.Parse(a.URL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			errs = append(errs, "invalid 'http_post' data: url must be an absolute URL")
		}
		if !headerValueRe.MatchString(a.AuthorizationHeader) {
			errs = append(errs, "invalid 'http_post' data: authorization header must be a valid HTTP header value")
		}
	case ActionFileAppend:
		if a.Path == "" {
			errs = append(errs, "invalid 'file_append' data: path must not be empty")
		}
	default:
		errs = append(errs, "unknown action kind")
	}
	return errs
}

func validPrincipal(s string) bool {
	return s == "*" || principalRe.MatchString(s)
}

func validContractIdentifier(s string) bool {
	if s == "*" {
		return true
	}
	dot := -1
	for i, r := range s {
		if r == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return false
	}
	return principalRe.MatchString(s[:dot]) && contractNameRe.MatchString(s[dot+1:]) && len(s[dot+1:]) <= 128
}

func validateAssetActions(kind Kind, actions []string, allowed map[string]bool, scope string) []string {
	var errs []string
	for _, a := range actions {
		if !allowed[a] {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': unknown action %q", scope, a))
		}
	}
	return errs
}

func validatePredicate(p Predicate) []string {
	var errs []string
	scope := p.Kind.String()

	switch p.Kind {
	case KindTxid:
		if !txidRe.MatchString(p.TxidEquals) {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': txid must be a 32 byte (64 character) hexadecimal string prefixed with '0x'", scope))
		}

	case KindOpReturn:
		// Any rule/value combination is structurally valid; matching
		// against an empty string simply never matches.

	case KindP2pkh, KindP2sh, KindP2wpkh, KindP2wsh:
		if p.ExactEquals == "" {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': equals value must not be empty", scope))
		}

	case KindOrdinalInscriptionRevealed:
		// Opaque marker, no fields to validate.

	case KindBlockHeight:
		switch p.HeightRule.Kind {
		case HeightLowerThan:
			if p.HeightRule.N == 0 {
				errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': 'lower_than' filter must be greater than 0", scope))
			}
		case HeightBetween:
			if p.HeightRule.Lo >= p.HeightRule.Hi {
				errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': 'between' filter must have left-hand-side value lower than right-hand-side value", scope))
			}
		}

	case KindContractCall:
		if !validContractIdentifier(p.ContractIdentifier) {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': invalid contract identifier", scope))
		}
		if !methodRe.MatchString(p.Method) || len(p.Method) > 128 {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': invalid contract method", scope))
		}

	case KindContractDeployment:
		if !validPrincipal(p.Deployer) {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': contract deployer must be a valid Stacks address", scope))
		}

	case KindPrintEvent:
		if !validContractIdentifier(p.PrintEventContractIdentifier) {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': invalid contract identifier", scope))
		}
		if p.PrintEventBody.Kind == BodyMatchesRegex {
			if _, err := regexp.Compile(p.PrintEventBody.Value); err != nil {
				errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': invalid regex: %v", scope, err))
			}
		}

	case KindFtEvent, KindNftEvent:
		if p.AssetIdentifier == "" {
			errs = append(errs, fmt.Sprintf("invalid predicate for scope '%s': asset identifier must not be empty", scope))
		}
		errs = append(errs, validateAssetActions(p.Kind, p.AssetActions, validAssetAction, scope)...)

	case KindStxEvent:
		errs = append(errs, validateAssetActions(p.Kind, p.StxActions, validStxAction, scope)...)

	default:
		errs = append(errs, "unknown predicate kind")
	}

	return errs
}
