package generator

import (
	"fmt"
	"strings"

	"github.com/toyz/autoimpl/internal/models"
)

// ResolvedMember is a member that survived exemption and deduplication
type ResolvedMember struct {
	Member     models.MemberID
	Contract   models.ContractID
	Strict     bool // strictness of the contract it was reached through
	WithSetter bool // some declaration of the member also declares the setter
}

type registration struct {
	index    int // position in the resolved slice, -1 for method members
	identity string
	contract string
}

// Resolve walks the aggregated contracts in traversal order and their members
// in declaration order. Exempt members are dropped, the first declaration of
// a name wins, and a later declaration with the same type is the same member
// reached through another path. A later declaration with a different type is
// reported as a conflict.
func Resolve(table *models.SymbolTable, aggregated []AggregatedContract) ([]ResolvedMember, []models.SkipRecord) {
	var resolved []ResolvedMember
	var skipped []models.SkipRecord
	seen := make(map[string]registration)

	for _, agg := range aggregated {
		contract := table.Contract(agg.ID)
		for _, id := range contract.Members {
			member := table.Member(id)
			if member.Exempt {
				continue
			}

			identity := memberIdentity(member)
			if prev, ok := seen[member.Name]; ok {
				if prev.identity == identity {
					if prev.index >= 0 && member.HasSetter {
						resolved[prev.index].WithSetter = true
					}
					continue
				}
				skipped = append(skipped, models.SkipRecord{
					Member:   member.Name,
					Contract: contract.Name,
					Kind:     models.SkipConflict,
					Reason: fmt.Sprintf("%s conflicts with %s declared by %s",
						describeIdentity(identity), describeIdentity(prev.identity), prev.contract),
					Shadowed: prev.contract,
					Types:    []string{describeIdentity(prev.identity), describeIdentity(identity)},
				})
				continue
			}

			if member.Kind == models.MemberMethod {
				seen[member.Name] = registration{index: -1, identity: identity, contract: contract.Name}
				skipped = append(skipped, models.SkipRecord{
					Member:   member.Name,
					Contract: contract.Name,
					Kind:     models.SkipMethod,
					Reason:   "not an accessor; implement it on the target",
				})
				continue
			}

			seen[member.Name] = registration{index: len(resolved), identity: identity, contract: contract.Name}
			resolved = append(resolved, ResolvedMember{
				Member:     id,
				Contract:   agg.ID,
				Strict:     agg.Strict,
				WithSetter: member.HasSetter,
			})
		}
	}

	return resolved, skipped
}

func memberIdentity(m *models.MemberDeclaration) string {
	if m.Kind == models.MemberMethod {
		return "method func" + m.Signature
	}
	return "value " + m.Type.Qualified
}

func describeIdentity(identity string) string {
	kind, spelling, _ := strings.Cut(identity, " ")
	if spelling == "" {
		return "an unresolved type"
	}
	if kind == "method" {
		return "method " + spelling
	}
	return spelling
}
